// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cinedex/internal/config"
	"github.com/tomtom215/cinedex/internal/logging"
	"github.com/tomtom215/cinedex/internal/metrics"
	"github.com/tomtom215/cinedex/internal/models"
	"github.com/tomtom215/cinedex/internal/retry"
)

// Options carries the tunables shared by every stage.
type Options struct {
	// PageSize bounds every database page and therefore every bulk request.
	PageSize int

	// DBPolicy is the retry envelope for catalog queries.
	DBPolicy retry.Policy

	// HTTPPolicy is the retry envelope for index requests.
	HTTPPolicy retry.Policy
}

// OptionsFromConfig derives stage options from the loaded configuration.
func OptionsFromConfig(etlCfg config.ETLConfig, backoffCfg config.BackoffConfig) Options {
	return Options{
		PageSize: etlCfg.PageSize,
		DBPolicy: retry.Policy{
			MaxTries:   backoffCfg.MaxTries,
			MaxElapsed: backoffCfg.DBMaxTime,
		},
		HTTPPolicy: retry.Policy{
			MaxTries:   backoffCfg.MaxTries,
			MaxElapsed: backoffCfg.HTTPMaxTime,
		},
	}
}

// Stream is the assembled pipeline for one entity class. A Sync drains the
// class's table past its watermark and rewrites every affected film
// document.
type Stream struct {
	kind     models.EntityKind
	producer *Producer
	enricher *Enricher
	merger   *Merger
	loader   *Loader
}

// NewStream wires the five stages for kind.
func NewStream(kind models.EntityKind, catalog Catalog, indexer Indexer, marks Watermarks, opts Options) *Stream {
	return &Stream{
		kind:     kind,
		producer: NewProducer(kind, catalog, marks, opts),
		enricher: NewEnricher(kind, catalog, marks, opts),
		merger:   NewMerger(catalog, opts),
		loader:   NewLoader(indexer, opts),
	}
}

// Kind returns the stream's entity class.
func (s *Stream) Kind() models.EntityKind {
	return s.kind
}

// Sync runs one full traversal of the stream: every page of changed rows is
// resolved to films, folded to documents and loaded before the page's
// cursor becomes durable.
func (s *Stream) Sync(ctx context.Context) error {
	start := time.Now()
	err := s.run(ctx)
	metrics.RecordStreamSync(s.kind.String(), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s stream sync failed: %w", s.kind, err)
	}

	logging.Ctx(ctx).Info().
		Str("stream", s.kind.String()).
		Dur("duration", time.Since(start)).
		Msg("Stream sync complete")
	return nil
}

func (s *Stream) run(ctx context.Context) error {
	return s.producer.Produce(ctx, func(batch []models.EntityRef) error {
		return s.enricher.Enrich(ctx, batch, func(films []models.EntityRef) error {
			rows, err := s.merger.Merge(ctx, films)
			if err != nil {
				return err
			}
			return s.loader.Load(ctx, Fold(rows))
		})
	})
}
