// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package etl

import (
	"context"
	"fmt"

	"github.com/tomtom215/cinedex/internal/logging"
	"github.com/tomtom215/cinedex/internal/metrics"
	"github.com/tomtom215/cinedex/internal/models"
	"github.com/tomtom215/cinedex/internal/retry"
)

// Producer pulls pages of changed rows from the stream's own table and
// pushes them downstream. The persisted cursor advances only after the
// downstream call returns, so a crash mid-batch replays the page on the
// next run.
type Producer struct {
	kind     models.EntityKind
	catalog  Catalog
	marks    Watermarks
	pageSize int
	dbPolicy retry.Policy
}

// NewProducer creates the head stage for one stream.
func NewProducer(kind models.EntityKind, catalog Catalog, marks Watermarks, opts Options) *Producer {
	return &Producer{
		kind:     kind,
		catalog:  catalog,
		marks:    marks,
		pageSize: opts.PageSize,
		dbPolicy: opts.DBPolicy,
	}
}

// Produce runs the pull-at-head loop until the table is drained past the
// watermark. emit receives each page of changed refs and must complete all
// downstream work for it before returning.
//
// The filmwork stream is the exception: its enricher walks the filmwork
// table itself, so Produce hands it a single empty batch and leaves the
// cursor alone.
func (p *Producer) Produce(ctx context.Context, emit func([]models.EntityRef) error) error {
	if p.kind == models.KindFilmwork {
		return emit(nil)
	}

	cur, err := p.marks.Cursor(p.kind)
	if err != nil {
		return err
	}

	for {
		refs, err := retry.DoValue(ctx, "changed_entities", p.dbPolicy, func() ([]models.EntityRef, error) {
			return p.catalog.ChangedEntities(ctx, p.kind, cur, p.pageSize)
		})
		if err != nil {
			return fmt.Errorf("failed to scan changed %s rows: %w", p.kind, err)
		}
		if len(refs) == 0 {
			return nil
		}

		metrics.RecordRowsProduced(p.kind.String(), len(refs))

		if err := emit(refs); err != nil {
			return err
		}

		cur = models.CursorFrom(refs[len(refs)-1])
		if err := p.marks.SetCursor(p.kind, cur); err != nil {
			return err
		}
		metrics.SetWatermark(p.kind.String(), cur.Modified)

		logging.Debug().
			Str("stream", p.kind.String()).
			Int("rows", len(refs)).
			Str("cursor", cur.String()).
			Msg("Producer page complete")
	}
}
