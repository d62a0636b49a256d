// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package etl

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomtom215/cinedex/internal/logging"
	"github.com/tomtom215/cinedex/internal/metrics"
	"github.com/tomtom215/cinedex/internal/models"
	"github.com/tomtom215/cinedex/internal/retry"
)

// Enricher maps one batch of changed source entities to successive pages of
// affected films.
//
// For genre and person streams it walks filmwork joined to the link table,
// filtered by the changed ids and by the filmwork-stream watermark. That
// watermark is a shared read: only the filmwork stream's own walk advances
// it.
//
// For the filmwork stream the Enricher IS the walk: it pages the filmwork
// table past the watermark and advances the filmwork cursor after each
// page's downstream work, since no producer drives it.
type Enricher struct {
	kind     models.EntityKind
	catalog  Catalog
	marks    Watermarks
	pageSize int
	dbPolicy retry.Policy
}

// NewEnricher creates the film-resolution stage for one stream.
func NewEnricher(kind models.EntityKind, catalog Catalog, marks Watermarks, opts Options) *Enricher {
	return &Enricher{
		kind:     kind,
		catalog:  catalog,
		marks:    marks,
		pageSize: opts.PageSize,
		dbPolicy: opts.DBPolicy,
	}
}

// Enrich resolves batch to pages of affected films and hands each page to
// emit. It returns once a page comes back empty.
func (e *Enricher) Enrich(ctx context.Context, batch []models.EntityRef, emit func([]models.EntityRef) error) error {
	if e.kind == models.KindFilmwork {
		return e.walkFilmworks(ctx, emit)
	}
	if len(batch) == 0 {
		return nil
	}

	ids := refIDs(batch)

	cur, err := e.marks.Cursor(models.KindFilmwork)
	if err != nil {
		return err
	}

	for {
		films, err := retry.DoValue(ctx, "affected_films", e.dbPolicy, func() ([]models.EntityRef, error) {
			return e.catalog.AffectedFilms(ctx, e.kind, ids, cur, e.pageSize)
		})
		if err != nil {
			return fmt.Errorf("failed to resolve films affected by %s rows: %w", e.kind, err)
		}
		if len(films) == 0 {
			return nil
		}

		metrics.RecordFilmsEnriched(e.kind.String(), len(films))

		if err := emit(films); err != nil {
			return err
		}

		cur = models.CursorFrom(films[len(films)-1])
	}
}

// walkFilmworks pages the filmwork table itself. Unlike the genre/person
// paths the filmwork cursor is persisted per page, after emit returns.
func (e *Enricher) walkFilmworks(ctx context.Context, emit func([]models.EntityRef) error) error {
	cur, err := e.marks.Cursor(models.KindFilmwork)
	if err != nil {
		return err
	}

	for {
		films, err := retry.DoValue(ctx, "changed_entities", e.dbPolicy, func() ([]models.EntityRef, error) {
			return e.catalog.ChangedEntities(ctx, models.KindFilmwork, cur, e.pageSize)
		})
		if err != nil {
			return fmt.Errorf("failed to scan changed filmwork rows: %w", err)
		}
		if len(films) == 0 {
			return nil
		}

		metrics.RecordRowsProduced(models.KindFilmwork.String(), len(films))
		metrics.RecordFilmsEnriched(models.KindFilmwork.String(), len(films))

		if err := emit(films); err != nil {
			return err
		}

		cur = models.CursorFrom(films[len(films)-1])
		if err := e.marks.SetCursor(models.KindFilmwork, cur); err != nil {
			return err
		}
		metrics.SetWatermark(models.KindFilmwork.String(), cur.Modified)

		logging.Debug().
			Str("stream", e.kind.String()).
			Int("films", len(films)).
			Str("cursor", cur.String()).
			Msg("Filmwork walk page complete")
	}
}

// refIDs projects a page of refs onto its ids.
func refIDs(refs []models.EntityRef) []uuid.UUID {
	ids := make([]uuid.UUID, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	return ids
}
