// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package etl

import (
	"context"

	"github.com/google/uuid"

	"github.com/tomtom215/cinedex/internal/models"
	"github.com/tomtom215/cinedex/internal/search"
)

// Catalog is the slice of the database layer the pipeline reads. It is
// satisfied by database.DB; tests substitute an in-memory catalog.
type Catalog interface {
	// ChangedEntities returns the next page of kind's table strictly after
	// cur, ordered by (modified, id).
	ChangedEntities(ctx context.Context, kind models.EntityKind, cur models.Cursor, limit int) ([]models.EntityRef, error)

	// AffectedFilms returns the next page of films linked to the changed
	// upstream ids, scanned strictly after cur by (modified, id).
	AffectedFilms(ctx context.Context, kind models.EntityKind, ids []uuid.UUID, cur models.Cursor, limit int) ([]models.EntityRef, error)

	// FilmDetails returns the full fan-out join for the given films.
	FilmDetails(ctx context.Context, ids []uuid.UUID) ([]models.FilmRow, error)
}

// Indexer is the loader's sink, satisfied by search.Client.
type Indexer interface {
	BulkIndex(ctx context.Context, docs []*models.FilmDocument) (*search.BulkResult, error)
}

// Watermarks is the persisted cursor store, satisfied by state.State.
type Watermarks interface {
	Cursor(kind models.EntityKind) (models.Cursor, error)
	SetCursor(kind models.EntityKind, cur models.Cursor) error
}
