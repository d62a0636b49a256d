// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package etl

import (
	"context"
	"fmt"

	"github.com/tomtom215/cinedex/internal/models"
	"github.com/tomtom215/cinedex/internal/retry"
)

// Merger fetches the denormalized fan-out for one page of films in a single
// query. Row order is unspecified; the fold is order-insensitive for
// everything except which duplicate wins, and duplicates are exact by
// construction of the join.
type Merger struct {
	catalog  Catalog
	dbPolicy retry.Policy
}

// NewMerger creates the join stage.
func NewMerger(catalog Catalog, opts Options) *Merger {
	return &Merger{
		catalog:  catalog,
		dbPolicy: opts.DBPolicy,
	}
}

// Merge returns the raw fan-out rows for the given films.
func (m *Merger) Merge(ctx context.Context, films []models.EntityRef) ([]models.FilmRow, error) {
	if len(films) == 0 {
		return nil, nil
	}

	ids := refIDs(films)

	rows, err := retry.DoValue(ctx, "film_details", m.dbPolicy, func() ([]models.FilmRow, error) {
		return m.catalog.FilmDetails(ctx, ids)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch film details: %w", err)
	}
	return rows, nil
}
