// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tomtom215/cinedex/internal/logging"
	"github.com/tomtom215/cinedex/internal/metrics"
	"github.com/tomtom215/cinedex/internal/models"
)

// entityTables maps an entity kind to its catalog table. Kinds form a closed
// enum, so interpolating the mapped name into SQL is safe.
var entityTables = map[models.EntityKind]string{
	models.KindGenre:    "content.genre",
	models.KindPerson:   "content.person",
	models.KindFilmwork: "content.filmwork",
}

// linkJoins maps an upstream kind to the join and filter fragments that
// connect changed entities of that kind to the films they appear in.
var linkJoins = map[models.EntityKind]struct {
	table  string
	column string
}{
	models.KindGenre:  {table: "content.filmworks_genres", column: "genre_id"},
	models.KindPerson: {table: "content.filmworks_persons", column: "person_id"},
}

// ChangedEntities returns the next page of rows in kind's table strictly
// after the cursor, ordered by (modified, id). The row-wise comparison makes
// the scan resumable at any point, including in the middle of a group of
// rows sharing one modified timestamp.
func (db *DB) ChangedEntities(ctx context.Context, kind models.EntityKind, cur models.Cursor, limit int) ([]models.EntityRef, error) {
	table, ok := entityTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}

	query := fmt.Sprintf(`
		SELECT id, modified
		FROM %s
		WHERE (modified, id) > ($1, $2)
		ORDER BY modified, id
		LIMIT $3`, table)

	start := time.Now()
	rows, err := db.pool.Query(ctx, query, cur.Modified, cur.ID, limit)
	if err != nil {
		metrics.RecordDBQuery("changed_entities", time.Since(start), err)
		return nil, fmt.Errorf("failed to query changed %s rows: %w", kind, err)
	}
	defer rows.Close()

	refs, err := scanEntityRefs(rows, limit)
	metrics.RecordDBQuery("changed_entities", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to scan changed %s rows: %w", kind, err)
	}
	return refs, nil
}

// AffectedFilms returns the next page of films linked to any of the changed
// upstream ids, scanned strictly after cur by (modified, id). The upstream
// kind selects the link table; a film linked to several changed ids appears
// once.
func (db *DB) AffectedFilms(ctx context.Context, kind models.EntityKind, ids []uuid.UUID, cur models.Cursor, limit int) ([]models.EntityRef, error) {
	link, ok := linkJoins[kind]
	if !ok {
		return nil, fmt.Errorf("entity kind %q has no film link table", kind)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT fw.id, fw.modified
		FROM content.filmwork fw
		JOIN %s link ON link.filmwork_id = fw.id
		WHERE (fw.modified, fw.id) > ($1, $2)
		  AND link.%s = ANY($3)
		ORDER BY fw.modified, fw.id
		LIMIT $4`, link.table, link.column)

	start := time.Now()
	rows, err := db.pool.Query(ctx, query, cur.Modified, cur.ID, ids, limit)
	if err != nil {
		metrics.RecordDBQuery("affected_films", time.Since(start), err)
		return nil, fmt.Errorf("failed to query films affected by %s rows: %w", kind, err)
	}
	defer rows.Close()

	refs, err := scanEntityRefs(rows, limit)
	metrics.RecordDBQuery("affected_films", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to scan films affected by %s rows: %w", kind, err)
	}
	return refs, nil
}

// FilmDetails fetches the full fan-out for the given films: one row per
// (film, person-credit, genre-link) combination, left-joined so films with
// no credits or no genres still produce rows. Order is unspecified; the
// Transformer folds deterministically regardless.
func (db *DB) FilmDetails(ctx context.Context, ids []uuid.UUID) ([]models.FilmRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const query = `
		SELECT
			fw.id,
			fw.title,
			COALESCE(fw.description, '') AS description,
			COALESCE(fw.rating, 0) AS rating,
			fw.type,
			fw.created,
			fw.modified,
			pfw.role,
			p.id AS person_id,
			p.full_name,
			g.name AS genre
		FROM content.filmwork fw
		LEFT JOIN content.filmworks_persons pfw ON pfw.filmwork_id = fw.id
		LEFT JOIN content.person p ON p.id = pfw.person_id
		LEFT JOIN content.filmworks_genres gfw ON gfw.filmwork_id = fw.id
		LEFT JOIN content.genre g ON g.id = gfw.genre_id
		WHERE fw.id = ANY($1)`

	start := time.Now()
	rows, err := db.pool.Query(ctx, query, ids)
	if err != nil {
		metrics.RecordDBQuery("film_details", time.Since(start), err)
		return nil, fmt.Errorf("failed to query film details: %w", err)
	}
	defer rows.Close()

	out := make([]models.FilmRow, 0, len(ids))
	for rows.Next() {
		var (
			row     models.FilmRow
			rawRole *string
		)
		err := rows.Scan(
			&row.FilmID,
			&row.Title,
			&row.Description,
			&row.Rating,
			&row.Type,
			&row.Created,
			&row.Modified,
			&rawRole,
			&row.PersonID,
			&row.FullName,
			&row.Genre,
		)
		if err != nil {
			metrics.RecordDBQuery("film_details", time.Since(start), err)
			return nil, fmt.Errorf("failed to scan film detail row: %w", err)
		}
		row.Role = parseRowRole(rawRole, row.FilmID)
		out = append(out, row)
	}
	err = rows.Err()
	metrics.RecordDBQuery("film_details", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to read film detail rows: %w", err)
	}
	return out, nil
}

// parseRowRole converts a raw role value to the typed form. Credits with a
// role outside the known set fold like roleless rows; the warning keeps the
// data issue visible without aborting the cycle.
func parseRowRole(raw *string, filmID uuid.UUID) *models.Role {
	if raw == nil {
		return nil
	}
	role, err := models.ParseRole(*raw)
	if err != nil {
		logging.Warn().
			Str("film_id", filmID.String()).
			Str("role", *raw).
			Msg("Ignoring credit with unknown role")
		return nil
	}
	return &role
}

// scanEntityRefs collects (id, modified) pairs from a result set.
func scanEntityRefs(rows pgx.Rows, capHint int) ([]models.EntityRef, error) {
	refs := make([]models.EntityRef, 0, capHint)
	for rows.Next() {
		var ref models.EntityRef
		if err := rows.Scan(&ref.ID, &ref.Modified); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}
