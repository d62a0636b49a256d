// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package etl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cinedex/internal/models"
	"github.com/tomtom215/cinedex/internal/retry"
	"github.com/tomtom215/cinedex/internal/search"
)

// =============================================================================
// Shared in-memory fakes for the pipeline tests
// =============================================================================

var testEpoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// refAt returns an entity ref modified sec seconds past the test epoch.
// Distinct offsets give a total order without leaning on uuid tiebreaks.
func refAt(sec int) models.EntityRef {
	return models.EntityRef{ID: uuid.New(), Modified: testEpoch.Add(time.Duration(sec) * time.Second)}
}

// testOptions returns stage options with retry waits shrunk so failure
// tests finish in milliseconds.
func testOptions(pageSize int) Options {
	return Options{
		PageSize:   pageSize,
		DBPolicy:   retry.Policy{MaxTries: 3, InitialInterval: time.Millisecond},
		HTTPPolicy: retry.Policy{MaxTries: 3, InitialInterval: time.Millisecond},
	}
}

// fakeCatalog is an in-memory stand-in for database.DB. Entities live in
// per-kind slices, link tables in per-kind maps, and fan-out rows per film.
// The pipeline is single-threaded, so no locking.
type fakeCatalog struct {
	entities map[models.EntityKind][]models.EntityRef
	links    map[models.EntityKind]map[uuid.UUID][]uuid.UUID
	rows     map[uuid.UUID][]models.FilmRow

	// failChanged injects transient ChangedEntities failures for failKind.
	failKind    models.EntityKind
	failChanged int

	failDetails int

	changedKinds  []models.EntityKind
	affectedCalls int
	detailCalls   int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		entities: make(map[models.EntityKind][]models.EntityRef),
		links: map[models.EntityKind]map[uuid.UUID][]uuid.UUID{
			models.KindGenre:  {},
			models.KindPerson: {},
		},
		rows: make(map[uuid.UUID][]models.FilmRow),
	}
}

func (f *fakeCatalog) addEntity(kind models.EntityKind, ref models.EntityRef) {
	f.entities[kind] = append(f.entities[kind], ref)
}

// addFilm registers a filmwork ref with its fan-out rows. Films without
// explicit rows get a single scalar row, like a film with no links.
func (f *fakeCatalog) addFilm(ref models.EntityRef, rows ...models.FilmRow) {
	f.addEntity(models.KindFilmwork, ref)
	if len(rows) == 0 {
		row := filmScalars(ref.ID, "Film "+ref.ID.String()[:8])
		row.Modified = ref.Modified
		rows = []models.FilmRow{row}
	}
	f.rows[ref.ID] = rows
}

func (f *fakeCatalog) link(kind models.EntityKind, upstream, film uuid.UUID) {
	f.links[kind][upstream] = append(f.links[kind][upstream], film)
}

func (f *fakeCatalog) ChangedEntities(_ context.Context, kind models.EntityKind, cur models.Cursor, limit int) ([]models.EntityRef, error) {
	f.changedKinds = append(f.changedKinds, kind)
	if kind == f.failKind && f.failChanged > 0 {
		f.failChanged--
		return nil, errors.New("connection reset by peer")
	}
	return pageAfter(f.entities[kind], cur, limit), nil
}

func (f *fakeCatalog) AffectedFilms(_ context.Context, kind models.EntityKind, ids []uuid.UUID, cur models.Cursor, limit int) ([]models.EntityRef, error) {
	f.affectedCalls++

	affected := make(map[uuid.UUID]bool)
	for _, id := range ids {
		for _, film := range f.links[kind][id] {
			affected[film] = true
		}
	}

	var linked []models.EntityRef
	for _, ref := range f.entities[models.KindFilmwork] {
		if affected[ref.ID] {
			linked = append(linked, ref)
		}
	}
	return pageAfter(linked, cur, limit), nil
}

func (f *fakeCatalog) FilmDetails(_ context.Context, ids []uuid.UUID) ([]models.FilmRow, error) {
	f.detailCalls++
	if f.failDetails > 0 {
		f.failDetails--
		return nil, errors.New("connection reset by peer")
	}

	var out []models.FilmRow
	for _, id := range ids {
		out = append(out, f.rows[id]...)
	}
	return out, nil
}

// pageAfter applies the scan contract: strictly after cur, ordered by
// (modified, id), at most limit refs.
func pageAfter(refs []models.EntityRef, cur models.Cursor, limit int) []models.EntityRef {
	sorted := make([]models.EntityRef, len(refs))
	copy(sorted, refs)
	sort.Slice(sorted, func(i, j int) bool {
		return models.CursorFrom(sorted[i]).Before(models.CursorFrom(sorted[j]))
	})

	var out []models.EntityRef
	for _, ref := range sorted {
		if !cur.Before(models.CursorFrom(ref)) {
			continue
		}
		out = append(out, ref)
		if len(out) == limit {
			break
		}
	}
	return out
}

// fakeIndexer records bulk batches and can fail the first N calls.
type fakeIndexer struct {
	batches [][]*models.FilmDocument
	calls   int

	failures int
	failErr  error
	result   *search.BulkResult

	trace *[]string
}

func (x *fakeIndexer) BulkIndex(_ context.Context, docs []*models.FilmDocument) (*search.BulkResult, error) {
	x.calls++
	if x.failures > 0 {
		x.failures--
		if x.failErr != nil {
			return nil, x.failErr
		}
		return nil, errors.New("connection refused")
	}

	batch := make([]*models.FilmDocument, len(docs))
	copy(batch, docs)
	x.batches = append(x.batches, batch)

	if x.trace != nil {
		*x.trace = append(*x.trace, fmt.Sprintf("bulk:%d", len(docs)))
	}
	if x.result != nil {
		return x.result, nil
	}
	return &search.BulkResult{Documents: len(docs)}, nil
}

// docIDs flattens the recorded batches into document id strings.
func (x *fakeIndexer) docIDs() []string {
	var ids []string
	for _, batch := range x.batches {
		for _, doc := range batch {
			ids = append(ids, doc.ID)
		}
	}
	return ids
}

// fakeWatermarks is an in-memory cursor store with a write log.
type fakeWatermarks struct {
	cursors map[models.EntityKind]models.Cursor
	sets    map[models.EntityKind]int

	trace *[]string
}

func newFakeWatermarks() *fakeWatermarks {
	return &fakeWatermarks{
		cursors: make(map[models.EntityKind]models.Cursor),
		sets:    make(map[models.EntityKind]int),
	}
}

func (w *fakeWatermarks) Cursor(kind models.EntityKind) (models.Cursor, error) {
	return w.cursors[kind], nil
}

func (w *fakeWatermarks) SetCursor(kind models.EntityKind, cur models.Cursor) error {
	w.cursors[kind] = cur
	w.sets[kind]++
	if w.trace != nil {
		*w.trace = append(*w.trace, "cursor:"+kind.String())
	}
	return nil
}
