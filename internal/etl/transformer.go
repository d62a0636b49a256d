// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package etl

import (
	"github.com/google/uuid"

	"github.com/tomtom215/cinedex/internal/models"
)

// Fold collapses fan-out rows into one document per film. Documents come
// out in first-seen film order; scalar fields are taken from the first row
// of each film and never overwritten.
//
// Collection rules:
//   - genre: set union preserving first-seen order
//   - actors/writers: dedupe by the full (id, name) pair; the parallel
//     _names lists dedupe by name alone
//   - director: single value, last writer wins; the catalog records at
//     most one director per film so the order never matters in practice
//
// Rows with no person link (or a person link whose role the catalog left
// outside the known set) contribute their genre and nothing else.
func Fold(rows []models.FilmRow) []*models.FilmDocument {
	docs := make(map[uuid.UUID]*models.FilmDocument, len(rows))
	order := make([]uuid.UUID, 0, len(rows))

	for _, row := range rows {
		doc, ok := docs[row.FilmID]
		if !ok {
			doc = models.NewFilmDocument(row)
			docs[row.FilmID] = doc
			order = append(order, row.FilmID)
		}

		foldGenre(doc, row)
		foldCredit(doc, row)
	}

	out := make([]*models.FilmDocument, 0, len(order))
	for _, id := range order {
		out = append(out, docs[id])
	}
	return out
}

func foldGenre(doc *models.FilmDocument, row models.FilmRow) {
	if row.Genre == nil {
		return
	}
	if containsString(doc.Genres, *row.Genre) {
		return
	}
	doc.Genres = append(doc.Genres, *row.Genre)
}

func foldCredit(doc *models.FilmDocument, row models.FilmRow) {
	// A credit needs all three link columns; the left join yields them
	// together or not at all.
	if row.Role == nil || row.PersonID == nil || row.FullName == nil {
		return
	}

	name := *row.FullName
	ref := models.PersonRef{ID: row.PersonID.String(), Name: name}

	switch *row.Role {
	case models.RoleDirector:
		doc.Director = &name
	case models.RoleActor:
		if !containsRef(doc.Actors, ref) {
			doc.Actors = append(doc.Actors, ref)
		}
		if !containsString(doc.ActorsNames, name) {
			doc.ActorsNames = append(doc.ActorsNames, name)
		}
	case models.RoleWriter:
		if !containsRef(doc.Writers, ref) {
			doc.Writers = append(doc.Writers, ref)
		}
		if !containsString(doc.WritersNames, name) {
			doc.WritersNames = append(doc.WritersNames, name)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsRef(list []models.PersonRef, ref models.PersonRef) bool {
	for _, v := range list {
		if v == ref {
			return true
		}
	}
	return false
}
