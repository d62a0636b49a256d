// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package models

import (
	"time"

	"github.com/google/uuid"
)

// FilmRow is one row of the fan-out join between content.filmwork and its
// person and genre links. A single film appears in up to
// (persons x roles) x (genres) rows; the Transformer folds them back into
// one document.
//
// Role, PersonID, FullName are nil when the film has no person link on that
// row; Genre is nil when it has no genre link. Description and Rating are
// coalesced to their zero values at the SQL boundary.
type FilmRow struct {
	FilmID      uuid.UUID
	Title       string
	Description string
	Rating      float64
	Type        string
	Created     time.Time
	Modified    time.Time

	Role     *Role
	PersonID *uuid.UUID
	FullName *string
	Genre    *string
}

// PersonRef is a person credit embedded in an index document.
type PersonRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FilmDocument is the denormalized representation of one film as stored in
// the search index. The document id equals the filmwork uuid, so repeated
// loads replace the document in place.
//
// Director is a single value: the catalog records at most one director per
// film and the index mapping types the field as a plain keyword. It is nil
// (JSON null) when the film has no director credit. All collection fields
// marshal as [] rather than null when empty; NewFilmDocument guarantees
// that.
type FilmDocument struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	IMDBRating   float64     `json:"imdb_rating"`
	Genres       []string    `json:"genre"`
	Actors       []PersonRef `json:"actors"`
	Writers      []PersonRef `json:"writers"`
	ActorsNames  []string    `json:"actors_names"`
	WritersNames []string    `json:"writers_names"`
	Director     *string     `json:"director"`
}

// NewFilmDocument builds a document from the scalar columns of a fan-out
// row, with all collections initialized empty and no director.
func NewFilmDocument(row FilmRow) *FilmDocument {
	return &FilmDocument{
		ID:           row.FilmID.String(),
		Title:        row.Title,
		Description:  row.Description,
		IMDBRating:   row.Rating,
		Genres:       []string{},
		Actors:       []PersonRef{},
		Writers:      []PersonRef{},
		ActorsNames:  []string{},
		WritersNames: []string{},
	}
}
