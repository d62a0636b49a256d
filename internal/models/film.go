// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

// Package models defines the data structures that flow through the indexing
// pipeline: source entity references, scan cursors, fan-out rows from the
// relational catalog, and the denormalized documents written to the search
// index.
package models

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntityKind names one of the three source streams. It selects the table a
// Producer scans and the enrichment strategy that maps changed entities to
// affected films.
type EntityKind string

const (
	KindGenre    EntityKind = "genre"
	KindPerson   EntityKind = "person"
	KindFilmwork EntityKind = "filmwork"
)

// Kinds lists all entity kinds in pipeline execution order.
var Kinds = []EntityKind{KindGenre, KindPerson, KindFilmwork}

// Valid reports whether k is a known entity kind.
func (k EntityKind) Valid() bool {
	switch k {
	case KindGenre, KindPerson, KindFilmwork:
		return true
	}
	return false
}

func (k EntityKind) String() string { return string(k) }

// WatermarkKey returns the state-file key holding the stream's last-seen
// modification timestamp, e.g. "genre_updated_at".
func (k EntityKind) WatermarkKey() string { return string(k) + "_updated_at" }

// CursorIDKey returns the state-file key holding the stream's tiebreaker id,
// e.g. "genre_last_id".
func (k EntityKind) CursorIDKey() string { return string(k) + "_last_id" }

// EntityRef is the minimal key a scan returns: the row id plus the
// modification timestamp that advances the stream's cursor.
type EntityRef struct {
	ID       uuid.UUID
	Modified time.Time
}

// Cursor is a scan position over a source table ordered by
// (modified, id). The id component breaks ties between rows sharing a
// modification timestamp, so a page boundary falling inside such a group
// never skips the remaining rows. The zero Cursor (epoch timestamp, zero
// uuid) precedes every real row.
type Cursor struct {
	Modified time.Time
	ID       uuid.UUID
}

// CursorFrom returns the cursor positioned at ref.
func CursorFrom(ref EntityRef) Cursor {
	return Cursor{Modified: ref.Modified, ID: ref.ID}
}

// Before reports whether c orders strictly before o under the
// (modified, id) comparison used by the scans. Byte order on the uuid
// matches the ordering Postgres applies to the uuid column.
func (c Cursor) Before(o Cursor) bool {
	if !c.Modified.Equal(o.Modified) {
		return c.Modified.Before(o.Modified)
	}
	return bytes.Compare(c.ID[:], o.ID[:]) < 0
}

func (c Cursor) String() string {
	return fmt.Sprintf("%s/%s", c.Modified.UTC().Format(time.RFC3339Nano), c.ID)
}

// Role is a person's credit on a film as recorded in the
// content.filmworks_persons link table.
type Role string

const (
	RoleDirector Role = "DIRECTOR"
	RoleActor    Role = "ACTOR"
	RoleWriter   Role = "WRITER"
)

// ParseRole validates a raw role value from the catalog. The empty string is
// not a role; callers represent "no person link" with a nil *Role instead.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleDirector, RoleActor, RoleWriter:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}
