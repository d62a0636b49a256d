// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

/*
Package models defines data structures for the Cinedex pipeline.

This package contains the data models shared by the database, ETL and
search layers. It serves as the single source of truth for the shapes
that flow between them.

Key Components:

  - EntityKind: The three replicated entity classes (genre, person, filmwork)
  - EntityRef: An (id, modified) pair scanned from a changed-rows page
  - Cursor: A (modified, id) watermark position with total ordering
  - FilmRow: One row of the denormalization fan-out join
  - FilmDocument: The document shape indexed into Elasticsearch
  - PersonRef: An (id, name) credit reference inside a document

Model Categories:

1. Change Tracking:
  - EntityKind names a watermark and a source table
  - Cursor orders rows by (modified, id) so pagination never skips or
    repeats a row even when many rows share one timestamp

2. Denormalization:
  - FilmRow carries the film scalars plus one optional credit and one
    optional genre; a film with three credits and two genres arrives as
    six rows
  - FilmDocument is the folded result, keyed by film id

3. Timestamps:
  - ParseTimestamp and FormatTimestamp define the ISO-8601 forms accepted
    in state files and configuration

All types are plain data carriers. Parsing and validation beyond shape
(SQL scanning, JSON encoding) live with the layers that own the formats.
*/
package models
