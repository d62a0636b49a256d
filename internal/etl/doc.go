// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

// Package etl implements the incremental pipeline that replicates the film
// catalog from Postgres into the Elasticsearch movies index.
//
// # Architecture
//
// Three entity streams run sequentially per cycle, one per source table that
// can invalidate film documents:
//
//	genre ──► person ──► filmwork
//
// Each stream is a chain of synchronous stages:
//
//	┌──────────┐    ┌──────────┐    ┌────────┐    ┌─────────────┐    ┌────────┐
//	│ Producer │───►│ Enricher │───►│ Merger │───►│ Transformer │───►│ Loader │
//	└──────────┘    └──────────┘    └────────┘    └─────────────┘    └────────┘
//	 changed          affected       fan-out        fold rows          bulk
//	 entity ids       film ids       join rows      to documents       NDJSON
//
// The Producer pages through the stream's table for rows past the persisted
// watermark. The Enricher maps changed genres/persons to the films linked to
// them; for the filmwork stream the Producer hands over an empty batch and
// the Enricher walks the filmwork table itself. The Merger fetches the full
// denormalized join for a page of films, the Transformer folds those rows
// into one document per film, and the Loader bulk-writes the documents.
//
// # Watermark discipline
//
// Every stream keeps a (modified, id) cursor in the state file. Scans use a
// strict row-wise comparison, so a page boundary falling inside a group of
// rows sharing one timestamp never skips the rest of the group. A cursor is
// persisted only after the Loader has accepted all documents derived from
// the rows it covers; a crash in between replays that page on the next run.
// The pipeline is therefore at-least-once, and idempotent because document
// ids equal filmwork uuids and documents are always rewritten whole.
//
// # Concurrency model
//
// Single-threaded by design. Stages hand off synchronously and streams run
// one after another, keeping watermark advancement, SQL cursor position and
// bulk-load outcome in one totally ordered sequence of side effects. The
// only concurrency is inside the drivers (connection pool, HTTP transport).
//
// # Failure handling
//
// Database and index calls run inside bounded retry envelopes (exponential
// backoff with jitter). Per-item index errors are logged and skipped; they
// do not fail the cycle. When an envelope is exhausted the stream aborts
// with the watermark still at the last durable position, and the cycle
// reports the failure upward.
//
// # Limitations
//
// Source row deletions are not propagated. A film deleted from the catalog
// keeps its document in the index until it is removed out of band.
package etl
