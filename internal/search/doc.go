// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

// Package search provides the Elasticsearch client used by the loader stage.
//
// The client speaks three operations:
//   - BulkIndex: POST /_bulk with an NDJSON payload, one action line and one
//     document line per film, upserting whole documents by id
//   - EnsureIndex: PUT /<index> with the embedded movies mapping, tolerating
//     an already-existing index
//   - Ping: GET / to verify the cluster answers at all
//
// Resilience:
//   - A circuit breaker opens the client after a sustained failure rate,
//     shedding load while the cluster is down
//   - An optional token-bucket rate limiter caps bulk requests per second
//   - Errors carry their HTTP status so callers can distinguish transient
//     failures (retried upstream) from permanent rejections via IsRetryable
//
// Per-item index errors inside an otherwise successful bulk response are
// logged and counted but never retried; the request itself succeeded and the
// next cycle rewrites every document whole anyway.
package search
