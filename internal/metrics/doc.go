// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring pipeline progress, errors, and system
health.

# Overview

The package provides metrics for:
  - Pipeline cycle progress per entity stream (genre, person, filmwork)
  - Source database query performance
  - Search index bulk loading
  - Retry and circuit breaker behavior

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8687/metrics

# Available Metrics

Pipeline Metrics:
  - etl_stream_sync_duration_seconds: Duration of one stream sync (histogram)
    Labels: stream (genre, person, filmwork)
  - etl_stream_syncs_total: Stream syncs by outcome (counter)
    Labels: stream, result (success, failure)
  - etl_rows_produced_total: Changed rows emitted by producers (counter)
    Labels: stream
  - etl_films_enriched_total: Affected films resolved by enrichers (counter)
    Labels: stream
  - etl_documents_loaded_total: Documents successfully indexed (counter)
  - etl_stream_last_success_timestamp: Unix timestamp of last success (gauge)
    Labels: stream
  - etl_watermark_timestamp: Current watermark position (gauge)
    Labels: stream

Database Metrics:
  - postgres_query_duration_seconds: Query execution time (histogram)
    Labels: operation (changed_entities, affected_films, film_details, ping)
  - postgres_query_errors_total: Failed queries (counter)
    Labels: operation

Search Index Metrics:
  - elasticsearch_bulk_duration_seconds: Bulk request duration (histogram)
  - elasticsearch_bulk_documents: Documents per bulk request (histogram)
  - elasticsearch_bulk_item_errors_total: Per-document failures (counter)
  - elasticsearch_request_errors_total: Failed requests (counter)
    Labels: operation (bulk, ensure_index, ping)

Retry and Circuit Breaker Metrics:
  - retry_attempts_total: Retried attempts after transient failures (counter)
    Labels: operation
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests through the breaker (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_state_transitions_total: State transitions (counter)
    Labels: name, from_state, to_state

# Usage Example

	start := time.Now()
	rows, err := db.ChangedEntities(ctx, kind, cursor, limit)
	metrics.RecordDBQuery("changed_entities", time.Since(start), err)

# Alerting

The watermark gauge supports lag alerting: when etl_watermark_timestamp falls
far behind wall-clock time while syncs report success, the source has changes
the pipeline is not observing.
*/
package metrics
