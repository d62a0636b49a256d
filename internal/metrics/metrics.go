// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Pipeline cycle progress per entity stream (genre, person, filmwork)
// - Source database query performance (Postgres)
// - Search index bulk loading (Elasticsearch)
// - Retry and circuit breaker behavior

var (
	// Pipeline Metrics
	StreamSyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "etl_stream_sync_duration_seconds",
			Help:    "Duration of one stream sync within a cycle in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"stream"},
	)

	StreamSyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_stream_syncs_total",
			Help: "Total number of stream syncs by outcome",
		},
		[]string{"stream", "result"}, // result: "success", "failure"
	)

	RowsProduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_rows_produced_total",
			Help: "Total number of changed rows emitted by producers",
		},
		[]string{"stream"},
	)

	FilmsEnriched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_films_enriched_total",
			Help: "Total number of affected films resolved by enrichers",
		},
		[]string{"stream"},
	)

	DocumentsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_documents_loaded_total",
			Help: "Total number of documents successfully indexed",
		},
	)

	StreamLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "etl_stream_last_success_timestamp",
			Help: "Unix timestamp of last successful sync per stream",
		},
		[]string{"stream"},
	)

	WatermarkTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "etl_watermark_timestamp",
			Help: "Current watermark position per stream as a Unix timestamp",
		},
		[]string{"stream"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postgres_query_duration_seconds",
			Help:    "Duration of Postgres queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation"}, // "changed_entities", "affected_films", "film_details", "ping"
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postgres_query_errors_total",
			Help: "Total number of Postgres query errors",
		},
		[]string{"operation"},
	)

	// Search Index Metrics
	BulkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "elasticsearch_bulk_duration_seconds",
			Help:    "Duration of Elasticsearch bulk requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	BulkDocuments = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "elasticsearch_bulk_documents",
			Help:    "Number of documents per bulk request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	BulkItemErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "elasticsearch_bulk_item_errors_total",
			Help: "Total number of per-document failures reported in bulk responses",
		},
	)

	SearchRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elasticsearch_request_errors_total",
			Help: "Total number of failed Elasticsearch requests",
		},
		[]string{"operation"}, // "bulk", "ensure_index", "ping"
	)

	// Retry Metrics
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retried attempts after transient failures",
		},
		[]string{"operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordStreamSync records the outcome of one stream sync within a cycle
func RecordStreamSync(stream string, duration time.Duration, err error) {
	StreamSyncDuration.WithLabelValues(stream).Observe(duration.Seconds())
	if err != nil {
		StreamSyncsTotal.WithLabelValues(stream, "failure").Inc()
		return
	}
	StreamSyncsTotal.WithLabelValues(stream, "success").Inc()
	StreamLastSuccess.WithLabelValues(stream).Set(float64(time.Now().Unix()))
}

// RecordRowsProduced records changed rows emitted by a producer
func RecordRowsProduced(stream string, count int) {
	RowsProduced.WithLabelValues(stream).Add(float64(count))
}

// RecordFilmsEnriched records affected films resolved by an enricher
func RecordFilmsEnriched(stream string, count int) {
	FilmsEnriched.WithLabelValues(stream).Add(float64(count))
}

// RecordBulkLoad records an Elasticsearch bulk request
func RecordBulkLoad(duration time.Duration, documents, itemErrors int, err error) {
	BulkDuration.Observe(duration.Seconds())
	BulkDocuments.Observe(float64(documents))
	if itemErrors > 0 {
		BulkItemErrors.Add(float64(itemErrors))
	}
	if err != nil {
		SearchRequestErrors.WithLabelValues("bulk").Inc()
		return
	}
	DocumentsLoaded.Add(float64(documents - itemErrors))
}

// RecordSearchError records a failed non-bulk Elasticsearch request
func RecordSearchError(operation string) {
	SearchRequestErrors.WithLabelValues(operation).Inc()
}

// RecordRetryAttempt records a retried attempt after a transient failure
func RecordRetryAttempt(operation string) {
	RetryAttempts.WithLabelValues(operation).Inc()
}

// SetWatermark publishes the current watermark position for a stream
func SetWatermark(stream string, ts time.Time) {
	WatermarkTimestamp.WithLabelValues(stream).Set(float64(ts.Unix()))
}
