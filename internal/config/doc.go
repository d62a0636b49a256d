// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

/*
Package config provides centralized configuration management for Cinedex.

This package handles loading, validation, and parsing of configuration for all
application components. It ensures consistent settings across the pipeline and
provides sensible defaults for optional values.

# Configuration Sources

Configuration is layered, later sources overriding earlier ones:
  - Built-in defaults
  - Optional YAML config file (config.yaml, or CONFIG_PATH)
  - Environment variables

# Configuration Structure

The package organizes configuration into logical groups:

  - PostgresConfig: Source catalog connection (host, credentials, pool size)
  - ElasticConfig: Target search cluster (URL, index, timeout, rate limit)
  - ETLConfig: Pipeline bookkeeping (state file, page size, interval, pidfile)
  - BackoffConfig: Retry budgets for database and HTTP operations
  - ServerConfig: Operational HTTP endpoint (health, readiness, metrics)
  - LoggingConfig: Log level and output format

# Environment Variables

Source Database (PostgresConfig):
  - PG_HOST: Database host (default: localhost)
  - PG_PORT: Database port (default: 5432)
  - PG_USER: Database user (required)
  - PG_PASSWORD: Database password (required)
  - PG_DBNAME: Database name (required)
  - PG_SSLMODE: TLS mode (default: disable)
  - PG_MAX_CONNS: Pool ceiling (default: 4)
  - PG_CONNECT_TIMEOUT: Dial timeout (default: 10s)

Search Cluster (ElasticConfig):
  - ES_URL: Base URL (default: http://localhost:9200)
  - ES_INDEX: Index name (default: movies)
  - ES_TIMEOUT: Request timeout (default: 30s)
  - ES_RATE_LIMIT: Bulk requests per second, 0 = unlimited (default: 0)
  - ES_RATE_BURST: Limiter burst (default: 1)

Pipeline (ETLConfig):
  - STATE_PATH: Watermark state file (default: ./state/etl_state.json)
  - PAGE_SIZE: Rows per database page (default: 100)
  - DEFAULT_UPDATED_AT: Initial watermark, RFC3339 (default: 1970-01-01T00:00:00Z)
  - ETL_INTERVAL: Delay between cycles, 0 = single cycle (default: 0)
  - PIDFILE_PATH: Instance lock file (default: ./state/cinedex.pid)

Retries (BackoffConfig):
  - BACKOFF_MAX_TRIES: Attempts per operation (default: 5)
  - BACKOFF_DB_MAX_TIME: Database retry budget (default: 10s)
  - BACKOFF_HTTP_MAX_TIME: Elasticsearch retry budget (default: 300s)

Operational Endpoint (ServerConfig):
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8687)
  - HTTP_TIMEOUT: Read/write timeout (default: 30s)

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file:line (default: false)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal("Failed to load config:", err)
	}
	pool, err := database.New(ctx, cfg.Postgres)

# Validation

Load() validates every section and returns errors that name the offending
environment variable, so a misconfigured deployment fails fast with an
actionable message rather than surfacing connection errors mid-cycle.
*/
package config
