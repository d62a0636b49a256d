// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables
// and an optional config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting
//
// Configuration Categories:
//
//  1. Data Plane:
//     - Postgres: Source catalog connection (content schema)
//     - Elastic: Target search index connection and bulk settings
//
//  2. Pipeline:
//     - ETL: Watermark state file, page size, scheduling
//     - Backoff: Retry budgets for database and HTTP operations
//
//  3. Observability:
//     - Server: Operational HTTP endpoint (health, readiness, metrics)
//     - Logging: Log levels and output formats
//
// Validation:
// Load() validates all required fields and returns an error naming the offending
// environment variable when:
//   - Required settings are missing (PG_USER, PG_PASSWORD, PG_DBNAME)
//   - Values are malformed (invalid URL format, out-of-range numbers)
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Postgres PostgresConfig `koanf:"postgres"`
	Elastic  ElasticConfig  `koanf:"elastic"`
	ETL      ETLConfig      `koanf:"etl"`
	Backoff  BackoffConfig  `koanf:"backoff"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// PostgresConfig holds source database connection settings.
//
// Environment Variables:
//   - PG_HOST: Database host (default: localhost)
//   - PG_PORT: Database port (default: 5432)
//   - PG_USER: Database user (required)
//   - PG_PASSWORD: Database password (required)
//   - PG_DBNAME: Database name (required)
//   - PG_SSLMODE: TLS mode: disable, allow, prefer, require, verify-ca, verify-full (default: disable)
//   - PG_MAX_CONNS: Connection pool ceiling (default: 4)
//   - PG_CONNECT_TIMEOUT: Dial timeout (default: 10s)
type PostgresConfig struct {
	Host           string        `koanf:"host" validate:"required"`
	Port           int           `koanf:"port" validate:"gte=1,lte=65535"`
	User           string        `koanf:"user"`
	Password       string        `koanf:"password"`
	DBName         string        `koanf:"dbname"`
	SSLMode        string        `koanf:"sslmode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns       int           `koanf:"max_conns" validate:"gte=1,lte=128"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"gt=0"`
}

// DSN returns a keyword/value connection string for pgxpool.ParseConfig.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d pool_max_conns=%d",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
		int(p.ConnectTimeout.Seconds()), p.MaxConns,
	)
}

// Addr returns the host:port pair for log output.
func (p PostgresConfig) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// ElasticConfig holds target search cluster settings.
//
// Environment Variables:
//   - ES_URL: Elasticsearch base URL (default: http://localhost:9200)
//   - ES_INDEX: Target index name (default: movies)
//   - ES_TIMEOUT: Per-request HTTP timeout (default: 30s)
//   - ES_RATE_LIMIT: Max bulk requests per second, 0 = unlimited (default: 0)
//   - ES_RATE_BURST: Rate limiter burst size (default: 1)
type ElasticConfig struct {
	URL       string        `koanf:"url" validate:"required"`
	Index     string        `koanf:"index" validate:"required,lowercase"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	RateLimit float64       `koanf:"rate_limit" validate:"gte=0"`
	RateBurst int           `koanf:"rate_burst" validate:"gte=1"`
}

// ETLConfig holds pipeline scheduling and bookkeeping settings.
//
// Environment Variables:
//   - STATE_PATH: Watermark state file path (default: ./state/etl_state.json)
//   - PAGE_SIZE: Rows fetched per database page (default: 100)
//   - DEFAULT_UPDATED_AT: Initial watermark for fresh state, RFC3339 (default: 1970-01-01T00:00:00Z)
//   - ETL_INTERVAL: Delay between sync cycles; 0 runs a single cycle and exits (default: 0)
//   - PIDFILE_PATH: Single-instance lock file path (default: ./state/cinedex.pid)
type ETLConfig struct {
	StatePath        string        `koanf:"state_path" validate:"required"`
	PageSize         int           `koanf:"page_size" validate:"gte=1,lte=10000"`
	DefaultUpdatedAt string        `koanf:"default_updated_at" validate:"required"`
	Interval         time.Duration `koanf:"interval" validate:"gte=0"`
	PidfilePath      string        `koanf:"pidfile_path" validate:"required"`
}

// DefaultUpdatedAtTime parses the initial watermark timestamp.
// Validate() guarantees the value parses, so callers that load through
// Load() can ignore the error.
func (e ETLConfig) DefaultUpdatedAtTime() (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, e.DefaultUpdatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse DEFAULT_UPDATED_AT: %w", err)
	}
	return ts.UTC(), nil
}

// SingleShot reports whether the pipeline should run one cycle and exit
// rather than loop on a timer.
func (e ETLConfig) SingleShot() bool {
	return e.Interval <= 0
}

// BackoffConfig holds retry budgets for transient failures.
//
// Environment Variables:
//   - BACKOFF_MAX_TRIES: Attempts per operation before giving up (default: 5)
//   - BACKOFF_DB_MAX_TIME: Total elapsed retry budget for database calls (default: 10s)
//   - BACKOFF_HTTP_MAX_TIME: Total elapsed retry budget for Elasticsearch calls (default: 300s)
type BackoffConfig struct {
	MaxTries    int           `koanf:"max_tries" validate:"gte=1,lte=100"`
	DBMaxTime   time.Duration `koanf:"db_max_time" validate:"gt=0"`
	HTTPMaxTime time.Duration `koanf:"http_max_time" validate:"gt=0"`
}

// ServerConfig holds the operational HTTP endpoint settings.
//
// Environment Variables:
//   - HTTP_HOST: Listen address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 8687)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
type ServerConfig struct {
	Host    string        `koanf:"host" validate:"required"`
	Port    int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// Addr returns the listen address for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from environment variables and optional config file.
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
