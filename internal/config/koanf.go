// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinedex/config.yaml",
	"/etc/cinedex/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Postgres: PostgresConfig{
			Host:           "localhost",
			Port:           5432,
			User:           "", // Required - no default
			Password:       "", // Required - no default
			DBName:         "", // Required - no default
			SSLMode:        "disable",
			MaxConns:       4,
			ConnectTimeout: 10 * time.Second,
		},
		Elastic: ElasticConfig{
			URL:       "http://localhost:9200",
			Index:     "movies",
			Timeout:   30 * time.Second,
			RateLimit: 0, // Unlimited
			RateBurst: 1,
		},
		ETL: ETLConfig{
			StatePath:        "./state/etl_state.json",
			PageSize:         100,
			DefaultUpdatedAt: "1970-01-01T00:00:00Z",
			Interval:         0, // Single cycle then exit
			PidfilePath:      "./state/cinedex.pid",
		},
		Backoff: BackoffConfig{
			MaxTries:    5,
			DBMaxTime:   10 * time.Second,
			HTTPMaxTime: 300 * time.Second,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8687,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// PG_HOST -> postgres.host
	// ES_URL -> elastic.url
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc transforms environment variable names to koanf config paths.
// It handles the mapping from the flat operational variable names to the
// nested configuration structure.
//
// Examples:
//   - PG_HOST -> postgres.host
//   - ES_RATE_LIMIT -> elastic.rate_limit
//   - STATE_PATH -> etl.state_path
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Postgres mappings
		"pg_host":            "postgres.host",
		"pg_port":            "postgres.port",
		"pg_user":            "postgres.user",
		"pg_password":        "postgres.password",
		"pg_dbname":          "postgres.dbname",
		"pg_sslmode":         "postgres.sslmode",
		"pg_max_conns":       "postgres.max_conns",
		"pg_connect_timeout": "postgres.connect_timeout",

		// Elasticsearch mappings
		"es_url":        "elastic.url",
		"es_index":      "elastic.index",
		"es_timeout":    "elastic.timeout",
		"es_rate_limit": "elastic.rate_limit",
		"es_rate_burst": "elastic.rate_burst",

		// Pipeline mappings
		"state_path":         "etl.state_path",
		"page_size":          "etl.page_size",
		"default_updated_at": "etl.default_updated_at",
		"etl_interval":       "etl.interval",
		"pidfile_path":       "etl.pidfile_path",

		// Backoff mappings
		"backoff_max_tries":     "backoff.max_tries",
		"backoff_db_max_time":   "backoff.db_max_time",
		"backoff_http_max_time": "backoff.http_max_time",

		// Server mappings
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
