// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setRequiredEnv sets the minimum environment for a valid load.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("PG_USER", "app")
	os.Setenv("PG_PASSWORD", "secret")
	os.Setenv("PG_DBNAME", "movies_database")
}

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	// Postgres defaults (credentials empty - required fields)
	if cfg.Postgres.Host != "localhost" {
		t.Errorf("Postgres.Host = %q, want localhost", cfg.Postgres.Host)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432", cfg.Postgres.Port)
	}
	if cfg.Postgres.User != "" {
		t.Errorf("Postgres.User should be empty by default, got %q", cfg.Postgres.User)
	}
	if cfg.Postgres.SSLMode != "disable" {
		t.Errorf("Postgres.SSLMode = %q, want disable", cfg.Postgres.SSLMode)
	}
	if cfg.Postgres.MaxConns != 4 {
		t.Errorf("Postgres.MaxConns = %d, want 4", cfg.Postgres.MaxConns)
	}
	if cfg.Postgres.ConnectTimeout != 10*time.Second {
		t.Errorf("Postgres.ConnectTimeout = %v, want 10s", cfg.Postgres.ConnectTimeout)
	}

	// Elasticsearch defaults
	if cfg.Elastic.URL != "http://localhost:9200" {
		t.Errorf("Elastic.URL = %q, want http://localhost:9200", cfg.Elastic.URL)
	}
	if cfg.Elastic.Index != "movies" {
		t.Errorf("Elastic.Index = %q, want movies", cfg.Elastic.Index)
	}
	if cfg.Elastic.Timeout != 30*time.Second {
		t.Errorf("Elastic.Timeout = %v, want 30s", cfg.Elastic.Timeout)
	}
	if cfg.Elastic.RateLimit != 0 {
		t.Errorf("Elastic.RateLimit = %v, want 0 (unlimited)", cfg.Elastic.RateLimit)
	}

	// Pipeline defaults
	if cfg.ETL.StatePath != "./state/etl_state.json" {
		t.Errorf("ETL.StatePath = %q, want ./state/etl_state.json", cfg.ETL.StatePath)
	}
	if cfg.ETL.PageSize != 100 {
		t.Errorf("ETL.PageSize = %d, want 100", cfg.ETL.PageSize)
	}
	if cfg.ETL.DefaultUpdatedAt != "1970-01-01T00:00:00Z" {
		t.Errorf("ETL.DefaultUpdatedAt = %q, want epoch", cfg.ETL.DefaultUpdatedAt)
	}
	if cfg.ETL.Interval != 0 {
		t.Errorf("ETL.Interval = %v, want 0 (single-shot)", cfg.ETL.Interval)
	}

	// Backoff defaults
	if cfg.Backoff.MaxTries != 5 {
		t.Errorf("Backoff.MaxTries = %d, want 5", cfg.Backoff.MaxTries)
	}
	if cfg.Backoff.DBMaxTime != 10*time.Second {
		t.Errorf("Backoff.DBMaxTime = %v, want 10s", cfg.Backoff.DBMaxTime)
	}
	if cfg.Backoff.HTTPMaxTime != 300*time.Second {
		t.Errorf("Backoff.HTTPMaxTime = %v, want 300s", cfg.Backoff.HTTPMaxTime)
	}

	// Server defaults
	if cfg.Server.Port != 8687 {
		t.Errorf("Server.Port = %d, want 8687", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Postgres
		{"PG_HOST", "postgres.host"},
		{"PG_PORT", "postgres.port"},
		{"PG_USER", "postgres.user"},
		{"PG_PASSWORD", "postgres.password"},
		{"PG_DBNAME", "postgres.dbname"},
		{"PG_SSLMODE", "postgres.sslmode"},
		{"PG_MAX_CONNS", "postgres.max_conns"},
		{"PG_CONNECT_TIMEOUT", "postgres.connect_timeout"},

		// Elasticsearch
		{"ES_URL", "elastic.url"},
		{"ES_INDEX", "elastic.index"},
		{"ES_TIMEOUT", "elastic.timeout"},
		{"ES_RATE_LIMIT", "elastic.rate_limit"},
		{"ES_RATE_BURST", "elastic.rate_burst"},

		// Pipeline
		{"STATE_PATH", "etl.state_path"},
		{"PAGE_SIZE", "etl.page_size"},
		{"DEFAULT_UPDATED_AT", "etl.default_updated_at"},
		{"ETL_INTERVAL", "etl.interval"},
		{"PIDFILE_PATH", "etl.pidfile_path"},

		// Backoff
		{"BACKOFF_MAX_TRIES", "backoff.max_tries"},
		{"BACKOFF_DB_MAX_TIME", "backoff.db_max_time"},
		{"BACKOFF_HTTP_MAX_TIME", "backoff.http_max_time"},

		// Server
		{"HTTP_PORT", "server.port"},
		{"HTTP_HOST", "server.host"},
		{"HTTP_TIMEOUT", "server.timeout"},

		// Logging
		{"LOG_LEVEL", "logging.level"},
		{"LOG_FORMAT", "logging.format"},
		{"LOG_CALLER", "logging.caller"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	}()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Run("no config file exists", func(t *testing.T) {
		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("etl:\n  page_size: 10\n"), 0o644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom_config.yaml")
		if err := os.WriteFile(customPath, []byte("etl:\n  page_size: 10\n"), 0o644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		defer os.Remove(customPath)

		os.Setenv(ConfigPathEnvVar, customPath)
		defer os.Unsetenv(ConfigPathEnvVar)

		result := findConfigFile()
		if result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		os.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		defer os.Unsetenv(ConfigPathEnvVar)

		result := findConfigFile()
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	os.Clearenv()
	setRequiredEnv(t)

	// Custom values to override defaults
	os.Setenv("PG_HOST", "db.internal")
	os.Setenv("PG_MAX_CONNS", "8")
	os.Setenv("ES_URL", "http://search.internal:9200")
	os.Setenv("ES_INDEX", "films_v2")
	os.Setenv("ES_RATE_LIMIT", "2.5")
	os.Setenv("PAGE_SIZE", "500")
	os.Setenv("ETL_INTERVAL", "30s")
	os.Setenv("HTTP_PORT", "9000")
	os.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Verify required values
	if cfg.Postgres.User != "app" {
		t.Errorf("Postgres.User = %q, want app", cfg.Postgres.User)
	}
	if cfg.Postgres.DBName != "movies_database" {
		t.Errorf("Postgres.DBName = %q, want movies_database", cfg.Postgres.DBName)
	}

	// Verify custom overrides
	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("Postgres.Host = %q, want db.internal", cfg.Postgres.Host)
	}
	if cfg.Postgres.MaxConns != 8 {
		t.Errorf("Postgres.MaxConns = %d, want 8", cfg.Postgres.MaxConns)
	}
	if cfg.Elastic.URL != "http://search.internal:9200" {
		t.Errorf("Elastic.URL = %q, want http://search.internal:9200", cfg.Elastic.URL)
	}
	if cfg.Elastic.Index != "films_v2" {
		t.Errorf("Elastic.Index = %q, want films_v2", cfg.Elastic.Index)
	}
	if cfg.Elastic.RateLimit != 2.5 {
		t.Errorf("Elastic.RateLimit = %v, want 2.5", cfg.Elastic.RateLimit)
	}
	if cfg.ETL.PageSize != 500 {
		t.Errorf("ETL.PageSize = %d, want 500", cfg.ETL.PageSize)
	}
	if cfg.ETL.Interval != 30*time.Second {
		t.Errorf("ETL.Interval = %v, want 30s", cfg.ETL.Interval)
	}
	if cfg.ETL.SingleShot() {
		t.Error("SingleShot() = true with 30s interval")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}

	// Verify defaults are still applied for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Backoff.MaxTries != 5 {
		t.Errorf("Backoff.MaxTries = %d, want 5 (default)", cfg.Backoff.MaxTries)
	}
}

// TestLoadWithKoanfConfigFile tests loading configuration from a YAML file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `
postgres:
  host: "db.config-file.local"
  user: "file_user"
  password: "file_password"
  dbname: "movies_database"

elastic:
  url: "http://search.config-file.local:9200"
  index: "films"

etl:
  page_size: 250
  interval: 1m

logging:
  level: "warn"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	os.Clearenv()
	os.Setenv(ConfigPathEnvVar, configPath)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Postgres.Host != "db.config-file.local" {
		t.Errorf("Postgres.Host = %q, want db.config-file.local", cfg.Postgres.Host)
	}
	if cfg.Postgres.User != "file_user" {
		t.Errorf("Postgres.User = %q, want file_user", cfg.Postgres.User)
	}
	if cfg.Elastic.Index != "films" {
		t.Errorf("Elastic.Index = %q, want films", cfg.Elastic.Index)
	}
	if cfg.ETL.PageSize != 250 {
		t.Errorf("ETL.PageSize = %d, want 250", cfg.ETL.PageSize)
	}
	if cfg.ETL.Interval != time.Minute {
		t.Errorf("ETL.Interval = %v, want 1m", cfg.ETL.Interval)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}

	// Defaults fill in what the file doesn't set
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432 (default)", cfg.Postgres.Port)
	}
}

// TestLoadEnvOverridesConfigFile verifies env vars take precedence over the file
func TestLoadEnvOverridesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `
postgres:
  user: "file_user"
  password: "file_password"
  dbname: "movies_database"

etl:
  page_size: 250
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	os.Clearenv()
	os.Setenv(ConfigPathEnvVar, configPath)
	os.Setenv("PG_USER", "env_user")
	os.Setenv("PAGE_SIZE", "50")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Postgres.User != "env_user" {
		t.Errorf("Postgres.User = %q, want env_user (env wins)", cfg.Postgres.User)
	}
	if cfg.Postgres.Password != "file_password" {
		t.Errorf("Postgres.Password = %q, want file_password (from file)", cfg.Postgres.Password)
	}
	if cfg.ETL.PageSize != 50 {
		t.Errorf("ETL.PageSize = %d, want 50 (env wins)", cfg.ETL.PageSize)
	}
}

// TestValidate exercises per-section validation failures
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing user",
			mutate:  func(c *Config) { c.Postgres.User = "" },
			wantErr: "PG_USER",
		},
		{
			name:    "missing password",
			mutate:  func(c *Config) { c.Postgres.Password = "" },
			wantErr: "PG_PASSWORD",
		},
		{
			name:    "missing dbname",
			mutate:  func(c *Config) { c.Postgres.DBName = "" },
			wantErr: "PG_DBNAME",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Postgres.Port = 70000 },
			wantErr: "PG_PORT",
		},
		{
			name:    "es url with path",
			mutate:  func(c *Config) { c.Elastic.URL = "http://localhost:9200/movies" },
			wantErr: "ES_URL",
		},
		{
			name:    "es url bad scheme",
			mutate:  func(c *Config) { c.Elastic.URL = "ftp://localhost:9200" },
			wantErr: "ES_URL",
		},
		{
			name:    "uppercase index",
			mutate:  func(c *Config) { c.Elastic.Index = "Movies" },
			wantErr: "ES_INDEX",
		},
		{
			name:    "index leading underscore",
			mutate:  func(c *Config) { c.Elastic.Index = "_movies" },
			wantErr: "ES_INDEX",
		},
		{
			name:    "zero page size",
			mutate:  func(c *Config) { c.ETL.PageSize = 0 },
			wantErr: "PAGE_SIZE",
		},
		{
			name:    "bad initial watermark",
			mutate:  func(c *Config) { c.ETL.DefaultUpdatedAt = "yesterday" },
			wantErr: "DEFAULT_UPDATED_AT",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "LOG_FORMAT",
		},
		{
			name:    "bad sslmode",
			mutate:  func(c *Config) { c.Postgres.SSLMode = "mandatory" },
			wantErr: "invalid configuration",
		},
		{
			name:    "zero rate burst",
			mutate:  func(c *Config) { c.Elastic.RateBurst = 0 },
			wantErr: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Postgres.User = "app"
			cfg.Postgres.Password = "secret"
			cfg.Postgres.DBName = "movies_database"
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := defaultConfig()
	cfg.Postgres.User = "app"
	cfg.Postgres.Password = "secret"
	cfg.Postgres.DBName = "movies_database"

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v for defaults with credentials", err)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:           "db.internal",
		Port:           5433,
		User:           "app",
		Password:       "secret",
		DBName:         "movies_database",
		SSLMode:        "require",
		MaxConns:       8,
		ConnectTimeout: 10 * time.Second,
	}

	dsn := cfg.DSN()
	for _, part := range []string{
		"host=db.internal",
		"port=5433",
		"user=app",
		"password=secret",
		"dbname=movies_database",
		"sslmode=require",
		"connect_timeout=10",
		"pool_max_conns=8",
	} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN() = %q, missing %q", dsn, part)
		}
	}
}

func TestDefaultUpdatedAtTime(t *testing.T) {
	etl := ETLConfig{DefaultUpdatedAt: "2020-06-01T12:00:00Z"}
	ts, err := etl.DefaultUpdatedAtTime()
	if err != nil {
		t.Fatalf("DefaultUpdatedAtTime() error = %v", err)
	}
	want := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("DefaultUpdatedAtTime() = %v, want %v", ts, want)
	}

	etl.DefaultUpdatedAt = "not-a-time"
	if _, err := etl.DefaultUpdatedAtTime(); err == nil {
		t.Error("DefaultUpdatedAtTime() succeeded for invalid input")
	}
}

func TestServerAddr(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8687}
	if got := cfg.Addr(); got != "127.0.0.1:8687" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8687", got)
	}
}
