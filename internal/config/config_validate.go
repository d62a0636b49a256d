// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/cinedex/internal/validation"
)

// Validate checks that required configuration is present and valid.
// Structural range checks run through the shared validator; the per-section
// methods cover rules tags cannot express and report errors by the
// environment variable name the operator would set.
func (c *Config) Validate() error {
	if err := c.validatePostgres(); err != nil {
		return err
	}

	if err := c.validateElastic(); err != nil {
		return err
	}

	if err := c.validateETL(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// validatePostgres validates source database configuration
func (c *Config) validatePostgres() error {
	if c.Postgres.User == "" {
		return fmt.Errorf("PG_USER is required")
	}
	if c.Postgres.Password == "" {
		return fmt.Errorf("PG_PASSWORD is required")
	}
	if c.Postgres.DBName == "" {
		return fmt.Errorf("PG_DBNAME is required")
	}
	if c.Postgres.Port < 1 || c.Postgres.Port > 65535 {
		return fmt.Errorf("PG_PORT must be between 1 and 65535")
	}
	return nil
}

// validateElastic validates search cluster configuration
func (c *Config) validateElastic() error {
	if err := validateHTTPURL(c.Elastic.URL, "ES_URL"); err != nil {
		return fmt.Errorf("ES_URL is invalid: %w", err)
	}
	return c.validateElasticIndex()
}

// validateElasticIndex validates the target index name.
// Elasticsearch rejects uppercase names and names starting with -, _ or +.
func (c *Config) validateElasticIndex() error {
	name := c.Elastic.Index
	if name == "" {
		return fmt.Errorf("ES_INDEX is required")
	}
	if name != strings.ToLower(name) {
		return fmt.Errorf("ES_INDEX must be lowercase")
	}
	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, "_") || strings.HasPrefix(name, "+") {
		return fmt.Errorf("ES_INDEX must not start with -, _ or +")
	}
	return nil
}

// validateETL validates pipeline configuration
func (c *Config) validateETL() error {
	if c.ETL.StatePath == "" {
		return fmt.Errorf("STATE_PATH is required")
	}
	if c.ETL.PidfilePath == "" {
		return fmt.Errorf("PIDFILE_PATH is required")
	}
	if c.ETL.PageSize < 1 || c.ETL.PageSize > 10000 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 10000")
	}
	if _, err := time.Parse(time.RFC3339, c.ETL.DefaultUpdatedAt); err != nil {
		return fmt.Errorf("DEFAULT_UPDATED_AT must be an RFC3339 timestamp: %w", err)
	}
	if c.ETL.Interval < 0 {
		return fmt.Errorf("ETL_INTERVAL must not be negative")
	}
	return nil
}

// validLogLevels defines accepted LOG_LEVEL values
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines accepted LOG_FORMAT values
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
