// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

// Package database provides read access to the film catalog in Postgres.
//
// The catalog lives in schema content: genre, person and filmwork tables plus
// the filmworks_persons and filmworks_genres link tables. The pipeline only
// reads; all queries are incremental scans keyed by (modified, id) cursors or
// bounded fan-out fetches over explicit id lists, so the package exposes
// exactly three statement shapes and a health ping.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/cinedex/internal/config"
	"github.com/tomtom215/cinedex/internal/logging"
)

// Pool tuning for the pipeline workload: a handful of sequential scans,
// no concurrent query fan-out.
const (
	minConns          = 1
	maxConnLifetime   = 30 * time.Minute
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = time.Minute
	pingTimeout       = 2 * time.Second
)

// DB wraps the Postgres connection pool and provides catalog access methods.
type DB struct {
	pool *pgxpool.Pool
	cfg  config.PostgresConfig
}

// New creates a connection pool and validates it with a ping. The DSN carries
// pool_max_conns and connect_timeout from the configuration; the remaining
// pool knobs are fixed here.
func New(ctx context.Context, cfg config.PostgresConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolConfig.MinConns = minConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	db := &DB{pool: pool, cfg: cfg}
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logging.Info().
		Str("addr", cfg.Addr()).
		Str("dbname", cfg.DBName).
		Int32("max_conns", pool.Config().MaxConns).
		Msg("Connected to catalog database")

	return db, nil
}

// Ping verifies the pool can reach the database.
func (db *DB) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Pool exposes the underlying pool for tests and readiness checks.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close releases all pooled connections.
func (db *DB) Close() {
	db.pool.Close()
	logging.Debug().Msg("Catalog database connections closed")
}
