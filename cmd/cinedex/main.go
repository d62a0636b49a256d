// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

// Package main is the entry point for the Cinedex pipeline.
//
// Cinedex replicates a normalized film catalog from PostgreSQL into a
// denormalized Elasticsearch index. It tracks (modified, id) watermarks per
// entity class, so each run only touches rows changed since the previous
// one, and a film whose genre or crew changes is re-indexed even when the
// film row itself did not move.
//
// # Application Architecture
//
// The pipeline initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config file (Koanf v2)
//  2. Pidfile: Take the single-instance lock; concurrent runs would race the watermarks
//  3. Database: Connect the pgx pool to the catalog database
//  4. Search: Create the Elasticsearch client and the movies index mapping if absent
//  5. State: Load the watermark file that sync cycles resume from
//  6. Runner: Assemble the genre, person and filmwork streams
//  7. Supervisor (interval mode): Run the ETL loop and ops HTTP server under suture
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (PG_*, ES_*, ETL_*, HTTP_*, LOG_*)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// # Run Modes
//
// ETL_INTERVAL selects the mode:
//
//	ETL_INTERVAL=0      Single-shot: run one sync cycle and exit. Exit code 1
//	                    when the cycle fails, for cron and oneshot units.
//	ETL_INTERVAL=30s    Looping: run cycles under the supervisor tree with the
//	                    ops HTTP server (/healthz, /readyz, /metrics).
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown in both modes:
//   - The current page finishes and its watermark is persisted
//   - The ops server drains in-flight requests (10s timeout)
//   - The next run resumes from the last durable cursor
//
// # Example Usage
//
// One cycle against local services:
//
//	export PG_USER=app PG_PASSWORD=secret PG_DBNAME=movies_database
//	export ES_URL=http://localhost:9200
//	./cinedex
//
// Continuous replication every 30 seconds:
//
//	export ETL_INTERVAL=30s
//	./cinedex
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cinedex/internal/api"
	"github.com/tomtom215/cinedex/internal/config"
	"github.com/tomtom215/cinedex/internal/database"
	"github.com/tomtom215/cinedex/internal/etl"
	"github.com/tomtom215/cinedex/internal/logging"
	"github.com/tomtom215/cinedex/internal/pidfile"
	"github.com/tomtom215/cinedex/internal/search"
	"github.com/tomtom215/cinedex/internal/state"
	"github.com/tomtom215/cinedex/internal/supervisor"
	"github.com/tomtom215/cinedex/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Cinedex")
	logging.Info().
		Str("postgres", cfg.Postgres.Addr()).
		Str("elasticsearch", logging.RedactURL(cfg.Elastic.URL)).
		Str("index", cfg.Elastic.Index).
		Str("state_path", cfg.ETL.StatePath).
		Bool("single_shot", cfg.ETL.SingleShot()).
		Msg("Configuration loaded")
	logging.Debug().
		Str("dsn", logging.RedactDSN(cfg.Postgres.DSN())).
		Msg("Database connection string")

	// Single-instance lock. Two pipelines sharing one state file would race
	// the watermarks and double-index pages.
	lock, err := pidfile.Acquire(cfg.ETL.PidfilePath)
	if err != nil {
		if errors.Is(err, pidfile.ErrAlreadyRunning) {
			logging.Fatal().Err(err).Msg("Another Cinedex instance is already running")
		}
		logging.Fatal().Err(err).Msg("Failed to acquire pidfile")
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.Error().Err(err).Msg("Error releasing pidfile")
		}
	}()

	// Create context for graceful shutdown; signals cancel it in both modes
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// Connect to the source catalog
	db, err := database.New(ctx, cfg.Postgres)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Target cluster; create the movies index with its mapping if absent
	es := search.NewClient(cfg.Elastic)
	if err := es.EnsureIndex(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to ensure search index")
	}

	// Watermark store the sync cycles resume from
	defaultModified, err := cfg.ETL.DefaultUpdatedAtTime()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to parse default watermark")
	}
	marks, err := state.New(cfg.ETL.StatePath, defaultModified)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load watermark state")
	}

	runner := etl.NewRunner(db, es, marks, etl.OptionsFromConfig(cfg.ETL, cfg.Backoff), cfg.ETL.Interval)

	if cfg.ETL.SingleShot() {
		runSingleShot(ctx, runner)
		return
	}

	runSupervised(ctx, cfg, runner, db, es)
}

// runSingleShot executes one sync cycle for cron-style scheduling.
// A failed cycle exits non-zero so the scheduler can alert; the replayed
// page on the next run makes the failure safe.
func runSingleShot(ctx context.Context, runner *etl.Runner) {
	if err := runner.RunOnce(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logging.Info().Msg("Sync cycle interrupted")
			return
		}
		logging.Fatal().Err(err).Msg("Sync cycle failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// runSupervised runs the ETL loop and the ops HTTP server under the
// supervisor tree until the context is canceled.
func runSupervised(ctx context.Context, cfg *config.Config, runner *etl.Runner, db *database.DB, es *search.Client) {
	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Pipeline layer services
	tree.AddPipelineService(services.NewRunnerService(runner))
	logging.Info().Dur("interval", cfg.ETL.Interval).Msg("ETL runner added to supervisor tree")

	// Ops layer services
	router := api.NewRouter(api.NewHandler(db, es))
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddOpsService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("Ops server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
