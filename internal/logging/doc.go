// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

// Package logging provides centralized zerolog-based structured logging for Cinedex.
//
// This package implements a unified logging layer using zerolog, providing
// zero-allocation structured JSON logging for production and human-readable
// console output for development. Every component of the pipeline logs
// through it so that one cycle of the ETL loop produces one coherent,
// machine-parseable record stream.
//
// # Quick Start
//
//	import "github.com/tomtom215/cinedex/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Caller: false,
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("stream", "filmwork").Int("documents", 87).Msg("Page indexed")
//	logging.Error().Err(err).Msg("Bulk request failed")
//
// # Log Levels
//
// Supported log levels (from most to least verbose):
//
//	trace  - Very detailed diagnostic information
//	debug  - Detailed diagnostic information
//	info   - General operational information (default)
//	warn   - Warning conditions that should be addressed
//	error  - Error conditions requiring attention
//	fatal  - Fatal errors that terminate the program
//
// # Structured Logging Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	logging.Info().
//	    Str("stream", "genre").
//	    Int("films", reindexed).
//	    Dur("elapsed", duration).
//	    Msg("Stream sync complete")
//
// # Cycle and Request Correlation
//
// The runner stamps each sync cycle with a short cycle ID and the HTTP
// layer stamps each request with a request ID. Ctx pulls whichever is
// present out of the context so log lines from one cycle (or one request)
// can be grepped together:
//
//	ctx = logging.ContextWithNewCycleID(ctx)
//	logging.Ctx(ctx).Info().Msg("Sync cycle complete")
//
// # Credential Redaction
//
// Connection targets are logged at startup through RedactDSN and
// RedactURL, which mask passwords in keyword/value DSNs and URL userinfo.
// Raw configuration values must never reach a log line directly.
//
// # slog Adapter
//
// NewSlogLogger adapts the zerolog core for libraries that require
// log/slog, such as the suture supervisor's event hook.
//
// # Testing
//
// Create test loggers that capture output:
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
//	logger.Info().Msg("test message")
//	output := buf.String()
package logging
