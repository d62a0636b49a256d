// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

/*
Package supervisor provides process supervision for Cinedex using suture v4.

This package implements a hierarchical supervisor tree that manages the
lifecycle of the pipeline's long-running services. It provides
Erlang/OTP-style supervision with automatic restart, failure isolation,
and graceful shutdown.

# Overview

The supervisor tree organizes services into two layers for failure isolation:

	RootSupervisor ("cinedex")
	├── PipelineSupervisor ("pipeline-layer")
	│   └── RunnerService
	└── OpsSupervisor ("ops-layer")
	    └── HTTPServerService

This hierarchy ensures that:
  - A failed sync cycle doesn't take down the health endpoints
  - The ops server restarting doesn't interrupt a running cycle
  - Each layer has independent failure counting

# Key Features

Automatic Restart:
  - Crashed services are automatically restarted
  - Exponential backoff prevents restart storms
  - Configurable failure thresholds and decay rates

Graceful Shutdown:
  - Context cancellation triggers orderly shutdown
  - Configurable shutdown timeout per service
  - UnstoppedServiceReport for debugging hangs

Structured Logging:
  - Integration with slog for structured events
  - Logs service starts, stops, failures, and restarts
  - Event hooks via sutureslog adapter

# Usage Example

Basic setup in main.go:

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddPipelineService(services.NewRunnerService(runner))
	tree.AddOpsService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
	case err := <-errCh:
	    // tree stopped on its own
	}

# Restart Semantics

The runner persists a watermark after every page of work, so a restart
after a crash resumes from the last durable cursor. Restart cost is one
replayed page per stream at worst, never a full re-index.

# See Also

  - internal/supervisor/services: Service wrappers managed by this tree
  - github.com/thejerf/suture/v4: Underlying supervision library
*/
package supervisor
