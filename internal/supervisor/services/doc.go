// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

/*
Package services provides suture.Service wrappers for Cinedex components.

This package adapts the application's components to the suture v4
supervision model, translating their lifecycle patterns (Run,
ListenAndServe) into suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation to the Serve pattern
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

ETL Runner (RunnerService):
  - Wraps etl.Runner's cycle loop
  - A failed cycle propagates so suture restarts with backoff
  - Restarts resume from persisted watermarks, not from scratch

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

# Usage Example

Creating and registering services:

	tree, _ := supervisor.NewSupervisorTree(logger, config)

	runnerSvc := services.NewRunnerService(runner)
	tree.AddPipelineService(runnerSvc)

	httpSvc := services.NewHTTPServerService(server, 10*time.Second)
	tree.AddOpsService(httpSvc)

	tree.Serve(ctx)

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer for logging. Suture uses this for
log messages:

	INFO etl-runner: starting
	ERROR etl-runner: restarting after failure

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/etl: Runner implementation
*/
package services
