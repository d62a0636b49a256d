// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package services

import (
	"context"
	"fmt"
)

// CycleRunner interface matches the ETL runner's lifecycle.
//
// Satisfied by *etl.Runner, whose Run blocks executing sync cycles until
// the context is canceled (or until a cycle fails).
type CycleRunner interface {
	Run(ctx context.Context) error
}

// RunnerService wraps the ETL runner as a supervised service.
//
// The runner is already context-driven, so no lifecycle translation is
// needed: Serve delegates to Run. When a cycle fails the error propagates
// and suture restarts the service under its backoff policy, which resumes
// from the persisted watermarks rather than starting over.
type RunnerService struct {
	runner CycleRunner
	name   string
}

// NewRunnerService creates a new ETL runner service wrapper.
//
// Example usage:
//
//	runner := etl.NewRunner(db, es, marks, opts, cfg.ETL.Interval)
//	svc := services.NewRunnerService(runner)
//	tree.AddPipelineService(svc)
func NewRunnerService(runner CycleRunner) *RunnerService {
	return &RunnerService{
		runner: runner,
		name:   "etl-runner",
	}
}

// Serve implements suture.Service.
func (r *RunnerService) Serve(ctx context.Context) error {
	if err := r.runner.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("etl runner failed: %w", err)
	}
	return nil
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (r *RunnerService) String() string {
	return r.name
}
