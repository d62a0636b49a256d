// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package etl

import (
	"context"
	"time"

	"github.com/tomtom215/cinedex/internal/logging"
	"github.com/tomtom215/cinedex/internal/models"
)

// Runner executes cycles: one Sync per stream, in the fixed order genre,
// person, filmwork. Streams never interleave, keeping all side effects in
// one total order.
type Runner struct {
	streams  []*Stream
	interval time.Duration
}

// NewRunner builds a runner covering all entity classes. A non-positive
// interval makes Run perform a single cycle and return; otherwise Run loops
// with the interval between cycle starts of rest.
func NewRunner(catalog Catalog, indexer Indexer, marks Watermarks, opts Options, interval time.Duration) *Runner {
	streams := make([]*Stream, 0, len(models.Kinds))
	for _, kind := range models.Kinds {
		streams = append(streams, NewStream(kind, catalog, indexer, marks, opts))
	}
	return &Runner{
		streams:  streams,
		interval: interval,
	}
}

// RunOnce executes one full cycle. The first stream failure aborts the
// cycle; earlier streams keep whatever watermark progress they persisted.
func (r *Runner) RunOnce(ctx context.Context) error {
	ctx = logging.ContextWithNewCycleID(ctx)
	start := time.Now()

	for _, s := range r.streams {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Sync(ctx); err != nil {
			return err
		}
	}

	logging.Ctx(ctx).Info().
		Dur("duration", time.Since(start)).
		Msg("Sync cycle complete")
	return nil
}

// Run executes cycles until ctx is cancelled. In single-shot mode (interval
// <= 0) it returns after the first cycle. A failed cycle propagates; the
// supervisor owns the restart decision.
func (r *Runner) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return r.RunOnce(ctx)
	}

	for {
		if err := r.RunOnce(ctx); err != nil {
			return err
		}

		logging.Debug().
			Dur("interval", r.interval).
			Msg("Sleeping until next cycle")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.interval):
		}
	}
}
