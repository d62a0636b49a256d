// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

// Package retry wraps exponential backoff with jitter for calls to the two
// failure-prone externals, the catalog database and the search index. A
// Policy caps the envelope by attempt count and by elapsed time, whichever
// is reached first; transient errors are retried, errors marked Permanent
// abort immediately.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tomtom215/cinedex/internal/logging"
	"github.com/tomtom215/cinedex/internal/metrics"
)

// Policy bounds one retry envelope.
type Policy struct {
	// MaxTries is the total number of attempts including the first.
	// Zero means attempts are bounded by MaxElapsed alone.
	MaxTries int

	// MaxElapsed caps the total wall time spent across attempts and
	// waits. Zero falls back to the library default (15 minutes).
	MaxElapsed time.Duration

	// InitialInterval is the first wait between attempts. Zero uses the
	// library default (500ms). Tests shrink it.
	InitialInterval time.Duration
}

// Permanent marks err as non-retryable: the envelope stops and returns the
// wrapped error unchanged.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func (p Policy) build(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		bo.InitialInterval = p.InitialInterval
	}
	if p.MaxElapsed > 0 {
		bo.MaxElapsedTime = p.MaxElapsed
	}

	var b backoff.BackOff = bo
	if p.MaxTries > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.MaxTries-1))
	}
	return backoff.WithContext(b, ctx)
}

func notify(op string) backoff.Notify {
	return func(err error, wait time.Duration) {
		metrics.RecordRetryAttempt(op)
		logging.Warn().
			Str("operation", op).
			Dur("retry_in", wait).
			Err(err).
			Msg("Transient failure, backing off")
	}
}

// Do runs fn under the policy, logging each retried failure. op names the
// operation in logs.
func Do(ctx context.Context, op string, p Policy, fn func() error) error {
	return backoff.RetryNotify(fn, p.build(ctx), notify(op))
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, op string, p Policy, fn func() (T, error)) (T, error) {
	return backoff.RetryNotifyWithData(fn, p.build(ctx), notify(op))
}
