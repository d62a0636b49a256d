// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinedex/internal/config"
	"github.com/tomtom215/cinedex/internal/metrics"
)

// maxErrorBodySize limits the amount of response body read for error
// reporting, preventing unbounded allocation on large error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// StatusError is a non-2xx response from the cluster. Callers inspect the
// status through IsRetryable to split transient overload from permanent
// rejection.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// IsRetryable reports whether err is worth retrying: transport failures,
// 5xx responses, 429 throttling and a tripped circuit breaker all heal with
// time. Other 4xx responses are requests the cluster understood and refused.
func IsRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status >= 500 || se.Status == http.StatusTooManyRequests
	}
	return true
}

// Client talks to one Elasticsearch cluster and one index.
//
// Thread Safety: Safe for concurrent use. Each request creates its own HTTP
// request; limiter and breaker are internally synchronized.
type Client struct {
	baseURL string
	index   string
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[any]
	cbName  string
}

// NewClient creates an Elasticsearch client from configuration. With
// RateLimit 0 bulk requests go out unthrottled; otherwise a token bucket
// caps them at RateLimit per second with RateBurst capacity.
func NewClient(cfg config.ElasticConfig) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		index:   cfg.Index,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cbName: "elasticsearch",
	}

	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	c.cb = newSearchBreaker(c.cbName)
	return c
}

// Index returns the target index name.
func (c *Client) Index() string {
	return c.index
}

// Ping verifies the cluster answers on its root endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create ping request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("ping request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{Status: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
		}
		return nil, nil
	})
	if err != nil {
		metrics.RecordSearchError("ping")
	}
	return err
}

// readBodyForError reads the response body for error reporting (max 64KB).
// Returns the body content or a placeholder message if reading fails.
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
