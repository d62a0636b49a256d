// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package search

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/cinedex/internal/logging"
	"github.com/tomtom215/cinedex/internal/metrics"
)

//go:embed mapping.json
var indexMapping string

// EnsureIndex creates the target index with the embedded movies mapping.
// An index that already exists is left untouched; the cluster signals that
// with a 400 resource_already_exists response, which counts as success.
func (c *Client) EnsureIndex(ctx context.Context) error {
	_, err := c.execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut,
			c.baseURL+"/"+c.index, strings.NewReader(indexMapping))
		if err != nil {
			return nil, fmt.Errorf("failed to create index request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("create index request failed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			logging.Info().Str("index", c.index).Msg("Created search index")
			return nil, nil
		case resp.StatusCode == http.StatusBadRequest:
			// resource_already_exists_exception
			logging.Debug().Str("index", c.index).Msg("Search index already exists")
			return nil, nil
		default:
			return nil, &StatusError{Status: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
		}
	})
	if err != nil {
		metrics.RecordSearchError("ensure_index")
		return fmt.Errorf("failed to ensure index %s: %w", c.index, err)
	}
	return nil
}
