// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinedex/internal/logging"
	"github.com/tomtom215/cinedex/internal/metrics"
	"github.com/tomtom215/cinedex/internal/models"
)

// BulkResult summarizes one bulk request: how many documents went out and
// which of them the cluster rejected at the item level.
type BulkResult struct {
	Documents  int
	ItemErrors int
	Took       time.Duration
}

// bulkResponse is the wire shape of the cluster's bulk reply. Only the
// fields the loader inspects are decoded.
type bulkResponse struct {
	Took   int                `json:"took"`
	Errors bool               `json:"errors"`
	Items  []bulkResponseItem `json:"items"`
}

type bulkResponseItem struct {
	Index struct {
		ID     string          `json:"_id"`
		Status int             `json:"status"`
		Error  json.RawMessage `json:"error"`
	} `json:"index"`
}

// BulkIndex writes the given documents to the index in one bulk request.
// Each document becomes an action line and a source line; the payload ends
// with a newline as the bulk protocol requires.
//
// A non-2xx response or transport failure returns an error; the caller owns
// the retry decision via IsRetryable. Item-level errors inside a 2xx
// response are logged and counted in the result but do not fail the call:
// the request was accepted, and the next cycle rewrites every document
// whole.
func (c *Client) BulkIndex(ctx context.Context, docs []*models.FilmDocument) (*BulkResult, error) {
	if len(docs) == 0 {
		return &BulkResult{}, nil
	}

	payload, err := c.encodeBulk(docs)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	start := time.Now()
	result, err := castResult[BulkResult](c.execute(func() (any, error) {
		return c.doBulk(ctx, payload, len(docs))
	}))
	metrics.RecordBulkLoad(time.Since(start), len(docs), itemErrorCount(result), err)
	if err != nil {
		return nil, err
	}

	logging.Debug().
		Int("documents", result.Documents).
		Int("item_errors", result.ItemErrors).
		Dur("took", result.Took).
		Msg("Bulk request completed")
	return result, nil
}

// encodeBulk renders the NDJSON payload: an index action naming the target
// index and document id, then the document source, for every film.
func (c *Client) encodeBulk(docs []*models.FilmDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for _, doc := range docs {
		action := map[string]map[string]string{
			"index": {"_index": c.index, "_id": doc.ID},
		}
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("failed to encode bulk action: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
		}
	}
	return buf.Bytes(), nil
}

// doBulk performs the HTTP exchange and folds the per-item results.
func (c *Client) doBulk(ctx context.Context, payload []byte, documents int) (*BulkResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/_bulk", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bulk request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
	}

	var parsed bulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode bulk response: %w", err)
	}

	result := &BulkResult{
		Documents: documents,
		Took:      time.Duration(parsed.Took) * time.Millisecond,
	}

	if !parsed.Errors {
		return result, nil
	}

	for _, item := range parsed.Items {
		if len(item.Index.Error) == 0 {
			continue
		}
		result.ItemErrors++
		logging.Error().
			Str("doc_id", item.Index.ID).
			Int("status", item.Index.Status).
			RawJSON("error", item.Index.Error).
			Msg("Document rejected by index")
	}
	return result, nil
}

func itemErrorCount(result *BulkResult) int {
	if result == nil {
		return 0
	}
	return result.ItemErrors
}
