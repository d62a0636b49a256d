// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

//go:build integration

package testinfra

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// BulkCapture represents one captured bulk request.
type BulkCapture struct {
	Path    string
	Headers http.Header
	Body    []byte

	// DocIDs are the document ids named by the action lines, in order.
	DocIDs []string
}

// MockElasticServer is an in-process stub that speaks enough of the
// Elasticsearch HTTP surface for loader tests: bulk indexing, index
// creation and the root ping. It captures all bulk bodies for verification.
type MockElasticServer struct {
	Server   *httptest.Server
	mu       sync.Mutex
	captures []BulkCapture

	// failNext makes the next n bulk requests return HTTP 500.
	failNext int

	// itemErrors maps document ids to an error type injected into the
	// per-item response while the request itself still returns 200.
	itemErrors map[string]string

	// indexExists tracks whether the index was already "created".
	indexExists bool
}

// NewMockElasticServer creates a stub Elasticsearch endpoint.
func NewMockElasticServer(t *testing.T) *MockElasticServer {
	t.Helper()

	mes := &MockElasticServer{
		itemErrors: make(map[string]string),
	}
	mes.Server = httptest.NewServer(http.HandlerFunc(mes.handle))
	return mes
}

// URL returns the stub's base URL.
func (m *MockElasticServer) URL() string {
	return m.Server.URL
}

// Close shuts down the stub.
func (m *MockElasticServer) Close() {
	m.Server.Close()
}

// FailNextBulk makes the next n bulk requests fail with HTTP 500.
func (m *MockElasticServer) FailNextBulk(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
}

// InjectItemError marks a document id to fail at the item level. The bulk
// request itself succeeds; only that item reports an error.
func (m *MockElasticServer) InjectItemError(docID, errType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemErrors[docID] = errType
}

// Captures returns all captured bulk requests.
func (m *MockElasticServer) Captures() []BulkCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]BulkCapture, len(m.captures))
	copy(out, m.captures)
	return out
}

// IndexedDocIDs returns every document id seen across all bulk requests,
// in arrival order.
func (m *MockElasticServer) IndexedDocIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, c := range m.captures {
		ids = append(ids, c.DocIDs...)
	}
	return ids
}

func (m *MockElasticServer) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/_bulk"):
		m.handleBulk(w, r)
	case r.Method == http.MethodPut:
		m.handleCreateIndex(w, r)
	case r.Method == http.MethodHead || (r.Method == http.MethodGet && r.URL.Path == "/"):
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"tagline":"You Know, for Search"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (m *MockElasticServer) handleBulk(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body.Close() //nolint:errcheck

	docIDs := parseBulkDocIDs(body)

	m.mu.Lock()
	m.captures = append(m.captures, BulkCapture{
		Path:    r.URL.Path,
		Headers: r.Header.Clone(),
		Body:    body,
		DocIDs:  docIDs,
	})
	fail := m.failNext > 0
	if fail {
		m.failNext--
	}
	itemErrors := make(map[string]string, len(m.itemErrors))
	for k, v := range m.itemErrors {
		itemErrors[k] = v
	}
	m.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"type":"internal_server_error"}}`)
		return
	}

	type indexResult struct {
		ID     string          `json:"_id"`
		Status int             `json:"status"`
		Error  json.RawMessage `json:"error,omitempty"`
	}
	items := make([]map[string]indexResult, 0, len(docIDs))
	hadErrors := false
	for _, id := range docIDs {
		res := indexResult{ID: id, Status: http.StatusOK}
		if errType, ok := itemErrors[id]; ok {
			hadErrors = true
			res.Status = http.StatusBadRequest
			res.Error = json.RawMessage(
				fmt.Sprintf(`{"type":%q,"reason":"injected failure"}`, errType))
		}
		items = append(items, map[string]indexResult{"index": res})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"took":   3,
		"errors": hadErrors,
		"items":  items,
	})
}

func (m *MockElasticServer) handleCreateIndex(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	exists := m.indexExists
	m.indexExists = true
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if exists {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"resource_already_exists_exception"}}`)
		return
	}
	fmt.Fprint(w, `{"acknowledged":true}`)
}

// parseBulkDocIDs extracts the _id of every action line in an NDJSON body.
func parseBulkDocIDs(body []byte) []string {
	var ids []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	expectAction := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if expectAction {
			var action struct {
				Index struct {
					ID string `json:"_id"`
				} `json:"index"`
			}
			if err := json.Unmarshal(line, &action); err == nil && action.Index.ID != "" {
				ids = append(ids, action.Index.ID)
			}
		}
		expectAction = !expectAction
	}
	return ids
}
