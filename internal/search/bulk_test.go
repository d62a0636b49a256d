// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package search

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinedex/internal/models"
)

func sampleDocs() []*models.FilmDocument {
	director := "Dana Director"
	return []*models.FilmDocument{
		{
			ID:           "11111111-1111-1111-1111-111111111111",
			Title:        "First Film",
			Description:  "A film about firsts",
			IMDBRating:   8.1,
			Genres:       []string{"action", "drama"},
			Actors:       []models.PersonRef{{ID: "a1", Name: "Alice Actor"}},
			Writers:      []models.PersonRef{},
			ActorsNames:  []string{"Alice Actor"},
			WritersNames: []string{},
			Director:     &director,
		},
		{
			ID:           "22222222-2222-2222-2222-222222222222",
			Title:        "Second Film",
			Genres:       []string{},
			Actors:       []models.PersonRef{},
			Writers:      []models.PersonRef{},
			ActorsNames:  []string{},
			WritersNames: []string{},
		},
	}
}

func bulkOKResponse(docIDs ...string) string {
	var b strings.Builder
	b.WriteString(`{"took":3,"errors":false,"items":[`)
	for i, id := range docIDs {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"index":{"_id":"` + id + `","status":200}}`)
	}
	b.WriteString(`]}`)
	return b.String()
}

func TestBulkIndexPayload(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/_bulk" {
			t.Errorf("Expected /_bulk, got %s", r.URL.Path)
		}
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(bulkOKResponse( //nolint:errcheck
			"11111111-1111-1111-1111-111111111111",
			"22222222-2222-2222-2222-222222222222")))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	result, err := client.BulkIndex(context.Background(), sampleDocs())
	if err != nil {
		t.Fatalf("BulkIndex failed: %v", err)
	}
	if result.Documents != 2 || result.ItemErrors != 0 {
		t.Errorf("Result = %+v, want 2 documents, 0 item errors", result)
	}

	if gotContentType != "application/x-ndjson" {
		t.Errorf("Content-Type = %q, want application/x-ndjson", gotContentType)
	}

	body := string(gotBody)
	if !strings.HasSuffix(body, "\n") {
		t.Error("Bulk payload must end with a newline")
	}

	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 payload lines (action+source per doc), got %d", len(lines))
	}

	var action struct {
		Index struct {
			IndexName string `json:"_index"`
			ID        string `json:"_id"`
		} `json:"index"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &action); err != nil {
		t.Fatalf("Action line is not JSON: %v", err)
	}
	if action.Index.IndexName != "movies" {
		t.Errorf("Action index = %q, want movies", action.Index.IndexName)
	}
	if action.Index.ID != "11111111-1111-1111-1111-111111111111" {
		t.Errorf("Action id = %q", action.Index.ID)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &doc); err != nil {
		t.Fatalf("Source line is not JSON: %v", err)
	}
	for _, key := range []string{"id", "title", "description", "imdb_rating", "genre", "actors", "writers", "actors_names", "writers_names", "director"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("Document missing field %q", key)
		}
	}
	if doc["director"] != "Dana Director" {
		t.Errorf("director = %v", doc["director"])
	}

	// Collections stay [] rather than null so index-side filters keep working.
	var secondDoc map[string]any
	if err := json.Unmarshal([]byte(lines[3]), &secondDoc); err != nil {
		t.Fatalf("Second source line is not JSON: %v", err)
	}
	if secondDoc["actors"] == nil {
		t.Error("Empty actors should marshal as [], not null")
	}
	if secondDoc["director"] != nil {
		t.Errorf("Missing director should marshal as null, got %v", secondDoc["director"])
	}
}

func TestBulkIndexEmptyBatch(t *testing.T) {
	// No server: an empty batch must not touch the network.
	client := NewClient(testConfig("http://127.0.0.1:1"))
	result, err := client.BulkIndex(context.Background(), nil)
	if err != nil {
		t.Fatalf("Empty batch should succeed, got: %v", err)
	}
	if result.Documents != 0 {
		t.Errorf("Expected 0 documents, got %d", result.Documents)
	}
}

func TestBulkIndexItemErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"took":5,"errors":true,"items":[` + //nolint:errcheck
			`{"index":{"_id":"a","status":200}},` +
			`{"index":{"_id":"b","status":400,"error":{"type":"mapper_parsing_exception","reason":"bad field"}}}]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	result, err := client.BulkIndex(context.Background(), sampleDocs())
	if err != nil {
		t.Fatalf("Item errors must not fail the call, got: %v", err)
	}
	if result.ItemErrors != 1 {
		t.Errorf("ItemErrors = %d, want 1", result.ItemErrors)
	}
}

func TestBulkIndexServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream down"}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.BulkIndex(context.Background(), sampleDocs())
	if err == nil {
		t.Fatal("Expected error on 502")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusBadGateway {
		t.Fatalf("Expected 502 StatusError, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("502 should be retryable")
	}
}

func TestBulkIndexRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"malformed action"}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.BulkIndex(context.Background(), sampleDocs())
	if err == nil {
		t.Fatal("Expected error on 400")
	}
	if IsRetryable(err) {
		t.Error("400 must not be retryable")
	}
}

func TestRateLimiterConfiguration(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		client := NewClient(testConfig("http://localhost:9200"))
		if client.limiter != nil {
			t.Error("RateLimit 0 should leave the limiter unset")
		}
	})

	t.Run("enabled when configured", func(t *testing.T) {
		cfg := testConfig("http://localhost:9200")
		cfg.RateLimit = 2.5
		cfg.RateBurst = 3
		client := NewClient(cfg)
		if client.limiter == nil {
			t.Fatal("Expected limiter with RateLimit > 0")
		}
		if client.limiter.Burst() != 3 {
			t.Errorf("Burst = %d, want 3", client.limiter.Burst())
		}
	})
}
