// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinedex/internal/logging"
)

// Pinger probes one external dependency. Satisfied by database.DB and
// search.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the operational endpoints.
type Handler struct {
	catalog   Pinger
	index     Pinger
	startTime time.Time
}

// NewHandler creates the ops handler. Either pinger may be nil, which
// reports that dependency as down.
func NewHandler(catalog, index Pinger) *Handler {
	return &Handler{
		catalog:   catalog,
		index:     index,
		startTime: time.Now(),
	}
}

// statusResponse is the JSON body of the health and readiness endpoints.
type statusResponse struct {
	Status        string          `json:"status"`
	UptimeSeconds float64         `json:"uptime_seconds"`
	Checks        map[string]bool `json:"checks,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Health answers the liveness probe. It reports only that the process is
// up: a pipeline with a dead database is alive but not ready.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &statusResponse{
		Status:        "alive",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Timestamp:     time.Now().UTC(),
	})
}

// Ready answers the readiness probe: 200 when both the catalog database
// and the search index respond to a ping, 503 otherwise. Both checks run
// on every call so recovery is observed without restart.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dbUp := h.catalog != nil && h.catalog.Ping(ctx) == nil
	indexUp := h.index != nil && h.index.Ping(ctx) == nil

	status := http.StatusOK
	state := "ready"
	if !dbUp || !indexUp {
		status = http.StatusServiceUnavailable
		state = "not_ready"
		logging.Ctx(ctx).Warn().
			Bool("postgres", dbUp).
			Bool("elasticsearch", indexUp).
			Msg("Readiness check failed")
	}

	respondJSON(w, status, &statusResponse{
		Status:        state,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Checks: map[string]bool{
			"postgres":      dbUp,
			"elasticsearch": indexUp,
		},
		Timestamp: time.Now().UTC(),
	})
}

// respondJSON writes v as a JSON response. Probe responses must never be
// cached: a stale 200 would mask an outage.
func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}
