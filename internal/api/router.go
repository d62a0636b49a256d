// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cinedex/internal/logging"
)

// Router assembles the operational HTTP surface.
type Router struct {
	handler *Handler
}

// NewRouter creates a router around the given handler.
func NewRouter(handler *Handler) *Router {
	return &Router{handler: handler}
}

// Setup returns the configured Chi handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", router.handler.Health)
	r.Get("/readyz", router.handler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestID honors an inbound X-Request-ID or generates one, reflects it
// on the response, and attaches it to the logging context so probe logs
// correlate with the caller's records.
func requestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = logging.GenerateRequestID()
			}
			w.Header().Set("X-Request-ID", id)

			ctx := logging.ContextWithRequestID(r.Context(), id)

			start := time.Now()
			next.ServeHTTP(w, r.WithContext(ctx))

			logging.Ctx(ctx).Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("Request handled")
		})
	}
}
