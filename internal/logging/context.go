// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Context keys for logging.
type contextKey string

const (
	// cycleIDKey is the context key for sync cycle IDs.
	cycleIDKey contextKey = "cycle_id"

	// requestIDKey is the context key for HTTP request IDs.
	requestIDKey contextKey = "request_id"
)

// GenerateCycleID creates a new sync cycle ID. The first 8 characters of
// a UUID keep repeated log lines readable.
func GenerateCycleID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID creates a new unique request ID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithCycleID returns a new context carrying the given cycle ID.
func ContextWithCycleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, cycleIDKey, id)
}

// ContextWithNewCycleID returns a context with a freshly generated cycle
// ID. The runner calls this at the top of each cycle so every log line
// across the three streams shares one id.
func ContextWithNewCycleID(ctx context.Context) context.Context {
	return ContextWithCycleID(ctx, GenerateCycleID())
}

// CycleIDFromContext retrieves the cycle ID, or "" when absent.
func CycleIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(cycleIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a new context carrying the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext retrieves the request ID, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns a logger with the context's cycle and request IDs attached.
//
//	logging.Ctx(ctx).Info().Msg("Stream sync complete")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := Logger()

	if cycleID := CycleIDFromContext(ctx); cycleID != "" {
		logger = logger.With().Str("cycle_id", cycleID).Logger()
	}
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}

	return &logger
}

// WithComponent creates a child logger with a component field.
//
//	dbLogger := logging.WithComponent("database")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
