// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	loggerKey
)

// NewRequestID returns a random request id.
func NewRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID stores id in ctx. An empty id is replaced with a new one.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = NewRequestID()
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string) //nolint:errcheck // missing value yields ""
	return id
}

// ContextWithLogger stores l in ctx.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func ContextWithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// Ctx returns the logger stored in ctx, or the global logger, with the
// request id attached when present.
func Ctx(ctx context.Context) zerolog.Logger {
	l := Logger()
	if ctx == nil {
		return l
	}
	if stored, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		l = stored
	}
	if id := RequestIDFromContext(ctx); id != "" {
		l = l.With().Str("request_id", id).Logger()
	}
	return l
}
