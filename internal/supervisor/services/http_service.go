// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServiceConfig controls the API listener lifecycle.
type HTTPServiceConfig struct {
	// Addr is logged on start. The server carries the real listen address.
	Addr string

	// ShutdownTimeout bounds draining on cancel. Default: 10s
	ShutdownTimeout time.Duration
}

// HTTPServerService serves the recommendation API under the api layer.
//
// Unlike TrainService it never gives up on its own: a listen failure is
// returned so the supervisor backs off and retries. A server closed from
// outside the tree cannot be reused, so that case ends the service with
// suture.ErrDoNotRestart.
type HTTPServerService struct {
	server HTTPServer
	config HTTPServiceConfig
	logger zerolog.Logger
	name   string
}

// NewHTTPServerService wraps server.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPServerService(server HTTPServer, cfg HTTPServiceConfig, logger zerolog.Logger) *HTTPServerService {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server: server,
		config: cfg,
		logger: logger.With().Str("service", "http").Logger(),
		name:   "http-server",
	}
}

// Serve implements suture.Service. It returns ctx.Err() after draining.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	h.logger.Info().Str("addr", h.config.Addr).Msg("http service starting")

	done := make(chan error, 1)
	go func() { done <- h.server.ListenAndServe() }()

	select {
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			h.logger.Warn().Msg("http server closed outside the supervisor")
			return suture.ErrDoNotRestart
		}
		return fmt.Errorf("listen on %q: %w", h.config.Addr, err)

	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.config.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	if err := h.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("drain http server: %w", err)
	}
	<-done
	h.logger.Info().Dur("drain", time.Since(start)).Msg("http service stopped")
	return ctx.Err()
}

// String names the service in supervisor logs.
func (h *HTTPServerService) String() string {
	return h.name
}
