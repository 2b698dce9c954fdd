// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/tomtom215/sar/internal/api"
	"github.com/tomtom215/sar/internal/config"
	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/supervisor"
	"github.com/tomtom215/sar/internal/supervisor/services"
)

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, t, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	handler := api.NewHandler(handlerOptions(cfg), logging.Logger())
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           api.NewRouter(handler, middlewareConfig(cfg)),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logging.WithComponent("supervisor")), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddModelService(services.NewTrainService(t, handler, services.TrainServiceConfig{
		RefreshInterval: cfg.Data.RefreshInterval,
	}, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServiceConfig{
		Addr:            server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logging.Logger()))

	logging.Info().Str("addr", server.Addr).Msg("Starting SAR server")

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}

func handlerOptions(cfg *config.Config) api.Options {
	return api.Options{
		MaxBatchUsers:  cfg.Server.MaxBatchUsers,
		MaxK:           cfg.Server.MaxK,
		CacheEnabled:   cfg.Cache.Enabled,
		CacheTTL:       cfg.Cache.TTL,
		CacheSize:      cfg.Cache.MaxEntries,
		RequestTimeout: cfg.Server.WriteTimeout,
	}
}

func middlewareConfig(cfg *config.Config) api.MiddlewareConfig {
	mc := api.DefaultMiddlewareConfig()
	mc.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mc.RateLimitRequests = cfg.Server.RateLimitRequests
	mc.RateLimitWindow = cfg.Server.RateLimitWindow
	return mc
}
