// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package main is the entry point of the sar binary.
//
// # Commands
//
//	sar [serve]                      fit the configured model and serve the HTTP API
//	sar recommend -users a,b -k 10   fit once and print recommendations as JSON lines
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables with the SAR_ prefix (SAR_INTERACTIONS, SAR_HTTP_PORT, ...)
//   - Config file (SAR_CONFIG_PATH, or config.yaml / /etc/sar/config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// serve shuts down gracefully on SIGINT and SIGTERM: the HTTP server stops
// accepting connections and in-flight requests get the configured shutdown
// timeout to finish.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/sar/internal/config"
	"github.com/tomtom215/sar/internal/database"
	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/trainer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("sar exited with an error")
	}
}

// run dispatches to a command. The first argument names the command;
// flags alone imply serve.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return runServe(ctx, args)
	case "recommend":
		return runRecommend(ctx, args, stdout)
	default:
		return fmt.Errorf("unknown command %q (want serve or recommend)", cmd)
	}
}

// setup loads the configuration, initializes logging and opens the
// database and the snapshot store. cleanup releases both.
func setup(ctx context.Context) (cfg *config.Config, t *trainer.Trainer, cleanup func(), err error) {
	cfg, err = config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logging.Info().
		Str("similarity_type", cfg.Model.SimilarityType).
		Str("interactions", cfg.Data.Interactions).
		Str("storage_backend", cfg.Storage.Backend).
		Msg("Configuration loaded")

	db, err := database.Open(ctx, cfg.Data.DuckDBPath, logging.WithComponent("database"))
	if err != nil {
		return nil, nil, nil, err
	}

	store, closeStore, err := trainer.OpenStore(cfg.Storage)
	if err != nil {
		closeLogged("database", db.Close)
		return nil, nil, nil, fmt.Errorf("open similarity store: %w", err)
	}

	cleanup = func() {
		closeLogged("similarity store", closeStore)
		closeLogged("database", db.Close)
	}
	return cfg, trainer.New(cfg, db, store, logging.Logger()), cleanup, nil
}

func closeLogged(what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logging.Error().Err(err).Str("resource", what).Msg("Error closing resource")
	}
}
