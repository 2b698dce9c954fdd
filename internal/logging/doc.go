// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package logging provides structured logging for the SAR service using zerolog.
//
// A single global logger is configured once at startup with Init and then
// handed to components by value. The recommender packages never reach for
// the global logger; they receive a zerolog.Logger in their constructors.
//
// # Configuration
//
//	logging.Init(logging.Config{
//	    Level:  "debug",
//	    Format: "console",
//	    Caller: true,
//	})
//
// Level is one of trace, debug, info, warn, error, fatal or panic. Format is
// "json" (default) or "console".
//
// # Request Scoping
//
// HTTP handlers attach a request id to the context and derive a logger that
// carries it:
//
//	ctx = logging.ContextWithRequestID(ctx, id)
//	logging.Ctx(ctx).Info().Int("users", n).Msg("scored users")
//
// # slog Bridge
//
// The supervisor tree logs through log/slog. NewSlogLogger returns an
// slog.Logger whose records are written by zerolog so all output shares one
// format.
package logging
