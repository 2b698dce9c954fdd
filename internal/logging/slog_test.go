// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(NewTestLogger(&buf))

	l.With("service", "http").WithGroup("req").Info("started",
		"users", 3,
		"elapsed", time.Second,
		"err", errors.New("boom"),
		slog.Group("k", "top", 10),
	)

	out := buf.String()
	for _, want := range []string{
		`"service":"http"`,
		`"req.users":3`,
		`"req.err":"boom"`,
		`"req.k.top":10`,
		`"message":"started"`,
		`"level":"info"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := NewSlogHandler(zerolog.Nop().Level(zerolog.WarnLevel))

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
