// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/sar/internal/logging"
)

// AccessLog logs every request at debug level through the request's
// context logger, and at warn level when it takes longer than slow.
// A non-positive slow disables the warning.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			l := logging.Ctx(r.Context())
			event := l.Debug()
			msg := "Request handled"
			if slow > 0 && duration > slow {
				event = l.Warn().Dur("threshold", slow)
				msg = "Slow request detected"
			}
			event.
				Str("method", r.Method).
				Str("route", routePattern(r)).
				Int("status", rw.statusCode).
				Dur("duration", duration).
				Msg(msg)
		})
	}
}
