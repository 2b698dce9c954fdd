// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package middleware provides the HTTP middleware shared by the SAR API.

All middleware has the func(http.Handler) http.Handler shape used by chi.

	RequestID           X-Request-ID propagation into the logging context
	PrometheusMetrics   sar_http_request_duration_seconds by chi route pattern
	Compression         gzip for clients that accept it
	AccessLog           debug log per request, warning above a threshold

Recommended order, outermost first:

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(time.Second))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)
*/
package middleware
