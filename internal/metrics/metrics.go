// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for result labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	// Model Metrics
	FitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sar_fit_duration_seconds",
			Help:    "Duration of SAR model fits in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	FitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sar_fit_total",
			Help: "Total number of SAR model fits",
		},
		[]string{"result"},
	)

	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sar_model_users",
			Help: "Number of users in the fitted model",
		},
	)

	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sar_model_items",
			Help: "Number of items in the fitted model",
		},
	)

	SimilarityNonzeros = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sar_similarity_nonzeros",
			Help: "Stored entries of the item similarity matrix",
		},
	)

	FeatureSimilaritySource = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sar_feature_similarity_source",
			Help: "Feature similarity source of the last fit (1 = active)",
		},
		[]string{"source"},
	)

	// Scoring Metrics
	ScoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sar_score_duration_seconds",
			Help:    "Duration of scoring operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sar_requests_total",
			Help: "Total number of scoring operations",
		},
		[]string{"operation", "result"},
	)

	UnseenItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sar_unseen_items_total",
			Help: "Predict pairs naming items the model has not seen",
		},
	)

	// Data Metrics
	LoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sar_load_duration_seconds",
			Help:    "Duration of DuckDB table loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	LoadRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sar_load_rows_total",
			Help: "Rows read from DuckDB",
		},
		[]string{"source"},
	)

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sar_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sar_cache_hits_total",
			Help: "Recommendation cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sar_cache_misses_total",
			Help: "Recommendation cache misses",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sar_cache_entries",
			Help: "Current number of cached recommendation responses",
		},
	)
)

var featureSources = []string{"none", "computed", "restored"}

// RecordFit records one fit and, on success, the model size.
func RecordFit(duration time.Duration, users, items, nonzeros int, source string, err error) {
	FitDuration.Observe(duration.Seconds())
	if err != nil {
		FitTotal.WithLabelValues(ResultError).Inc()
		return
	}
	FitTotal.WithLabelValues(ResultSuccess).Inc()
	ModelUsers.Set(float64(users))
	ModelItems.Set(float64(items))
	SimilarityNonzeros.Set(float64(nonzeros))
	for _, s := range featureSources {
		v := 0.0
		if s == source {
			v = 1
		}
		FeatureSimilaritySource.WithLabelValues(s).Set(v)
	}
}

// RecordScore records one scoring operation.
func RecordScore(operation string, duration time.Duration, err error) {
	ScoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	RequestsTotal.WithLabelValues(operation, result).Inc()
}

// RecordUnseenItems adds n unknown predict items.
func RecordUnseenItems(n int) {
	if n > 0 {
		UnseenItems.Add(float64(n))
	}
}

// RecordLoad records one DuckDB table load.
func RecordLoad(source string, duration time.Duration, rows int) {
	LoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	LoadRows.WithLabelValues(source).Add(float64(rows))
}

// RecordHTTPRequest records one HTTP request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordCacheLookup counts one cache lookup.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
		return
	}
	CacheMisses.Inc()
}
