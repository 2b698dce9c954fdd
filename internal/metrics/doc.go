// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package metrics defines the Prometheus metrics of the SAR service.

Metrics are package-level collectors registered with the default registry
through promauto and exposed at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

Model:
  - sar_fit_duration_seconds: fit wall time
  - sar_fit_total{result}: fits by outcome (success, error)
  - sar_model_users, sar_model_items: size of the fitted model
  - sar_similarity_nonzeros: stored entries of the item similarity matrix
  - sar_feature_similarity_source{source}: 1 for the source used by the
    last fit (none, computed, restored)

Scoring:
  - sar_score_duration_seconds{operation}: time spent per scoring call
  - sar_requests_total{operation,result}: scoring calls by outcome
  - sar_unseen_items_total: predict pairs naming items unknown to the model

Data:
  - sar_load_duration_seconds{source}: DuckDB load time (interactions, features)
  - sar_load_rows_total{source}: rows read

HTTP:
  - sar_http_request_duration_seconds{method,route,status}

Cache:
  - sar_cache_hits_total, sar_cache_misses_total, sar_cache_entries

Record helpers wrap the common label combinations so callers do not repeat
label values.
*/
package metrics
