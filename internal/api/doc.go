// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package api serves a fitted SAR model over HTTP using the Chi router.

# Endpoints

	GET  /healthz
	GET  /metrics
	GET  /api/v1/stats
	GET  /api/v1/users/{userID}/recommendations?k=&sort=&remove_seen=&normalize=
	POST /api/v1/recommendations   {user_ids, k, sort, remove_seen, normalize}
	POST /api/v1/predict           {pairs: [{user_id, item_id}]}
	POST /api/v1/similar           {items, users, ratings, k, sort}
	GET  /api/v1/popular?k=&sort=

# Response Format

Every endpoint except /metrics answers with the same envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "...", "query_time_ms": 3, "cached": true},
	  "error": {"code": "UNKNOWN_ENTITY", "message": "..."}
	}

# Error Mapping

	recommend.ErrUnknownEntity            404 UNKNOWN_ENTITY
	recommend.ErrInvalidInput, bad JSON   400 INVALID_INPUT
	request struct validation errors      400 VALIDATION_ERROR
	recommend.ErrNormalizationUnavailable 409 NORMALIZATION_UNAVAILABLE
	recommend.ErrNotFitted                503 MODEL_NOT_READY
	anything else                         500 INTERNAL_ERROR

# Middleware

Request id, access log, recoverer, Prometheus timing, CORS and gzip apply
to every route; the per-IP rate limiter (go-chi/httprate) applies to
/api/v1 only.

# Caching

Recommendation, similar-item and popularity responses are cached by their
canonical request. A fitted model never changes, so entries stay valid
until SetModel installs a new one and clears the cache.
*/
package api
