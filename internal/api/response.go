// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/validation"
)

// Error codes.
const (
	ErrCodeUnknownEntity            = "UNKNOWN_ENTITY"
	ErrCodeInvalidInput             = "INVALID_INPUT"
	ErrCodeValidation               = "VALIDATION_ERROR"
	ErrCodeNormalizationUnavailable = "NORMALIZATION_UNAVAILABLE"
	ErrCodeModelNotReady            = "MODEL_NOT_READY"
	ErrCodeNotFound                 = "NOT_FOUND"
	ErrCodeMethodNotAllowed         = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests          = "TOO_MANY_REQUESTS"
	ErrCodeInternal                 = "INTERNAL_ERROR"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
	Cached      bool      `json:"cached,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is the error part of a failed response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeBody(w, status, data)
}

func writeBody(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag hashes data with FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

func success(r *http.Request, start time.Time, data any) *APIResponse {
	return &APIResponse{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
		},
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	respondJSON(w, status, &APIResponse{
		Status: "error",
		Metadata: Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &APIError{Code: code, Message: message, Details: details},
	})
}

// respondErr maps err onto a status code and error code.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, verr.Error(), verr.Fields)
	case errors.Is(err, recommend.ErrUnknownEntity):
		respondError(w, r, http.StatusNotFound, ErrCodeUnknownEntity, err.Error(), nil)
	case errors.Is(err, recommend.ErrInvalidInput):
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidInput, err.Error(), nil)
	case errors.Is(err, recommend.ErrNormalizationUnavailable):
		respondError(w, r, http.StatusConflict, ErrCodeNormalizationUnavailable, err.Error(), nil)
	case errors.Is(err, recommend.ErrNotFitted):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeModelNotReady, "model is not fitted yet", nil)
	default:
		l := logging.Ctx(r.Context())
		l.Error().Str("path", sanitizeLogValue(r.URL.Path)).Err(err).Msg("Request failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "internal server error", nil)
	}
}

// sanitizeLogValue escapes control characters to prevent log injection.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
