// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/validation"
)

const (
	defaultK        = 10
	maxRequestBytes = 1 << 20
)

// RecommendRequest is the body of POST /api/v1/recommendations.
type RecommendRequest struct {
	UserIDs    []string `json:"user_ids" validate:"required,min=1,dive,required"`
	K          int      `json:"k" validate:"gte=1"`
	Sort       *bool    `json:"sort"`
	RemoveSeen bool     `json:"remove_seen"`
	Normalize  bool     `json:"normalize"`
}

// PairRequest is one (user, item) pair to score.
type PairRequest struct {
	UserID string `json:"user_id" validate:"required"`
	ItemID string `json:"item_id" validate:"required"`
}

// PredictRequest is the body of POST /api/v1/predict.
type PredictRequest struct {
	Pairs []PairRequest `json:"pairs" validate:"required,min=1,dive"`
}

// SimilarRequest is the body of POST /api/v1/similar. Users and Ratings
// are optional and, when given, have one entry per item.
type SimilarRequest struct {
	Items   []string  `json:"items" validate:"required,min=1,dive,required"`
	Users   []string  `json:"users"`
	Ratings []float64 `json:"ratings"`
	K       int       `json:"k" validate:"gte=1"`
	Sort    *bool     `json:"sort"`
}

// decodeBody reads a JSON body into dst and validates it.
func decodeBody(r *http.Request, dst any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", recommend.ErrInvalidInput, err)
	}
	if len(data) > maxRequestBytes {
		return fmt.Errorf("%w: request body exceeds %d bytes", recommend.ErrInvalidInput, maxRequestBytes)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", recommend.ErrInvalidInput, err)
	}
	return validation.Struct(dst)
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", recommend.ErrInvalidInput, name, s)
	}
	return v, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string, def bool) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean, got %q", recommend.ErrInvalidInput, name, s)
	}
	return v, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
