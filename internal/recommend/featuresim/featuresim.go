// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package featuresim provides pairwise similarity functions for the custom
// SAR similarity blend. Every function returns a value in [0, 1], is
// symmetric, and returns 0 when either value is missing.
package featuresim

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/sar/internal/recommend"
)

// Names accepted by ByName.
const (
	NameJaccard = "jaccard"
	NameExact   = "exact"
	NameNumeric = "numeric"
)

// Jaccard compares two values as sets of tokens: |A ∩ B| / |A ∪ B|.
// Lists are used as-is and strings are split on commas.
var Jaccard = recommend.PairwiseFunc(func(a, b any) float64 {
	return jaccard(tokens(a), tokens(b))
})

// Exact returns 1 when both values are present and equal, 0 otherwise.
// Strings compare case-insensitively; numbers compare by value.
var Exact = recommend.PairwiseFunc(func(a, b any) float64 {
	if a == nil || b == nil {
		return 0
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok && fa == fb {
			return 1
		}
		return 0
	}
	if strings.EqualFold(strings.TrimSpace(fmt.Sprint(a)), strings.TrimSpace(fmt.Sprint(b))) {
		return 1
	}
	return 0
})

// Numeric returns 1 − |a − b| / maxDiff, floored at 0. Values that are not
// numbers score 0.
func Numeric(maxDiff float64) recommend.PairwiseFunc {
	return func(a, b any) float64 {
		fa, okA := toFloat(a)
		fb, okB := toFloat(b)
		if !okA || !okB || maxDiff <= 0 {
			return 0
		}
		return math.Max(0, 1-math.Abs(fa-fb)/maxDiff)
	}
}

// ByName returns the similarity function registered under name. param is
// the maximum difference for numeric and ignored otherwise.
func ByName(name string, param float64) (recommend.PairwiseSimilarity, error) {
	switch strings.ToLower(name) {
	case NameJaccard:
		return Jaccard, nil
	case NameExact:
		return Exact, nil
	case NameNumeric:
		if param <= 0 {
			return nil, fmt.Errorf("%w: numeric similarity needs a positive max difference, got %v",
				recommend.ErrInvalidConfiguration, param)
		}
		return Numeric(param), nil
	default:
		return nil, fmt.Errorf("%w: unknown feature similarity %q", recommend.ErrInvalidConfiguration, name)
	}
}

// Names lists the names accepted by ByName.
func Names() []string {
	return []string{NameJaccard, NameExact, NameNumeric}
}

// Known reports whether name is accepted by ByName.
func Known(name string) bool {
	switch strings.ToLower(name) {
	case NameJaccard, NameExact, NameNumeric:
		return true
	}
	return false
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}

	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// tokens normalizes a feature value into lower-cased, trimmed tokens.
func tokens(v any) []string {
	var raw []string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		raw = make([]string, 0, len(t))
		for _, e := range t {
			if e != nil {
				raw = append(raw, fmt.Sprint(e))
			}
		}
	default:
		raw = []string{fmt.Sprint(t)}
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
