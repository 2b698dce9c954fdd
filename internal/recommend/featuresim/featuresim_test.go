// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package featuresim

import (
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/sar/internal/recommend"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want float64
	}{
		{name: "identical lists", a: []string{"action", "drama"}, b: []string{"drama", "action"}, want: 1},
		{name: "partial overlap", a: []string{"action", "drama"}, b: []string{"drama", "comedy"}, want: 1.0 / 3},
		{name: "comma strings", a: "Action, Drama", b: "drama,comedy", want: 1.0 / 3},
		{name: "any slice", a: []any{"a", "b"}, b: []string{"a"}, want: 0.5},
		{name: "disjoint", a: "a", b: "b", want: 0},
		{name: "missing value", a: nil, b: "a", want: 0},
		{name: "both empty", a: "", b: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard.Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Jaccard(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
			if rev := Jaccard.Similarity(tt.b, tt.a); rev != got {
				t.Errorf("Jaccard is not symmetric: %f vs %f", got, rev)
			}
		})
	}
}

func TestExact(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want float64
	}{
		{name: "same string", a: "Nolan", b: "nolan ", want: 1},
		{name: "different string", a: "Nolan", b: "Villeneuve", want: 0},
		{name: "same number different type", a: int64(2010), b: 2010.0, want: 1},
		{name: "number and string", a: 7, b: "7", want: 1},
		{name: "missing", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Exact.Similarity(tt.a, tt.b); got != tt.want {
				t.Errorf("Exact(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNumeric(t *testing.T) {
	year := Numeric(20)

	tests := []struct {
		name string
		a, b any
		want float64
	}{
		{name: "same year", a: 1999, b: 1999, want: 1},
		{name: "ten years apart", a: int32(1990), b: 2000.0, want: 0.5},
		{name: "beyond max difference", a: 1950, b: 2000, want: 0},
		{name: "not a number", a: "old", b: 2000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := year.Similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Numeric(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{NameJaccard, NameExact, "NUMERIC"} {
		if _, err := ByName(name, 10); err != nil {
			t.Errorf("ByName(%q) error = %v", name, err)
		}
	}
	if _, err := ByName("cosine", 0); !errors.Is(err, recommend.ErrInvalidConfiguration) {
		t.Errorf("ByName(cosine) = %v, want ErrInvalidConfiguration", err)
	}
	if _, err := ByName(NameNumeric, 0); !errors.Is(err, recommend.ErrInvalidConfiguration) {
		t.Errorf("ByName(numeric, 0) = %v, want ErrInvalidConfiguration", err)
	}
}
