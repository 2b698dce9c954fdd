// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sar

import (
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestTopK(t *testing.T) {
	nan, negInf := math.NaN(), math.Inf(-1)
	row := []float64{3, 1, 3, nan, negInf, 2}
	scores := mat.NewDense(1, len(row), row)

	tests := []struct {
		name     string
		k        int
		sorted   bool
		wantCols []int
	}{
		{name: "sorted with ties by column", k: 3, sorted: true, wantCols: []int{0, 2, 5}},
		{name: "unsorted keeps the same set", k: 3, sorted: false, wantCols: []int{0, 2, 5}},
		{name: "k above width returns all", k: 10, sorted: true, wantCols: []int{0, 2, 5, 1, 4, 3}},
		{name: "k equal to width", k: 6, sorted: false, wantCols: []int{0, 1, 2, 3, 4, 5}},
		{name: "k zero", k: 0, sorted: true, wantCols: []int{}},
		{name: "k negative", k: -2, sorted: true, wantCols: []int{}},
		{name: "single best", k: 1, sorted: true, wantCols: []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, vals := TopK(scores, tt.k, tt.sorted)
			if len(cols) != 1 {
				t.Fatalf("rows = %d, want 1", len(cols))
			}
			if !slices.Equal(cols[0], tt.wantCols) {
				t.Errorf("cols = %v, want %v", cols[0], tt.wantCols)
			}
			for p, c := range cols[0] {
				if math.IsNaN(row[c]) {
					if !math.IsNaN(vals[0][p]) {
						t.Errorf("value at %d = %f, want NaN", c, vals[0][p])
					}
					continue
				}
				if vals[0][p] != row[c] {
					t.Errorf("value at %d = %f, want %f", c, vals[0][p], row[c])
				}
			}
		})
	}
}

func TestTopK_Dominance(t *testing.T) {
	data := []float64{
		0.4, 0.9, 0.1, 0.7, 0.3,
		5, 4, 3, 2, 1,
	}
	scores := mat.NewDense(2, 5, data)
	k := 2

	cols, vals := TopK(scores, k, true)
	for r := 0; r < 2; r++ {
		if len(cols[r]) != k {
			t.Fatalf("row %d has %d entries, want %d", r, len(cols[r]), k)
		}
		for i := 1; i < k; i++ {
			if vals[r][i] > vals[r][i-1] {
				t.Errorf("row %d not descending: %v", r, vals[r])
			}
		}
		for c := 0; c < 5; c++ {
			if slices.Contains(cols[r], c) {
				continue
			}
			if scores.At(r, c) > vals[r][k-1] {
				t.Errorf("row %d: excluded column %d (%f) beats selected minimum %f", r, c, scores.At(r, c), vals[r][k-1])
			}
		}
	}
	if !slices.Equal(cols[0], []int{1, 3}) || !slices.Equal(cols[1], []int{0, 1}) {
		t.Errorf("cols = %v, want [[1 3] [0 1]]", cols)
	}
}

func TestTopK_UnsortedAscendingColumns(t *testing.T) {
	scores := mat.NewDense(1, 3, []float64{1, 5, 3})
	cols, vals := TopK(scores, 2, false)
	if !slices.Equal(cols[0], []int{1, 2}) || !slices.Equal(vals[0], []float64{5, 3}) {
		t.Errorf("TopK unsorted = %v %v, want [1 2] [5 3]", cols[0], vals[0])
	}
}
