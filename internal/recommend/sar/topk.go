// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sar

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// scored is a candidate column and its score.
type scored struct {
	col   int
	value float64
}

// ranksBelow orders candidates by descending value, then ascending column.
// NaN ranks below every number, −∞ included.
func ranksBelow(a, b scored) bool {
	aNaN, bNaN := math.IsNaN(a.value), math.IsNaN(b.value)
	switch {
	case aNaN && bNaN:
		return a.col > b.col
	case aNaN:
		return true
	case bNaN:
		return false
	case a.value != b.value:
		return a.value < b.value
	default:
		return a.col > b.col
	}
}

// minHeap keeps the best k candidates seen so far with the worst at the root.
type minHeap []scored

func (h minHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !ranksBelow(h[i], h[parent]) {
			return
		}
		h[i], h[parent] = h[parent], h[i]
		i = parent
	}
}

func (h minHeap) down(i int) {
	n := len(h)
	for {
		smallest := i
		l, r := 2*i+1, 2*i+2
		if l < n && ranksBelow(h[l], h[smallest]) {
			smallest = l
		}
		if r < n && ranksBelow(h[r], h[smallest]) {
			smallest = r
		}
		if smallest == i {
			return
		}
		h[i], h[smallest] = h[smallest], h[i]
		i = smallest
	}
}

// topKRow selects the k best columns of row. k must be in [0, len(row)].
func topKRow(row []float64, k int, sorted bool) ([]int, []float64) {
	if k == 0 {
		return []int{}, []float64{}
	}

	h := make(minHeap, 0, k)
	for c, v := range row {
		cand := scored{col: c, value: v}
		if len(h) < k {
			h = append(h, cand)
			h.up(len(h) - 1)
			continue
		}
		if ranksBelow(h[0], cand) {
			h[0] = cand
			h.down(0)
		}
	}

	if sorted {
		slices.SortFunc(h, func(a, b scored) int {
			switch {
			case ranksBelow(b, a):
				return -1
			case ranksBelow(a, b):
				return 1
			default:
				return 0
			}
		})
	} else {
		slices.SortFunc(h, func(a, b scored) int { return a.col - b.col })
	}

	cols := make([]int, len(h))
	vals := make([]float64, len(h))
	for i, s := range h {
		cols[i] = s.col
		vals[i] = s.value
	}
	return cols, vals
}

// TopK returns, for every row of scores, the column indices and values of
// the k highest scores. k at or above the column count returns every
// column; k <= 0 returns empty rows.
//
// With sorted set, each row is in descending score order with ties broken by
// ascending column. Otherwise the same set of columns is returned in
// ascending column order. Non-finite scores are returned like any other.
func TopK(scores *mat.Dense, k int, sorted bool) (indices [][]int, values [][]float64) {
	if scores.IsEmpty() {
		return [][]int{}, [][]float64{}
	}
	r, c := scores.Dims()
	k = max(0, min(k, c))

	indices = make([][]int, r)
	values = make([][]float64, r)
	for i := 0; i < r; i++ {
		indices[i], values[i] = topKRow(scores.RawRowView(i), k, sorted)
	}
	return indices, values
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
