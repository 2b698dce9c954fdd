// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sar

import (
	"fmt"

	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/recommend/sparse"
)

// BuildCooccurrence returns the item × item co-occurrence matrix of the
// given (user, item) cells: C = IᵀI over the binary incidence matrix, with
// every cell below threshold removed, the diagonal included.
func BuildCooccurrence(cells []Cell, nUsers, nItems, threshold int) (*sparse.CSR, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: threshold must be >= 1, got %d", recommend.ErrInvalidConfiguration, threshold)
	}

	entries := make([]sparse.Entry, len(cells))
	for i, c := range cells {
		entries[i] = sparse.Entry{Row: c.User, Col: c.Item, Value: 1}
	}
	// Duplicate cells would be summed; clamp the incidence back to binary.
	incidence := sparse.NewCSR(nUsers, nItems, entries).Map(func(_, _ int, _ float64) float64 { return 1 })

	t := float64(threshold)
	return incidence.Gram().Filter(func(_, _ int, v float64) bool { return v >= t }), nil
}
