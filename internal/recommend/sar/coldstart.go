// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sar

import (
	"context"
	"fmt"
	"math"

	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/recommend/sparse"
)

// SyntheticUser labels the results of a seed set without a user column.
const SyntheticUser = ""

// SeedSet is a columnar set of seed items for cold-start scoring. Users and
// Ratings are optional columns: nil means the column is absent. A present
// column must have one entry per item.
type SeedSet struct {
	// Items are the seed item ids. Each must be known to the model.
	Items []string

	// Users groups seeds into separate request-scoped users. The ids are
	// only labels and never touch the training index.
	Users []string

	// Ratings weight the seeds. Absent ratings are 1.0.
	Ratings []float64
}

// ItemBasedTopK returns the k items most similar to each group of seed
// items. Seed items are excluded from their own group's results and
// non-finite scores are dropped. The model is not updated.
func (m *Model) ItemBasedTopK(ctx context.Context, seeds SeedSet, k int, sorted bool) ([]recommend.Recommendation, error) {
	if !m.fitted.Load() {
		return nil, recommend.ErrNotFitted
	}
	if len(seeds.Items) == 0 {
		return nil, fmt.Errorf("%w: seed set has no items", recommend.ErrInvalidInput)
	}
	if seeds.Users != nil && len(seeds.Users) != len(seeds.Items) {
		return nil, fmt.Errorf("%w: %d seed users for %d seed items", recommend.ErrInvalidInput, len(seeds.Users), len(seeds.Items))
	}
	if seeds.Ratings != nil && len(seeds.Ratings) != len(seeds.Items) {
		return nil, fmt.Errorf("%w: %d seed ratings for %d seed items", recommend.ErrInvalidInput, len(seeds.Ratings), len(seeds.Items))
	}

	// Request-scoped user index.
	userPos := make(map[string]int)
	var labels []string
	seedCells := make([]Cell, len(seeds.Items))
	entries := make([]sparse.Entry, len(seeds.Items))
	for i, itemID := range seeds.Items {
		item, ok := m.index.ItemIndex(itemID)
		if !ok {
			return nil, fmt.Errorf("%w: seed item %q is not in the training set", recommend.ErrUnknownEntity, itemID)
		}

		label := SyntheticUser
		if seeds.Users != nil {
			label = seeds.Users[i]
		}
		u, ok := userPos[label]
		if !ok {
			u = len(labels)
			userPos[label] = u
			labels = append(labels, label)
		}

		rating := 1.0
		if seeds.Ratings != nil {
			rating = seeds.Ratings[i]
			if math.IsNaN(rating) || math.IsInf(rating, 0) {
				return nil, fmt.Errorf("%w: seed %d has a non-finite rating", recommend.ErrInvalidInput, i)
			}
		}

		seedCells[i] = Cell{User: u, Item: item}
		entries[i] = sparse.Entry{Row: u, Col: item, Value: rating}
	}

	pseudo := sparse.NewCSR(len(labels), m.index.NumItems(), entries)
	scores, err := m.scoreSeeds(ctx, pseudo)
	if err != nil {
		return nil, err
	}
	for _, c := range seedCells {
		scores.Set(c.User, c.Item, math.Inf(-1))
	}

	m.logger.Debug().
		Int("seeds", len(seeds.Items)).
		Int("groups", len(labels)).
		Int("k", k).
		Msg("getting item-based top k")

	return m.collect(scores, labels, k, sorted), nil
}
