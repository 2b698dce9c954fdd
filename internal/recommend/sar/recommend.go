// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sar

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/sar/internal/recommend"
)

// RecommendOptions controls RecommendKItems.
type RecommendOptions struct {
	// TopK is the number of items per user.
	TopK int

	// Sort orders each user's items by descending score.
	Sort bool

	// RemoveSeen excludes items the user interacted with during training.
	RemoveSeen bool

	// Normalize rescales scores to the rating range.
	Normalize bool
}

// RecommendKItems returns up to TopK items for every distinct user in
// userIDs. Items with a non-finite score are dropped, so a user may receive
// fewer than TopK rows.
func (m *Model) RecommendKItems(ctx context.Context, userIDs []string, opts RecommendOptions) ([]recommend.Recommendation, error) {
	if !m.fitted.Load() {
		return nil, recommend.ErrNotFitted
	}
	users := distinct(userIDs)
	if len(users) == 0 {
		return []recommend.Recommendation{}, nil
	}

	scores, err := m.Score(ctx, users, ScoreOptions{RemoveSeen: opts.RemoveSeen, Normalize: opts.Normalize})
	if err != nil {
		return nil, err
	}

	m.logger.Debug().Int("users", len(users)).Int("k", opts.TopK).Msg("getting top k")
	return m.collect(scores, users, opts.TopK, opts.Sort), nil
}

// collect turns per-row top-k selections into output rows labelled with
// rowLabels, dropping non-finite scores.
func (m *Model) collect(scores *mat.Dense, rowLabels []string, k int, sorted bool) []recommend.Recommendation {
	indices, values := TopK(scores, k, sorted)
	out := make([]recommend.Recommendation, 0, len(rowLabels)*max(k, 0))
	for i, cols := range indices {
		for p, c := range cols {
			if !finite(values[i][p]) {
				continue
			}
			out = append(out, recommend.Recommendation{
				UserID: rowLabels[i],
				ItemID: m.index.ItemID(c),
				Score:  values[i][p],
			})
		}
	}
	return out
}

// PopularityTopK returns the k most frequent items across all users, where
// frequency is the diagonal of the masked co-occurrence matrix.
func (m *Model) PopularityTopK(k int, sorted bool) ([]recommend.ItemScore, error) {
	if !m.fitted.Load() {
		return nil, recommend.ErrNotFitted
	}
	freq := append([]float64(nil), m.itemFrequencies...)
	scores := mat.NewDense(1, len(freq), freq)

	indices, values := TopK(scores, k, sorted)
	out := make([]recommend.ItemScore, 0, len(indices[0]))
	for p, c := range indices[0] {
		out = append(out, recommend.ItemScore{ItemID: m.index.ItemID(c), Score: values[0][p]})
	}
	return out, nil
}
