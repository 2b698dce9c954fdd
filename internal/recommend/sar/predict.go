// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sar

import (
	"context"

	"github.com/tomtom215/sar/internal/recommend"
)

// PredictResult holds the scores of requested (user, item) pairs.
type PredictResult struct {
	// Predictions are in request order, one per pair.
	Predictions []recommend.Prediction `json:"predictions"`

	// UnseenItems lists the distinct requested items absent from training.
	// Their predictions are 0.
	UnseenItems []string `json:"unseen_items,omitempty"`
}

// Predict scores the requested (user, item) pairs. Every user must be known
// to the model; items unseen during training score 0.
func (m *Model) Predict(ctx context.Context, pairs []recommend.UserItem) (*PredictResult, error) {
	if !m.fitted.Load() {
		return nil, recommend.ErrNotFitted
	}
	result := &PredictResult{Predictions: make([]recommend.Prediction, 0, len(pairs))}
	if len(pairs) == 0 {
		return result, nil
	}

	userIDs := make([]string, len(pairs))
	for i, p := range pairs {
		userIDs[i] = p.UserID
	}
	users := distinct(userIDs)
	row := make(map[string]int, len(users))
	for i, u := range users {
		row[u] = i
	}

	scores, err := m.Score(ctx, users, ScoreOptions{})
	if err != nil {
		return nil, err
	}

	unseen := make(map[string]struct{})
	for _, p := range pairs {
		pred := recommend.Prediction{UserID: p.UserID, ItemID: p.ItemID}
		if item, ok := m.index.ItemIndex(p.ItemID); ok {
			pred.Score = scores.At(row[p.UserID], item)
		} else if _, dup := unseen[p.ItemID]; !dup {
			unseen[p.ItemID] = struct{}{}
			result.UnseenItems = append(result.UnseenItems, p.ItemID)
		}
		result.Predictions = append(result.Predictions, pred)
	}

	if len(result.UnseenItems) > 0 {
		m.logger.Warn().
			Int("unseen_items", len(result.UnseenItems)).
			Msg("items found in request not seen during training, new items will have score of 0")
	}
	return result, nil
}
