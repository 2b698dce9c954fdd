// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import (
	"time"
)

// Interaction represents one row of the training interaction table.
type Interaction struct {
	// UserID is the external user identifier.
	UserID string `json:"user_id"`

	// ItemID is the external item identifier.
	ItemID string `json:"item_id"`

	// Rating is the explicit rating or implicit event weight.
	Rating float64 `json:"rating"`

	// Timestamp is when the interaction occurred.
	// The zero value means the row carries no timestamp.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// HasTimestamp reports whether the interaction carries a timestamp.
func (i Interaction) HasTimestamp() bool {
	return !i.Timestamp.IsZero()
}

// FeatureRow holds the raw feature values of one catalog item.
type FeatureRow struct {
	// ItemID is the external item identifier the features describe.
	ItemID string `json:"item_id"`

	// Values maps feature column names to raw values.
	Values map[string]any `json:"values"`
}

// UserItem is a (user, item) pair submitted for prediction.
type UserItem struct {
	UserID string `json:"user_id"`
	ItemID string `json:"item_id"`
}

// Recommendation is one output row of a top-K query.
type Recommendation struct {
	// UserID is the user (or seed group) the item is recommended to.
	UserID string `json:"user_id"`

	// ItemID is the recommended item.
	ItemID string `json:"item_id"`

	// Score is the prediction score; higher is better.
	Score float64 `json:"prediction"`
}

// ItemScore is an item and its score, used where no user applies.
type ItemScore struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"prediction"`
}

// Prediction is the model score for a requested (user, item) pair.
type Prediction struct {
	UserID string  `json:"user_id"`
	ItemID string  `json:"item_id"`
	Score  float64 `json:"prediction"`
}

// PairwiseSimilarity compares the raw feature values of two items.
// Implementations must be symmetric: Similarity(a, b) == Similarity(b, a).
type PairwiseSimilarity interface {
	Similarity(a, b any) float64
}

// PairwiseFunc adapts an ordinary function to PairwiseSimilarity.
type PairwiseFunc func(a, b any) float64

// Similarity calls f(a, b).
func (f PairwiseFunc) Similarity(a, b any) float64 {
	return f(a, b)
}

// FeatureWeight binds one feature column to its blend weight and comparison function.
type FeatureWeight struct {
	// Column is the feature column name in FeatureRow.Values.
	Column string

	// Weight is the contribution of this column to the feature similarity.
	// Weights across all columns are expected to sum to 1.
	Weight float64

	// Similarity compares two items' values for Column.
	Similarity PairwiseSimilarity
}

// CustomSimilarity configures the custom similarity blend:
//
//	similarity = RatingWeight·jaccard + (1 − RatingWeight)·Σ Weight_c·sim_c
type CustomSimilarity struct {
	// RatingWeight is the share of the co-occurrence (Jaccard) similarity.
	RatingWeight float64

	// Features lists the feature columns in evaluation order.
	Features []FeatureWeight
}

// FeatureWeightSum returns the sum of the feature column weights.
func (c *CustomSimilarity) FeatureWeightSum() float64 {
	var sum float64
	for _, f := range c.Features {
		sum += f.Weight
	}
	return sum
}
