// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// SimilarityType selects how co-occurrence counts become item similarity.
type SimilarityType string

const (
	// SimilarityCooccurrence uses the masked co-occurrence counts directly.
	SimilarityCooccurrence SimilarityType = "cooccurrence"

	// SimilarityJaccard uses c_ij / (f_i + f_j − c_ij).
	SimilarityJaccard SimilarityType = "jaccard"

	// SimilarityLift uses c_ij / (f_i · f_j).
	SimilarityLift SimilarityType = "lift"

	// SimilarityCustom blends Jaccard with item feature similarity.
	SimilarityCustom SimilarityType = "custom"
)

// ParseSimilarityType parses a similarity type name, case-insensitively.
func ParseSimilarityType(s string) (SimilarityType, error) {
	t := SimilarityType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown similarity type %q", ErrInvalidConfiguration, s)
	}
	return t, nil
}

// Valid reports whether t names a supported similarity type.
func (t SimilarityType) Valid() bool {
	switch t {
	case SimilarityCooccurrence, SimilarityJaccard, SimilarityLift, SimilarityCustom:
		return true
	default:
		return false
	}
}

// String returns the similarity type name.
func (t SimilarityType) String() string {
	return string(t)
}

// Config contains all parameters of a SAR model.
type Config struct {
	// SimilarityType selects the similarity metric.
	// Default: jaccard.
	SimilarityType SimilarityType `json:"similarity_type"`

	// Threshold is the minimum co-occurrence count kept in the
	// co-occurrence matrix. Cells below it, the diagonal included, are
	// removed. Must be at least 1.
	// Default: 1.
	Threshold int `json:"threshold"`

	// TimeDecay enables exponential time decay of interaction weights.
	// Default: false.
	TimeDecay bool `json:"time_decay"`

	// HalfLifeDays is the decay half-life in days.
	// Default: 30.
	HalfLifeDays float64 `json:"half_life_days"`

	// TimeNow is the reference time for decay. The zero value uses the
	// latest timestamp in the training data.
	TimeNow time.Time `json:"time_now,omitempty"`

	// Normalize builds the unity affinity at fit time so scores can be
	// rescaled to the rating range.
	// Default: false.
	Normalize bool `json:"normalize"`

	// Custom configures the custom similarity blend. Required when
	// SimilarityType is custom, ignored otherwise.
	Custom *CustomSimilarity `json:"-"`
}

// DefaultConfig returns a Config with the defaults of the reference SAR model.
func DefaultConfig() *Config {
	return &Config{
		SimilarityType: SimilarityJaccard,
		Threshold:      1,
		HalfLifeDays:   30,
	}
}

// HalfLife returns the decay half-life as a duration.
func (c *Config) HalfLife() time.Duration {
	return time.Duration(c.HalfLifeDays * float64(24*time.Hour))
}

// Validate checks the configuration for errors. Every error wraps
// ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if !c.SimilarityType.Valid() {
		return fmt.Errorf("%w: unknown similarity type %q", ErrInvalidConfiguration, c.SimilarityType)
	}
	if c.Threshold < 1 {
		return fmt.Errorf("%w: threshold must be >= 1, got %d", ErrInvalidConfiguration, c.Threshold)
	}
	if c.TimeDecay && (c.HalfLifeDays <= 0 || math.IsNaN(c.HalfLifeDays) || math.IsInf(c.HalfLifeDays, 0)) {
		return fmt.Errorf("%w: half_life_days must be positive, got %v", ErrInvalidConfiguration, c.HalfLifeDays)
	}

	if c.SimilarityType != SimilarityCustom {
		return nil
	}
	if c.Custom == nil {
		return fmt.Errorf("%w: custom similarity requires a blend configuration", ErrInvalidConfiguration)
	}
	if c.Custom.RatingWeight < 0 || c.Custom.RatingWeight > 1 {
		return fmt.Errorf("%w: rating_weight must be in [0, 1], got %f", ErrInvalidConfiguration, c.Custom.RatingWeight)
	}
	seen := make(map[string]struct{}, len(c.Custom.Features))
	for _, f := range c.Custom.Features {
		if f.Column == "" {
			return fmt.Errorf("%w: feature column name is empty", ErrInvalidConfiguration)
		}
		if _, dup := seen[f.Column]; dup {
			return fmt.Errorf("%w: feature column %q listed twice", ErrInvalidConfiguration, f.Column)
		}
		seen[f.Column] = struct{}{}
		if f.Weight < 0 {
			return fmt.Errorf("%w: feature %q weight must be non-negative, got %f", ErrInvalidConfiguration, f.Column, f.Weight)
		}
		if f.Similarity == nil {
			return fmt.Errorf("%w: feature %q has no similarity function", ErrInvalidConfiguration, f.Column)
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	if c.Custom != nil {
		custom := *c.Custom
		custom.Features = append([]FeatureWeight(nil), c.Custom.Features...)
		out.Custom = &custom
	}
	return &out
}
