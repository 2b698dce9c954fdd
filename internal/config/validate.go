// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/recommend/featuresim"
	"github.com/tomtom215/sar/internal/validation"
)

// Validate checks struct tags and the rules that span fields.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if err := c.validateModel(); err != nil {
		return err
	}
	if c.Storage.Backend != "none" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required for the %s backend", c.Storage.Backend)
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	if c.Cache.Enabled && (c.Cache.TTL <= 0 || c.Cache.MaxEntries <= 0) {
		return fmt.Errorf("cache.ttl and cache.max_entries must be positive when the cache is enabled")
	}
	return nil
}

func (c *Config) validateModel() error {
	if _, err := c.Model.timeNow(); err != nil {
		return err
	}
	if !strings.EqualFold(c.Model.SimilarityType, string(recommend.SimilarityCustom)) {
		return nil
	}
	if len(c.Model.Features) == 0 && c.Model.RatingWeight < 1 {
		return fmt.Errorf("model.features is required for custom similarity unless rating_weight is 1")
	}
	if len(c.Model.Features) > 0 && c.Data.Features == "" {
		return fmt.Errorf("data.features is required when model.features is set")
	}
	_, err := c.Model.Recommend()
	return err
}

func (m *ModelConfig) timeNow() (time.Time, error) {
	if m.TimeNow == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, m.TimeNow)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: model.time_now must be RFC3339: %v", recommend.ErrInvalidConfiguration, err)
	}
	return t, nil
}

// Recommend converts the section into a validated model configuration.
func (m *ModelConfig) Recommend() (*recommend.Config, error) {
	st, err := recommend.ParseSimilarityType(m.SimilarityType)
	if err != nil {
		return nil, err
	}
	now, err := m.timeNow()
	if err != nil {
		return nil, err
	}

	cfg := &recommend.Config{
		SimilarityType: st,
		Threshold:      m.Threshold,
		TimeDecay:      m.TimeDecay,
		HalfLifeDays:   m.HalfLifeDays,
		TimeNow:        now,
		Normalize:      m.Normalize,
	}

	if st == recommend.SimilarityCustom {
		custom := &recommend.CustomSimilarity{
			RatingWeight: m.RatingWeight,
			Features:     make([]recommend.FeatureWeight, 0, len(m.Features)),
		}
		for _, f := range m.Features {
			sim, err := featuresim.ByName(f.Similarity, f.MaxDiff)
			if err != nil {
				return nil, fmt.Errorf("feature %q: %w", f.Column, err)
			}
			custom.Features = append(custom.Features, recommend.FeatureWeight{
				Column:     f.Column,
				Weight:     f.Weight,
				Similarity: sim,
			})
		}
		cfg.Custom = custom
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FeatureColumns returns the feature columns the model blends.
func (m *ModelConfig) FeatureColumns() []string {
	cols := make([]string, len(m.Features))
	for i, f := range m.Features {
		cols[i] = f.Column
	}
	return cols
}
