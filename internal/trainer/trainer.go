// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package trainer fits a SAR model from the configured data sources.
//
// It loads interactions (and item features for the custom similarity)
// through DuckDB, resolves the feature similarity through a snapshot store
// and records fit metrics:
//
//	snapshot for len(features) found -> sar.Restored
//	not found                        -> sar.Computed, saved after the fit
package trainer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sar/internal/config"
	"github.com/tomtom215/sar/internal/database"
	"github.com/tomtom215/sar/internal/metrics"
	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/recommend/sar"
	"github.com/tomtom215/sar/internal/recommend/storage"
)

// Loader reads training data.
type Loader interface {
	LoadInteractions(ctx context.Context, src database.TableSource, cols database.Columns) ([]recommend.Interaction, error)
	LoadFeatures(ctx context.Context, src database.TableSource, itemColumn string, columns []string) ([]recommend.FeatureRow, error)
}

// Trainer fits models. Store may be nil, in which case feature similarity
// is always computed and never saved.
type Trainer struct {
	model  config.ModelConfig
	data   config.DataConfig
	loader Loader
	store  storage.SimilarityStore
	logger zerolog.Logger
}

// New returns a Trainer for the model and data sections of cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.Config, loader Loader, store storage.SimilarityStore, logger zerolog.Logger) *Trainer {
	return &Trainer{
		model:  cfg.Model,
		data:   cfg.Data,
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "trainer").Logger(),
	}
}

// Train loads data and returns a fitted model.
func (t *Trainer) Train(ctx context.Context) (*sar.Model, error) {
	start := time.Now()
	model, source, err := t.train(ctx)
	if err != nil {
		metrics.RecordFit(time.Since(start), 0, 0, 0, "", err)
		return nil, err
	}

	st := model.Stats()
	metrics.RecordFit(time.Since(start), st.Users, st.Items, st.SimilarityNonzeros, st.FeatureSimilaritySource, nil)
	t.logger.Info().
		Int("users", st.Users).
		Int("items", st.Items).
		Str("feature_similarity", source).
		Dur("duration", time.Since(start)).
		Msg("Model trained")
	return model, nil
}

func (t *Trainer) train(ctx context.Context) (*sar.Model, string, error) {
	rc, err := t.model.Recommend()
	if err != nil {
		return nil, "", err
	}
	model, err := sar.New(rc, t.logger, sar.WithParallelRows(t.model.ParallelRows))
	if err != nil {
		return nil, "", err
	}

	interactions, err := t.loader.LoadInteractions(ctx, database.ParseSource(t.data.Interactions), database.Columns{
		User:      t.data.UserColumn,
		Item:      t.data.ItemColumn,
		Rating:    t.data.RatingColumn,
		Timestamp: t.data.TimestampColumn,
	})
	if err != nil {
		return nil, "", fmt.Errorf("load interactions: %w", err)
	}

	var (
		opts     sar.FitOptions
		features []recommend.FeatureRow
	)
	if rc.SimilarityType == recommend.SimilarityCustom {
		features, err = t.loadFeatures(ctx)
		if err != nil {
			return nil, "", err
		}
		opts.Similarity, err = t.resolveSource(ctx, features)
		if err != nil {
			return nil, "", err
		}
	}

	if err := model.Fit(ctx, interactions, opts); err != nil {
		return nil, "", fmt.Errorf("fit model: %w", err)
	}

	if _, computed := opts.Similarity.(sar.Computed); computed {
		t.saveSnapshot(ctx, model, len(features))
	}
	return model, model.Stats().FeatureSimilaritySource, nil
}

func (t *Trainer) loadFeatures(ctx context.Context) ([]recommend.FeatureRow, error) {
	cols := t.model.FeatureColumns()
	if len(cols) == 0 {
		return nil, nil
	}
	features, err := t.loader.LoadFeatures(ctx, database.ParseSource(t.data.Features), t.data.FeatureItemColumn, cols)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}
	return features, nil
}

// resolveSource restores the feature similarity for this catalog size when
// a snapshot exists.
func (t *Trainer) resolveSource(ctx context.Context, features []recommend.FeatureRow) (sar.SimilaritySource, error) {
	computed := sar.Computed{Features: features}
	if t.store == nil || len(features) == 0 {
		return computed, nil
	}

	snap, err := t.store.Load(ctx, len(features))
	switch {
	case err == nil:
		t.logger.Info().
			Int("catalog_size", len(features)).
			Time("saved_at", snap.Metadata.SavedAt).
			Msg("Restoring item feature similarity from snapshot")
		return snap.Restored(), nil
	case errors.Is(err, storage.ErrNotFound):
		return computed, nil
	default:
		return nil, fmt.Errorf("load feature similarity snapshot: %w", err)
	}
}

// saveSnapshot stores the computed feature similarity. A failed save is
// logged; the fitted model is still usable.
func (t *Trainer) saveSnapshot(ctx context.Context, model *sar.Model, catalogSize int) {
	if t.store == nil || catalogSize == 0 {
		return
	}
	snap, ok := storage.FromModel(model, catalogSize)
	if !ok {
		return
	}
	if err := t.store.Save(ctx, snap); err != nil {
		t.logger.Warn().Err(err).Int("catalog_size", catalogSize).Msg("Failed to save feature similarity snapshot")
		return
	}
	t.logger.Info().
		Int("catalog_size", catalogSize).
		Int64("size_bytes", snap.Metadata.SizeBytes).
		Msg("Saved item feature similarity snapshot")
}
