// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sar

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/recommend/sparse"
)

// Feature similarity source labels reported by Stats.
const (
	FeatureSourceNone     = "none"
	FeatureSourceComputed = "computed"
	FeatureSourceRestored = "restored"
)

// Model is a SAR recommender. It is fitted once and read-only afterwards.
type Model struct {
	cfg          *recommend.Config
	decay        DecayFunc
	logger       zerolog.Logger
	parallelRows int

	fitMu  sync.Mutex
	fitted atomic.Bool

	// Set by Fit before fitted is stored; read-only afterwards.
	index             *recommend.Index
	affinity          *sparse.CSR
	unityAffinity     *sparse.CSR
	similarity        ItemSimilarity
	itemFrequencies   []float64
	featureSimilarity *mat.Dense
	featureSource     string
	fittedAt          time.Time
	fitDuration       time.Duration
}

// Option customizes a Model.
type Option func(*Model)

// WithDecay replaces the exponential decay function used when time decay
// is enabled.
func WithDecay(fn DecayFunc) Option {
	return func(m *Model) {
		if fn != nil {
			m.decay = fn
		}
	}
}

// WithParallelRows sets the batch size from which scoring fans out across
// goroutines. Values below 1 are ignored.
func WithParallelRows(n int) Option {
	return func(m *Model) {
		if n >= 1 {
			m.parallelRows = n
		}
	}
}

// New creates an unfitted model. A nil cfg uses recommend.DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *recommend.Config, logger zerolog.Logger, opts ...Option) (*Model, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Model{
		cfg:          cfg.Clone(),
		decay:        ExponentialDecay,
		logger:       logger.With().Str("component", "sar").Logger(),
		parallelRows: defaultParallelRows,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// FitOptions carries fit inputs other than the interaction table.
type FitOptions struct {
	// Similarity supplies item feature similarity. Required for the custom
	// similarity type and ignored otherwise.
	Similarity SimilaritySource
}

// Fit trains the model on interactions. It can be called once; a second
// call returns ErrAlreadyFitted.
func (m *Model) Fit(ctx context.Context, interactions []recommend.Interaction, opts FitOptions) error {
	m.fitMu.Lock()
	defer m.fitMu.Unlock()

	if m.fitted.Load() {
		return recommend.ErrAlreadyFitted
	}
	if err := validateInteractions(interactions); err != nil {
		return err
	}
	if m.cfg.SimilarityType == recommend.SimilarityCustom && opts.Similarity == nil {
		return fmt.Errorf("%w: custom similarity requires a similarity source", recommend.ErrInvalidConfiguration)
	}

	start := time.Now()
	m.logger.Info().
		Int("interactions", len(interactions)).
		Str("similarity", m.cfg.SimilarityType.String()).
		Msg("starting model fit")

	idx := recommend.NewIndex(interactions)

	affinityOpts := AffinityOptions{}
	if m.cfg.TimeDecay {
		m.logger.Debug().Msg("calculating time-decayed affinities")
		affinityOpts.Decay = m.decay
		affinityOpts.HalfLife = m.cfg.HalfLife()
		affinityOpts.Reference = m.cfg.TimeNow
	} else {
		m.logger.Debug().Msg("de-duplicating the user-item counts")
	}

	var unity *sparse.CSR
	if m.cfg.Normalize {
		m.logger.Debug().Msg("calculating normalization factors")
		unityOpts := affinityOpts
		unityOpts.Unity = true
		u, err := BuildAffinity(interactions, idx, unityOpts)
		if err != nil {
			return fmt.Errorf("build unity affinity: %w", err)
		}
		unity = u
	}

	m.logger.Debug().Msg("building user affinity sparse matrix")
	affinity, err := BuildAffinity(interactions, idx, affinityOpts)
	if err != nil {
		return fmt.Errorf("build affinity: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.logger.Debug().Msg("calculating item co-occurrence")
	cells, err := DistinctCells(interactions, idx)
	if err != nil {
		return err
	}
	cooccurrence, err := BuildCooccurrence(cells, idx.NumUsers(), idx.NumItems(), m.cfg.Threshold)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	features, source, err := m.resolveFeatures(ctx, idx, opts.Similarity)
	if err != nil {
		return err
	}

	m.logger.Debug().Str("similarity", m.cfg.SimilarityType.String()).Msg("calculating item similarity")
	similarity, err := buildSimilarity(m.cfg, cooccurrence, features)
	if err != nil {
		return err
	}

	m.index = idx
	m.affinity = affinity
	m.unityAffinity = unity
	m.similarity = similarity
	m.itemFrequencies = cooccurrence.Diagonal()
	m.featureSimilarity = features
	m.featureSource = source
	m.fittedAt = time.Now()
	m.fitDuration = time.Since(start)
	m.fitted.Store(true)

	m.logger.Info().
		Int("users", idx.NumUsers()).
		Int("items", idx.NumItems()).
		Int("similarity_nonzeros", similarity.NNZ()).
		Int64("duration_ms", m.fitDuration.Milliseconds()).
		Msg("model fit complete")

	return nil
}

func (m *Model) resolveFeatures(ctx context.Context, idx *recommend.Index, src SimilaritySource) (*mat.Dense, string, error) {
	if m.cfg.SimilarityType != recommend.SimilarityCustom {
		return nil, FeatureSourceNone, nil
	}
	switch s := src.(type) {
	case Computed:
		m.logger.Info().Int("feature_rows", len(s.Features)).Msg("computing item feature similarity")
		features, err := BuildFeatureSimilarity(ctx, s.Features, idx, m.cfg.Custom)
		if err != nil {
			return nil, "", err
		}
		return features, FeatureSourceComputed, nil
	case Restored:
		m.logger.Info().Int("snapshot_items", len(s.Items)).Msg("restoring item feature similarity")
		features, err := remapRestored(s, idx)
		if err != nil {
			return nil, "", err
		}
		return features, FeatureSourceRestored, nil
	default:
		return nil, "", fmt.Errorf("%w: unsupported similarity source %T", recommend.ErrInvalidConfiguration, src)
	}
}

func validateInteractions(rows []recommend.Interaction) error {
	if len(rows) == 0 {
		return fmt.Errorf("%w: no interactions to fit", recommend.ErrInvalidInput)
	}
	for i := range rows {
		r := &rows[i]
		if r.UserID == "" || r.ItemID == "" {
			return fmt.Errorf("%w: row %d has an empty user or item id", recommend.ErrInvalidInput, i)
		}
		if math.IsNaN(r.Rating) || math.IsInf(r.Rating, 0) {
			return fmt.Errorf("%w: row %d has a non-finite rating", recommend.ErrInvalidInput, i)
		}
	}
	return nil
}

// IsFitted reports whether Fit has completed.
func (m *Model) IsFitted() bool {
	return m.fitted.Load()
}

// Index returns the identity index of a fitted model, or nil.
func (m *Model) Index() *recommend.Index {
	if !m.fitted.Load() {
		return nil
	}
	return m.index
}

// Config returns a copy of the model configuration.
func (m *Model) Config() *recommend.Config {
	return m.cfg.Clone()
}

// FeatureSimilarity returns a copy of the item feature similarity matrix and
// the item ids of its rows, so it can be persisted. ok is false when the
// model has no feature similarity.
func (m *Model) FeatureSimilarity() (items []string, matrix *mat.Dense, ok bool) {
	if !m.fitted.Load() || m.featureSimilarity == nil {
		return nil, nil, false
	}
	return m.index.Items(), mat.DenseCopyOf(m.featureSimilarity), true
}

// ItemFrequencies returns a copy of the item frequencies, the diagonal of the
// masked co-occurrence matrix, in column order.
func (m *Model) ItemFrequencies() []float64 {
	if !m.fitted.Load() {
		return nil
	}
	return append([]float64(nil), m.itemFrequencies...)
}

// Stats describes a fitted model.
type Stats struct {
	Fitted                  bool      `json:"fitted"`
	Users                   int       `json:"users"`
	Items                   int       `json:"items"`
	AffinityNonzeros        int       `json:"affinity_nonzeros"`
	SimilarityNonzeros      int       `json:"similarity_nonzeros"`
	SimilarityType          string    `json:"similarity_type"`
	Threshold               int       `json:"threshold"`
	TimeDecay               bool      `json:"time_decay"`
	Normalize               bool      `json:"normalize"`
	FeatureSimilaritySource string    `json:"feature_similarity_source"`
	FittedAt                time.Time `json:"fitted_at,omitempty"`
	FitDurationMS           int64     `json:"fit_duration_ms"`
}

// Stats returns a summary of the model.
func (m *Model) Stats() Stats {
	s := Stats{
		SimilarityType: m.cfg.SimilarityType.String(),
		Threshold:      m.cfg.Threshold,
		TimeDecay:      m.cfg.TimeDecay,
		Normalize:      m.cfg.Normalize,
	}
	if !m.fitted.Load() {
		return s
	}
	s.Fitted = true
	s.Users = m.index.NumUsers()
	s.Items = m.index.NumItems()
	s.AffinityNonzeros = m.affinity.NNZ()
	s.SimilarityNonzeros = m.similarity.NNZ()
	s.FeatureSimilaritySource = m.featureSource
	s.FittedAt = m.fittedAt
	s.FitDurationMS = m.fitDuration.Milliseconds()
	return s
}
