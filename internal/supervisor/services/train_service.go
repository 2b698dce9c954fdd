// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/sar/internal/recommend/sar"
)

// Trainer loads the configured tables and fits a new model.
type Trainer interface {
	Train(ctx context.Context) (*sar.Model, error)
}

// Publisher receives each newly fitted model.
type Publisher interface {
	SetModel(m *sar.Model)
}

// TrainServiceConfig controls when models are fitted.
type TrainServiceConfig struct {
	// RefreshInterval refits this often. 0 fits once.
	RefreshInterval time.Duration

	// TrainTimeout bounds a single fit. Default: 30m
	TrainTimeout time.Duration
}

// TrainService fits models and publishes them.
type TrainService struct {
	trainer   Trainer
	publisher Publisher
	config    TrainServiceConfig
	logger    zerolog.Logger
	name      string
}

// NewTrainService creates a training service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainService(trainer Trainer, publisher Publisher, cfg TrainServiceConfig, logger zerolog.Logger) *TrainService {
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 30 * time.Minute
	}
	return &TrainService{
		trainer:   trainer,
		publisher: publisher,
		config:    cfg,
		logger:    logger.With().Str("service", "train").Logger(),
		name:      "train-service",
	}
}

// Serve implements suture.Service. The first fit must succeed; its error is
// returned so the supervisor retries with backoff.
func (s *TrainService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("refresh_interval", s.config.RefreshInterval).
		Msg("train service starting")

	if err := s.train(ctx); err != nil {
		return fmt.Errorf("initial fit: %w", err)
	}
	if s.config.RefreshInterval <= 0 {
		return suture.ErrDoNotRestart
	}

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("train service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.train(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled refit failed, keeping the current model")
			}
		}
	}
}

func (s *TrainService) train(ctx context.Context) error {
	trainCtx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	start := time.Now()
	m, err := s.trainer.Train(trainCtx)
	if err != nil {
		return err
	}
	s.publisher.SetModel(m)

	stats := m.Stats()
	s.logger.Info().
		Int("users", stats.Users).
		Int("items", stats.Items).
		Dur("duration", time.Since(start)).
		Msg("model published")
	return nil
}

// String names the service in supervisor logs.
func (s *TrainService) String() string {
	return s.name
}
