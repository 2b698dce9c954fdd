// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package recommend defines the shared vocabulary of the SAR recommender:
// interaction records, feature rows, recommendation output rows, model
// configuration, the error taxonomy, and the identity index that maps
// external user and item identifiers to dense matrix positions.
//
// # Architecture
//
// The numerical engine lives in subpackages:
//
//   - sparse: compressed sparse row matrices and the kernels the model needs
//     (duplicate-summing construction, AᵀA, row × matrix accumulation)
//   - sar: affinity, co-occurrence, similarity, scoring, top-K selection and
//     cold-start scoring, wrapped in the Model type
//   - featuresim: ready-made pairwise similarity functions for the custom
//     similarity blend
//   - storage: persistence of item feature similarity matrices
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	cfg.SimilarityType = recommend.SimilarityJaccard
//
//	model, err := sar.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	if err := model.Fit(ctx, interactions, sar.FitOptions{}); err != nil {
//	    return err
//	}
//
//	recs, err := model.RecommendKItems(ctx, []string{"alice"}, sar.RecommendOptions{
//	    TopK:       10,
//	    Sort:       true,
//	    RemoveSeen: true,
//	})
//
// # Thread Safety
//
// An Index is immutable once built. A fitted model is never mutated again, so
// scoring calls may run concurrently without locking.
package recommend
