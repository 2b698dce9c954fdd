// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package sar implements the Simple Algorithm for Recommendation.
//
// SAR recommends items similar to those a user already has an affinity for.
// Fitting runs four phases:
//
//  1. Affinity: the user × item matrix of (optionally time-decayed) ratings.
//     Without decay the last rating per (user, item) wins; with decay the
//     decayed ratings are summed.
//  2. Co-occurrence: C = IᵀI over the binary user × item incidence matrix,
//     with every cell below the threshold removed, the diagonal included.
//     The diagonal of the masked matrix holds the item frequencies.
//  3. Similarity: C itself, Jaccard c_ij/(f_i+f_j−c_ij), lift c_ij/(f_i·f_j),
//     or a weighted blend of Jaccard with item feature similarity.
//  4. Optionally the unity affinity (all ratings set to 1) used to rescale
//     scores to the rating range.
//
// Scoring multiplies a user's affinity row by the item similarity matrix.
// Seen items can be masked with −∞ and scores divided by the unity score.
// Cold-start scoring builds a request-scoped pseudo-affinity from seed items
// and reuses the fitted similarity matrix.
//
// A Model is fitted once. After Fit returns it is never mutated and all of its
// query methods are safe for concurrent use.
package sar
