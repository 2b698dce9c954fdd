// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sar

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/recommend/sparse"
)

// defaultParallelRows is the batch size from which scoring fans out.
const defaultParallelRows = 64

// ScoreOptions controls Score.
type ScoreOptions struct {
	// RemoveSeen sets the score of every item the user interacted with
	// during training to −∞.
	RemoveSeen bool

	// Normalize divides scores by the unity-affinity scores, mapping them
	// back to the rating range. NaN results become −∞. The model must have
	// been fitted with normalization.
	Normalize bool
}

// Score returns the len(distinct users) × n_items score matrix. Duplicate
// user ids are scored once, rows in first-seen order. An unknown user fails
// the whole batch with ErrUnknownEntity.
func (m *Model) Score(ctx context.Context, userIDs []string, opts ScoreOptions) (*mat.Dense, error) {
	if !m.fitted.Load() {
		return nil, recommend.ErrNotFitted
	}
	if opts.Normalize && m.unityAffinity == nil {
		return nil, recommend.ErrNormalizationUnavailable
	}

	users, err := m.resolveUsers(userIDs)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: no users to score", recommend.ErrInvalidInput)
	}

	m.logger.Debug().
		Int("users", len(users)).
		Bool("remove_seen", opts.RemoveSeen).
		Bool("normalize", opts.Normalize).
		Msg("calculating recommendation scores")

	out := mat.NewDense(len(users), m.index.NumItems(), nil)
	err = m.forEachRow(ctx, len(users), func(scratch []float64, i int) {
		m.scoreRow(out.RawRowView(i), scratch, users[i], opts)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// resolveUsers maps distinct user ids, in first-seen order, to row positions.
func (m *Model) resolveUsers(userIDs []string) ([]int, error) {
	seen := make(map[string]struct{}, len(userIDs))
	users := make([]int, 0, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		u, ok := m.index.UserIndex(id)
		if !ok {
			return nil, fmt.Errorf("%w: user %q is not in the training set", recommend.ErrUnknownEntity, id)
		}
		users = append(users, u)
	}
	return users, nil
}

// distinct returns ids without duplicates, in first-seen order.
func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// scoreRow writes the scores of user u into dst. scratch must have the
// same length as dst.
func (m *Model) scoreRow(dst, scratch []float64, u int, opts ScoreOptions) {
	cols, vals := m.affinity.Row(u)
	m.similarity.MulRowsInto(dst, cols, vals)

	if opts.RemoveSeen {
		for _, c := range cols {
			dst[c] = math.Inf(-1)
		}
	}

	if opts.Normalize {
		ucols, uvals := m.unityAffinity.Row(u)
		m.similarity.MulRowsInto(scratch, ucols, uvals)
		for j := range dst {
			dst[j] /= scratch[j]
			if math.IsNaN(dst[j]) {
				dst[j] = math.Inf(-1)
			}
		}
	}
}

// forEachRow calls fn for rows [0, n). Batches of at least parallelRows rows
// are split across GOMAXPROCS goroutines; fn must only touch row i.
func (m *Model) forEachRow(ctx context.Context, n int, fn func(scratch []float64, i int)) error {
	nItems := m.index.NumItems()
	if n < m.parallelRows {
		if err := ctx.Err(); err != nil {
			return err
		}
		scratch := make([]float64, nItems)
		for i := 0; i < n; i++ {
			fn(scratch, i)
		}
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			scratch := make([]float64, nItems)
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				fn(scratch, i)
			}
			return nil
		})
	}
	return g.Wait()
}

// scoreSeeds scores a request-scoped pseudo-affinity matrix.
func (m *Model) scoreSeeds(ctx context.Context, pseudo *sparse.CSR) (*mat.Dense, error) {
	n, _ := pseudo.Dims()
	out := mat.NewDense(n, m.index.NumItems(), nil)
	err := m.forEachRow(ctx, n, func(_ []float64, i int) {
		cols, vals := pseudo.Row(i)
		m.similarity.MulRowsInto(out.RawRowView(i), cols, vals)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
