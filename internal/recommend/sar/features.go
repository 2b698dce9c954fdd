// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sar

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/sar/internal/recommend"
)

// BuildFeatureSimilarity computes the n_items × n_items feature similarity
// matrix, where cell (i, j) is Σ weight_c · sim_c(values_i[c], values_j[c]).
//
// Feature rows for items absent from idx are skipped. Items without a
// feature row keep a zero row and column. Only the upper triangle is
// evaluated; similarity functions are assumed symmetric.
func BuildFeatureSimilarity(ctx context.Context, features []recommend.FeatureRow, idx *recommend.Index, custom *recommend.CustomSimilarity) (*mat.Dense, error) {
	n := idx.NumItems()
	if n == 0 {
		return nil, fmt.Errorf("%w: cannot build feature similarity for an empty catalog", recommend.ErrInvalidInput)
	}
	if custom == nil {
		return nil, fmt.Errorf("%w: feature similarity requires a blend configuration", recommend.ErrInvalidConfiguration)
	}

	rows := make([]map[string]any, n)
	for i := range features {
		pos, ok := idx.ItemIndex(features[i].ItemID)
		if !ok || rows[pos] != nil {
			continue
		}
		rows[pos] = features[i].Values
		if rows[pos] == nil {
			rows[pos] = map[string]any{}
		}
	}

	out := mat.NewDense(n, n, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		if rows[i] == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Goroutine i owns cells (i, j) and (j, i) for j >= i.
			for j := i; j < n; j++ {
				if rows[j] == nil {
					continue
				}
				var v float64
				for _, f := range custom.Features {
					v += f.Weight * f.Similarity.Similarity(rows[i][f.Column], rows[j][f.Column])
				}
				out.Set(i, j, v)
				out.Set(j, i, v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build feature similarity: %w", err)
	}
	return out, nil
}

// remapRestored reorders a restored matrix into the column order of idx.
// Restored items unknown to idx are dropped and fitted items missing from
// the snapshot get a zero row and column.
func remapRestored(r Restored, idx *recommend.Index) (*mat.Dense, error) {
	if r.Matrix == nil {
		return nil, fmt.Errorf("%w: restored feature similarity has no matrix", recommend.ErrInvalidInput)
	}
	rr, rc := r.Matrix.Dims()
	if rr != len(r.Items) || rc != len(r.Items) {
		return nil, fmt.Errorf("%w: restored feature similarity is %d×%d for %d items",
			recommend.ErrInvalidInput, rr, rc, len(r.Items))
	}

	n := idx.NumItems()
	positions := make([]int, len(r.Items))
	for a, id := range r.Items {
		positions[a] = -1
		if p, ok := idx.ItemIndex(id); ok {
			positions[a] = p
		}
	}

	out := mat.NewDense(n, n, nil)
	for a, pa := range positions {
		if pa < 0 {
			continue
		}
		for b, pb := range positions {
			if pb < 0 {
				continue
			}
			out.Set(pa, pb, r.Matrix.At(a, b))
		}
	}
	return out, nil
}
