// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sar

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/recommend/sparse"
)

// ItemSimilarity is the fitted item × item similarity matrix. It is
// implemented by *sparse.CSR for the count-based metrics and by
// *sparse.Dense for the custom blend.
type ItemSimilarity interface {
	Dims() (r, c int)
	At(i, j int) float64
	NNZ() int
	MulRowsInto(dst []float64, rows []int, vals []float64)
}

var (
	_ ItemSimilarity = (*sparse.CSR)(nil)
	_ ItemSimilarity = (*sparse.Dense)(nil)
)

// SimilaritySource supplies the item feature similarity of the custom
// blend. It is either Computed or Restored.
type SimilaritySource interface {
	similaritySource()
}

// Computed derives feature similarity from a feature table at fit time.
type Computed struct {
	Features []recommend.FeatureRow
}

// Restored reuses a previously computed feature similarity matrix. Matrix
// rows and columns follow the order of Items.
type Restored struct {
	Items  []string
	Matrix *mat.Dense
}

func (Computed) similaritySource() {}
func (Restored) similaritySource() {}

// Jaccard returns c_ij / (f_i + f_j − c_ij) for every stored cell of the
// co-occurrence matrix, where f is its diagonal. A 0/0 cell stays zero.
func Jaccard(cooccurrence *sparse.CSR) *sparse.CSR {
	freq := cooccurrence.Diagonal()
	return cooccurrence.Map(func(i, j int, c float64) float64 {
		denom := freq[i] + freq[j] - c
		if denom == 0 {
			return 0
		}
		return c / denom
	})
}

// Lift returns c_ij / (f_i · f_j) for every stored cell of the
// co-occurrence matrix, where f is its diagonal. A 0/0 cell stays zero.
func Lift(cooccurrence *sparse.CSR) *sparse.CSR {
	freq := cooccurrence.Diagonal()
	return cooccurrence.Map(func(i, j int, c float64) float64 {
		denom := freq[i] * freq[j]
		if denom == 0 {
			return 0
		}
		return c / denom
	})
}

// Blend returns w·jaccard + (1−w)·features as a dense matrix.
func Blend(jaccard *sparse.CSR, features *mat.Dense, w float64) *sparse.Dense {
	n, _ := jaccard.Dims()
	if r, c := features.Dims(); r != n || c != n {
		panic(fmt.Sprintf("sar: feature similarity is %d×%d, want %d×%d", r, c, n, n))
	}
	var out mat.Dense
	out.Scale(1-w, features)
	for i := 0; i < n; i++ {
		cols, vals := jaccard.Row(i)
		row := out.RawRowView(i)
		for p, j := range cols {
			row[j] += w * vals[p]
		}
	}
	return sparse.NewDense(&out)
}

// buildSimilarity turns the masked co-occurrence matrix into the configured
// similarity. features is only used by the custom blend.
func buildSimilarity(cfg *recommend.Config, cooccurrence *sparse.CSR, features *mat.Dense) (ItemSimilarity, error) {
	switch cfg.SimilarityType {
	case recommend.SimilarityCooccurrence:
		return cooccurrence, nil
	case recommend.SimilarityJaccard:
		return Jaccard(cooccurrence), nil
	case recommend.SimilarityLift:
		return Lift(cooccurrence), nil
	case recommend.SimilarityCustom:
		if features == nil {
			return nil, fmt.Errorf("%w: custom similarity requires feature similarity", recommend.ErrInvalidConfiguration)
		}
		return Blend(Jaccard(cooccurrence), features, cfg.Custom.RatingWeight), nil
	default:
		return nil, fmt.Errorf("%w: unknown similarity type %q", recommend.ErrInvalidConfiguration, cfg.SimilarityType)
	}
}
