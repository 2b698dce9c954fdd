// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sparse

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Dense wraps a gonum dense matrix with the row-accumulation methods of CSR.
type Dense struct {
	m *mat.Dense
}

// NewDense wraps m. The matrix must not be modified afterwards.
func NewDense(m *mat.Dense) *Dense {
	return &Dense{m: m}
}

// Dims returns the number of rows and columns.
func (d *Dense) Dims() (r, c int) {
	if d.m.IsEmpty() {
		return 0, 0
	}
	return d.m.Dims()
}

// At returns the value at (i, j).
func (d *Dense) At(i, j int) float64 {
	return d.m.At(i, j)
}

// NNZ returns the number of nonzero cells.
func (d *Dense) NNZ() int {
	r, _ := d.Dims()
	n := 0
	for i := 0; i < r; i++ {
		for _, v := range d.m.RawRowView(i) {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// MulRowsInto sets dst to Σ vals[k]·row(rows[k]).
func (d *Dense) MulRowsInto(dst []float64, rows []int, vals []float64) {
	_, c := d.Dims()
	if len(dst) != c {
		panic(fmt.Sprintf("sparse: destination length %d, want %d", len(dst), c))
	}
	clear(dst)
	for k, r := range rows {
		floats.AddScaled(dst, vals[k], d.m.RawRowView(r))
	}
}

// Matrix returns the wrapped gonum matrix.
func (d *Dense) Matrix() *mat.Dense {
	return d.m
}
