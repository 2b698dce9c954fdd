// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sparse

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Entry is one coordinate triple used to build a CSR matrix.
type Entry struct {
	Row   int
	Col   int
	Value float64
}

// CSR is an immutable compressed sparse row matrix.
type CSR struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []float64
}

// NewCSR builds a rows × cols matrix from coordinate triples. Duplicate
// coordinates are summed and cells that end up zero are not stored.
// It panics if a coordinate lies outside the matrix.
func NewCSR(rows, cols int, entries []Entry) *CSR {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("sparse: negative dimension %d×%d", rows, cols))
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	for _, e := range sorted {
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			panic(fmt.Sprintf("sparse: entry (%d, %d) outside %d×%d matrix", e.Row, e.Col, rows, cols))
		}
	}
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		if c := cmp.Compare(a.Row, b.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Col, b.Col)
	})

	m := &CSR{
		rows:   rows,
		cols:   cols,
		indptr: make([]int, rows+1),
	}
	for i := 0; i < len(sorted); {
		e := sorted[i]
		sum := e.Value
		j := i + 1
		for j < len(sorted) && sorted[j].Row == e.Row && sorted[j].Col == e.Col {
			sum += sorted[j].Value
			j++
		}
		if sum != 0 {
			m.indices = append(m.indices, e.Col)
			m.data = append(m.data, sum)
			m.indptr[e.Row+1]++
		}
		i = j
	}
	for r := 0; r < rows; r++ {
		m.indptr[r+1] += m.indptr[r]
	}
	return m
}

// Dims returns the number of rows and columns.
func (m *CSR) Dims() (r, c int) {
	return m.rows, m.cols
}

// NNZ returns the number of stored cells.
func (m *CSR) NNZ() int {
	return len(m.data)
}

// Row returns the column indices and values of row i. The slices share
// storage with the matrix and must not be modified.
func (m *CSR) Row(i int) (cols []int, vals []float64) {
	m.checkRow(i)
	lo, hi := m.indptr[i], m.indptr[i+1]
	return m.indices[lo:hi], m.data[lo:hi]
}

// At returns the value at (i, j).
func (m *CSR) At(i, j int) float64 {
	m.checkRow(i)
	if j < 0 || j >= m.cols {
		panic(fmt.Sprintf("sparse: column %d out of range [0, %d)", j, m.cols))
	}
	cols, vals := m.Row(i)
	if k, ok := slices.BinarySearch(cols, j); ok {
		return vals[k]
	}
	return 0
}

// Diagonal returns the main diagonal of a square matrix.
func (m *CSR) Diagonal() []float64 {
	if m.rows != m.cols {
		panic(fmt.Sprintf("sparse: diagonal of non-square %d×%d matrix", m.rows, m.cols))
	}
	diag := make([]float64, m.rows)
	for i := range diag {
		diag[i] = m.At(i, i)
	}
	return diag
}

// Transpose returns Mᵀ.
func (m *CSR) Transpose() *CSR {
	t := &CSR{
		rows:    m.cols,
		cols:    m.rows,
		indptr:  make([]int, m.cols+1),
		indices: make([]int, len(m.indices)),
		data:    make([]float64, len(m.data)),
	}
	for _, c := range m.indices {
		t.indptr[c+1]++
	}
	for c := 0; c < m.cols; c++ {
		t.indptr[c+1] += t.indptr[c]
	}
	next := make([]int, m.cols)
	copy(next, t.indptr[:m.cols])
	// Rows are visited in order, so each transposed row comes out sorted.
	for r := 0; r < m.rows; r++ {
		for p := m.indptr[r]; p < m.indptr[r+1]; p++ {
			c := m.indices[p]
			t.indices[next[c]] = r
			t.data[next[c]] = m.data[p]
			next[c]++
		}
	}
	return t
}

// Gram returns MᵀM, a cols × cols symmetric matrix.
func (m *CSR) Gram() *CSR {
	t := m.Transpose()
	g := &CSR{
		rows:   m.cols,
		cols:   m.cols,
		indptr: make([]int, m.cols+1),
	}

	acc := make([]float64, m.cols)
	marker := make([]int, m.cols)
	for i := range marker {
		marker[i] = -1
	}
	touched := make([]int, 0, 64)

	for i := 0; i < m.cols; i++ {
		touched = touched[:0]
		for p := t.indptr[i]; p < t.indptr[i+1]; p++ {
			u, a := t.indices[p], t.data[p]
			for q := m.indptr[u]; q < m.indptr[u+1]; q++ {
				j := m.indices[q]
				if marker[j] != i {
					marker[j] = i
					acc[j] = 0
					touched = append(touched, j)
				}
				acc[j] += a * m.data[q]
			}
		}
		slices.Sort(touched)
		for _, j := range touched {
			if acc[j] != 0 {
				g.indices = append(g.indices, j)
				g.data = append(g.data, acc[j])
			}
		}
		g.indptr[i+1] = len(g.data)
	}
	return g
}

// Filter returns a copy of m holding only the cells for which keep is true.
func (m *CSR) Filter(keep func(i, j int, v float64) bool) *CSR {
	return m.Map(func(i, j int, v float64) float64 {
		if keep(i, j, v) {
			return v
		}
		return 0
	})
}

// Map returns a copy of m with fn applied to every stored cell. Cells
// mapped to zero are dropped. Implicit zeros are never visited.
func (m *CSR) Map(fn func(i, j int, v float64) float64) *CSR {
	out := &CSR{
		rows:    m.rows,
		cols:    m.cols,
		indptr:  make([]int, m.rows+1),
		indices: make([]int, 0, len(m.indices)),
		data:    make([]float64, 0, len(m.data)),
	}
	for r := 0; r < m.rows; r++ {
		for p := m.indptr[r]; p < m.indptr[r+1]; p++ {
			c := m.indices[p]
			if v := fn(r, c, m.data[p]); v != 0 {
				out.indices = append(out.indices, c)
				out.data = append(out.data, v)
			}
		}
		out.indptr[r+1] = len(out.data)
	}
	return out
}

// Symmetric reports whether m is square and equal to its transpose.
func (m *CSR) Symmetric() bool {
	if m.rows != m.cols {
		return false
	}
	for r := 0; r < m.rows; r++ {
		for p := m.indptr[r]; p < m.indptr[r+1]; p++ {
			if m.At(m.indices[p], r) != m.data[p] {
				return false
			}
		}
	}
	return true
}

// MulRowsInto sets dst to Σ vals[k]·row(rows[k]), the product of a sparse
// row vector with m. len(dst) must equal the column count of m.
func (m *CSR) MulRowsInto(dst []float64, rows []int, vals []float64) {
	if len(dst) != m.cols {
		panic(fmt.Sprintf("sparse: destination length %d, want %d", len(dst), m.cols))
	}
	clear(dst)
	for k, r := range rows {
		w := vals[k]
		cols, rv := m.Row(r)
		for p, c := range cols {
			dst[c] += w * rv[p]
		}
	}
}

// ToDense returns m as a gonum dense matrix.
func (m *CSR) ToDense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(m.rows, m.cols, nil)
	for r := 0; r < m.rows; r++ {
		for p := m.indptr[r]; p < m.indptr[r+1]; p++ {
			d.Set(r, m.indices[p], m.data[p])
		}
	}
	return d
}

func (m *CSR) checkRow(i int) {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("sparse: row %d out of range [0, %d)", i, m.rows))
	}
}
