// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package sparse provides the matrix kernels of the SAR model.
//
// CSR is a compressed sparse row matrix of float64 values held in canonical
// form: column indices sorted within each row, no duplicate cells and no
// stored zeros. It supports construction from coordinate triples with
// duplicate summation, transposition, the Gram product AᵀA, element-wise
// filtering, and accumulation of a weighted sum of rows into a dense vector.
//
// Dense adapts a gonum mat.Dense to the same row-accumulation contract so
// the scorer can treat sparse and dense similarity matrices uniformly.
//
// Shape and index mismatches are programmer errors and panic, as in gonum.
package sparse
