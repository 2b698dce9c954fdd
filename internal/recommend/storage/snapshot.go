// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/sar/internal/recommend/sar"
)

// ErrNotFound is returned when no snapshot exists for a catalog size.
var ErrNotFound = errors.New("feature similarity snapshot not found")

// SimilarityStore loads and saves feature similarity snapshots.
type SimilarityStore interface {
	// Load returns the snapshot for catalogSize or ErrNotFound.
	Load(ctx context.Context, catalogSize int) (*Snapshot, error)

	// Save stores snap, replacing any snapshot of the same catalog size.
	Save(ctx context.Context, snap *Snapshot) error
}

// Metadata describes a stored snapshot.
type Metadata struct {
	// CatalogSize is the number of feature rows the matrix was computed from.
	CatalogSize int `json:"catalog_size"`

	// Items is the number of matrix rows.
	Items int `json:"items"`

	// SavedAt is when the snapshot was saved.
	SavedAt time.Time `json:"saved_at"`

	// Checksum is the SHA-256 of the uncompressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// Snapshot is a feature similarity matrix and the item ids of its rows.
type Snapshot struct {
	Metadata Metadata
	Items    []string
	Matrix   *mat.Dense
}

// FromModel captures the feature similarity of a fitted model. ok is false
// when the model has none.
func FromModel(m *sar.Model, catalogSize int) (snap *Snapshot, ok bool) {
	items, matrix, ok := m.FeatureSimilarity()
	if !ok {
		return nil, false
	}
	return &Snapshot{
		Metadata: Metadata{CatalogSize: catalogSize, Items: len(items)},
		Items:    items,
		Matrix:   matrix,
	}, true
}

// Restored returns the snapshot as a model similarity source.
func (s *Snapshot) Restored() sar.Restored {
	return sar.Restored{Items: s.Items, Matrix: s.Matrix}
}

// payload is the gob-encoded body of a snapshot.
type payload struct {
	Items []string
	Rows  int
	Cols  int
	Data  []float64
}

// encodeSnapshot serializes, checksums and compresses snap. The returned
// metadata carries the checksum and compressed size.
func encodeSnapshot(snap *Snapshot) ([]byte, Metadata, error) {
	if snap == nil || snap.Matrix == nil {
		return nil, Metadata{}, errors.New("snapshot has no matrix")
	}
	r, c := snap.Matrix.Dims()
	if r != len(snap.Items) || c != len(snap.Items) {
		return nil, Metadata{}, fmt.Errorf("snapshot matrix is %d×%d for %d items", r, c, len(snap.Items))
	}

	p := payload{Items: snap.Items, Rows: r, Cols: c, Data: make([]float64, 0, r*c)}
	for i := 0; i < r; i++ {
		p.Data = append(p.Data, snap.Matrix.RawRowView(i)...)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, Metadata{}, fmt.Errorf("encode snapshot: %w", err)
	}
	raw := buf.Bytes()
	sum := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return nil, Metadata{}, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, Metadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	meta := snap.Metadata
	meta.Items = len(snap.Items)
	meta.Checksum = hex.EncodeToString(sum[:])
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()
	return compressed.Bytes(), meta, nil
}

// decodeSnapshot reverses encodeSnapshot and verifies the checksum in meta.
//
//nolint:gocritic // meta passed by value is acceptable for this read path
func decodeSnapshot(data []byte, meta Metadata) (*Snapshot, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	sum := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(sum[:]); checksum != meta.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", meta.Checksum, checksum)
	}

	var p payload
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if p.Rows != len(p.Items) || p.Cols != len(p.Items) || len(p.Data) != p.Rows*p.Cols || p.Rows == 0 {
		return nil, fmt.Errorf("corrupt snapshot: %d×%d matrix with %d values for %d items",
			p.Rows, p.Cols, len(p.Data), len(p.Items))
	}

	return &Snapshot{
		Metadata: meta,
		Items:    p.Items,
		Matrix:   mat.NewDense(p.Rows, p.Cols, p.Data),
	}, nil
}
