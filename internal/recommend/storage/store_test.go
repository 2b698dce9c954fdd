// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/recommend/featuresim"
	"github.com/tomtom215/sar/internal/recommend/sar"
)

func testSnapshot(catalogSize int) *Snapshot {
	return &Snapshot{
		Metadata: Metadata{CatalogSize: catalogSize},
		Items:    []string{"x", "y", "z"},
		Matrix: mat.NewDense(3, 3, []float64{
			1, 0.5, 0,
			0.5, 1, 0.25,
			0, 0.25, 1,
		}),
	}
}

func newBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerStore(db)
}

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "similarity"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return store
}

func TestStores_SaveAndLoad(t *testing.T) {
	stores := map[string]func(t *testing.T) SimilarityStore{
		"file":   func(t *testing.T) SimilarityStore { return newFileStore(t) },
		"badger": func(t *testing.T) SimilarityStore { return newBadgerStore(t) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()

			if _, err := store.Load(ctx, 3); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Load() before Save error = %v, want ErrNotFound", err)
			}

			snap := testSnapshot(3)
			if err := store.Save(ctx, snap); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if snap.Metadata.Checksum == "" || snap.Metadata.SizeBytes == 0 {
				t.Errorf("Save() did not fill metadata: %+v", snap.Metadata)
			}

			loaded, err := store.Load(ctx, 3)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !mat.Equal(loaded.Matrix, snap.Matrix) {
				t.Error("loaded matrix differs from saved matrix")
			}
			if len(loaded.Items) != 3 || loaded.Items[2] != "z" {
				t.Errorf("Items = %v, want [x y z]", loaded.Items)
			}
			if loaded.Metadata.CatalogSize != 3 || loaded.Metadata.Items != 3 {
				t.Errorf("Metadata = %+v", loaded.Metadata)
			}

			if _, err := store.Load(ctx, 4); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load(other size) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStores_RejectInvalidSnapshot(t *testing.T) {
	store := newFileStore(t)
	bad := &Snapshot{Items: []string{"x"}, Matrix: mat.NewDense(2, 2, nil)}
	if err := store.Save(context.Background(), bad); err == nil {
		t.Error("Save() accepted a matrix that does not match its items")
	}
	if err := store.Save(context.Background(), &Snapshot{}); err == nil {
		t.Error("Save() accepted a snapshot without a matrix")
	}
}

func TestFileStore_Checksum(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, testSnapshot(3)); err != nil {
		t.Fatal(err)
	}

	sf, err := readStoredFile(store.snapshotPath(3))
	if err != nil {
		t.Fatal(err)
	}
	sf.Metadata.Checksum = "0000"
	if _, err := decodeSnapshot(sf.CompressedData, sf.Metadata); err == nil {
		t.Error("decodeSnapshot accepted a checksum mismatch")
	}
}

func TestFileStore_ListAndDelete(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	for _, n := range []int{10, 3} {
		if err := store.Save(ctx, testSnapshot(n)); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(store.baseDir, "notes.txt"), []byte("hi"), 0o600); err != nil {
		t.Fatal(err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].CatalogSize != 3 || list[1].CatalogSize != 10 {
		t.Errorf("List() = %+v, want catalog sizes [3 10]", list)
	}

	if err := store.Delete(ctx, 3); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestParseSnapshotFilename(t *testing.T) {
	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{name: "item_feature_similarity_v42.gob.gz", want: 42, wantOK: true},
		{name: "item_feature_similarity_v.gob.gz"},
		{name: "item_feature_similarity_v4x.gob.gz"},
		{name: "ease_v1.gob.gz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseSnapshotFilename(tt.name)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseSnapshotFilename(%q) = %d, %v, want %d, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSnapshot_RoundTripThroughModel(t *testing.T) {
	rows := []recommend.Interaction{
		{UserID: "A", ItemID: "x", Rating: 5},
		{UserID: "A", ItemID: "y", Rating: 3},
		{UserID: "B", ItemID: "x", Rating: 4},
		{UserID: "B", ItemID: "z", Rating: 2},
	}
	features := []recommend.FeatureRow{
		{ItemID: "x", Values: map[string]any{"genre": "a,b"}},
		{ItemID: "y", Values: map[string]any{"genre": "b"}},
		{ItemID: "z", Values: map[string]any{"genre": "c"}},
	}
	cfg := recommend.DefaultConfig()
	cfg.SimilarityType = recommend.SimilarityCustom
	cfg.Custom = &recommend.CustomSimilarity{
		RatingWeight: 0.5,
		Features:     []recommend.FeatureWeight{{Column: "genre", Weight: 1, Similarity: featuresim.Jaccard}},
	}
	ctx := context.Background()

	computed, err := sar.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := computed.Fit(ctx, rows, sar.FitOptions{Similarity: sar.Computed{Features: features}}); err != nil {
		t.Fatal(err)
	}

	snap, ok := FromModel(computed, len(features))
	if !ok {
		t.Fatal("FromModel() found no feature similarity")
	}
	store := newBadgerStore(t)
	if err := store.Save(ctx, snap); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load(ctx, len(features))
	if err != nil {
		t.Fatal(err)
	}

	restored, err := sar.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := restored.Fit(ctx, rows, sar.FitOptions{Similarity: loaded.Restored()}); err != nil {
		t.Fatal(err)
	}

	a, err := computed.Score(ctx, []string{"A", "B"}, sar.ScoreOptions{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := restored.Score(ctx, []string{"A", "B"}, sar.ScoreOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(a, b, 1e-12) {
		t.Error("restored model scores differ from computed model scores")
	}
}

func TestFromModel_NoFeatureSimilarity(t *testing.T) {
	m, err := sar.New(nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := FromModel(m, 1); ok {
		t.Error("FromModel() on an unfitted model reported a snapshot")
	}
}
