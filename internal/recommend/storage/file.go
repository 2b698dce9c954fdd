// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package storage

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	filePrefix = "item_feature_similarity_v"
	fileSuffix = ".gob.gz"
)

// storedFile is the on-disk format of a snapshot file.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// FileStore keeps one snapshot file per catalog size in a directory.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
}

var _ SimilarityStore = (*FileStore)(nil)

// NewFileStore creates a store in baseDir, creating the directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Save writes snap to item_feature_similarity_v{n}.gob.gz. The file is
// written to a temporary name and renamed into place.
func (s *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, meta, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.snapshotPath(meta.CatalogSize)
	tmp, err := os.CreateTemp(s.baseDir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() //nolint:errcheck // temp file is gone after a successful rename

	if err := gob.NewEncoder(tmp).Encode(storedFile{Metadata: meta, CompressedData: data}); err != nil {
		_ = tmp.Close() //nolint:errcheck // write already failed
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot file: %w", err)
	}

	snap.Metadata = meta
	return nil
}

// Load reads the snapshot for catalogSize.
func (s *FileStore) Load(ctx context.Context, catalogSize int) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sf, err := readStoredFile(s.snapshotPath(catalogSize))
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(sf.CompressedData, sf.Metadata)
}

// List returns the metadata of every stored snapshot, ordered by catalog size.
func (s *FileStore) List(ctx context.Context) ([]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var out []Metadata
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := parseSnapshotFilename(entry.Name()); !ok {
			continue
		}
		sf, err := readStoredFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		out = append(out, sf.Metadata)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CatalogSize < out[j].CatalogSize })
	return out, nil
}

// Delete removes the snapshot for catalogSize.
func (s *FileStore) Delete(ctx context.Context, catalogSize int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.snapshotPath(catalogSize)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) snapshotPath(catalogSize int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s%d%s", filePrefix, catalogSize, fileSuffix))
}

func readStoredFile(path string) (*storedFile, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from the store directory and an integer
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return &sf, nil
}

// parseSnapshotFilename extracts the catalog size from a name like
// "item_feature_similarity_v42.gob.gz".
func parseSnapshotFilename(name string) (catalogSize int, ok bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	if _, err := fmt.Sscanf(digits, "%d", &catalogSize); err != nil {
		return 0, false
	}
	if fmt.Sprint(catalogSize) != digits {
		return 0, false
	}
	return catalogSize, true
}
