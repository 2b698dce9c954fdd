// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// BadgerStore keeps snapshots in a BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
}

var _ SimilarityStore = (*BadgerStore)(nil)

// OpenBadgerStore opens (or creates) a BadgerDB at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for similarity snapshots: %w", err)
	}
	return &BadgerStore{db: db, ownsDB: true}, nil
}

// NewBadgerStore uses an already open BadgerDB. Close leaves it open.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Save stores snap under feature_similarity:{n}.
func (s *BadgerStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, meta, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal snapshot metadata: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(dataKey(meta.CatalogSize), data); err != nil {
			return err
		}
		return txn.Set(metaKey(meta.CatalogSize), metaJSON)
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	snap.Metadata = meta
	return nil
}

// Load returns the snapshot for catalogSize.
func (s *BadgerStore) Load(ctx context.Context, catalogSize int) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		meta Metadata
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(catalogSize))
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		}); err != nil {
			return err
		}

		item, err = txn.Get(dataKey(catalogSize))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return decodeSnapshot(data, meta)
}

// Delete removes the snapshot for catalogSize.
func (s *BadgerStore) Delete(ctx context.Context, catalogSize int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(dataKey(catalogSize)); err != nil {
			return err
		}
		return txn.Delete(metaKey(catalogSize))
	})
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

func dataKey(catalogSize int) []byte {
	return []byte(fmt.Sprintf("feature_similarity:%d", catalogSize))
}

func metaKey(catalogSize int) []byte {
	return []byte(fmt.Sprintf("feature_similarity:%d:meta", catalogSize))
}
