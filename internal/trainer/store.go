// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package trainer

import (
	"fmt"

	"github.com/tomtom215/sar/internal/config"
	"github.com/tomtom215/sar/internal/recommend/storage"
)

// OpenStore opens the configured snapshot backend. The returned store is
// nil for the "none" backend. close is never nil.
func OpenStore(cfg config.StorageConfig) (store storage.SimilarityStore, closeFn func() error, err error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "none", "":
		return nil, noop, nil
	case "file":
		fs, err := storage.NewFileStore(cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		return fs, noop, nil
	case "badger":
		bs, err := storage.OpenBadgerStore(cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		return bs, bs.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
