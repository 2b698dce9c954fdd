// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package storage persists item feature similarity matrices.
//
// Computing feature similarity is quadratic in the catalog size, so the
// matrix is saved after the first fit and restored on later fits of the same
// catalog. Snapshots are keyed by catalog size, the number of rows of the
// feature table they were computed from.
//
// # Storage Format
//
// A snapshot payload (item ids plus the row-major matrix) is gob-encoded,
// checksummed with SHA-256 and gzip-compressed. Two backends are provided:
//
//	FileStore:   {dir}/item_feature_similarity_v{n}.gob.gz
//	BadgerStore: key feature_similarity:{n} (payload)
//	             key feature_similarity:{n}:meta (JSON metadata)
//
// A checksum mismatch on load is reported as an error rather than silently
// recomputing.
//
// # Usage Example
//
//	store, err := storage.NewFileStore("/data/similarity")
//	if err != nil {
//	    return err
//	}
//
//	var source sar.SimilaritySource = sar.Computed{Features: features}
//	snap, err := store.Load(ctx, len(features))
//	switch {
//	case err == nil:
//	    source = snap.Restored()
//	case !errors.Is(err, storage.ErrNotFound):
//	    return err
//	}
//
// # Thread Safety
//
// All store operations are safe for concurrent use.
package storage
