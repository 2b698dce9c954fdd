// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sar

import (
	"fmt"
	"time"

	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/recommend/sparse"
)

// Cell addresses one (user, item) position of the affinity matrix.
type Cell struct {
	User int
	Item int
}

// AffinityOptions controls BuildAffinity.
type AffinityOptions struct {
	// Unity replaces every rating with 1.0 before aggregation.
	Unity bool

	// Decay enables time decay when non-nil. Every row must then carry a
	// timestamp.
	Decay DecayFunc

	// HalfLife is passed to Decay.
	HalfLife time.Duration

	// Reference is the decay reference time. The zero value uses the latest
	// timestamp among rows.
	Reference time.Time
}

// BuildAffinity builds the user × item affinity matrix of rows.
//
// Without decay, duplicate (user, item) rows are reduced to the last one:
// last by timestamp when both rows carry one, last in input order otherwise.
// With decay, each weight is multiplied by the decay factor and duplicates
// are summed.
func BuildAffinity(rows []recommend.Interaction, idx *recommend.Index, opts AffinityOptions) (*sparse.CSR, error) {
	weight := func(r *recommend.Interaction) float64 {
		if opts.Unity {
			return 1.0
		}
		return r.Rating
	}

	if opts.Decay != nil {
		return buildDecayedAffinity(rows, idx, opts, weight)
	}

	last := make(map[Cell]int, len(rows))
	order := make([]Cell, 0, len(rows))
	for i := range rows {
		cell, err := locate(&rows[i], idx)
		if err != nil {
			return nil, err
		}
		prev, seen := last[cell]
		if !seen {
			order = append(order, cell)
			last[cell] = i
			continue
		}
		if rows[prev].HasTimestamp() && rows[i].HasTimestamp() && rows[i].Timestamp.Before(rows[prev].Timestamp) {
			continue
		}
		last[cell] = i
	}

	entries := make([]sparse.Entry, 0, len(order))
	for _, cell := range order {
		entries = append(entries, sparse.Entry{Row: cell.User, Col: cell.Item, Value: weight(&rows[last[cell]])})
	}
	return sparse.NewCSR(idx.NumUsers(), idx.NumItems(), entries), nil
}

func buildDecayedAffinity(
	rows []recommend.Interaction,
	idx *recommend.Index,
	opts AffinityOptions,
	weight func(*recommend.Interaction) float64,
) (*sparse.CSR, error) {
	if opts.HalfLife <= 0 {
		return nil, fmt.Errorf("%w: decay half-life must be positive, got %v", recommend.ErrInvalidConfiguration, opts.HalfLife)
	}

	ref := opts.Reference
	for i := range rows {
		if !rows[i].HasTimestamp() {
			return nil, fmt.Errorf("%w: time decay requires a timestamp on every row (row %d has none)", recommend.ErrInvalidInput, i)
		}
		if opts.Reference.IsZero() && rows[i].Timestamp.After(ref) {
			ref = rows[i].Timestamp
		}
	}

	entries := make([]sparse.Entry, 0, len(rows))
	for i := range rows {
		cell, err := locate(&rows[i], idx)
		if err != nil {
			return nil, err
		}
		w := weight(&rows[i]) * opts.Decay(rows[i].Timestamp, ref, opts.HalfLife)
		entries = append(entries, sparse.Entry{Row: cell.User, Col: cell.Item, Value: w})
	}
	return sparse.NewCSR(idx.NumUsers(), idx.NumItems(), entries), nil
}

// DistinctCells returns the distinct (user, item) cells of rows in first-seen order.
func DistinctCells(rows []recommend.Interaction, idx *recommend.Index) ([]Cell, error) {
	seen := make(map[Cell]struct{}, len(rows))
	cells := make([]Cell, 0, len(rows))
	for i := range rows {
		cell, err := locate(&rows[i], idx)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[cell]; dup {
			continue
		}
		seen[cell] = struct{}{}
		cells = append(cells, cell)
	}
	return cells, nil
}

func locate(r *recommend.Interaction, idx *recommend.Index) (Cell, error) {
	u, ok := idx.UserIndex(r.UserID)
	if !ok {
		return Cell{}, fmt.Errorf("%w: user %q", recommend.ErrUnknownEntity, r.UserID)
	}
	it, ok := idx.ItemIndex(r.ItemID)
	if !ok {
		return Cell{}, fmt.Errorf("%w: item %q", recommend.ErrUnknownEntity, r.ItemID)
	}
	return Cell{User: u, Item: it}, nil
}
