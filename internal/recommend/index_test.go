// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import (
	"testing"
)

func TestNewIndex(t *testing.T) {
	rows := []Interaction{
		{UserID: "A", ItemID: "x", Rating: 5},
		{UserID: "A", ItemID: "y", Rating: 3},
		{UserID: "B", ItemID: "x", Rating: 4},
		{UserID: "B", ItemID: "z", Rating: 2},
		{UserID: "C", ItemID: "y", Rating: 1},
	}
	idx := NewIndex(rows)

	t.Run("counts are derived independently", func(t *testing.T) {
		if idx.NumUsers() != 3 {
			t.Errorf("NumUsers() = %d, want 3", idx.NumUsers())
		}
		if idx.NumItems() != 3 {
			t.Errorf("NumItems() = %d, want 3", idx.NumItems())
		}
	})

	t.Run("positions follow first-seen order", func(t *testing.T) {
		for want, id := range []string{"x", "y", "z"} {
			got, ok := idx.ItemIndex(id)
			if !ok || got != want {
				t.Errorf("ItemIndex(%q) = %d, %v, want %d, true", id, got, ok, want)
			}
			if idx.ItemID(want) != id {
				t.Errorf("ItemID(%d) = %q, want %q", want, idx.ItemID(want), id)
			}
		}
		for want, id := range []string{"A", "B", "C"} {
			got, ok := idx.UserIndex(id)
			if !ok || got != want {
				t.Errorf("UserIndex(%q) = %d, %v, want %d, true", id, got, ok, want)
			}
			if idx.UserID(want) != id {
				t.Errorf("UserID(%d) = %q, want %q", want, idx.UserID(want), id)
			}
		}
	})

	t.Run("unknown ids are not found", func(t *testing.T) {
		if _, ok := idx.UserIndex("nobody"); ok {
			t.Error("UserIndex(nobody) found, want not found")
		}
		if _, ok := idx.ItemIndex("nothing"); ok {
			t.Error("ItemIndex(nothing) found, want not found")
		}
	})

	t.Run("Items returns a copy", func(t *testing.T) {
		items := idx.Items()
		items[0] = "mutated"
		if idx.ItemID(0) != "x" {
			t.Errorf("ItemID(0) = %q after mutating Items(), want x", idx.ItemID(0))
		}
	})
}

func TestNewIndex_Empty(t *testing.T) {
	idx := NewIndex(nil)
	if idx.NumUsers() != 0 || idx.NumItems() != 0 {
		t.Errorf("empty index has %d users, %d items, want 0, 0", idx.NumUsers(), idx.NumItems())
	}
}

func TestNewIndexFromItems(t *testing.T) {
	idx := NewIndexFromItems([]string{"u1"}, []string{"b", "a", "b", "c"})

	if idx.NumItems() != 3 {
		t.Fatalf("NumItems() = %d, want 3", idx.NumItems())
	}
	if got, _ := idx.ItemIndex("b"); got != 0 {
		t.Errorf("duplicate item moved: ItemIndex(b) = %d, want 0", got)
	}
	if got, _ := idx.ItemIndex("c"); got != 2 {
		t.Errorf("ItemIndex(c) = %d, want 2", got)
	}
	if idx.NumUsers() != 1 {
		t.Errorf("NumUsers() = %d, want 1", idx.NumUsers())
	}
}
