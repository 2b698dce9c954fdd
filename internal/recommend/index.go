// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

// Index maps external user and item identifiers to dense, zero-based matrix
// positions in first-seen order. It is immutable after construction.
type Index struct {
	userToIndex map[string]int
	indexToUser []string
	itemToIndex map[string]int
	indexToItem []string
}

// NewIndex builds an index from the distinct users and items of rows.
func NewIndex(rows []Interaction) *Index {
	idx := &Index{
		userToIndex: make(map[string]int),
		itemToIndex: make(map[string]int),
	}
	for i := range rows {
		idx.addUser(rows[i].UserID)
		idx.addItem(rows[i].ItemID)
	}
	return idx
}

// NewIndexFromItems builds an index from explicit user and item lists.
// Duplicates keep their first position.
func NewIndexFromItems(users, items []string) *Index {
	idx := &Index{
		userToIndex: make(map[string]int, len(users)),
		itemToIndex: make(map[string]int, len(items)),
	}
	for _, u := range users {
		idx.addUser(u)
	}
	for _, it := range items {
		idx.addItem(it)
	}
	return idx
}

func (idx *Index) addUser(id string) {
	if _, ok := idx.userToIndex[id]; ok {
		return
	}
	idx.userToIndex[id] = len(idx.indexToUser)
	idx.indexToUser = append(idx.indexToUser, id)
}

func (idx *Index) addItem(id string) {
	if _, ok := idx.itemToIndex[id]; ok {
		return
	}
	idx.itemToIndex[id] = len(idx.indexToItem)
	idx.indexToItem = append(idx.indexToItem, id)
}

// UserIndex returns the row position of a user.
func (idx *Index) UserIndex(id string) (int, bool) {
	i, ok := idx.userToIndex[id]
	return i, ok
}

// ItemIndex returns the column position of an item.
func (idx *Index) ItemIndex(id string) (int, bool) {
	i, ok := idx.itemToIndex[id]
	return i, ok
}

// UserID returns the user at row position i. It panics if i is out of range.
func (idx *Index) UserID(i int) string {
	return idx.indexToUser[i]
}

// ItemID returns the item at column position i. It panics if i is out of range.
func (idx *Index) ItemID(i int) string {
	return idx.indexToItem[i]
}

// NumUsers returns the number of distinct users.
func (idx *Index) NumUsers() int {
	return len(idx.indexToUser)
}

// NumItems returns the number of distinct items.
func (idx *Index) NumItems() int {
	return len(idx.indexToItem)
}

// Items returns a copy of the item identifiers in column order.
func (idx *Index) Items() []string {
	out := make([]string, len(idx.indexToItem))
	copy(out, idx.indexToItem)
	return out
}

// Users returns a copy of the user identifiers in row order.
func (idx *Index) Users() []string {
	out := make([]string, len(idx.indexToUser))
	copy(out, idx.indexToUser)
	return out
}
