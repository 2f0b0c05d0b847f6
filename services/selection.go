package services

import "sort"

// Selection tracks the set of selected row indices for bulk deletion.
// Indices are positional, so any row-count change through another path must
// Clear the selection before the indices go stale.
type Selection struct {
	rows map[int]bool
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{rows: make(map[int]bool)}
}

// Toggle flips the selected state of a row index.
func (s *Selection) Toggle(index int) {
	if s.rows[index] {
		delete(s.rows, index)
		return
	}
	s.rows[index] = true
}

// Has reports whether a row index is selected.
func (s *Selection) Has(index int) bool {
	return s.rows[index]
}

// Count returns the number of selected rows.
func (s *Selection) Count() int {
	return len(s.rows)
}

// ToggleAll selects every row when the selection is partial, and clears it
// when all rows are already selected.
func (s *Selection) ToggleAll(rowCount int) {
	if len(s.rows) == rowCount && rowCount > 0 {
		s.Clear()
		return
	}
	s.rows = make(map[int]bool, rowCount)
	for i := 0; i < rowCount; i++ {
		s.rows[i] = true
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.rows = make(map[int]bool)
}

// Indices returns the selected row indices in ascending order.
func (s *Selection) Indices() []int {
	out := make([]int, 0, len(s.rows))
	for i := range s.rows {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// DeleteRows returns a new slice with the given row indices removed. The
// input slice is never mutated; out-of-range indices are ignored.
func DeleteRows(items []LineItem, indices []int) []LineItem {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		drop[i] = true
	}
	out := make([]LineItem, 0, len(items))
	for i, item := range items {
		if !drop[i] {
			out = append(out, item)
		}
	}
	return out
}
