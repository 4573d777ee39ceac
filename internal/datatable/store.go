package datatable

import (
	"iter"
	"slices"
)

// RowStore is the authoritative ordered row sequence plus a dirty flag.
// Every mutating method marks the store dirty.
type RowStore[R any] struct {
	rows  []R
	dirty bool
}

// NewRowStore takes ownership of rows.
func NewRowStore[R any](rows []R) *RowStore[R] {
	return &RowStore[R]{rows: rows}
}

func (s *RowStore[R]) Len() int { return len(s.rows) }

// At returns a pointer into the store. It is invalidated by structural
// mutations.
func (s *RowStore[R]) At(i RowIdx) *R { return &s.rows[i] }

// Valid reports whether i addresses a row.
func (s *RowStore[R]) Valid(i RowIdx) bool { return i >= 0 && int(i) < len(s.rows) }

func (s *RowStore[R]) Append(row R) RowIdx {
	s.rows = append(s.rows, row)
	s.dirty = true
	return RowIdx(len(s.rows) - 1)
}

func (s *RowStore[R]) InsertAt(i RowIdx, row R) {
	s.rows = slices.Insert(s.rows, int(i), row)
	s.dirty = true
}

// RemoveAt removes and returns the row at i.
func (s *RowStore[R]) RemoveAt(i RowIdx) R {
	row := s.rows[i]
	s.rows = slices.Delete(s.rows, int(i), int(i)+1)
	s.dirty = true
	return row
}

func (s *RowStore[R]) Swap(a, b RowIdx) {
	s.rows[a], s.rows[b] = s.rows[b], s.rows[a]
	s.dirty = true
}

// Replace swaps the row at i for row and returns the previous value.
func (s *RowStore[R]) Replace(i RowIdx, row R) R {
	prev := s.rows[i]
	s.rows[i] = row
	s.dirty = true
	return prev
}

// All iterates rows in store order.
func (s *RowStore[R]) All() iter.Seq2[RowIdx, *R] {
	return func(yield func(RowIdx, *R) bool) {
		for i := range s.rows {
			if !yield(RowIdx(i), &s.rows[i]) {
				return
			}
		}
	}
}

// Rows exposes the backing slice for column-wide mutations. Callers must not
// change its length.
func (s *RowStore[R]) Rows() []R { return s.rows }

// Take empties the store and returns its rows.
func (s *RowStore[R]) Take() []R {
	rows := s.rows
	s.rows = nil
	s.dirty = true
	return rows
}

// ReplaceAll installs rows as the new content.
func (s *RowStore[R]) ReplaceAll(rows []R) {
	s.rows = rows
	s.dirty = true
}

func (s *RowStore[R]) HasDirty() bool { return s.dirty }
func (s *RowStore[R]) ClearDirty()    { s.dirty = false }
func (s *RowStore[R]) MarkDirty()     { s.dirty = true }
