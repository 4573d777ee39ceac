package datatable

import (
	"cmp"
	"iter"
	"slices"
)

// VisLinearIdx is vis_row*num_visible_cols + vis_col.
type VisLinearIdx int

// VisCell is a cell address in visible coordinates.
type VisCell struct {
	Row VisRowPos
	Col VisColumnPos
}

// Linear encodes c for a grid that is ncols wide.
func (c VisCell) Linear(ncols int) VisLinearIdx {
	return VisLinearIdx(int(c.Row)*ncols + int(c.Col))
}

// CellAt decodes a linear index for a grid that is ncols wide.
func CellAt(idx VisLinearIdx, ncols int) VisCell {
	if ncols <= 0 {
		return VisCell{}
	}
	return VisCell{Row: VisRowPos(int(idx) / ncols), Col: VisColumnPos(int(idx) % ncols)}
}

// VisSelection is the bounding rectangle of two linear indices. B is the end
// that keyboard extension moves.
type VisSelection struct {
	A, B VisLinearIdx
}

// Rect is an inclusive cell rectangle.
type Rect struct {
	Top, Left, Bottom, Right int
}

// Width returns the number of columns spanned.
func (r Rect) Width() int { return r.Right - r.Left + 1 }

// Height returns the number of rows spanned.
func (r Rect) Height() int { return r.Bottom - r.Top + 1 }

// SelectionFromPoints builds a selection spanning a and b.
func SelectionFromPoints(ncols int, a, b VisCell) VisSelection {
	return VisSelection{A: a.Linear(ncols), B: b.Linear(ncols)}
}

// PointSelection selects the single cell c.
func PointSelection(ncols int, c VisCell) VisSelection {
	return SelectionFromPoints(ncols, c, c)
}

// SelectionFromRect builds a selection from an inclusive rectangle.
func SelectionFromRect(ncols int, r Rect) VisSelection {
	return SelectionFromPoints(ncols,
		VisCell{Row: VisRowPos(r.Top), Col: VisColumnPos(r.Left)},
		VisCell{Row: VisRowPos(r.Bottom), Col: VisColumnPos(r.Right)})
}

func (s VisSelection) IsPoint() bool { return s.A == s.B }

// Rect returns the bounding box of the two corners.
func (s VisSelection) Rect(ncols int) Rect {
	a, b := CellAt(s.A, ncols), CellAt(s.B, ncols)
	return Rect{
		Top:    int(min(a.Row, b.Row)),
		Left:   int(min(a.Col, b.Col)),
		Bottom: int(max(a.Row, b.Row)),
		Right:  int(max(a.Col, b.Col)),
	}
}

func (s VisSelection) Contains(ncols int, c VisCell) bool {
	r := s.Rect(ncols)
	return int(c.Row) >= r.Top && int(c.Row) <= r.Bottom &&
		int(c.Col) >= r.Left && int(c.Col) <= r.Right
}

func (s VisSelection) ContainsRect(ncols int, other VisSelection) bool {
	r, o := s.Rect(ncols), other.Rect(ncols)
	return o.Top >= r.Top && o.Bottom <= r.Bottom && o.Left >= r.Left && o.Right <= r.Right
}

// Union returns the bounding box of both selections.
func (s VisSelection) Union(ncols int, other VisSelection) VisSelection {
	r, o := s.Rect(ncols), other.Rect(ncols)
	return SelectionFromRect(ncols, Rect{
		Top:    min(r.Top, o.Top),
		Left:   min(r.Left, o.Left),
		Bottom: max(r.Bottom, o.Bottom),
		Right:  max(r.Right, o.Right),
	})
}

// Cells iterates the rectangle row-major.
func (s VisSelection) Cells(ncols int) iter.Seq[VisCell] {
	r := s.Rect(ncols)
	return func(yield func(VisCell) bool) {
		for row := r.Top; row <= r.Bottom; row++ {
			for col := r.Left; col <= r.Right; col++ {
				if !yield(VisCell{Row: VisRowPos(row), Col: VisColumnPos(col)}) {
					return
				}
			}
		}
	}
}

// remap re-encodes s from a grid oldCols wide into one newCols wide, clamping
// both corners into nrows x newCols. ok is false when the grid is empty.
func (s VisSelection) remap(oldCols, newCols, nrows int) (VisSelection, bool) {
	if newCols <= 0 || nrows <= 0 {
		return VisSelection{}, false
	}
	clamp := func(c VisCell) VisCell {
		c.Row = VisRowPos(min(max(int(c.Row), 0), nrows-1))
		c.Col = VisColumnPos(min(max(int(c.Col), 0), newCols-1))
		return c
	}
	a, b := clamp(CellAt(s.A, oldCols)), clamp(CellAt(s.B, oldCols))
	return SelectionFromPoints(newCols, a, b), true
}

// uniqueCells enumerates the union of sels row-major without duplicates.
func uniqueCells(ncols int, sels []VisSelection) []VisCell {
	seen := make(map[VisCell]struct{})
	var out []VisCell
	for _, s := range sels {
		for c := range s.Cells(ncols) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sortCells(out)
	return out
}

func sortCells(cells []VisCell) {
	slices.SortFunc(cells, func(a, b VisCell) int {
		if a.Row != b.Row {
			return cmp.Compare(a.Row, b.Row)
		}
		return cmp.Compare(a.Col, b.Col)
	})
}
