package sheet

import (
	"slices"
	"time"
)

// Cell is a tagged value. Only the field matching Kind is meaningful. A cell
// with Empty set holds no value regardless of kind.
type Cell struct {
	Kind  Kind
	Empty bool

	Text  string    // text, select, relation
	Int   int64     // int
	Float float64   // float
	Bool  bool      // bool
	Time  time.Time // datetime
	Items []string  // multi-select
}

// EmptyCell returns a cell of kind k holding no value.
func EmptyCell(k Kind) Cell { return Cell{Kind: k, Empty: true} }

// TextCell returns a text cell.
func TextCell(s string) Cell { return Cell{Kind: KindText, Text: s} }

// IntCell returns an int cell.
func IntCell(v int64) Cell { return Cell{Kind: KindInt, Int: v} }

// FloatCell returns a float cell.
func FloatCell(v float64) Cell { return Cell{Kind: KindFloat, Float: v} }

// BoolCell returns a bool cell.
func BoolCell(v bool) Cell { return Cell{Kind: KindBool, Bool: v} }

// TimeCell returns a datetime cell.
func TimeCell(v time.Time) Cell { return Cell{Kind: KindDateTime, Time: v} }

// Clone returns a copy sharing no memory with c.
func (c Cell) Clone() Cell {
	c.Items = slices.Clone(c.Items)
	return c
}

// Equal reports whether two cells hold the same value.
func (c Cell) Equal(o Cell) bool {
	if c.Kind != o.Kind || c.Empty != o.Empty {
		return false
	}
	if c.Empty {
		return true
	}
	switch c.Kind {
	case KindInt:
		return c.Int == o.Int
	case KindFloat:
		return c.Float == o.Float
	case KindBool:
		return c.Bool == o.Bool
	case KindDateTime:
		return c.Time.Equal(o.Time)
	case KindMultiSelect:
		return slices.Equal(c.Items, o.Items)
	default:
		return c.Text == o.Text
	}
}

// Row is one record: a cell per column plus a lock flag that vetoes writes
// and deletion.
type Row struct {
	Cells  []Cell
	Locked bool
}

// Clone returns a deep copy of r.
func (r Row) Clone() Row {
	cells := make([]Cell, len(r.Cells))
	for i, c := range r.Cells {
		cells[i] = c.Clone()
	}
	return Row{Cells: cells, Locked: r.Locked}
}
