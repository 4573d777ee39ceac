package sheet

import (
	"slices"

	"github.com/zjrosen/tabula/internal/datatable"
	"github.com/zjrosen/tabula/internal/log"
)

// NewColumnData builds the payload of a datatable.InsertColumn command for a
// new, empty column.
func NewColumnData(name string, kind Kind) datatable.ColumnData {
	return datatable.ColumnData{Def: NewColumn(name, kind)}
}

// NewVirtualColumnData is NewColumnData for a column stored only in the
// sidecar file.
func NewVirtualColumnData(name string, kind Kind) datatable.ColumnData {
	c := NewColumn(name, kind)
	c.Virtual = true
	return datatable.ColumnData{Def: c}
}

// ConvertColumn builds the payload of a datatable.ReplaceColumn command that
// retypes column at to kind. Each cell goes through its text form; cells the
// new kind cannot parse become empty and are counted in lost.
func (s *Sheet) ConvertColumn(rows []Row, at datatable.ColumnIdx, kind Kind) (data datatable.ColumnData, lost int) {
	from := &s.columns[at]
	def := from.Clone()
	def.Kind = kind
	if kind != KindSelect && kind != KindMultiSelect {
		def.Options = nil
	}
	if (kind == KindSelect || kind == KindMultiSelect) && len(def.Options) == 0 {
		def.Options = s.distinctValues(rows, at)
	}

	cells := make([]Cell, len(rows))
	for i := range rows {
		c, err := s.reg.Parse(s.reg.Format(rows[i].Cells[at], from), &def)
		if err != nil {
			lost++
		}
		cells[i] = c
	}
	log.Info(log.CatSheet, "convert column", "column", def.Name, "from", from.Kind, "to", kind, "lost", lost)
	return datatable.ColumnData{Def: def, Cells: cells}, lost
}

// distinctValues collects the option list for a column becoming a select.
func (s *Sheet) distinctValues(rows []Row, at datatable.ColumnIdx) []string {
	var out []string
	col := &s.columns[at]
	for i := range rows {
		c := rows[i].Cells[at]
		if c.Kind == KindMultiSelect {
			for _, item := range c.Items {
				if !slices.Contains(out, item) {
					out = append(out, item)
				}
			}
			continue
		}
		text := s.reg.Format(c, col)
		if text != "" && !slices.Contains(out, text) {
			out = append(out, text)
		}
	}
	return out
}

// InsertColumn implements datatable.ColumnMutator. data.Def must be a Column
// and data.Cells, when set, a []Cell with one entry per row.
func (s *Sheet) InsertColumn(rows []Row, at datatable.ColumnIdx, data datatable.ColumnData) {
	def, _ := data.Def.(Column)
	cells, _ := data.Cells.([]Cell)
	s.columns = slices.Insert(s.columns, int(at), def)
	for i := range rows {
		c := EmptyCell(def.Kind)
		if cells != nil {
			c = cells[i].Clone()
		}
		rows[i].Cells = slices.Insert(rows[i].Cells, int(at), c)
	}
}

// RemoveColumn implements datatable.ColumnMutator.
func (s *Sheet) RemoveColumn(rows []Row, at datatable.ColumnIdx) datatable.ColumnData {
	def := s.columns[at]
	s.columns = slices.Delete(s.columns, int(at), int(at)+1)
	cells := make([]Cell, len(rows))
	for i := range rows {
		cells[i] = rows[i].Cells[at]
		rows[i].Cells = slices.Delete(rows[i].Cells, int(at), int(at)+1)
	}
	return datatable.ColumnData{Def: def, Cells: cells}
}

// ReplaceColumn implements datatable.ColumnMutator.
func (s *Sheet) ReplaceColumn(rows []Row, at datatable.ColumnIdx, data datatable.ColumnData) datatable.ColumnData {
	prev := datatable.ColumnData{Def: s.columns[at]}
	if def, ok := data.Def.(Column); ok {
		s.columns[at] = def
	}
	next, _ := data.Cells.([]Cell)
	cells := make([]Cell, len(rows))
	for i := range rows {
		cells[i] = rows[i].Cells[at]
		if next != nil {
			rows[i].Cells[at] = next[i].Clone()
		}
	}
	prev.Cells = cells
	return prev
}

// RenameColumn implements datatable.ColumnMutator.
func (s *Sheet) RenameColumn(at datatable.ColumnIdx, name string) string {
	prev := s.columns[at].Name
	s.columns[at].Name = name
	return prev
}
