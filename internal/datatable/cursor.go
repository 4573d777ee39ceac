package datatable

import (
	"slices"
	"strings"

	"github.com/zjrosen/tabula/internal/log"
)

// ApplyCache performs a view or cursor command. Cache commands never enter
// history.
func (t *Table[R]) ApplyCache(cmd CacheCommand) {
	switch c := cmd.(type) {
	case HideColumn:
		if c.Pos >= 0 && int(c.Pos) < len(t.visible) {
			t.visible = slices.Delete(t.visible, int(c.Pos), int(c.Pos)+1)
		}
	case ShowColumn:
		if c.Col >= 0 && int(c.Col) < t.numColumns && !slices.Contains(t.visible, c.Col) {
			pos := min(max(int(c.At), 0), len(t.visible))
			t.visible = slices.Insert(t.visible, pos, c.Col)
		}
	case ReorderColumn:
		t.moveVisible(c.From, c.To)
	case SetSortSpec:
		t.sort = t.sanitizeSort(c.Spec)
		t.invalidate()
	case SetVisibleColumns:
		t.visible = t.sanitizeVisible(c.Cols)
	case SetSelection:
		t.edit = nil
		t.selections = slices.Clone(c.Selections)
		t.selCols = len(t.visible)
		t.highlight()
	case EditStart:
		t.startEdit()
	case EditCancel:
		t.CancelEdit()
	case EditCommit:
		t.CommitEdit(c.Move, c.Fill)
	case UpdateClipboard:
		t.writeSystemClipboard(c.Text)
	}
	t.Sync()
}

func (t *Table[R]) highlight() {
	a, ok := t.Anchor()
	if !ok {
		return
	}
	if row, ok := t.RowAt(a.Row); ok {
		t.viewer.OnHighlight(row, t.store.At(row))
	}
}

// Select replaces the selection with the single cell c. With add, the cell is
// appended as a new rectangle instead.
func (t *Table[R]) Select(c VisCell, add bool) {
	if !t.inGrid(c) {
		return
	}
	sel := PointSelection(len(t.visible), c)
	if add && t.edit == nil {
		t.ApplyCache(SetSelection{Selections: append(t.Selections(), sel)})
		return
	}
	t.ApplyCache(SetSelection{Selections: []VisSelection{sel}})
}

// ExtendTo moves the moving corner of the newest selection to c.
func (t *Table[R]) ExtendTo(c VisCell) {
	if !t.inGrid(c) || t.edit != nil {
		return
	}
	sels := t.Selections()
	if len(sels) == 0 {
		t.Select(c, false)
		return
	}
	sels[len(sels)-1].B = c.Linear(len(t.visible))
	t.ApplyCache(SetSelection{Selections: sels})
}

// SelectRect replaces the selection with an inclusive rectangle.
func (t *Table[R]) SelectRect(r Rect) {
	nrows, ncols := len(t.filtered), len(t.visible)
	if nrows == 0 || ncols == 0 {
		return
	}
	r.Top, r.Bottom = max(r.Top, 0), min(r.Bottom, nrows-1)
	r.Left, r.Right = max(r.Left, 0), min(r.Right, ncols-1)
	if r.Top > r.Bottom || r.Left > r.Right {
		return
	}
	t.ApplyCache(SetSelection{Selections: []VisSelection{SelectionFromRect(ncols, r)}})
}

// SelectAll selects every visible cell.
func (t *Table[R]) SelectAll() {
	t.SelectRect(Rect{Bottom: len(t.filtered) - 1, Right: len(t.visible) - 1})
}

func (t *Table[R]) inGrid(c VisCell) bool {
	return c.Row >= 0 && int(c.Row) < len(t.filtered) && c.Col >= 0 && int(c.Col) < len(t.visible)
}

func (t *Table[R]) offset(c VisCell, dr, dc int) VisCell {
	return clampCell(VisCell{Row: c.Row + VisRowPos(dr), Col: c.Col + VisColumnPos(dc)},
		len(t.filtered), len(t.visible))
}

// MoveBy moves the anchor by (dr, dc), clamped to the grid. With extend the
// newest selection grows instead of being replaced.
func (t *Table[R]) MoveBy(dr, dc int, extend bool) {
	if len(t.filtered) == 0 || len(t.visible) == 0 {
		return
	}
	a, ok := t.Anchor()
	if !ok {
		t.Select(VisCell{}, false)
		return
	}
	next := t.offset(a, dr, dc)
	if extend {
		t.ExtendTo(next)
		return
	}
	t.Select(next, false)
}

// Move moves the anchor one cell.
func (t *Table[R]) Move(d Direction, extend bool) {
	dr, dc := d.delta()
	t.MoveBy(dr, dc, extend)
}

// JumpEdge moves the anchor to the grid edge in direction d.
func (t *Table[R]) JumpEdge(d Direction, extend bool) {
	a, ok := t.Anchor()
	if !ok {
		return
	}
	switch d {
	case DirUp:
		a.Row = 0
	case DirDown:
		a.Row = VisRowPos(len(t.filtered) - 1)
	case DirLeft:
		a.Col = 0
	case DirRight:
		a.Col = VisColumnPos(len(t.visible) - 1)
	}
	if extend {
		t.ExtendTo(a)
		return
	}
	t.Select(a, false)
}

// StartEdit enters edit mode at the anchor. It returns false when there is
// no anchor or the viewer offers no editor for the column.
func (t *Table[R]) StartEdit() bool {
	ok := t.startEdit()
	t.Sync()
	return ok
}

func (t *Table[R]) startEdit() bool {
	if t.edit != nil {
		return false
	}
	if len(t.selections) == 0 {
		return false
	}
	// Editing starts at the top-left cell of the first rectangle.
	r := t.selections[0].Rect(t.selCols)
	a := VisCell{Row: VisRowPos(r.Top), Col: VisColumnPos(r.Left)}
	if !t.inGrid(a) {
		return false
	}
	row, col := t.filtered[a.Row], t.visible[a.Col]

	var fill []VisSelection
	if len(t.selections) > 1 || !t.selections[0].IsPoint() {
		fill = slices.Clone(t.selections)
	}
	e := &editState[R]{
		row:       row,
		col:       col,
		anchor:    a,
		edition:   t.viewer.CloneRow(t.store.At(row)),
		nextFocus: true,
		fill:      fill,
		fillCols:  t.selCols,
	}
	e.editor = t.viewer.NewEditor(&e.edition, col)
	if e.editor == nil {
		return false
	}
	t.edit = e
	t.selections = []VisSelection{PointSelection(len(t.visible), a)}
	t.selCols = len(t.visible)
	log.Debug(log.CatTable, "edit started", "row", row, "col", col, "fill", len(fill) > 0)
	return true
}

// ConsumeEditFocus reports once per edit session that the editor should grab
// input focus.
func (t *Table[R]) ConsumeEditFocus() bool {
	if t.edit == nil || !t.edit.nextFocus {
		return false
	}
	t.edit.nextFocus = false
	return true
}

// SetEditor replaces the active editor after it handled a message.
func (t *Table[R]) SetEditor(ed Editor[R]) {
	if t.edit != nil && ed != nil {
		t.edit.editor = ed
	}
}

// CancelEdit discards the edition copy and returns to selection mode.
func (t *Table[R]) CancelEdit() {
	if t.edit == nil {
		return
	}
	a := t.edit.anchor
	t.edit = nil
	t.selections = []VisSelection{PointSelection(len(t.visible), a)}
	t.selCols = len(t.visible)
}

// CommitEdit stores the edited value and moves the anchor. It returns false
// when the editor rejects its current input, in which case editing
// continues.
func (t *Table[R]) CommitEdit(move Direction, fill bool) bool {
	e := t.edit
	if e == nil {
		return false
	}
	if !e.editor.Apply(&e.edition) {
		return false
	}

	slab := []R{e.edition}
	targets := []CellTarget{{Row: e.row, Col: e.col}}
	ctx := WriteEdit
	if fill && e.fill != nil {
		ctx = WriteFill
		for _, c := range uniqueCells(e.fillCols, e.fill) {
			if c == e.anchor || !t.inGrid(c) {
				continue
			}
			row, col := t.filtered[c.Row], t.visible[c.Col]
			if col == e.col {
				targets = append(targets, CellTarget{Row: row, Col: col})
				continue
			}
			v, ok := t.transcode(&e.edition, e.col, col)
			if !ok {
				continue
			}
			slab = append(slab, v)
			targets = append(targets, CellTarget{Row: row, Col: col, Slab: len(slab) - 1})
		}
	}

	t.edit = nil
	dr, dc := move.delta()
	next := t.offset(e.anchor, dr, dc)
	t.selections = []VisSelection{PointSelection(len(t.visible), next)}
	t.selCols = len(t.visible)

	if len(targets) == 1 && t.sameCell(&e.edition, t.store.At(e.row), e.col) {
		t.Sync()
		return true
	}
	t.exec([]HistoryCommand{SetCells[R]{Slab: slab, Targets: targets, Ctx: ctx}})
	t.highlight()
	return true
}

// sameCell compares one column of two rows through the codec. Without a
// codec every commit counts as a change.
func (t *Table[R]) sameCell(a, b *R, col ColumnIdx) bool {
	codec := t.viewer.Codec()
	if codec == nil {
		return false
	}
	var x, y strings.Builder
	codec.EncodeColumn(a, col, &x)
	codec.EncodeColumn(b, col, &y)
	return x.String() == y.String()
}

// transcode moves a value between columns of different kinds by encoding it
// as text and decoding it into an empty row.
func (t *Table[R]) transcode(src *R, srcCol, dstCol ColumnIdx) (R, bool) {
	var zero R
	codec := t.viewer.Codec()
	if codec == nil {
		return zero, false
	}
	var buf strings.Builder
	codec.EncodeColumn(src, srcCol, &buf)
	dst := t.viewer.NewEmptyRow()
	if err := codec.DecodeColumn(buf.String(), dstCol, &dst); err != nil {
		return zero, false
	}
	return dst, true
}

// CycleSort advances the sort state of col: off, ascending, descending, off.
// Without appendKey the spec is reduced to col alone; with it, col's key is
// added or updated in place.
func (t *Table[R]) CycleSort(col ColumnIdx, appendKey bool) {
	if col < 0 || int(col) >= t.numColumns || !t.viewer.IsSortable(col) {
		return
	}
	spec := t.SortSpec()
	i := slices.IndexFunc(spec, func(k SortKey) bool { return k.Column == col })

	switch {
	case !appendKey && i < 0:
		spec = []SortKey{{Column: col, Ascending: true}}
	case !appendKey && spec[i].Ascending:
		spec = []SortKey{{Column: col}}
	case !appendKey:
		spec = nil
	case i < 0:
		spec = append(spec, SortKey{Column: col, Ascending: true})
	case spec[i].Ascending:
		spec[i].Ascending = false
	default:
		spec = slices.Delete(spec, i, i+1)
	}
	t.ApplyCache(SetSortSpec{Spec: spec})
}

// SortState returns col's position in the sort spec and its direction.
func (t *Table[R]) SortState(col ColumnIdx) (pos int, ascending, ok bool) {
	for i, k := range t.sort {
		if k.Column == col {
			return i, k.Ascending, true
		}
	}
	return 0, false, false
}

// ClearSelection blanks every selected cell as one step.
func (t *Table[R]) ClearSelection() bool {
	targets := t.selectedTargets(0)
	if len(targets) == 0 {
		return false
	}
	return t.Exec(SetCells[R]{Slab: []R{t.viewer.NewEmptyRow()}, Targets: targets, Ctx: WriteClear})
}

func (t *Table[R]) selectedTargets(slab int) []CellTarget {
	if t.edit != nil {
		return nil
	}
	var out []CellTarget
	for _, c := range uniqueCells(t.selCols, t.selections) {
		if !t.inGrid(c) {
			continue
		}
		out = append(out, CellTarget{Row: t.filtered[c.Row], Col: t.visible[c.Col], Slab: slab})
	}
	return out
}

// SelectedRows returns the store indices of every row touched by the
// selection, ascending.
func (t *Table[R]) SelectedRows() []RowIdx {
	var out []RowIdx
	for _, c := range uniqueCells(t.selCols, t.selections) {
		if row, ok := t.RowAt(c.Row); ok {
			out = append(out, row)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// InsertRow adds an empty row after the anchor row, or at the end when there
// is no anchor, and selects it.
func (t *Table[R]) InsertRow() bool {
	at := RowIdx(t.store.Len())
	a, ok := t.Anchor()
	if row, rok := t.RowAt(a.Row); ok && rok {
		at = row + 1
	}
	if !t.Exec(InsertRows[R]{Indices: []RowIdx{at}, Rows: []R{t.viewer.NewEmptyRow()}}) {
		return false
	}
	t.focusRow(at, a.Col)
	return true
}

// DuplicateRows copies every selected row and inserts the copies after the
// last of them.
func (t *Table[R]) DuplicateRows() bool {
	rows := t.SelectedRows()
	if len(rows) == 0 {
		return false
	}
	base := rows[len(rows)-1] + 1
	idx := make([]RowIdx, len(rows))
	copies := make([]R, len(rows))
	for i, r := range rows {
		idx[i] = base + RowIdx(i)
		copies[i] = t.viewer.CloneRow(t.store.At(r))
	}
	if !t.Exec(InsertRows[R]{Indices: idx, Rows: copies}) {
		return false
	}
	a, _ := t.Anchor()
	t.focusRow(base, a.Col)
	return true
}

// DeleteRows removes every selected row the viewer allows to delete.
func (t *Table[R]) DeleteRows() bool {
	rows := t.SelectedRows()
	if len(rows) == 0 {
		return false
	}
	return t.Exec(RemoveRows{Indices: rows})
}

// MoveRow moves the row shown at src so it is stored where the row shown at
// dst was. It is a no-op while sorting is active.
func (t *Table[R]) MoveRow(src, dst VisRowPos) bool {
	if len(t.sort) > 0 || src == dst {
		return false
	}
	from, ok1 := t.RowAt(src)
	to, ok2 := t.RowAt(dst)
	if !ok1 || !ok2 || !t.viewer.ConfirmRowDeletion(t.store.At(from)) {
		return false
	}
	moved := t.viewer.CloneRow(t.store.At(from))
	if !t.Exec(RemoveRows{Indices: []RowIdx{from}}, InsertRows[R]{Indices: []RowIdx{to}, Rows: []R{moved}}) {
		return false
	}
	a, _ := t.Anchor()
	t.focusRow(to, a.Col)
	return true
}

func (t *Table[R]) focusRow(row RowIdx, col VisColumnPos) {
	if vr := t.visRowOf(row); vr >= 0 {
		t.Select(VisCell{Row: vr, Col: col}, false)
	}
}

// RenameColumn renames the logical column col.
func (t *Table[R]) RenameColumn(col ColumnIdx, name string) bool {
	return t.Exec(RenameColumn{Col: col, Name: name})
}

// RenameRow renames the row shown at vr.
func (t *Table[R]) RenameRow(vr VisRowPos, name string) bool {
	row, ok := t.RowAt(vr)
	if !ok {
		return false
	}
	return t.Exec(RenameRow{Row: row, Name: name})
}

// MoveColumn moves a visible column as an undoable step.
func (t *Table[R]) MoveColumn(from, to VisColumnPos) bool {
	col, ok := t.ColumnAt(from)
	if !ok || !t.Exec(MoveColumn{Col: col, To: to}) {
		return false
	}
	if a, ok := t.Anchor(); ok && a.Col == from {
		t.Select(VisCell{Row: a.Row, Col: to}, false)
	}
	return true
}
