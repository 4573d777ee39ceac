// Package datatable is an interactive table engine for Bubble Tea programs.
//
// A Table owns an ordered row collection (RowStore), the view state over it
// (visible columns, sort keys, filtered-row cache, cursor), a bounded
// undo/redo History of semantic commands, and an internal clipboard. Rows are
// opaque: everything the table needs to know about them goes through the
// embedder's Viewer.
//
// Mutations come in two families. HistoryCommand values (Exec) edit rows or
// column structure and are recorded as apply/restore pairs. CacheCommand
// values (ApplyCache) only touch view and cursor state and are never
// recorded.
//
// Model wraps a Table as a Bubble Tea component that renders the grid and
// turns key and mouse input into commands.
package datatable

import (
	"errors"
	"slices"

	"github.com/zjrosen/tabula/internal/log"
)

// ErrColumnsImmutable is returned for column structure commands when the
// viewer does not implement ColumnMutator.
var ErrColumnsImmutable = errors.New("viewer does not support column changes")

// Clipboard is the host's system clipboard.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// PersistedState is the view state record kept across sessions.
type PersistedState struct {
	NumColumns     int         `json:"num_columns"`
	VisibleColumns []ColumnIdx `json:"visible_columns"`
	SortSpec       []SortKey   `json:"sort_spec"`
}

// Options configures a Table.
type Options struct {
	MaxUndoHistory int
	Clipboard      Clipboard
	// InitialVisible overrides the default of showing every column.
	InitialVisible []ColumnIdx
	// Persisted is restored when its column count matches the viewer.
	Persisted *PersistedState
}

type editState[R any] struct {
	row       RowIdx
	col       ColumnIdx
	anchor    VisCell
	edition   R
	editor    Editor[R]
	nextFocus bool

	// fill holds the selection that was active when editing began.
	fill     []VisSelection
	fillCols int
}

// Table is the data-table engine. It is not safe for concurrent use; every
// method is expected to run on the UI goroutine.
type Table[R any] struct {
	viewer    Viewer[R]
	store     *RowStore[R]
	history   *History
	clipboard Clipboard

	numColumns int
	visible    []ColumnIdx
	sort       []SortKey

	filtered     []RowIdx
	visOf        []VisRowPos
	cacheValid   bool
	cacheHash    uint64
	cacheVersion uint64
	version      uint64

	selections []VisSelection
	selCols    int
	edit       *editState[R]

	clip       *clipBuffer[R]
	lastExport string
}

// New creates a table over rows. The table takes ownership of the slice.
func New[R any](viewer Viewer[R], rows []R, opts Options) *Table[R] {
	t := &Table[R]{
		viewer:     viewer,
		store:      NewRowStore(rows),
		history:    NewHistory(opts.MaxUndoHistory),
		clipboard:  opts.Clipboard,
		numColumns: viewer.NumColumns(),
	}
	t.resetColumns()
	if opts.InitialVisible != nil {
		t.visible = t.sanitizeVisible(opts.InitialVisible)
	}
	if opts.Persisted != nil {
		t.restorePersisted(*opts.Persisted)
	}
	t.Sync()
	return t
}

func (t *Table[R]) resetColumns() {
	t.visible = make([]ColumnIdx, t.numColumns)
	for i := range t.visible {
		t.visible[i] = ColumnIdx(i)
	}
	t.sort = nil
	t.edit = nil
	t.selections = nil
}

func (t *Table[R]) restorePersisted(ps PersistedState) {
	if ps.NumColumns != t.numColumns {
		log.Info(log.CatTable, "discarding persisted view state",
			"stored_columns", ps.NumColumns, "columns", t.numColumns)
		return
	}
	t.visible = t.sanitizeVisible(ps.VisibleColumns)
	t.sort = t.sanitizeSort(ps.SortSpec)
}

// Sync brings the cached view in line with the viewer and the store. It is
// called at the start of every frame and after every applied command.
func (t *Table[R]) Sync() {
	if n := t.viewer.NumColumns(); n != t.numColumns {
		log.Debug(log.CatTable, "column count changed, resetting view", "from", t.numColumns, "to", n)
		t.numColumns = n
		t.resetColumns()
		t.cacheValid = false
	}
	hash := t.viewer.RowFilterHash()
	if !t.cacheValid || hash != t.cacheHash || t.cacheVersion != t.version {
		t.rebuild(hash)
	}
	t.validateCursor()
}

func (t *Table[R]) invalidate() { t.cacheValid = false }

// rebuild recomputes the filtered rows: every row passing FilterRow, stably
// sorted by the sortable keys of the sort spec. Ties keep store order.
func (t *Table[R]) rebuild(hash uint64) {
	rows := make([]RowIdx, 0, t.store.Len())
	for i, row := range t.store.All() {
		if t.viewer.FilterRow(row) {
			rows = append(rows, i)
		}
	}

	keys := make([]SortKey, 0, len(t.sort))
	for _, k := range t.sort {
		if t.viewer.IsSortable(k.Column) {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		slices.SortStableFunc(rows, func(a, b RowIdx) int {
			ra, rb := t.store.At(a), t.store.At(b)
			for _, k := range keys {
				c := t.viewer.CompareCell(ra, rb, k.Column)
				if !k.Ascending {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	visOf := make([]VisRowPos, t.store.Len())
	for i := range visOf {
		visOf[i] = -1
	}
	for pos, idx := range rows {
		visOf[idx] = VisRowPos(pos)
	}

	t.filtered = rows
	t.visOf = visOf
	t.cacheHash = hash
	t.cacheVersion = t.version
	t.cacheValid = true
}

// validateCursor keeps the cursor inside the current grid. An edit whose row
// or column disappeared is discarded.
func (t *Table[R]) validateCursor() {
	nrows, ncols := len(t.filtered), len(t.visible)

	if e := t.edit; e != nil {
		vr, vc := t.visRowOf(e.row), t.visColOf(e.col)
		if vr < 0 || vc < 0 {
			log.Info(log.CatTable, "edit target invalidated", "row", e.row, "col", e.col)
			t.edit = nil
			t.selections = nil
			if nrows > 0 && ncols > 0 {
				t.selections = []VisSelection{PointSelection(ncols, clampCell(e.anchor, nrows, ncols))}
			}
			t.selCols = ncols
		} else {
			e.anchor = VisCell{Row: vr, Col: vc}
		}
	}

	if t.selCols == ncols && t.selectionsInBounds(nrows, ncols) {
		return
	}
	kept := t.selections[:0]
	for _, s := range t.selections {
		if r, ok := s.remap(t.selCols, ncols, nrows); ok {
			kept = append(kept, r)
		}
	}
	t.selections = kept
	t.selCols = ncols
}

func (t *Table[R]) selectionsInBounds(nrows, ncols int) bool {
	limit := VisLinearIdx(nrows * ncols)
	for _, s := range t.selections {
		if s.A < 0 || s.B < 0 || s.A >= limit || s.B >= limit {
			return false
		}
	}
	return true
}

func clampCell(c VisCell, nrows, ncols int) VisCell {
	return VisCell{
		Row: VisRowPos(min(max(int(c.Row), 0), nrows-1)),
		Col: VisColumnPos(min(max(int(c.Col), 0), ncols-1)),
	}
}

func (t *Table[R]) visRowOf(row RowIdx) VisRowPos {
	if row < 0 || int(row) >= len(t.visOf) {
		return -1
	}
	return t.visOf[row]
}

func (t *Table[R]) visColOf(col ColumnIdx) VisColumnPos {
	return VisColumnPos(slices.Index(t.visible, col))
}

func (t *Table[R]) sanitizeVisible(cols []ColumnIdx) []ColumnIdx {
	out := make([]ColumnIdx, 0, len(cols))
	for _, c := range cols {
		if c < 0 || int(c) >= t.numColumns || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (t *Table[R]) sanitizeSort(spec []SortKey) []SortKey {
	out := make([]SortKey, 0, len(spec))
	for _, k := range spec {
		if k.Column < 0 || int(k.Column) >= t.numColumns {
			continue
		}
		if slices.ContainsFunc(out, func(o SortKey) bool { return o.Column == k.Column }) {
			continue
		}
		out = append(out, k)
	}
	return out
}

// Viewer returns the table's viewer.
func (t *Table[R]) Viewer() Viewer[R] { return t.viewer }

// Store returns the row store. Mutating it directly bypasses history.
func (t *Table[R]) Store() *RowStore[R] { return t.store }

// History returns the undo/redo history.
func (t *Table[R]) History() *History { return t.history }

// NumColumns is the logical column count seen at the last Sync.
func (t *Table[R]) NumColumns() int { return t.numColumns }

// VisibleColumns returns a copy of the visible column order.
func (t *Table[R]) VisibleColumns() []ColumnIdx { return slices.Clone(t.visible) }

// HiddenColumns lists logical columns absent from the visible order.
func (t *Table[R]) HiddenColumns() []ColumnIdx {
	var out []ColumnIdx
	for c := range t.numColumns {
		if !slices.Contains(t.visible, ColumnIdx(c)) {
			out = append(out, ColumnIdx(c))
		}
	}
	return out
}

// SortSpec returns a copy of the sort keys.
func (t *Table[R]) SortSpec() []SortKey { return slices.Clone(t.sort) }

// FilteredRows returns the cached visible row order. The slice must not be
// modified.
func (t *Table[R]) FilteredRows() []RowIdx { return t.filtered }

// NumVisibleColumns is the length of the visible column order.
func (t *Table[R]) NumVisibleColumns() int { return len(t.visible) }

// NumVisibleRows is the length of the filtered row list.
func (t *Table[R]) NumVisibleRows() int { return len(t.filtered) }

// RowAt maps a visible row position to its store index.
func (t *Table[R]) RowAt(vr VisRowPos) (RowIdx, bool) {
	if vr < 0 || int(vr) >= len(t.filtered) {
		return 0, false
	}
	return t.filtered[vr], true
}

// ColumnAt maps a visible column position to its logical index.
func (t *Table[R]) ColumnAt(vc VisColumnPos) (ColumnIdx, bool) {
	if vc < 0 || int(vc) >= len(t.visible) {
		return 0, false
	}
	return t.visible[vc], true
}

// Selections returns a copy of the selection rectangles, encoded for the
// current visible width.
func (t *Table[R]) Selections() []VisSelection { return slices.Clone(t.selections) }

// IsSelected reports whether c lies in any selection rectangle.
func (t *Table[R]) IsSelected(c VisCell) bool {
	for _, s := range t.selections {
		if s.Contains(t.selCols, c) {
			return true
		}
	}
	return false
}

// HasSelection reports whether at least one cell is selected.
func (t *Table[R]) HasSelection() bool { return len(t.selections) > 0 }

// Anchor returns the focused cell: the edited cell in edit mode, otherwise
// the moving corner of the newest selection.
func (t *Table[R]) Anchor() (VisCell, bool) {
	if t.edit != nil {
		return t.edit.anchor, true
	}
	if len(t.selections) == 0 {
		return VisCell{}, false
	}
	return CellAt(t.selections[len(t.selections)-1].B, t.selCols), true
}

// IsEditing reports whether the cursor is in edit mode.
func (t *Table[R]) IsEditing() bool { return t.edit != nil }

// EditCell returns the cell under edit.
func (t *Table[R]) EditCell() (VisCell, bool) {
	if t.edit == nil {
		return VisCell{}, false
	}
	return t.edit.anchor, true
}

// Editor returns the active cell editor, or nil outside edit mode.
func (t *Table[R]) Editor() Editor[R] {
	if t.edit == nil {
		return nil
	}
	return t.edit.editor
}

// EditionRow returns the edition copy, or nil outside edit mode.
func (t *Table[R]) EditionRow() *R {
	if t.edit == nil {
		return nil
	}
	return &t.edit.edition
}

// IsDirty reports whether unsaved history commands are applied.
func (t *Table[R]) IsDirty() bool { return t.store.HasDirty() }

// ClearDirty marks the current content as saved.
func (t *Table[R]) ClearDirty() {
	t.store.ClearDirty()
	t.history.MarkClean()
}

// PersistedState returns the record to store, or false when the viewer has
// not opted in.
func (t *Table[R]) PersistedState() (PersistedState, bool) {
	if !t.viewer.PersistViewState() {
		return PersistedState{}, false
	}
	return PersistedState{
		NumColumns:     t.numColumns,
		VisibleColumns: slices.Clone(t.visible),
		SortSpec:       slices.Clone(t.sort),
	}, true
}

// Reset replaces every row, drops history and the selection, and marks the
// table clean.
func (t *Table[R]) Reset(rows []R) {
	t.edit = nil
	t.selections = nil
	t.store.ReplaceAll(rows)
	t.history.Reset()
	t.store.ClearDirty()
	t.version++
	t.Sync()
}
