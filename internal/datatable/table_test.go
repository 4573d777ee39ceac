package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, v *testViewer, rows []testRow, opts Options) *Table[testRow] {
	t.Helper()
	return New(v, rows, opts)
}

func TestTable_EditCommitThenUndo(t *testing.T) {
	v := newTestViewer("name", "n")
	v.ints[1] = true
	tbl := newTable(t, v, rowsOf(
		[]string{"A", "1"},
		[]string{"B", "2"},
		[]string{"C", "3"},
	), Options{})

	tbl.Select(cell(1, 1), false)
	require.True(t, tbl.StartEdit())
	setEditorValue(t, tbl, "20")
	require.True(t, tbl.CommitEdit(DirDown, false))

	require.Equal(t, [][]string{{"A", "1"}, {"B", "20"}, {"C", "3"}}, cellsOf(tbl))
	require.True(t, tbl.IsDirty())
	require.False(t, tbl.IsEditing())
	anchor, ok := tbl.Anchor()
	require.True(t, ok)
	require.Equal(t, cell(2, 1), anchor)

	require.NoError(t, tbl.Undo())
	require.Equal(t, [][]string{{"A", "1"}, {"B", "2"}, {"C", "3"}}, cellsOf(tbl))
	require.False(t, tbl.IsDirty())
	require.Equal(t, 1, tbl.History().RedoDepth())
}

func TestTable_MultiCellPasteGrowsRows(t *testing.T) {
	v := newTestViewer("a", "b")
	clip := &fakeClipboard{}
	tbl := newTable(t, v, rowsOf(
		[]string{"a0", "b0"},
		[]string{"a1", "b1"},
		[]string{"a2", "b2"},
	), Options{Clipboard: clip})

	tbl.SelectRect(Rect{Top: 0, Left: 0, Bottom: 0, Right: 1})
	copied := tbl.Copy()
	require.Equal(t, 2, copied.Cells)
	require.True(t, copied.System)
	require.Equal(t, "a0\tb0", clip.text)

	tbl.Select(cell(2, 0), false)
	clip.text = "x\ty\nz\tw\np\tq"
	report := tbl.Paste(false)

	require.True(t, report.Applied)
	require.True(t, report.FromSystem)
	require.Equal(t, 2, report.InsertedRows)
	require.Equal(t, 6, report.Cells)
	require.Equal(t, [][]string{
		{"a0", "b0"},
		{"a1", "b1"},
		{"x", "y"},
		{"z", "w"},
		{"p", "q"},
	}, cellsOf(tbl))

	require.Equal(t, 1, tbl.History().UndoDepth())
	e := tbl.history.undo[0]
	require.Len(t, e.apply, 2)
	require.IsType(t, InsertRows[testRow]{}, e.apply[0])
	require.IsType(t, SetCells[testRow]{}, e.apply[1])

	require.NoError(t, tbl.Undo())
	require.Equal(t, [][]string{{"a0", "b0"}, {"a1", "b1"}, {"a2", "b2"}}, cellsOf(tbl))
}

func TestTable_RowProtectionVeto(t *testing.T) {
	v := newTestViewer("a")
	rows := rowsOf([]string{"0"}, []string{"1"}, []string{"2"})
	rows[1].locked = true
	tbl := newTable(t, v, rows, Options{})

	applied := tbl.Exec(SetCells[testRow]{
		Slab:    []testRow{{cells: []string{"X"}}},
		Targets: []CellTarget{{Row: 0}, {Row: 1}, {Row: 2}},
		Ctx:     WriteEdit,
	})

	require.True(t, applied)
	require.Equal(t, [][]string{{"X"}, {"1"}, {"X"}}, cellsOf(tbl))
	require.Equal(t, 1, tbl.History().UndoDepth())

	restore, ok := tbl.history.undo[0].restore[0].(SetCells[testRow])
	require.True(t, ok)
	var targeted []RowIdx
	for _, tg := range restore.Targets {
		targeted = append(targeted, tg.Row)
	}
	require.Equal(t, []RowIdx{0, 2}, targeted)
}

func TestTable_AllVetoedIsNotRecorded(t *testing.T) {
	v := newTestViewer("a")
	rows := rowsOf([]string{"0"})
	rows[0].locked = true
	tbl := newTable(t, v, rows, Options{})

	applied := tbl.Exec(SetCell[testRow]{Row: 0, Col: 0, Value: testRow{cells: []string{"X"}}})

	require.False(t, applied)
	require.Equal(t, 0, tbl.History().UndoDepth())
	require.False(t, tbl.IsDirty())
}

func TestTable_HideThenShowColumn(t *testing.T) {
	v := newTestViewer("a", "b", "c", "d")
	tbl := newTable(t, v, rowsOf(
		[]string{"r0", "x", "3", "y"},
		[]string{"r1", "x", "1", "y"},
		[]string{"r2", "x", "2", "y"},
	), Options{})
	tbl.ApplyCache(SetSortSpec{Spec: []SortKey{{Column: 2, Ascending: true}}})
	require.Equal(t, []RowIdx{1, 2, 0}, tbl.FilteredRows())

	tbl.ApplyCache(HideColumn{Pos: 2})
	require.Equal(t, []ColumnIdx{0, 1, 3}, tbl.VisibleColumns())
	require.Equal(t, []ColumnIdx{2}, tbl.HiddenColumns())
	require.Equal(t, []RowIdx{1, 2, 0}, tbl.FilteredRows())

	tbl.ApplyCache(ShowColumn{Col: 2, At: 0})
	require.Equal(t, []ColumnIdx{2, 0, 1, 3}, tbl.VisibleColumns())
	require.Equal(t, []RowIdx{1, 2, 0}, tbl.FilteredRows())
	require.Equal(t, 0, tbl.History().UndoDepth())
}

func TestTable_PasteWithDecodeFailure(t *testing.T) {
	v := newTestViewer("x", "y")
	v.ints[0], v.ints[1] = true, true
	tbl := newTable(t, v, rowsOf([]string{"1", "2"}, []string{"3", "4"}), Options{})
	tbl.Select(cell(0, 0), false)

	report := tbl.PasteText("10\t20\nNOT_A_NUMBER\t30", false)

	require.True(t, report.Applied)
	require.Equal(t, 1, report.SkippedRows)
	require.Equal(t, 2, report.Cells)
	require.Equal(t, [][]string{{"10", "20"}, {"3", "4"}}, cellsOf(tbl))
}

func TestTable_UndoAfterColumnMove(t *testing.T) {
	v := newTestViewer("A", "B", "C")
	tbl := newTable(t, v, rowsOf([]string{"1", "2", "3"}, []string{"4", "5", "6"}), Options{})

	require.True(t, tbl.Exec(MoveColumn{Col: 0, To: 2}))
	require.Equal(t, []ColumnIdx{1, 2, 0}, tbl.VisibleColumns())
	require.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}}, cellsOf(tbl))
	require.Equal(t, []string{"A", "B", "C"}, v.names)

	require.NoError(t, tbl.Undo())
	require.Equal(t, []ColumnIdx{0, 1, 2}, tbl.VisibleColumns())
	require.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}}, cellsOf(tbl))
}

func TestTable_UndoColumnMoveAfterHide(t *testing.T) {
	v := newTestViewer("A", "B", "C", "D")
	tbl := newTable(t, v, rowsOf([]string{"1", "2", "3", "4"}), Options{})

	require.True(t, tbl.Exec(MoveColumn{Col: 1, To: 2}))
	require.Equal(t, []ColumnIdx{0, 2, 1, 3}, tbl.VisibleColumns())

	tbl.ApplyCache(HideColumn{Pos: 0})
	require.Equal(t, []ColumnIdx{2, 1, 3}, tbl.VisibleColumns())

	require.NoError(t, tbl.Undo())
	require.Equal(t, []ColumnIdx{1, 2, 3}, tbl.VisibleColumns())

	require.NoError(t, tbl.Redo())
	require.Equal(t, []ColumnIdx{2, 1, 3}, tbl.VisibleColumns())
}

func TestTable_UndoColumnMoveAfterReorder(t *testing.T) {
	v := newTestViewer("A", "B", "C", "D")
	tbl := newTable(t, v, rowsOf([]string{"1", "2", "3", "4"}), Options{})

	require.True(t, tbl.MoveColumn(0, 3))
	require.Equal(t, []ColumnIdx{1, 2, 3, 0}, tbl.VisibleColumns())

	tbl.ApplyCache(ReorderColumn{From: 2, To: 0})
	require.Equal(t, []ColumnIdx{3, 1, 2, 0}, tbl.VisibleColumns())

	// A goes back to the left of B, its right neighbour before the move.
	require.NoError(t, tbl.Undo())
	require.Equal(t, []ColumnIdx{3, 0, 1, 2}, tbl.VisibleColumns())
}

func TestTable_UndoColumnMoveOfHiddenColumnIsNoop(t *testing.T) {
	v := newTestViewer("A", "B", "C")
	tbl := newTable(t, v, rowsOf([]string{"1", "2", "3"}), Options{})

	require.True(t, tbl.Exec(MoveColumn{Col: 0, To: 2}))
	tbl.ApplyCache(HideColumn{Pos: 2})
	require.Equal(t, []ColumnIdx{1, 2}, tbl.VisibleColumns())

	require.NoError(t, tbl.Undo())
	require.Equal(t, []ColumnIdx{1, 2}, tbl.VisibleColumns())
}

func TestTable_UndoRedoEmpty(t *testing.T) {
	tbl := newTable(t, newTestViewer("a"), nil, Options{})
	require.ErrorIs(t, tbl.Undo(), ErrNothingToUndo)
	require.ErrorIs(t, tbl.Redo(), ErrNothingToRedo)
}

func TestTable_RedoReappliesAndNewCommandClearsRedo(t *testing.T) {
	v := newTestViewer("a")
	tbl := newTable(t, v, rowsOf([]string{"old"}), Options{})
	set := func(val string) bool {
		return tbl.Exec(SetCell[testRow]{Row: 0, Col: 0, Value: testRow{cells: []string{val}}})
	}

	require.True(t, set("new"))
	require.NoError(t, tbl.Undo())
	require.Equal(t, "old", cellsOf(tbl)[0][0])

	require.NoError(t, tbl.Redo())
	require.Equal(t, "new", cellsOf(tbl)[0][0])
	require.True(t, tbl.IsDirty())
	require.Equal(t, 0, tbl.History().RedoDepth())

	require.NoError(t, tbl.Undo())
	require.Equal(t, 1, tbl.History().RedoDepth())
	require.True(t, set("other"))
	require.Equal(t, 0, tbl.History().RedoDepth())
}

func TestTable_HistoryOverflowDropsOldest(t *testing.T) {
	v := newTestViewer("a")
	tbl := newTable(t, v, rowsOf([]string{"0"}), Options{MaxUndoHistory: 2})

	for _, val := range []string{"1", "2", "3"} {
		require.True(t, tbl.Exec(SetCell[testRow]{Row: 0, Col: 0, Value: testRow{cells: []string{val}}}))
	}
	require.Equal(t, 2, tbl.History().UndoDepth())

	require.NoError(t, tbl.Undo())
	require.NoError(t, tbl.Undo())
	require.ErrorIs(t, tbl.Undo(), ErrNothingToUndo)
	require.Equal(t, "1", cellsOf(tbl)[0][0])
	// The clean state fell off the history, so the table stays dirty.
	require.True(t, tbl.IsDirty())
}

func TestTable_ClearDirtyMovesCleanPoint(t *testing.T) {
	v := newTestViewer("a")
	tbl := newTable(t, v, rowsOf([]string{"0"}), Options{})

	require.True(t, tbl.Exec(SetCell[testRow]{Row: 0, Col: 0, Value: testRow{cells: []string{"1"}}}))
	tbl.ClearDirty()
	require.False(t, tbl.IsDirty())

	require.NoError(t, tbl.Undo())
	require.True(t, tbl.IsDirty())
	require.NoError(t, tbl.Redo())
	require.False(t, tbl.IsDirty())
}

func TestTable_RemoveRowsRespectsVetoAndUndoRestoresOrder(t *testing.T) {
	v := newTestViewer("a")
	rows := rowsOf([]string{"A"}, []string{"B"}, []string{"C"})
	rows[1].locked = true
	tbl := newTable(t, v, rows, Options{})

	tbl.SelectRect(Rect{Top: 0, Bottom: 2})
	require.True(t, tbl.DeleteRows())
	require.Equal(t, [][]string{{"B"}}, cellsOf(tbl))
	require.Equal(t, []RowIdx{2, 0}, v.removed)

	require.NoError(t, tbl.Undo())
	require.Equal(t, [][]string{{"A"}, {"B"}, {"C"}}, cellsOf(tbl))
	require.Equal(t, []RowIdx{0, 2}, v.inserted)
}

func TestTable_InsertAndDuplicateRows(t *testing.T) {
	v := newTestViewer("a", "b")
	tbl := newTable(t, v, rowsOf([]string{"A", "1"}, []string{"B", "2"}), Options{})

	tbl.Select(cell(0, 1), false)
	require.True(t, tbl.InsertRow())
	require.Equal(t, [][]string{{"A", "1"}, {"", ""}, {"B", "2"}}, cellsOf(tbl))
	anchor, _ := tbl.Anchor()
	require.Equal(t, cell(1, 1), anchor)

	tbl.SelectRect(Rect{Top: 0, Bottom: 0, Right: 1})
	require.True(t, tbl.DuplicateRows())
	require.Equal(t, [][]string{{"A", "1"}, {"A", "1"}, {"", ""}, {"B", "2"}}, cellsOf(tbl))
	require.Equal(t, 2, tbl.History().UndoDepth())
}

func TestTable_MoveRow(t *testing.T) {
	v := newTestViewer("a")
	tbl := newTable(t, v, rowsOf([]string{"A"}, []string{"B"}, []string{"C"}), Options{})

	require.True(t, tbl.MoveRow(0, 2))
	require.Equal(t, [][]string{{"B"}, {"C"}, {"A"}}, cellsOf(tbl))
	require.Equal(t, 1, tbl.History().UndoDepth())

	require.NoError(t, tbl.Undo())
	require.Equal(t, [][]string{{"A"}, {"B"}, {"C"}}, cellsOf(tbl))

	tbl.ApplyCache(SetSortSpec{Spec: []SortKey{{Column: 0, Ascending: false}}})
	require.False(t, tbl.MoveRow(0, 1), "rows cannot be reordered while sorted")
}

func TestTable_RemoveColumnUndoRestoresDataVisibilityAndSort(t *testing.T) {
	v := newTestViewer("a", "b", "c")
	tbl := newTable(t, v, rowsOf([]string{"1", "2", "3"}, []string{"4", "5", "6"}), Options{})
	tbl.ApplyCache(SetSortSpec{Spec: []SortKey{{Column: 2}, {Column: 1, Ascending: true}}})

	require.True(t, tbl.Exec(RemoveColumn{At: 1}))
	require.Equal(t, []string{"a", "c"}, v.names)
	require.Equal(t, [][]string{{"1", "3"}, {"4", "6"}}, cellsOf(tbl))
	require.Equal(t, []ColumnIdx{0, 1}, tbl.VisibleColumns())
	require.Equal(t, []SortKey{{Column: 1}}, tbl.SortSpec())

	require.NoError(t, tbl.Undo())
	require.Equal(t, []string{"a", "b", "c"}, v.names)
	require.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}}, cellsOf(tbl))
	require.Equal(t, []ColumnIdx{0, 1, 2}, tbl.VisibleColumns())
	require.Equal(t, []SortKey{{Column: 2}, {Column: 1, Ascending: true}}, tbl.SortSpec())
}

func TestTable_RemoveHiddenColumnStaysHiddenOnUndo(t *testing.T) {
	v := newTestViewer("a", "b", "c")
	tbl := newTable(t, v, rowsOf([]string{"1", "2", "3"}), Options{})
	tbl.ApplyCache(HideColumn{Pos: 1})

	require.True(t, tbl.Exec(RemoveColumn{At: 1}))
	require.NoError(t, tbl.Undo())
	require.Equal(t, []ColumnIdx{0, 2}, tbl.VisibleColumns())
	require.Equal(t, []ColumnIdx{1}, tbl.HiddenColumns())
}

func TestTable_InsertColumnShiftsViewState(t *testing.T) {
	v := newTestViewer("a", "b")
	tbl := newTable(t, v, rowsOf([]string{"1", "2"}), Options{})
	tbl.ApplyCache(SetSortSpec{Spec: []SortKey{{Column: 1, Ascending: true}}})

	require.True(t, tbl.Exec(InsertColumn{At: 0, VisPos: 0, Data: ColumnData{Def: "new"}}))
	require.Equal(t, []string{"new", "a", "b"}, v.names)
	require.Equal(t, []ColumnIdx{0, 1, 2}, tbl.VisibleColumns())
	require.Equal(t, []SortKey{{Column: 2, Ascending: true}}, tbl.SortSpec())
	require.Equal(t, [][]string{{"", "1", "2"}}, cellsOf(tbl))
}

// immutableViewer exposes only the Viewer methods of the wrapped viewer, so
// the table sees no ColumnMutator.
type immutableViewer struct{ Viewer[testRow] }

func TestTable_ColumnCommandsNeedMutator(t *testing.T) {
	v := newTestViewer("a")
	tbl := New[testRow](immutableViewer{v}, rowsOf([]string{"1"}), Options{})

	require.False(t, tbl.Exec(RemoveColumn{At: 0}))
	require.False(t, tbl.RenameColumn(0, "b"))
	require.Equal(t, []string{"a"}, v.names)
	require.Equal(t, 0, tbl.History().UndoDepth())
}

func TestTable_RenameColumnAndUndo(t *testing.T) {
	v := newTestViewer("a", "b")
	tbl := newTable(t, v, nil, Options{})

	require.True(t, tbl.RenameColumn(1, "beta"))
	require.Equal(t, "beta", v.names[1])
	require.False(t, tbl.RenameColumn(1, "beta"), "renaming to the same name is a no-op")

	require.NoError(t, tbl.Undo())
	require.Equal(t, "b", v.names[1])
}

func TestTable_SortIsStable(t *testing.T) {
	v := newTestViewer("k", "id")
	tbl := newTable(t, v, rowsOf(
		[]string{"b", "0"},
		[]string{"a", "1"},
		[]string{"b", "2"},
		[]string{"a", "3"},
	), Options{})

	tbl.ApplyCache(SetSortSpec{Spec: []SortKey{{Column: 0, Ascending: true}}})
	require.Equal(t, []RowIdx{1, 3, 0, 2}, tbl.FilteredRows())

	tbl.ApplyCache(SetSortSpec{Spec: []SortKey{{Column: 0}}})
	require.Equal(t, []RowIdx{0, 2, 1, 3}, tbl.FilteredRows())
}

func TestTable_SortRecomputedAfterEdit(t *testing.T) {
	v := newTestViewer("k")
	tbl := newTable(t, v, rowsOf([]string{"a"}, []string{"b"}), Options{})
	tbl.ApplyCache(SetSortSpec{Spec: []SortKey{{Column: 0, Ascending: true}}})

	require.True(t, tbl.Exec(SetCell[testRow]{Row: 0, Col: 0, Value: testRow{cells: []string{"z"}}}))
	require.Equal(t, []RowIdx{1, 0}, tbl.FilteredRows())
}

func TestTable_CycleSort(t *testing.T) {
	v := newTestViewer("a", "b")
	tbl := newTable(t, v, nil, Options{})

	tbl.CycleSort(0, false)
	require.Equal(t, []SortKey{{Column: 0, Ascending: true}}, tbl.SortSpec())
	tbl.CycleSort(0, false)
	require.Equal(t, []SortKey{{Column: 0}}, tbl.SortSpec())
	tbl.CycleSort(0, false)
	require.Empty(t, tbl.SortSpec())

	tbl.CycleSort(0, false)
	tbl.CycleSort(1, true)
	require.Equal(t, []SortKey{{Column: 0, Ascending: true}, {Column: 1, Ascending: true}}, tbl.SortSpec())
	tbl.CycleSort(1, true)
	require.Equal(t, []SortKey{{Column: 0, Ascending: true}, {Column: 1}}, tbl.SortSpec())
	tbl.CycleSort(1, true)
	require.Equal(t, []SortKey{{Column: 0, Ascending: true}}, tbl.SortSpec())

	tbl.CycleSort(1, false)
	require.Equal(t, []SortKey{{Column: 1, Ascending: true}}, tbl.SortSpec())
}

func TestTable_FilterHashRebuildsCache(t *testing.T) {
	v := newTestViewer("a")
	tbl := newTable(t, v, rowsOf([]string{"apple"}, []string{"banana"}, []string{"cherry"}), Options{})
	require.Len(t, tbl.FilteredRows(), 3)

	v.filter = "an"
	tbl.Sync()
	require.Equal(t, []RowIdx{1}, tbl.FilteredRows())

	v.filter = ""
	tbl.Sync()
	require.Len(t, tbl.FilteredRows(), 3)
}

func TestTable_SelectionClampedWhenGridShrinks(t *testing.T) {
	v := newTestViewer("a", "b", "c", "d")
	tbl := newTable(t, v, rowsOf([]string{"1", "2", "3", "4"}, []string{"5", "6", "7", "8"}), Options{})

	tbl.Select(cell(1, 3), false)
	tbl.ApplyCache(HideColumn{Pos: 0})
	anchor, ok := tbl.Anchor()
	require.True(t, ok)
	require.Equal(t, cell(1, 2), anchor)

	v.filter = "1"
	tbl.Sync()
	anchor, ok = tbl.Anchor()
	require.True(t, ok)
	require.Equal(t, cell(0, 2), anchor)

	v.filter = "nothing matches"
	tbl.Sync()
	_, ok = tbl.Anchor()
	require.False(t, ok)
}

func TestTable_EditTargetRemovedEndsEdit(t *testing.T) {
	v := newTestViewer("a")
	tbl := newTable(t, v, rowsOf([]string{"A"}, []string{"B"}, []string{"C"}), Options{})

	tbl.Select(cell(2, 0), false)
	require.True(t, tbl.StartEdit())
	require.True(t, tbl.Exec(RemoveRows{Indices: []RowIdx{0}}))
	require.True(t, tbl.IsEditing(), "removing another row keeps the edit")
	editCell, _ := tbl.EditCell()
	require.Equal(t, cell(1, 0), editCell)

	require.True(t, tbl.Exec(RemoveRows{Indices: []RowIdx{1}}))
	require.False(t, tbl.IsEditing())
	anchor, ok := tbl.Anchor()
	require.True(t, ok)
	require.Equal(t, cell(0, 0), anchor)
}

func TestTable_EditFilteredOutEndsEdit(t *testing.T) {
	v := newTestViewer("a")
	tbl := newTable(t, v, rowsOf([]string{"A"}, []string{"B"}), Options{})
	tbl.Select(cell(0, 0), false)
	require.True(t, tbl.StartEdit())

	v.filter = "B"
	tbl.Sync()
	require.False(t, tbl.IsEditing())
}

func TestTable_EditRejectedKeepsEditing(t *testing.T) {
	v := newTestViewer("a")
	tbl := newTable(t, v, rowsOf([]string{"A"}), Options{})
	tbl.Select(cell(0, 0), false)
	require.True(t, tbl.StartEdit())
	setEditorValue(t, tbl, "!reject")

	require.False(t, tbl.CommitEdit(DirDown, false))
	require.True(t, tbl.IsEditing())
	tbl.CancelEdit()
	require.False(t, tbl.IsEditing())
	require.Equal(t, [][]string{{"A"}}, cellsOf(tbl))
}

func TestTable_UnchangedCommitIsNotRecorded(t *testing.T) {
	v := newTestViewer("a")
	tbl := newTable(t, v, rowsOf([]string{"A"}), Options{})
	tbl.Select(cell(0, 0), false)
	require.True(t, tbl.StartEdit())
	require.True(t, tbl.CommitEdit(DirNone, false))
	require.Equal(t, 0, tbl.History().UndoDepth())
	require.False(t, tbl.IsDirty())
}

func TestTable_ReadOnlyColumnHasNoEditor(t *testing.T) {
	v := newTestViewer("readonly")
	tbl := newTable(t, v, rowsOf([]string{"A"}), Options{})
	tbl.Select(cell(0, 0), false)
	require.False(t, tbl.StartEdit())
	require.False(t, tbl.IsEditing())
}

func TestTable_EditStartsAtTopLeftOfFirstRect(t *testing.T) {
	v := newTestViewer("a", "b")
	tbl := newTable(t, v, rowsOf([]string{"1", "2"}, []string{"3", "4"}), Options{})
	tbl.Select(cell(1, 1), false)
	tbl.ExtendTo(cell(0, 0))

	require.True(t, tbl.StartEdit())
	editCell, _ := tbl.EditCell()
	require.Equal(t, cell(0, 0), editCell)
}

func TestTable_CommitFill(t *testing.T) {
	v := newTestViewer("a", "b")
	v.ints[1] = true
	tbl := newTable(t, v, rowsOf(
		[]string{"", "1"},
		[]string{"", "2"},
		[]string{"", "3"},
	), Options{})

	tbl.SelectRect(Rect{Top: 0, Left: 0, Bottom: 2, Right: 1})
	require.True(t, tbl.StartEdit())
	setEditorValue(t, tbl, "7")
	require.True(t, tbl.CommitEdit(DirNone, true))
	require.Equal(t, [][]string{{"7", "7"}, {"7", "7"}, {"7", "7"}}, cellsOf(tbl))
	require.Equal(t, 1, tbl.History().UndoDepth())

	require.NoError(t, tbl.Undo())
	tbl.SelectRect(Rect{Top: 0, Left: 0, Bottom: 2, Right: 1})
	require.True(t, tbl.StartEdit())
	setEditorValue(t, tbl, "text")
	require.True(t, tbl.CommitEdit(DirNone, true))
	// The integer column rejects the transcoded value.
	require.Equal(t, [][]string{{"text", "1"}, {"text", "2"}, {"text", "3"}}, cellsOf(tbl))
}

func TestTable_ClearSelection(t *testing.T) {
	v := newTestViewer("a", "b")
	tbl := newTable(t, v, rowsOf([]string{"1", "2"}, []string{"3", "4"}), Options{})

	tbl.SelectRect(Rect{Top: 0, Left: 1, Bottom: 1, Right: 1})
	require.True(t, tbl.ClearSelection())
	require.Equal(t, [][]string{{"1", ""}, {"3", ""}}, cellsOf(tbl))
	require.Equal(t, 1, tbl.History().UndoDepth())
}

func TestTable_CutIsOneStep(t *testing.T) {
	v := newTestViewer("a")
	clip := &fakeClipboard{}
	tbl := newTable(t, v, rowsOf([]string{"A"}, []string{"B"}), Options{Clipboard: clip})

	tbl.Select(cell(0, 0), false)
	report := tbl.Cut()
	require.Equal(t, 1, report.Cells)
	require.Equal(t, "A", clip.text)
	require.Equal(t, [][]string{{""}, {"B"}}, cellsOf(tbl))

	tbl.Select(cell(1, 0), false)
	require.True(t, tbl.Paste(false).Applied)
	require.Equal(t, [][]string{{""}, {"A"}}, cellsOf(tbl))
	require.Equal(t, 2, tbl.History().UndoDepth())
}

func TestTable_CopyRejectsSeparatorsForSystemClipboard(t *testing.T) {
	v := newTestViewer("a")
	clip := &fakeClipboard{}
	tbl := newTable(t, v, rowsOf([]string{"x\ty"}, []string{"z"}), Options{Clipboard: clip})

	tbl.Select(cell(0, 0), false)
	report := tbl.Copy()
	require.Equal(t, 1, report.Cells)
	require.False(t, report.System)
	require.Error(t, report.Err)
	require.Zero(t, clip.writes)

	tbl.Select(cell(1, 0), false)
	paste := tbl.Paste(false)
	require.True(t, paste.Applied)
	require.False(t, paste.FromSystem)
	require.Equal(t, [][]string{{"x\ty"}, {"x\ty"}}, cellsOf(tbl))
}

func TestTable_PastePrefersInternalBufferForOwnExport(t *testing.T) {
	v := newTestViewer("n")
	v.ints[0] = true
	clip := &fakeClipboard{}
	tbl := newTable(t, v, rowsOf([]string{"n/a"}, []string{"1"}), Options{Clipboard: clip})

	tbl.Select(cell(0, 0), false)
	tbl.Copy()
	require.Equal(t, "n/a", clip.text)

	tbl.Select(cell(1, 0), false)
	report := tbl.Paste(false)
	require.True(t, report.Applied)
	require.False(t, report.FromSystem)
	require.Equal(t, [][]string{{"n/a"}, {"n/a"}}, cellsOf(tbl))
}

func TestTable_PasteToleratesClipboardReadFailure(t *testing.T) {
	v := newTestViewer("a")
	clip := &fakeClipboard{}
	tbl := newTable(t, v, rowsOf([]string{"A"}, []string{"B"}), Options{Clipboard: clip})

	tbl.Select(cell(0, 0), false)
	tbl.Copy()
	clip.readErr = errClipboardDown

	tbl.Select(cell(1, 0), false)
	require.True(t, tbl.Paste(false).Applied)
	require.Equal(t, [][]string{{"A"}, {"A"}}, cellsOf(tbl))

	clip.readErr = nil
	clip.text = ""
	tbl.clip = nil
	require.False(t, tbl.Paste(false).Applied)
}

func TestTable_PasteInsert(t *testing.T) {
	v := newTestViewer("a", "b")
	tbl := newTable(t, v, rowsOf([]string{"1", "2"}, []string{"3", "4"}), Options{})
	tbl.Select(cell(0, 0), false)

	report := tbl.PasteText("x\ty\nz\tw\n", true)
	require.True(t, report.Applied)
	require.Equal(t, 2, report.InsertedRows)
	require.Equal(t, [][]string{{"1", "2"}, {"x", "y"}, {"z", "w"}, {"3", "4"}}, cellsOf(tbl))
	require.Equal(t, 1, tbl.History().UndoDepth())
}

func TestTable_PasteIntoEmptyTable(t *testing.T) {
	v := newTestViewer("a", "b")
	tbl := newTable(t, v, nil, Options{})

	report := tbl.PasteText("1\t2\r\n3\t4", false)
	require.True(t, report.Applied)
	require.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, cellsOf(tbl))
}

func TestTable_PasteTranscodesAcrossColumns(t *testing.T) {
	v := newTestViewer("a", "b")
	tbl := newTable(t, v, rowsOf([]string{"A", "B"}), Options{})

	tbl.Select(cell(0, 0), false)
	tbl.Copy()
	tbl.Select(cell(0, 1), false)
	require.True(t, tbl.PasteText(tbl.lastExport, false).Applied)
	require.Equal(t, [][]string{{"A", "A"}}, cellsOf(tbl))
}

func TestTable_PersistedState(t *testing.T) {
	v := newTestViewer("a", "b", "c")
	v.persist = true
	stored := &PersistedState{
		NumColumns:     3,
		VisibleColumns: []ColumnIdx{2, 0, 2, 7},
		SortSpec:       []SortKey{{Column: 0, Ascending: true}},
	}
	tbl := newTable(t, v, nil, Options{Persisted: stored})
	require.Equal(t, []ColumnIdx{2, 0}, tbl.VisibleColumns())
	require.Equal(t, []SortKey{{Column: 0, Ascending: true}}, tbl.SortSpec())

	ps, ok := tbl.PersistedState()
	require.True(t, ok)
	require.Equal(t, 3, ps.NumColumns)
	require.Equal(t, []ColumnIdx{2, 0}, ps.VisibleColumns)

	stale := &PersistedState{NumColumns: 4, VisibleColumns: []ColumnIdx{1}}
	tbl = newTable(t, v, nil, Options{Persisted: stale})
	require.Equal(t, []ColumnIdx{0, 1, 2}, tbl.VisibleColumns())

	v.persist = false
	_, ok = tbl.PersistedState()
	require.False(t, ok)
}

func TestTable_ColumnCountChangeResetsView(t *testing.T) {
	v := newTestViewer("a", "b")
	tbl := newTable(t, v, nil, Options{})
	tbl.ApplyCache(SetVisibleColumns{Cols: []ColumnIdx{1}})
	tbl.ApplyCache(SetSortSpec{Spec: []SortKey{{Column: 1}}})

	v.names = append(v.names, "c")
	tbl.Sync()
	require.Equal(t, []ColumnIdx{0, 1, 2}, tbl.VisibleColumns())
	require.Empty(t, tbl.SortSpec())
}

func TestTable_ResetDropsHistory(t *testing.T) {
	v := newTestViewer("a")
	tbl := newTable(t, v, rowsOf([]string{"A"}), Options{})
	require.True(t, tbl.Exec(SetCell[testRow]{Row: 0, Col: 0, Value: testRow{cells: []string{"B"}}}))

	tbl.Reset(rowsOf([]string{"fresh"}, []string{"rows"}))
	require.False(t, tbl.IsDirty())
	require.False(t, tbl.History().CanUndo())
	require.Equal(t, [][]string{{"fresh"}, {"rows"}}, cellsOf(tbl))
	require.False(t, tbl.HasSelection())
}

func TestTable_NavigationAndHighlightHook(t *testing.T) {
	v := newTestViewer("a", "b", "c")
	tbl := newTable(t, v, rowsOf([]string{"1", "2", "3"}, []string{"4", "5", "6"}, []string{"7", "8", "9"}), Options{})

	tbl.Move(DirDown, false)
	anchor, _ := tbl.Anchor()
	assert.Equal(t, cell(0, 0), anchor, "first move selects the origin")

	tbl.Move(DirRight, false)
	tbl.Move(DirDown, true)
	anchor, _ = tbl.Anchor()
	assert.Equal(t, cell(1, 1), anchor)
	assert.Equal(t, Rect{Top: 0, Left: 1, Bottom: 1, Right: 1}, tbl.Selections()[0].Rect(3))

	tbl.JumpEdge(DirRight, false)
	tbl.JumpEdge(DirDown, false)
	anchor, _ = tbl.Anchor()
	assert.Equal(t, cell(2, 2), anchor)

	tbl.Move(DirDown, false)
	anchor, _ = tbl.Anchor()
	assert.Equal(t, cell(2, 2), anchor, "movement clamps at the edge")

	tbl.SelectAll()
	assert.Equal(t, Rect{Top: 0, Left: 0, Bottom: 2, Right: 2}, tbl.Selections()[0].Rect(3))
	assert.NotEmpty(t, v.highlighted)
}

func TestTable_AddSelectionKeepsPrevious(t *testing.T) {
	v := newTestViewer("a", "b")
	tbl := newTable(t, v, rowsOf([]string{"1", "2"}, []string{"3", "4"}), Options{})
	tbl.Select(cell(0, 0), false)
	tbl.Select(cell(1, 1), true)

	require.Len(t, tbl.Selections(), 2)
	require.True(t, tbl.IsSelected(cell(0, 0)))
	require.True(t, tbl.IsSelected(cell(1, 1)))
	require.False(t, tbl.IsSelected(cell(0, 1)))
	require.Equal(t, []RowIdx{0, 1}, tbl.SelectedRows())
}
