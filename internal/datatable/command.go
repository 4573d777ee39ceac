package datatable

// HistoryCommand is a semantic edit recorded as an apply/restore pair.
//
// Commands that carry rows are generic over the row type; the rest satisfy
// HistoryCommand for every R.
type HistoryCommand interface {
	historyCommand()
}

// CellTarget addresses one cell write in a SetCells payload: the value for
// (Row, Col) is read from column Col of Slab[Slab].
type CellTarget struct {
	Row  RowIdx
	Col  ColumnIdx
	Slab int
}

// SetCell writes one column of Value into row Row.
type SetCell[R any] struct {
	Row   RowIdx
	Col   ColumnIdx
	Value R
	Ctx   WriteContext
}

// SetCells writes a batch of cells atomically. Targets vetoed by
// ConfirmCellWrite are dropped.
type SetCells[R any] struct {
	Slab    []R
	Targets []CellTarget
	Ctx     WriteContext
}

// InsertRows inserts Rows so that Rows[i] ends up at Indices[i]. Indices must
// be ascending.
type InsertRows[R any] struct {
	Indices []RowIdx
	Rows    []R
}

// RemoveRows removes the rows at Indices. Rows vetoed by ConfirmRowDeletion
// are kept.
type RemoveRows struct {
	Indices []RowIdx
}

// ReplaceRows swaps whole rows without consulting ConfirmCellWrite.
type ReplaceRows[R any] struct {
	Indices []RowIdx
	Rows    []R
}

// InsertColumn inserts a column at logical index At and shows it at VisPos.
// A negative VisPos keeps the column hidden. A non-nil Sort replaces the sort
// spec afterwards.
type InsertColumn struct {
	At     ColumnIdx
	VisPos VisColumnPos
	Data   ColumnData
	Sort   []SortKey
}

// RemoveColumn removes logical column At together with its cells.
type RemoveColumn struct {
	At ColumnIdx
}

// ReplaceColumn swaps the definition and cells of column At.
type ReplaceColumn struct {
	At   ColumnIdx
	Data ColumnData
}

// MoveColumn moves the visible column Col to position To. Logical data is
// unchanged. The recorded forward and restore commands also remember the
// columns that flanked Col, so replaying them after columns were hidden,
// shown or reordered puts Col back between the same neighbours.
type MoveColumn struct {
	Col ColumnIdx
	To  VisColumnPos

	flank *neighbours
}

// neighbours are the columns left and right of a placed column; -1 is none.
type neighbours struct{ left, right ColumnIdx }

// RenameColumn commits a new header name.
type RenameColumn struct {
	Col  ColumnIdx
	Name string
}

// RenameRow commits a new row name through the viewer's RowNamer.
type RenameRow struct {
	Row  RowIdx
	Name string
}

func (SetCell[R]) historyCommand()     {}
func (SetCells[R]) historyCommand()    {}
func (InsertRows[R]) historyCommand()  {}
func (RemoveRows) historyCommand()     {}
func (ReplaceRows[R]) historyCommand() {}
func (InsertColumn) historyCommand()   {}
func (RemoveColumn) historyCommand()   {}
func (ReplaceColumn) historyCommand()  {}
func (MoveColumn) historyCommand()     {}
func (RenameColumn) historyCommand()   {}
func (RenameRow) historyCommand()      {}

// CacheCommand mutates view or cursor state and never enters history.
type CacheCommand interface {
	cacheCommand()
}

// HideColumn removes the column at Pos from the visible order.
type HideColumn struct{ Pos VisColumnPos }

// ShowColumn reinserts a hidden column at visible position At.
type ShowColumn struct {
	Col ColumnIdx
	At  VisColumnPos
}

// ReorderColumn moves a visible column without recording history.
type ReorderColumn struct{ From, To VisColumnPos }

// SetSortSpec replaces the sort keys.
type SetSortSpec struct{ Spec []SortKey }

// SetVisibleColumns replaces the visible column order.
type SetVisibleColumns struct{ Cols []ColumnIdx }

// SetSelection replaces the selection and leaves edit mode.
type SetSelection struct{ Selections []VisSelection }

// EditStart enters edit mode at the anchor.
type EditStart struct{}

// EditCancel discards the edition copy.
type EditCancel struct{}

// EditCommit stores the edition copy and moves the anchor by Move. With Fill
// the value is written into every cell selected when editing began.
type EditCommit struct {
	Move Direction
	Fill bool
}

// UpdateClipboard writes text to the system clipboard.
type UpdateClipboard struct{ Text string }

func (HideColumn) cacheCommand()        {}
func (ShowColumn) cacheCommand()        {}
func (ReorderColumn) cacheCommand()     {}
func (SetSortSpec) cacheCommand()       {}
func (SetVisibleColumns) cacheCommand() {}
func (SetSelection) cacheCommand()      {}
func (EditStart) cacheCommand()         {}
func (EditCancel) cacheCommand()        {}
func (EditCommit) cacheCommand()        {}
func (UpdateClipboard) cacheCommand()   {}

// SortKey is one lexicographic sort key.
type SortKey struct {
	Column    ColumnIdx `json:"column"`
	Ascending bool      `json:"ascending"`
}

// Direction is a unit anchor movement.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

func (d Direction) delta() (dr, dc int) {
	switch d {
	case DirUp:
		return -1, 0
	case DirDown:
		return 1, 0
	case DirLeft:
		return 0, -1
	case DirRight:
		return 0, 1
	default:
		return 0, 0
	}
}
