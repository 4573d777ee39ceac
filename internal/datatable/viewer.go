package datatable

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// RowIdx addresses a row in the store. Indices are valid until the next
// structural mutation of the store.
type RowIdx int

// ColumnIdx is the stable logical identifier of a column.
type ColumnIdx int

// VisRowPos is a position within the filtered, sorted row order.
type VisRowPos int

// VisColumnPos is a position within the visible column order.
type VisColumnPos int

// ErrSkipRow is returned by a RowCodec when the row under construction must be
// discarded. Any other decode error is treated the same way.
var ErrSkipRow = errors.New("skip row")

// WriteContext tells ConfirmCellWrite why a cell is about to change.
type WriteContext int

const (
	WriteEdit WriteContext = iota
	WriteFill
	WritePaste
	WriteClear
)

func (w WriteContext) String() string {
	switch w {
	case WriteEdit:
		return "edit"
	case WriteFill:
		return "fill"
	case WritePaste:
		return "paste"
	case WriteClear:
		return "clear"
	default:
		return "unknown"
	}
}

// HotkeyContext describes the table state a viewer binds hotkeys against.
type HotkeyContext struct {
	HasSelection bool
	InEditMode   bool
}

// Hotkey binds a keyboard shortcut to a table action.
type Hotkey struct {
	Binding key.Binding
	Action  Action
}

// Editor edits one cell of the edition copy while the cursor is in edit mode.
// Key messages not consumed by table hotkeys are forwarded to Update.
type Editor[R any] interface {
	Update(msg tea.Msg) (Editor[R], tea.Cmd)
	View(width int) string
	// Apply writes the edited value into row. It returns false when the
	// current input cannot be stored, in which case editing continues.
	Apply(row *R) bool
}

// RowCodec converts single cells to and from clipboard text. Column indices
// are logical.
type RowCodec[R any] interface {
	EncodeColumn(row *R, col ColumnIdx, buf *strings.Builder)
	DecodeColumn(text string, col ColumnIdx, row *R) error
}

// Viewer is the capability set an embedder supplies for its row type. It is the
// only coupling point between the table and the rest of the application.
//
// Embed ViewerDefaults to inherit permissive defaults for the optional parts.
type Viewer[R any] interface {
	NumColumns() int
	ColumnName(col ColumnIdx) string
	IsSortable(col ColumnIdx) bool
	// CompareCell must be a total order. It is never called for columns that
	// are not sortable.
	CompareCell(l, r *R, col ColumnIdx) int

	RowFilterHash() uint64
	FilterRow(row *R) bool

	ShowCell(row *R, col ColumnIdx, width int) string
	NewEditor(row *R, col ColumnIdx) Editor[R]

	// SetCell copies one column's value from src into dst. The copy must not
	// share mutable memory with src.
	SetCell(src, dst *R, col ColumnIdx)
	CloneRow(row *R) R
	NewEmptyRow() R

	ConfirmCellWrite(current, next *R, col ColumnIdx, ctx WriteContext) bool
	ConfirmRowDeletion(row *R) bool

	// Codec returns nil when the viewer cannot convert cells to text.
	Codec() RowCodec[R]
	Hotkeys(ctx HotkeyContext) []Hotkey
	PersistViewState() bool

	OnHighlight(idx RowIdx, row *R)
	OnRowInserted(idx RowIdx, row *R)
	OnRowUpdated(idx RowIdx, row *R)
	OnRowRemoved(idx RowIdx, row *R)
}

// ColumnData carries a column definition and its per-row cells between the
// table and a ColumnMutator. Both fields are opaque to the table.
type ColumnData struct {
	Def   any
	Cells any
}

// ColumnMutator is implemented by viewers whose column set can change. Without
// it, column structure commands fail with ErrColumnsImmutable.
type ColumnMutator[R any] interface {
	// InsertColumn inserts a column at logical index at. A nil Cells value
	// means every row receives an empty cell.
	InsertColumn(rows []R, at ColumnIdx, data ColumnData)
	RemoveColumn(rows []R, at ColumnIdx) ColumnData
	ReplaceColumn(rows []R, at ColumnIdx, data ColumnData) ColumnData
	RenameColumn(at ColumnIdx, name string) (prev string)
}

// RowNamer is implemented by viewers whose rows carry a display name.
type RowNamer[R any] interface {
	RowName(row *R) (string, bool)
	SetRowName(row *R, name string) bool
}

// ViewerDefaults supplies permissive implementations of the optional Viewer
// methods.
type ViewerDefaults[R any] struct{}

func (ViewerDefaults[R]) RowFilterHash() uint64 { return 0 }
func (ViewerDefaults[R]) FilterRow(*R) bool     { return true }

func (ViewerDefaults[R]) ConfirmCellWrite(_, _ *R, _ ColumnIdx, _ WriteContext) bool { return true }
func (ViewerDefaults[R]) ConfirmRowDeletion(*R) bool                                 { return true }

func (ViewerDefaults[R]) Codec() RowCodec[R]             { return nil }
func (ViewerDefaults[R]) Hotkeys(HotkeyContext) []Hotkey { return nil }
func (ViewerDefaults[R]) PersistViewState() bool         { return false }

func (ViewerDefaults[R]) OnHighlight(RowIdx, *R)   {}
func (ViewerDefaults[R]) OnRowInserted(RowIdx, *R) {}
func (ViewerDefaults[R]) OnRowUpdated(RowIdx, *R)  {}
func (ViewerDefaults[R]) OnRowRemoved(RowIdx, *R)  {}
