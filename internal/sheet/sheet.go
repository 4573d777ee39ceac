package sheet

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/tabula/internal/datatable"
	"github.com/zjrosen/tabula/internal/log"
	"github.com/zjrosen/tabula/internal/pubsub"
)

// Options configures a Sheet.
type Options struct {
	// Registry defaults to NewRegistry().
	Registry *Registry
	// Events receives row lifecycle notifications when set.
	Events           *pubsub.Broker[RowEvent]
	PersistViewState bool
	Hotkeys          func(datatable.HotkeyContext) []datatable.Hotkey
}

// Sheet is the datatable viewer for Rows. It owns the column definitions; the
// rows themselves live in the table's store.
type Sheet struct {
	columns []Column
	reg     *Registry
	opts    Options

	query       string
	highlighted datatable.RowIdx
}

var (
	_ datatable.Viewer[Row]        = (*Sheet)(nil)
	_ datatable.RowCodec[Row]      = (*Sheet)(nil)
	_ datatable.ColumnMutator[Row] = (*Sheet)(nil)
	_ datatable.RowNamer[Row]      = (*Sheet)(nil)
	_ datatable.ColumnWidther      = (*Sheet)(nil)
)

// New returns a sheet over columns. The sheet takes ownership of the slice.
func New(columns []Column, opts Options) *Sheet {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	return &Sheet{columns: columns, reg: opts.Registry, opts: opts, highlighted: -1}
}

// Registry returns the kind registry.
func (s *Sheet) Registry() *Registry { return s.reg }

// Columns returns a copy of the column definitions.
func (s *Sheet) Columns() []Column {
	out := make([]Column, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Clone()
	}
	return out
}

// Column returns a copy of one column definition.
func (s *Sheet) Column(col datatable.ColumnIdx) Column { return s.columns[col].Clone() }

// SetColumnKind retypes col in place without converting cells. It is used when
// restoring sidecar metadata before any rows are loaded.
func (s *Sheet) SetColumnKind(col datatable.ColumnIdx, k Kind) { s.columns[col].Kind = k }

// InitialVisible lists the columns not marked hidden, in logical order.
func (s *Sheet) InitialVisible() []datatable.ColumnIdx {
	var out []datatable.ColumnIdx
	for i, c := range s.columns {
		if !c.Hidden {
			out = append(out, datatable.ColumnIdx(i))
		}
	}
	return out
}

// SyncHidden records the table's visible set in the Hidden flags so it is
// saved with the column configs.
func (s *Sheet) SyncHidden(visible []datatable.ColumnIdx) {
	for i := range s.columns {
		s.columns[i].Hidden = !slices.Contains(visible, datatable.ColumnIdx(i))
	}
}

// KeyColumn returns the column marked as row key.
func (s *Sheet) KeyColumn() (datatable.ColumnIdx, bool) {
	i := slices.IndexFunc(s.columns, func(c Column) bool { return c.Key })
	return datatable.ColumnIdx(i), i >= 0
}

const lockMarker = "⊘ "

// Highlighted returns the store index of the row under the anchor, or -1.
func (s *Sheet) Highlighted() datatable.RowIdx { return s.highlighted }

// NumColumns implements datatable.Viewer.
func (s *Sheet) NumColumns() int { return len(s.columns) }

// ColumnName implements datatable.Viewer.
func (s *Sheet) ColumnName(col datatable.ColumnIdx) string { return s.columns[col].Name }

// IsSortable implements datatable.Viewer. Every kind has a total order.
func (s *Sheet) IsSortable(datatable.ColumnIdx) bool { return true }

// CompareCell implements datatable.Viewer.
func (s *Sheet) CompareCell(l, r *Row, col datatable.ColumnIdx) int {
	return s.reg.Compare(l.Cells[col], r.Cells[col], &s.columns[col])
}

// SetQuery sets the row filter. Matching is a case-insensitive substring
// search over the text of every cell.
func (s *Sheet) SetQuery(q string) {
	s.query = strings.ToLower(strings.TrimSpace(q))
}

// Query returns the active filter.
func (s *Sheet) Query() string { return s.query }

// RowFilterHash implements datatable.Viewer.
func (s *Sheet) RowFilterHash() uint64 {
	return xxhash.Sum64String(s.query)
}

// FilterRow implements datatable.Viewer.
func (s *Sheet) FilterRow(row *Row) bool {
	if s.query == "" {
		return true
	}
	for i, c := range row.Cells {
		if strings.Contains(strings.ToLower(s.reg.Format(c, &s.columns[i])), s.query) {
			return true
		}
	}
	return false
}

// ShowCell implements datatable.Viewer. Locked rows are prefixed with a
// marker.
func (s *Sheet) ShowCell(row *Row, col datatable.ColumnIdx, _ int) string {
	c := row.Cells[col]
	var text string
	switch {
	case c.Empty:
	case c.Kind == KindBool && c.Bool:
		text = "[x]"
	case c.Kind == KindBool:
		text = "[ ]"
	case c.Kind == KindRelation:
		text = "→ " + c.Text
	default:
		text = s.reg.Format(c, &s.columns[col])
	}
	if row.Locked && col == 0 {
		return lockMarker + text
	}
	return text
}

// NewEditor implements datatable.Viewer. Locked rows cannot be edited.
func (s *Sheet) NewEditor(row *Row, col datatable.ColumnIdx) datatable.Editor[Row] {
	if row.Locked {
		return nil
	}
	return &cellEditor{
		sheet: s,
		col:   col,
		input: s.reg.Input(row.Cells[col], &s.columns[col]),
	}
}

// SetCell implements datatable.Viewer.
func (s *Sheet) SetCell(src, dst *Row, col datatable.ColumnIdx) {
	dst.Cells[col] = src.Cells[col].Clone()
}

// CloneRow implements datatable.Viewer.
func (s *Sheet) CloneRow(row *Row) Row { return row.Clone() }

// NewEmptyRow implements datatable.Viewer.
func (s *Sheet) NewEmptyRow() Row {
	cells := make([]Cell, len(s.columns))
	for i, c := range s.columns {
		cells[i] = EmptyCell(c.Kind)
	}
	return Row{Cells: cells}
}

// ConfirmCellWrite implements datatable.Viewer.
func (s *Sheet) ConfirmCellWrite(current, _ *Row, col datatable.ColumnIdx, ctx datatable.WriteContext) bool {
	if current.Locked {
		log.Debug(log.CatSheet, "write vetoed on locked row", "column", s.columns[col].Name, "context", ctx)
		return false
	}
	return true
}

// ConfirmRowDeletion implements datatable.Viewer.
func (s *Sheet) ConfirmRowDeletion(row *Row) bool { return !row.Locked }

// Codec implements datatable.Viewer.
func (s *Sheet) Codec() datatable.RowCodec[Row] { return s }

// Hotkeys implements datatable.Viewer.
func (s *Sheet) Hotkeys(ctx datatable.HotkeyContext) []datatable.Hotkey {
	if s.opts.Hotkeys == nil {
		return nil
	}
	return s.opts.Hotkeys(ctx)
}

// PersistViewState implements datatable.Viewer.
func (s *Sheet) PersistViewState() bool { return s.opts.PersistViewState }

// OnHighlight implements datatable.Viewer.
func (s *Sheet) OnHighlight(idx datatable.RowIdx, _ *Row) { s.highlighted = idx }

// OnRowInserted implements datatable.Viewer.
func (s *Sheet) OnRowInserted(idx datatable.RowIdx, row *Row) {
	s.publish(pubsub.RowInsertedEvent, idx, row)
}

// OnRowUpdated implements datatable.Viewer.
func (s *Sheet) OnRowUpdated(idx datatable.RowIdx, row *Row) {
	s.publish(pubsub.RowUpdatedEvent, idx, row)
}

// OnRowRemoved implements datatable.Viewer.
func (s *Sheet) OnRowRemoved(idx datatable.RowIdx, row *Row) {
	s.publish(pubsub.RowRemovedEvent, idx, row)
}

// EncodeColumn implements datatable.RowCodec.
func (s *Sheet) EncodeColumn(row *Row, col datatable.ColumnIdx, buf *strings.Builder) {
	buf.WriteString(s.reg.Format(row.Cells[col], &s.columns[col]))
}

// DecodeColumn implements datatable.RowCodec. Text the column's kind cannot
// parse discards the whole row.
func (s *Sheet) DecodeColumn(text string, col datatable.ColumnIdx, row *Row) error {
	c, err := s.reg.Parse(text, &s.columns[col])
	if err != nil {
		log.Debug(log.CatSheet, "decode failed", "column", s.columns[col].Name, "error", err)
		return fmt.Errorf("%w: %w", datatable.ErrSkipRow, err)
	}
	row.Cells[col] = c
	return nil
}

// RowName implements datatable.RowNamer using the title column.
func (s *Sheet) RowName(row *Row) (string, bool) {
	i := slices.IndexFunc(s.columns, func(c Column) bool { return c.Title })
	if i < 0 {
		return "", false
	}
	return s.reg.Format(row.Cells[i], &s.columns[i]), true
}

// SetRowName implements datatable.RowNamer.
func (s *Sheet) SetRowName(row *Row, name string) bool {
	i := slices.IndexFunc(s.columns, func(c Column) bool { return c.Title })
	if i < 0 || row.Locked {
		return false
	}
	c, err := s.reg.Parse(name, &s.columns[i])
	if err != nil {
		return false
	}
	row.Cells[i] = c
	return true
}

// ColumnWidth implements datatable.ColumnWidther.
func (s *Sheet) ColumnWidth(col datatable.ColumnIdx) (int, bool) {
	if int(col) >= len(s.columns) || s.columns[col].Width <= 0 {
		return 0, false
	}
	return s.columns[col].Width, true
}

// SetColumnWidth implements datatable.ColumnWidther.
func (s *Sheet) SetColumnWidth(col datatable.ColumnIdx, width int) {
	if int(col) < len(s.columns) {
		s.columns[col].Width = width
	}
}

// cellEditor adapts an Input to datatable.Editor.
type cellEditor struct {
	sheet *Sheet
	col   datatable.ColumnIdx
	input Input
	err   error
}

func (e *cellEditor) Update(msg tea.Msg) (datatable.Editor[Row], tea.Cmd) {
	e.err = nil
	return e, e.input.Update(msg)
}

func (e *cellEditor) View(width int) string {
	if e.err != nil {
		return "!" + e.input.View(width-1)
	}
	return e.input.View(width)
}

func (e *cellEditor) Apply(row *Row) bool {
	c, err := e.sheet.reg.Parse(e.input.Text(), &e.sheet.columns[e.col])
	if err != nil {
		e.err = err
		log.Debug(log.CatSheet, "edit rejected", "column", e.sheet.columns[e.col].Name, "error", err)
		return false
	}
	row.Cells[e.col] = c
	return true
}

// Err returns the parse error of the last rejected Apply.
func (e *cellEditor) Err() error { return e.err }

// MarkSaved records that the non-virtual columns were written under their
// current names, so a later reload matches them to the file's header.
func (s *Sheet) MarkSaved() {
	for i := range s.columns {
		if !s.columns[i].Virtual {
			s.columns[i].Source = s.columns[i].Name
		}
	}
}
