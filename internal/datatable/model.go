package datatable

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/tabula/internal/log"
	"github.com/zjrosen/tabula/internal/ui/styles"
)

// Default interaction settings.
const (
	DefaultColumnWidth      = 14
	DefaultDoubleClickDelay = 400 * time.Millisecond
	wheelStep               = 3
)

// Config controls the interactive component.
type Config struct {
	// ZoneID names the bubblezone mark around the grid. Each table in a
	// program needs its own.
	ZoneID              string
	SingleClickEditMode bool
	FocusStrokeColor    lipgloss.TerminalColor
	DefaultColumnWidth  int
	DoubleClickDelay    time.Duration
	// Now is the clock used for double-click detection.
	Now func() time.Time
}

// ColumnWidther is implemented by viewers that store column widths
// themselves. Without it widths live in the Model.
type ColumnWidther interface {
	ColumnWidth(col ColumnIdx) (int, bool)
	SetColumnWidth(col ColumnIdx, width int)
}

// CopyReportMsg is emitted after a copy or cut.
type CopyReportMsg struct{ Report CopyReport }

// PasteReportMsg is emitted after a paste.
type PasteReportMsg struct{ Report PasteReport }

// HistoryMsg is emitted after an undo or redo attempt.
type HistoryMsg struct {
	Redo bool
	Err  error
}

// ColumnRequestKind names a column change the table cannot perform on its
// own because it needs input from the embedder.
type ColumnRequestKind int

const (
	ColumnInsertLeft ColumnRequestKind = iota
	ColumnInsertRight
	ColumnChangeType
)

// ColumnRequestMsg asks the embedder to build a column command.
type ColumnRequestMsg struct {
	Kind   ColumnRequestKind
	Col    ColumnIdx
	VisPos VisColumnPos
}

type dragKind int

const (
	dragNone dragKind = iota
	dragCells
	dragHeader
	dragResize
	dragRows
)

type dragState struct {
	kind    dragKind
	from    VisCell
	to      VisCell
	col     ColumnIdx
	startX  int
	startW  int
	shift   bool
	preview *VisSelection
}

type clickState struct {
	cell  VisCell
	at    time.Time
	valid bool
}

// Model is the Bubble Tea component around a Table.
type Model[R any] struct {
	table *Table[R]
	cfg   Config

	width, height        int
	rowOffset, colOffset int
	widths               map[ColumnIdx]int

	pal         palette
	focusStyle  lipgloss.Style
	anchorStyle lipgloss.Style

	drag      dragState
	lastClick clickState
	menu      *columnMenu[R]
	prompt    *prompt
}

// NewModel wraps t for interactive use.
func NewModel[R any](t *Table[R], cfg Config) *Model[R] {
	if cfg.ZoneID == "" {
		cfg.ZoneID = "datatable"
	}
	if cfg.DefaultColumnWidth <= 0 {
		cfg.DefaultColumnWidth = DefaultColumnWidth
	}
	if cfg.DoubleClickDelay <= 0 {
		cfg.DoubleClickDelay = DefaultDoubleClickDelay
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.FocusStrokeColor == nil {
		cfg.FocusStrokeColor = styles.FocusStrokeColor
	}
	return &Model[R]{
		table:       t,
		cfg:         cfg,
		widths:      make(map[ColumnIdx]int),
		pal:         newPalette(),
		focusStyle:  lipgloss.NewStyle().Background(styles.FocusRowBackgroundColor),
		anchorStyle: lipgloss.NewStyle().Bold(true).Foreground(styles.FocusTextColor).Background(cfg.FocusStrokeColor),
	}
}

// Table returns the wrapped engine.
func (m *Model[R]) Table() *Table[R] { return m.table }

// SetSize sets the rendering area.
func (m *Model[R]) SetSize(width, height int) {
	m.width, m.height = width, height
	m.ensureVisible()
}

// Size returns the rendering area.
func (m *Model[R]) Size() (width, height int) { return m.width, m.height }

// Offsets returns the first visible row and column.
func (m *Model[R]) Offsets() (row, col int) { return m.rowOffset, m.colOffset }

// ScrollToAnchor scrolls so the anchor cell is on screen. Embedders call it
// after moving the selection through the Table directly.
func (m *Model[R]) ScrollToAnchor() { m.ensureVisible() }

// Capturing reports whether a menu or prompt owns keyboard input.
func (m *Model[R]) Capturing() bool { return m.menu != nil || m.prompt != nil || m.table.IsEditing() }

// Init implements tea.Model.
func (m *Model[R]) Init() tea.Cmd { return nil }

// Update handles key and mouse input.
func (m *Model[R]) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	follow := true
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	case tea.MouseMsg:
		z := zone.Get(m.cfg.ZoneID)
		if z == nil || (m.drag.kind == dragNone && !z.InBounds(msg)) {
			return nil
		}
		follow = msg.Action != tea.MouseActionPress || !isWheel(msg.Button)
		cmd = m.handleMouse(msg, msg.X-z.StartX, msg.Y-z.StartY)
	default:
		return nil
	}
	m.table.Sync()
	if follow {
		m.ensureVisible()
	}
	return cmd
}

func isWheel(b tea.MouseButton) bool {
	switch b {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown, tea.MouseButtonWheelLeft, tea.MouseButtonWheelRight:
		return true
	}
	return false
}

func (m *Model[R]) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.prompt != nil {
		return m.prompt.update(msg)
	}
	if m.menu != nil {
		return m.menu.update(m, msg)
	}
	if msg.Paste && !m.table.IsEditing() {
		r := m.table.PasteText(string(msg.Runes), false)
		return emit(PasteReportMsg{Report: r})
	}

	ctx := HotkeyContext{HasSelection: m.table.HasSelection(), InEditMode: m.table.IsEditing()}
	for _, hk := range m.table.viewer.Hotkeys(ctx) {
		if !key.Matches(msg, hk.Binding) {
			continue
		}
		if ctx.InEditMode && !editModeAction(hk.Action) {
			continue
		}
		return m.Do(hk.Action)
	}

	if ed := m.table.Editor(); ed != nil {
		next, cmd := ed.Update(msg)
		m.table.SetEditor(next)
		return cmd
	}
	return nil
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Do performs a table action as if its hotkey had been pressed.
func (m *Model[R]) Do(a Action) tea.Cmd {
	t := m.table
	editing := t.IsEditing()
	log.Debug(log.CatTable, "action", "action", a.String(), "editing", editing)

	switch a {
	case ActionCopy:
		return emit(CopyReportMsg{Report: t.Copy()})
	case ActionCut:
		return emit(CopyReportMsg{Report: t.Cut()})
	case ActionPaste:
		return emit(PasteReportMsg{Report: t.Paste(false)})
	case ActionPasteInsert:
		return emit(PasteReportMsg{Report: t.Paste(true)})
	case ActionDelete:
		t.ClearSelection()
	case ActionUndo:
		return emit(HistoryMsg{Err: t.Undo()})
	case ActionRedo:
		return emit(HistoryMsg{Redo: true, Err: t.Redo()})
	case ActionSelectAll:
		t.SelectAll()
	case ActionEnterEdit:
		return m.startEdit()
	case ActionCommitEdit:
		t.CommitEdit(DirDown, false)
	case ActionCommitFill:
		t.CommitEdit(DirNone, true)
	case ActionCancelEdit:
		t.CancelEdit()
	case ActionMoveUp, ActionMoveDown, ActionMoveLeft, ActionMoveRight:
		dir := moveDirection(a)
		if editing {
			t.CommitEdit(dir, false)
			return nil
		}
		t.Move(dir, false)
	case ActionExtendUp:
		t.Move(DirUp, true)
	case ActionExtendDown:
		t.Move(DirDown, true)
	case ActionExtendLeft:
		t.Move(DirLeft, true)
	case ActionExtendRight:
		t.Move(DirRight, true)
	case ActionJumpEdgeUp:
		t.JumpEdge(DirUp, false)
	case ActionJumpEdgeDown:
		t.JumpEdge(DirDown, false)
	case ActionJumpEdgeLeft:
		t.JumpEdge(DirLeft, false)
	case ActionJumpEdgeRight:
		t.JumpEdge(DirRight, false)
	case ActionPageUp:
		t.MoveBy(-max(m.bodyHeight()-1, 1), 0, false)
	case ActionPageDown:
		t.MoveBy(max(m.bodyHeight()-1, 1), 0, false)
	case ActionDuplicateRow:
		t.DuplicateRows()
	case ActionInsertRow:
		t.InsertRow()
	case ActionDeleteRow:
		t.DeleteRows()
	case ActionSortCycle, ActionSortAppend:
		if col, ok := m.anchorColumn(); ok {
			t.CycleSort(col, a == ActionSortAppend)
		}
	case ActionHideColumn:
		if anchor, ok := t.Anchor(); ok {
			t.ApplyCache(HideColumn{Pos: anchor.Col})
		}
	case ActionColumnMenu:
		if anchor, ok := t.Anchor(); ok {
			m.openMenu(anchor.Col)
		}
	case ActionRenameColumn:
		if col, ok := m.anchorColumn(); ok {
			return m.openRenameColumn(col)
		}
	case ActionRenameRow:
		return m.openRenameRow()
	case ActionMoveColumnLeft, ActionMoveColumnRight:
		if anchor, ok := t.Anchor(); ok {
			to := anchor.Col + 1
			if a == ActionMoveColumnLeft {
				to = anchor.Col - 1
			}
			t.MoveColumn(anchor.Col, to)
		}
	case ActionGrowColumn, ActionShrinkColumn:
		if col, ok := m.anchorColumn(); ok {
			delta := 2
			if a == ActionShrinkColumn {
				delta = -2
			}
			m.setColumnWidth(col, m.columnWidth(col)+delta)
		}
	}
	return nil
}

func moveDirection(a Action) Direction {
	switch a {
	case ActionMoveUp:
		return DirUp
	case ActionMoveDown:
		return DirDown
	case ActionMoveLeft:
		return DirLeft
	default:
		return DirRight
	}
}

func (m *Model[R]) anchorColumn() (ColumnIdx, bool) {
	a, ok := m.table.Anchor()
	if !ok {
		return 0, false
	}
	return m.table.ColumnAt(a.Col)
}

func (m *Model[R]) startEdit() tea.Cmd {
	if !m.table.StartEdit() || !m.table.ConsumeEditFocus() {
		return nil
	}
	if in, ok := m.table.Editor().(interface{ Init() tea.Cmd }); ok {
		return in.Init()
	}
	return nil
}

func (m *Model[R]) columnWidth(col ColumnIdx) int {
	if cw, ok := m.table.viewer.(ColumnWidther); ok {
		if w, ok := cw.ColumnWidth(col); ok && w > 0 {
			return max(w, minColumnWidth)
		}
	}
	if w, ok := m.widths[col]; ok {
		return w
	}
	return m.cfg.DefaultColumnWidth
}

func (m *Model[R]) setColumnWidth(col ColumnIdx, w int) {
	w = max(w, minColumnWidth)
	if cw, ok := m.table.viewer.(ColumnWidther); ok {
		cw.SetColumnWidth(col, w)
		return
	}
	m.widths[col] = w
}

// ensureVisible scrolls so the anchor is on screen.
func (m *Model[R]) ensureVisible() {
	nrows := m.table.NumVisibleRows()
	body := m.bodyHeight()
	if a, ok := m.table.Anchor(); ok && body > 0 {
		if int(a.Row) < m.rowOffset {
			m.rowOffset = int(a.Row)
		}
		if int(a.Row) >= m.rowOffset+body {
			m.rowOffset = int(a.Row) - body + 1
		}
		if int(a.Col) < m.colOffset {
			m.colOffset = int(a.Col)
		}
		for m.colOffset < int(a.Col) && !m.columnFits(a.Col) {
			m.colOffset++
		}
	}
	m.clampOffsets(nrows, body)
}

func (m *Model[R]) clampOffsets(nrows, body int) {
	m.rowOffset = min(max(m.rowOffset, 0), max(nrows-body, 0))
	m.colOffset = min(max(m.colOffset, 0), max(m.table.NumVisibleColumns()-1, 0))
}

func (m *Model[R]) columnFits(vc VisColumnPos) bool {
	for _, s := range m.layout() {
		if s.vc == vc {
			return s.w == m.columnWidth(s.col)
		}
	}
	return false
}

func (m *Model[R]) scroll(rows, cols int) {
	m.rowOffset += rows
	m.colOffset += cols
	m.clampOffsets(m.table.NumVisibleRows(), m.bodyHeight())
}
