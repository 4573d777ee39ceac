package datatable

import (
	tea "github.com/charmbracelet/bubbletea"
)

type hitKind int

const (
	hitNone hitKind = iota
	hitCorner
	hitHeader
	hitResize
	hitGutter
	hitCell
)

type hit struct {
	kind hitKind
	cell VisCell
	span span
}

// hitTest maps a position relative to the grid's top-left corner to the
// element under it. The separator right of a header cell is its resize
// handle.
func (m *Model[R]) hitTest(x, y int) hit {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return hit{}
	}
	gw := m.gutterWidth()

	var (
		col    span
		found  bool
		onEdge bool
	)
	for _, s := range m.layout() {
		if x >= s.x && x < s.x+s.w {
			col, found = s, true
			break
		}
		if x == s.x+s.w {
			col, found, onEdge = s, true, true
			break
		}
	}

	if y == 0 {
		switch {
		case x < gw:
			return hit{kind: hitCorner}
		case !found:
			return hit{}
		case onEdge:
			return hit{kind: hitResize, span: col}
		default:
			return hit{kind: hitHeader, span: col, cell: VisCell{Col: col.vc}}
		}
	}

	vr := VisRowPos(m.rowOffset + y - 1)
	if int(vr) >= m.table.NumVisibleRows() {
		return hit{}
	}
	if x < gw {
		return hit{kind: hitGutter, cell: VisCell{Row: vr}}
	}
	if !found || onEdge {
		return hit{}
	}
	return hit{kind: hitCell, span: col, cell: VisCell{Row: vr, Col: col.vc}}
}

func (m *Model[R]) handleMouse(msg tea.MouseMsg, x, y int) tea.Cmd {
	if m.menu != nil || m.prompt != nil {
		return nil
	}
	h := m.hitTest(x, y)
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if msg.Shift {
				m.scroll(0, -1)
			} else {
				m.scroll(-wheelStep, 0)
			}
		case tea.MouseButtonWheelDown:
			if msg.Shift {
				m.scroll(0, 1)
			} else {
				m.scroll(wheelStep, 0)
			}
		case tea.MouseButtonWheelLeft:
			m.scroll(0, -1)
		case tea.MouseButtonWheelRight:
			m.scroll(0, 1)
		case tea.MouseButtonRight:
			if h.kind == hitHeader || h.kind == hitCell {
				m.openMenu(h.span.vc)
			}
		case tea.MouseButtonLeft:
			return m.press(msg, h, x)
		}
	case tea.MouseActionMotion:
		m.motion(h, x)
	case tea.MouseActionRelease:
		m.release(h)
	}
	return nil
}

func (m *Model[R]) press(msg tea.MouseMsg, h hit, x int) tea.Cmd {
	t := m.table
	if cell, editing := t.EditCell(); editing {
		if h.kind == hitCell && h.cell == cell {
			return nil
		}
		if !t.CommitEdit(DirNone, false) {
			return nil
		}
	}

	switch h.kind {
	case hitCorner:
		t.SelectAll()
	case hitResize:
		m.drag = dragState{kind: dragResize, col: h.span.col, startX: x, startW: m.columnWidth(h.span.col)}
	case hitHeader:
		m.drag = dragState{kind: dragHeader, from: h.cell, to: h.cell, shift: msg.Shift}
	case hitGutter:
		last := t.NumVisibleColumns() - 1
		top := int(h.cell.Row)
		if a, ok := t.Anchor(); ok && msg.Shift {
			top = int(a.Row)
			t.SelectRect(Rect{Top: min(top, int(h.cell.Row)), Bottom: max(top, int(h.cell.Row)), Right: last})
			return nil
		}
		t.SelectRect(Rect{Top: top, Bottom: top, Right: last})
		m.drag = dragState{kind: dragRows, from: h.cell, to: h.cell}
	case hitCell:
		now := m.cfg.Now()
		double := m.lastClick.valid && m.lastClick.cell == h.cell && now.Sub(m.lastClick.at) <= m.cfg.DoubleClickDelay
		m.lastClick = clickState{cell: h.cell, at: now, valid: !double}

		switch {
		case msg.Shift:
			t.ExtendTo(h.cell)
		case msg.Ctrl:
			t.Select(h.cell, true)
		default:
			t.Select(h.cell, false)
		}
		if double || (m.cfg.SingleClickEditMode && !msg.Shift && !msg.Ctrl) {
			return m.startEdit()
		}
		m.drag = dragState{kind: dragCells, from: h.cell, to: h.cell}
	}
	return nil
}

func (m *Model[R]) motion(h hit, x int) {
	switch m.drag.kind {
	case dragCells:
		if h.kind == hitCell && h.cell != m.drag.to {
			m.drag.to = h.cell
			m.drag.preview = m.dragPreview(h.cell)
		}
	case dragResize:
		m.setColumnWidth(m.drag.col, m.drag.startW+x-m.drag.startX)
	case dragHeader:
		if h.kind == hitHeader || h.kind == hitResize {
			m.drag.to = VisCell{Col: h.span.vc}
		}
	case dragRows:
		if h.kind == hitGutter || h.kind == hitCell {
			m.drag.to = VisCell{Row: h.cell.Row}
		}
	}
}

func (m *Model[R]) release(h hit) {
	d := m.drag
	m.drag = dragState{}
	switch d.kind {
	case dragCells:
		if h.kind == hitCell {
			d.to = h.cell
		}
		if d.to != d.from {
			m.table.ExtendTo(d.to)
		}
	case dragHeader:
		if h.kind == hitHeader || h.kind == hitResize {
			d.to = VisCell{Col: h.span.vc}
		}
		if d.to.Col != d.from.Col {
			m.table.MoveColumn(d.from.Col, d.to.Col)
			return
		}
		if col, ok := m.table.ColumnAt(d.from.Col); ok {
			m.table.CycleSort(col, d.shift)
		}
	case dragRows:
		if h.kind == hitGutter || h.kind == hitCell {
			d.to = VisCell{Row: h.cell.Row}
		}
		if d.to.Row != d.from.Row {
			m.table.MoveRow(d.from.Row, d.to.Row)
		}
	}
}

// dragPreview is the rectangle a cell drag would select if released at to.
// The live selection is only touched on release.
func (m *Model[R]) dragPreview(to VisCell) *VisSelection {
	sels := m.table.Selections()
	if len(sels) == 0 {
		return nil
	}
	return &VisSelection{A: sels[len(sels)-1].A, B: to.Linear(m.table.NumVisibleColumns())}
}
