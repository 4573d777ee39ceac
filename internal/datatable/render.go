package datatable

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"

	"github.com/zjrosen/tabula/internal/ui/styles"
)

const (
	minColumnWidth = 3
	maxGutterWidth = 16
	cellEllipsis   = "…"
)

// palette holds the cell styles. It is built when a Model is created so
// that a theme applied at startup is picked up.
type palette struct {
	header, gutter, gutterFocus lipgloss.Style
	selection, preview, edit    lipgloss.Style
}

func newPalette() palette {
	return palette{
		header:      lipgloss.NewStyle().Bold(true).Foreground(styles.HeaderTextColor).Background(styles.HeaderBackgroundColor),
		gutter:      lipgloss.NewStyle().Foreground(styles.TextMutedColor),
		gutterFocus: lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimaryColor),
		selection:   lipgloss.NewStyle().Background(styles.SelectionBackgroundColor),
		preview:     lipgloss.NewStyle().Background(styles.SelectionPreviewColor),
		edit:        lipgloss.NewStyle().Underline(true).Background(styles.EditBackgroundColor),
	}
}

// span is the horizontal placement of one visible column on screen.
type span struct {
	vc   VisColumnPos
	col  ColumnIdx
	x, w int
}

// layout places the visible columns starting at the horizontal offset. The
// last span may be clipped to the available width.
func (m *Model[R]) layout() []span {
	var out []span
	x := m.gutterWidth()
	for vc := m.colOffset; vc < m.table.NumVisibleColumns(); vc++ {
		if x >= m.width {
			break
		}
		col := m.table.visible[vc]
		w := min(m.columnWidth(col), m.width-x)
		out = append(out, span{vc: VisColumnPos(vc), col: col, x: x, w: w})
		x += w + 1
	}
	return out
}

func (m *Model[R]) gutterWidth() int {
	w := len(strconv.Itoa(m.table.NumVisibleRows())) + 1
	if namer, ok := m.table.viewer.(RowNamer[R]); ok {
		for vr := m.rowOffset; vr < min(m.rowOffset+m.bodyHeight(), m.table.NumVisibleRows()); vr++ {
			row, _ := m.table.RowAt(VisRowPos(vr))
			if name, ok := namer.RowName(m.table.store.At(row)); ok {
				w = max(w, ansi.StringWidth(name)+1)
			}
		}
	}
	return min(max(w, 3), maxGutterWidth)
}

func (m *Model[R]) bodyHeight() int { return max(m.height-1, 0) }

// View renders the header line followed by one line per visible row.
func (m *Model[R]) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	m.table.Sync()

	spans := m.layout()
	gw := m.gutterWidth()
	lines := make([]string, 0, m.height)
	lines = append(lines, m.renderHeader(spans, gw))

	if m.table.NumVisibleRows() == 0 {
		lines = append(lines, renderEmptyState("No rows", m.width, m.bodyHeight()))
	} else {
		focus, hasFocus := m.table.Anchor()
		for i := range m.bodyHeight() {
			vr := VisRowPos(m.rowOffset + i)
			if int(vr) >= m.table.NumVisibleRows() {
				lines = append(lines, "")
				continue
			}
			lines = append(lines, m.renderRow(vr, spans, gw, hasFocus && focus.Row == vr, focus))
		}
		// The stroke above the anchor row is the underline of the line
		// before it, which is the header for the first visible row.
		if at := 1 + int(focus.Row) - m.rowOffset; hasFocus && at >= 1 && at < len(lines) {
			lines[at-1] = strokeLine(lines[at-1], m.cfg.FocusStrokeColor, lipgloss.ColorProfile())
			lines[at] = strokeLine(lines[at], m.cfg.FocusStrokeColor, lipgloss.ColorProfile())
		}
	}

	out := strings.Join(lines, "\n")
	if m.menu != nil {
		out = m.menu.overlay(out, m.width, m.height)
	}
	if m.prompt != nil {
		out = m.prompt.overlay(out, m.width, m.height)
	}
	return zone.Mark(m.cfg.ZoneID, out)
}

func (m *Model[R]) renderHeader(spans []span, gw int) string {
	var b strings.Builder
	b.WriteString(m.pal.header.Render(strings.Repeat(" ", gw)))
	for i, s := range spans {
		if i > 0 {
			b.WriteString(m.pal.header.Render(" "))
		}
		name := m.table.viewer.ColumnName(s.col)
		if pos, asc, ok := m.table.SortState(s.col); ok {
			arrow := "▼"
			if asc {
				arrow = "▲"
			}
			if len(m.table.sort) > 1 {
				arrow += strconv.Itoa(pos + 1)
			}
			name = arrow + " " + name
		}
		b.WriteString(m.pal.header.Render(fit(name, s.w)))
	}
	return padLine(b.String(), m.width)
}

func (m *Model[R]) renderRow(vr VisRowPos, spans []span, gw int, focused bool, focus VisCell) string {
	rowIdx, _ := m.table.RowAt(vr)
	row := m.table.store.At(rowIdx)

	label := strconv.Itoa(int(vr) + 1)
	if namer, ok := m.table.viewer.(RowNamer[R]); ok {
		if name, ok := namer.RowName(row); ok && name != "" {
			label = name
		}
	}
	gs := m.pal.gutter
	if focused {
		gs = m.pal.gutterFocus
	}

	var b strings.Builder
	b.WriteString(gs.Render(fitRight(label, gw-1) + " "))

	editCell, editing := m.table.EditCell()
	ncols := m.table.NumVisibleColumns()
	for i, s := range spans {
		cell := VisCell{Row: vr, Col: s.vc}
		sep := " "
		if i > 0 {
			if focused {
				sep = m.focusStyle.Render(sep)
			}
			b.WriteString(sep)
		}
		switch {
		case editing && editCell == cell:
			b.WriteString(m.pal.edit.Render(fit(m.table.Editor().View(s.w), s.w)))
		case focus == cell && focused:
			b.WriteString(m.anchorStyle.Render(fit(ansi.Strip(m.showCell(row, s.col, s.w)), s.w)))
		case m.drag.preview != nil && m.drag.preview.Contains(ncols, cell):
			b.WriteString(m.pal.preview.Render(fit(ansi.Strip(m.showCell(row, s.col, s.w)), s.w)))
		case m.table.IsSelected(cell):
			b.WriteString(m.pal.selection.Render(fit(ansi.Strip(m.showCell(row, s.col, s.w)), s.w)))
		case focused:
			b.WriteString(m.focusStyle.Render(fit(ansi.Strip(m.showCell(row, s.col, s.w)), s.w)))
		default:
			b.WriteString(fit(m.showCell(row, s.col, s.w), s.w))
		}
	}
	return padLine(b.String(), m.width)
}

// strokeLine underlines a whole line in color. Styles inside the line reset
// all attributes, so the underline is switched on again after each reset.
// Terminals without colour get the line unchanged.
func strokeLine(line string, color lipgloss.TerminalColor, profile termenv.Profile) string {
	if profile == termenv.Ascii {
		return line
	}
	on := ansi.Style{}.Underline(true).UnderlineColor(color).String()
	line = strings.ReplaceAll(line, "\x1b[0m", "\x1b[0m"+on)
	line = strings.ReplaceAll(line, ansi.ResetStyle, ansi.ResetStyle+on)
	return on + line + ansi.ResetStyle
}

// showCell renders a cell through the viewer, turning a panic into a
// visible error marker.
func (m *Model[R]) showCell(row *R, col ColumnIdx, width int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("!ERR:%v", r)
		}
	}()
	return m.table.viewer.ShowCell(row, col, width)
}

// fit truncates s to width cells and pads it on the right.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, cellEllipsis)
	if w := ansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

func fitRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, cellEllipsis)
	if w := ansi.StringWidth(s); w < width {
		s = strings.Repeat(" ", width-w) + s
	}
	return s
}

func padLine(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return ansi.Truncate(s, width, "")
}

// renderEmptyState centers msg in a width x height block.
func renderEmptyState(msg string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	styled := lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(ansi.Truncate(msg, width, cellEllipsis))
	leftPad := max((width-lipgloss.Width(styled))/2, 0)
	topPad := max((height-1)/2, 0)

	lines := make([]string, 0, height)
	for range topPad {
		lines = append(lines, "")
	}
	lines = append(lines, strings.Repeat(" ", leftPad)+styled)
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
