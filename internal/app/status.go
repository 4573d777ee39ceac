package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/zjrosen/tabula/internal/pubsub"
	"github.com/zjrosen/tabula/internal/sheet"
	"github.com/zjrosen/tabula/internal/ui/styles"
)

// mode names the input state shown in the status strip.
func (m Model) mode() string {
	switch {
	case m.prompt != nil:
		return "PROMPT"
	case m.filtering:
		return "FILTER"
	case m.table.IsEditing():
		return "EDIT"
	default:
		return "NORMAL"
	}
}

// statusView renders: mode, file name with dirty marker, row counts, the last
// row event and the anchor position.
func (m Model) statusView() string {
	left := []string{lipgloss.NewStyle().Bold(true).Render(m.mode())}

	name := m.fileName()
	if m.table.IsDirty() {
		name += styles.DirtyStyle.Render(" ●")
	}
	if m.stale {
		name += lipgloss.NewStyle().Foreground(styles.StatusWarningColor).Render(" (changed on disk)")
	}
	left = append(left, name)

	total, shown := m.table.Store().Len(), m.table.NumVisibleRows()
	rows := humanize.Comma(int64(total)) + " rows"
	if shown != total {
		rows = fmt.Sprintf("%s of %s rows", humanize.Comma(int64(shown)), humanize.Comma(int64(total)))
	}
	left = append(left, rows)
	if m.lastEvent != "" {
		left = append(left, m.lastEvent)
	}

	right := ""
	if a, ok := m.table.Anchor(); ok {
		if col, ok := m.table.ColumnAt(a.Col); ok {
			right = fmt.Sprintf("%s  R%d", m.doc.Sheet.ColumnName(col), int(a.Row)+1)
		}
	}

	inner := max(m.width-2, 0)
	l := strings.Join(left, "  │  ")
	gap := inner - lipgloss.Width(l) - lipgloss.Width(right)
	line := l
	if gap >= 1 {
		line += strings.Repeat(" ", gap) + right
	}
	return styles.StatusBarStyle.Width(m.width).Render(ansi.Truncate(line, inner, "…"))
}

func (m Model) helpView() string {
	return m.help.View(m.keys)
}

// describeRowEvent turns a row lifecycle event into a short status note.
func describeRowEvent(ev pubsub.Event[sheet.RowEvent]) string {
	n := int(ev.Payload.Index) + 1
	switch ev.Type {
	case pubsub.RowInsertedEvent:
		return fmt.Sprintf("row %d inserted", n)
	case pubsub.RowUpdatedEvent:
		return fmt.Sprintf("row %d updated", n)
	case pubsub.RowRemovedEvent:
		return fmt.Sprintf("row %d removed", n)
	}
	return ""
}
