package datatable

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/tabula/internal/ui/overlay"
	"github.com/zjrosen/tabula/internal/ui/styles"
)

var menuKeys = struct {
	Up, Down, Select, Close key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Close:  key.NewBinding(key.WithKeys("esc", "q")),
}

var (
	menuBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor).
			Padding(0, 1)
	menuTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(styles.OverlayTitleColor)
	menuItemStyle   = lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)
	menuCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimaryColor).Background(styles.SelectionBackgroundColor)
)

type menuItem[R any] struct {
	label string
	run   func(m *Model[R]) tea.Cmd
}

// columnMenu lists the operations available for one visible column.
type columnMenu[R any] struct {
	title  string
	items  []menuItem[R]
	cursor int
	x      int
}

func (m *Model[R]) openMenu(vc VisColumnPos) {
	t := m.table
	col, ok := t.ColumnAt(vc)
	if !ok {
		return
	}
	var items []menuItem[R]
	add := func(label string, run func(m *Model[R]) tea.Cmd) {
		items = append(items, menuItem[R]{label: label, run: run})
	}

	if t.viewer.IsSortable(col) {
		add("Sort ascending", func(m *Model[R]) tea.Cmd {
			m.table.ApplyCache(SetSortSpec{Spec: []SortKey{{Column: col, Ascending: true}}})
			return nil
		})
		add("Sort descending", func(m *Model[R]) tea.Cmd {
			m.table.ApplyCache(SetSortSpec{Spec: []SortKey{{Column: col}}})
			return nil
		})
	}
	if len(t.sort) > 0 {
		add("Clear sort", func(m *Model[R]) tea.Cmd {
			m.table.ApplyCache(SetSortSpec{})
			return nil
		})
	}
	add("Hide column", func(m *Model[R]) tea.Cmd {
		m.table.ApplyCache(HideColumn{Pos: vc})
		return nil
	})
	for _, hidden := range t.HiddenColumns() {
		add("Show "+t.viewer.ColumnName(hidden), func(m *Model[R]) tea.Cmd {
			m.table.ApplyCache(ShowColumn{Col: hidden, At: vc + 1})
			return nil
		})
	}
	if _, ok := t.viewer.(ColumnMutator[R]); ok {
		add("Rename column", func(m *Model[R]) tea.Cmd { return m.openRenameColumn(col) })
		add("Insert column left", func(*Model[R]) tea.Cmd {
			return emit(ColumnRequestMsg{Kind: ColumnInsertLeft, Col: col, VisPos: vc})
		})
		add("Insert column right", func(*Model[R]) tea.Cmd {
			return emit(ColumnRequestMsg{Kind: ColumnInsertRight, Col: col, VisPos: vc + 1})
		})
		add("Change column type", func(*Model[R]) tea.Cmd {
			return emit(ColumnRequestMsg{Kind: ColumnChangeType, Col: col, VisPos: vc})
		})
		add("Delete column", func(m *Model[R]) tea.Cmd {
			m.table.Exec(RemoveColumn{At: col})
			return nil
		})
	}
	x := 0
	for _, s := range m.layout() {
		if s.vc == vc {
			x = s.x
		}
	}
	m.menu = &columnMenu[R]{title: t.viewer.ColumnName(col), items: items, x: x}
}

func (c *columnMenu[R]) update(m *Model[R], msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, menuKeys.Up):
		c.cursor = max(c.cursor-1, 0)
	case key.Matches(msg, menuKeys.Down):
		c.cursor = min(c.cursor+1, len(c.items)-1)
	case key.Matches(msg, menuKeys.Close):
		m.menu = nil
	case key.Matches(msg, menuKeys.Select):
		m.menu = nil
		if c.cursor < len(c.items) {
			return c.items[c.cursor].run(m)
		}
	}
	return nil
}

func (c *columnMenu[R]) overlay(bg string, width, height int) string {
	lines := []string{menuTitleStyle.Render(c.title)}
	for i, it := range c.items {
		if i == c.cursor {
			lines = append(lines, menuCursorStyle.Render("> "+it.label))
			continue
		}
		lines = append(lines, menuItemStyle.Render("  "+it.label))
	}
	box := menuBoxStyle.Render(strings.Join(lines, "\n"))
	return overlay.Place(overlay.Config{Width: width, Height: height, Position: overlay.Anchored, X: c.x, Y: 1}, box, bg)
}

// prompt is a single-line text input shown over the grid.
type prompt struct {
	title  string
	input  textinput.Model
	submit func(string) tea.Cmd
	close  func()
}

func newPrompt(title, value string, submit func(string) tea.Cmd, closeFn func()) *prompt {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Width = 30
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	return &prompt{title: title, input: ti, submit: submit, close: closeFn}
}

func (p *prompt) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		p.close()
		return nil
	case tea.KeyEnter:
		p.close()
		return p.submit(strings.TrimSpace(p.input.Value()))
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *prompt) overlay(bg string, width, height int) string {
	body := menuTitleStyle.Render(p.title) + "\n" + p.input.View()
	box := menuBoxStyle.Render(body)
	return overlay.Place(overlay.Config{Width: width, Height: height, Position: overlay.Center}, box, bg)
}

func (m *Model[R]) openRenameColumn(col ColumnIdx) tea.Cmd {
	if _, ok := m.table.viewer.(ColumnMutator[R]); !ok {
		return nil
	}
	m.prompt = newPrompt("Rename column", m.table.viewer.ColumnName(col), func(name string) tea.Cmd {
		if name != "" {
			m.table.RenameColumn(col, name)
		}
		return nil
	}, func() { m.prompt = nil })
	return textinput.Blink
}

func (m *Model[R]) openRenameRow() tea.Cmd {
	namer, ok := m.table.viewer.(RowNamer[R])
	a, aok := m.table.Anchor()
	if !ok || !aok {
		return nil
	}
	row, _ := m.table.RowAt(a.Row)
	current, ok := namer.RowName(m.table.store.At(row))
	if !ok {
		return nil
	}
	vr := a.Row
	m.prompt = newPrompt("Rename row", current, func(name string) tea.Cmd {
		m.table.RenameRow(vr, name)
		return nil
	}, func() { m.prompt = nil })
	return textinput.Blink
}
