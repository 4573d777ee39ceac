package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/tabula/internal/ui/overlay"
	"github.com/zjrosen/tabula/internal/ui/styles"
)

const maxSuggestions = 5

// prompt is a modal single-line input. submit receives the trimmed value.
type prompt struct {
	title   string
	hint    string
	input   textinput.Model
	submit  func(m Model, value string) (Model, tea.Cmd)
	suggest func(value string) []string
}

func newPrompt(title, hint, value string, submit func(Model, string) (Model, tea.Cmd)) *prompt {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Width = 36
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	return &prompt{title: title, hint: hint, input: ti, submit: submit}
}

// updatePrompt routes a key to the open prompt. Enter submits, Esc cancels.
func (m Model) updatePrompt(msg tea.KeyMsg) (Model, tea.Cmd) {
	p := m.prompt
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = nil
		return m, nil
	case tea.KeyEnter:
		m.prompt = nil
		return p.submit(m, strings.TrimSpace(p.input.Value()))
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return m, cmd
}

// view builds its styles on every call so a theme applied after startup is
// picked up.
func (p *prompt) view() string {
	title := lipgloss.NewStyle().Foreground(styles.OverlayTitleColor).Bold(true)
	lines := []string{title.Render(p.title), p.input.View()}
	if p.suggest != nil {
		best := lipgloss.NewStyle().Foreground(styles.FocusStrokeColor).Bold(true)
		rest := lipgloss.NewStyle().Foreground(styles.TextSecondaryColor)
		for i, s := range p.suggest(p.input.Value()) {
			if i == 0 {
				lines = append(lines, best.Render("→ "+s))
				continue
			}
			lines = append(lines, rest.Render("  "+s))
		}
	}
	if p.hint != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(p.hint))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (p *prompt) overlay(bg string, width, height int) string {
	return overlay.Place(overlay.Config{Width: width, Height: height, Position: overlay.Center}, p.view(), bg)
}
