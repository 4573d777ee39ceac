// Package toaster shows short notifications at the bottom of the screen:
// paste reports, save results and file watcher notices.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/tabula/internal/ui/overlay"
	"github.com/zjrosen/tabula/internal/ui/styles"
)

// DefaultDuration is how long a toast stays up.
const DefaultDuration = 3 * time.Second

// Style determines the visual appearance of the toast.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleWarn
)

// Model holds the toaster state. It is a value type; every method returns
// the updated copy.
type Model struct {
	message string
	style   Style
	visible bool
	gen     int
}

// New creates a hidden toaster.
func New() Model {
	return Model{}
}

// Show displays message, replacing any toast already showing. The returned
// command hides it again after d unless a newer toast replaced it.
func (m Model) Show(message string, style Style, d time.Duration) (Model, tea.Cmd) {
	m.message = message
	m.style = style
	m.visible = true
	m.gen++
	gen := m.gen
	return m, tea.Tick(d, func(time.Time) tea.Msg { return DismissMsg{gen: gen} })
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Update hides the toast when msg is the dismissal of the current toast.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.gen == m.gen {
		return m.Hide()
	}
	return m
}

func (m Model) Visible() bool { return m.visible }

// Message returns the text of the visible toast.
func (m Model) Message() string {
	if !m.visible {
		return ""
	}
	return m.message
}

// badge returns the border colour and leading glyph for a style.
func (s Style) badge() (lipgloss.TerminalColor, string) {
	switch s {
	case StyleError:
		return styles.ToastBorderErrorColor, "✗"
	case StyleInfo:
		return styles.ToastBorderInfoColor, "i"
	case StyleWarn:
		return styles.ToastBorderWarnColor, "!"
	}
	return styles.ToastBorderSuccessColor, "✓"
}

// View renders the toast box, or nothing when hidden.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}
	color, glyph := m.style.badge()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Render(glyph + " " + m.message)
}

// Overlay renders the toast near the bottom edge of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}
	return overlay.Place(overlay.Config{Width: width, Height: height, Position: overlay.Bottom, PadY: 1}, m.View(), bg)
}

// DismissMsg hides the toast that scheduled it.
type DismissMsg struct{ gen int }
