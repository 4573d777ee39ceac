package sheet

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/tabula/internal/ui/styles"
)

// Input edits a single cell value.
type Input interface {
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
	// Text is the current input as cell text, parsed by the column's kind
	// when the edit is committed.
	Text() string
}

var inputKeys = struct {
	Prev, Next, Toggle key.Binding
}{
	Prev:   key.NewBinding(key.WithKeys("left")),
	Next:   key.NewBinding(key.WithKeys("right")),
	Toggle: key.NewBinding(key.WithKeys(" ", "space")),
}

type textInput struct {
	ti textinput.Model
}

func newTextInput(_ Cell, text string, _ *Column) Input {
	ti := textinput.New()
	ti.Prompt = ""
	ti.SetValue(text)
	ti.CursorEnd()
	ti.Focus()
	return &textInput{ti: ti}
}

func (in *textInput) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	in.ti, cmd = in.ti.Update(msg)
	return cmd
}

func (in *textInput) View(width int) string {
	in.ti.Width = max(width-1, 1)
	return in.ti.View()
}

func (in *textInput) Text() string { return in.ti.Value() }

// boolInput toggles with space and the arrow keys; typing t/y/1 or f/n/0
// sets the value directly.
type boolInput struct {
	value Cell
}

func newBoolInput(c Cell, _ string, _ *Column) Input {
	return &boolInput{value: c}
}

func (in *boolInput) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(k, inputKeys.Toggle, inputKeys.Prev, inputKeys.Next):
		in.value = BoolCell(in.value.Empty || !in.value.Bool)
	case k.Type == tea.KeyBackspace || k.Type == tea.KeyDelete:
		in.value = EmptyCell(KindBool)
	case k.Type == tea.KeyRunes:
		if c, err := parseBool(string(k.Runes), nil); err == nil {
			in.value = c
		}
	}
	return nil
}

func (in *boolInput) View(int) string {
	switch {
	case in.value.Empty:
		return "[ ]"
	case in.value.Bool:
		return "[x] true"
	default:
		return "[ ] false"
	}
}

func (in *boolInput) Text() string {
	if in.value.Empty {
		return ""
	}
	return formatBool(in.value, nil)
}

// selectInput cycles through the column options with left/right. Typed
// letters jump to the first option starting with everything typed so far.
type selectInput struct {
	options []string
	index   int
	typed   string
}

var selectArrowStyle = lipgloss.NewStyle().Foreground(styles.TextMutedColor)

func newSelectInput(c Cell, _ string, col *Column) Input {
	options := append([]string{""}, col.Options...)
	idx := 0
	if !c.Empty {
		if i := slices.Index(options, c.Text); i >= 0 {
			idx = i
		} else {
			options = append(options, c.Text)
			idx = len(options) - 1
		}
	}
	return &selectInput{options: options, index: idx}
}

func (in *selectInput) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	n := len(in.options)
	switch {
	case key.Matches(k, inputKeys.Prev):
		in.index = (in.index + n - 1) % n
		in.typed = ""
	case key.Matches(k, inputKeys.Next):
		in.index = (in.index + 1) % n
		in.typed = ""
	case k.Type == tea.KeyBackspace:
		in.typed = ""
		in.index = 0
	case k.Type == tea.KeyRunes:
		in.typed += strings.ToLower(string(k.Runes))
		for i, opt := range in.options {
			if opt != "" && strings.HasPrefix(strings.ToLower(opt), in.typed) {
				in.index = i
				break
			}
		}
	}
	return nil
}

func (in *selectInput) View(width int) string {
	value := styles.TruncateString(in.options[in.index], max(width-4, 1))
	return selectArrowStyle.Render("◂") + " " + value + " " + selectArrowStyle.Render("▸")
}

func (in *selectInput) Text() string { return in.options[in.index] }
