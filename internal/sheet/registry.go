package sheet

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout formats datetime cells holding a bare date.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order after the column's own Format.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	DateLayout,
	"2006/01/02",
}

// ErrNotInOptions is returned when a select value is not one of the column's
// options.
var ErrNotInOptions = errors.New("value is not an option of this column")

// Handler implements one cell kind.
type Handler struct {
	// Parse converts text to a cell. Blank text yields an empty cell.
	Parse func(text string, col *Column) (Cell, error)
	// Format renders a non-empty cell as plain text. Parse(Format(c)) == c.
	Format func(c Cell, col *Column) string
	// Compare orders two non-empty cells.
	Compare func(a, b Cell, col *Column) int
	// Input returns the editor for a cell of this kind. text is the cell
	// already formatted.
	Input func(c Cell, text string, col *Column) Input
}

// Registry maps kinds to handlers.
type Registry struct {
	handlers map[Kind]Handler
}

// NewRegistry returns a registry with the built-in handlers for every kind.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[Kind]Handler)}
	r.Register(KindText, Handler{Parse: parseText(KindText), Format: formatText, Compare: compareText, Input: newTextInput})
	r.Register(KindInt, Handler{Parse: parseInt, Format: formatInt, Compare: compareInt, Input: newTextInput})
	r.Register(KindFloat, Handler{Parse: parseFloat, Format: formatFloat, Compare: compareFloat, Input: newTextInput})
	r.Register(KindBool, Handler{Parse: parseBool, Format: formatBool, Compare: compareBool, Input: newBoolInput})
	r.Register(KindDateTime, Handler{Parse: parseTime, Format: formatTime, Compare: compareTime, Input: newTextInput})
	r.Register(KindSelect, Handler{Parse: parseSelect, Format: formatText, Compare: compareSelect, Input: newSelectInput})
	r.Register(KindMultiSelect, Handler{Parse: parseMulti, Format: formatMulti, Compare: compareMulti, Input: newTextInput})
	r.Register(KindRelation, Handler{Parse: parseText(KindRelation), Format: formatText, Compare: compareText, Input: newTextInput})
	return r
}

// Register installs or replaces the handler for k.
func (r *Registry) Register(k Kind, h Handler) {
	r.handlers[k] = h
}

func (r *Registry) handler(k Kind) Handler {
	if h, ok := r.handlers[k]; ok {
		return h
	}
	return r.handlers[KindText]
}

// Parse converts text into a cell for col.
func (r *Registry) Parse(text string, col *Column) (Cell, error) {
	if text == "" || (col.Kind != KindText && strings.TrimSpace(text) == "") {
		return EmptyCell(col.Kind), nil
	}
	c, err := r.handler(col.Kind).Parse(text, col)
	if err != nil {
		return EmptyCell(col.Kind), fmt.Errorf("%s %q: %w", col.Kind, text, err)
	}
	return c, nil
}

// Format renders c as plain text. Empty cells render as "".
func (r *Registry) Format(c Cell, col *Column) string {
	if c.Empty {
		return ""
	}
	return r.handler(c.Kind).Format(c, col)
}

// Compare orders two cells of col. Empty cells sort first.
func (r *Registry) Compare(a, b Cell, col *Column) int {
	switch {
	case a.Empty && b.Empty:
		return 0
	case a.Empty:
		return -1
	case b.Empty:
		return 1
	}
	return r.handler(col.Kind).Compare(a, b, col)
}

// Input returns an editor for c.
func (r *Registry) Input(c Cell, col *Column) Input {
	return r.handler(col.Kind).Input(c, r.Format(c, col), col)
}

func parseText(k Kind) func(string, *Column) (Cell, error) {
	return func(text string, _ *Column) (Cell, error) {
		return Cell{Kind: k, Text: text}, nil
	}
}

func formatText(c Cell, _ *Column) string { return c.Text }

// compareText orders case-insensitively, then by raw bytes so the order is
// total.
func compareText(a, b Cell, _ *Column) int {
	if c := strings.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text)); c != 0 {
		return c
	}
	return strings.Compare(a.Text, b.Text)
}

func parseInt(text string, _ *Column) (Cell, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return Cell{}, err
	}
	return IntCell(v), nil
}

func formatInt(c Cell, _ *Column) string { return strconv.FormatInt(c.Int, 10) }

func compareInt(a, b Cell, _ *Column) int { return cmp.Compare(a.Int, b.Int) }

func parseFloat(text string, _ *Column) (Cell, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return Cell{}, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Cell{}, fmt.Errorf("not a finite number")
	}
	return FloatCell(v), nil
}

func formatFloat(c Cell, _ *Column) string { return strconv.FormatFloat(c.Float, 'g', -1, 64) }

func compareFloat(a, b Cell, _ *Column) int { return cmp.Compare(a.Float, b.Float) }

func parseBool(text string, _ *Column) (Cell, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "t", "yes", "y", "1", "x":
		return BoolCell(true), nil
	case "false", "f", "no", "n", "0":
		return BoolCell(false), nil
	}
	return Cell{}, fmt.Errorf("not a boolean")
}

func formatBool(c Cell, _ *Column) string { return strconv.FormatBool(c.Bool) }

func compareBool(a, b Cell, _ *Column) int {
	switch {
	case a.Bool == b.Bool:
		return 0
	case b.Bool:
		return -1
	default:
		return 1
	}
}

func parseTime(text string, col *Column) (Cell, error) {
	text = strings.TrimSpace(text)
	layouts := dateLayouts
	if col.Format != "" {
		layouts = append([]string{col.Format}, dateLayouts...)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return TimeCell(t), nil
		}
	}
	return Cell{}, fmt.Errorf("not a date")
}

// formatTime uses the column layout when set, a bare date for midnight UTC
// and RFC 3339 otherwise.
func formatTime(c Cell, col *Column) string {
	switch {
	case col.Format != "":
		return c.Time.Format(col.Format)
	case c.Time.Location() == time.UTC && c.Time.Equal(c.Time.Truncate(24*time.Hour)):
		return c.Time.Format(DateLayout)
	default:
		return c.Time.Format(time.RFC3339Nano)
	}
}

func compareTime(a, b Cell, _ *Column) int { return a.Time.Compare(b.Time) }

func parseSelect(text string, col *Column) (Cell, error) {
	text = strings.TrimSpace(text)
	if !col.HasOption(text) {
		return Cell{}, ErrNotInOptions
	}
	return Cell{Kind: KindSelect, Text: text}, nil
}

// compareSelect orders by option position so a status column sorts in its
// declared order.
func compareSelect(a, b Cell, col *Column) int {
	ia, ib := slices.Index(col.Options, a.Text), slices.Index(col.Options, b.Text)
	if c := cmp.Compare(ia, ib); c != 0 {
		return c
	}
	return compareText(a, b, col)
}

func parseMulti(text string, col *Column) (Cell, error) {
	var items []string
	for part := range strings.SplitSeq(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" || slices.Contains(items, part) {
			continue
		}
		if !col.HasOption(part) {
			return Cell{}, fmt.Errorf("%q: %w", part, ErrNotInOptions)
		}
		items = append(items, part)
	}
	if len(items) == 0 {
		return EmptyCell(KindMultiSelect), nil
	}
	return Cell{Kind: KindMultiSelect, Items: items}, nil
}

func formatMulti(c Cell, _ *Column) string { return strings.Join(c.Items, ", ") }

func compareMulti(a, b Cell, _ *Column) int { return slices.Compare(a.Items, b.Items) }
