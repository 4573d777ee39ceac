package styles

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateString truncates a string to fit within maxWidth, adding ellipsis if needed.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// Columns lays out left and right text on one line of the given width,
// truncating left first when both do not fit.
func Columns(left, right string, width int) string {
	rw := runewidth.StringWidth(right)
	if rw >= width {
		return TruncateString(right, width)
	}
	left = TruncateString(left, width-rw-1)
	gap := width - runewidth.StringWidth(left) - rw
	return left + strings.Repeat(" ", gap) + right
}
