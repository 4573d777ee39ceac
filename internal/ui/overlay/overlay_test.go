package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grid(w, h int) string {
	return strings.TrimSuffix(strings.Repeat(strings.Repeat("A", w)+"\n", h), "\n")
}

func TestPlace_Positions(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		row  int
		want string
	}{
		{"center", Config{Width: 5, Height: 3, Position: Center}, 1, "AXXAA"},
		{"top", Config{Width: 5, Height: 3, Position: Top}, 0, "AXXAA"},
		{"top padded", Config{Width: 5, Height: 3, Position: Top, PadY: 1}, 1, "AXXAA"},
		{"bottom", Config{Width: 5, Height: 3, Position: Bottom}, 2, "AXXAA"},
		{"bottom padded", Config{Width: 5, Height: 3, Position: Bottom, PadY: 1}, 1, "AXXAA"},
		{"anchored", Config{Width: 5, Height: 3, Position: Anchored, X: 3, Y: 1}, 1, "AAAXX"},
		{"anchored clamped", Config{Width: 5, Height: 3, Position: Anchored, X: 9, Y: 9}, 2, "AAAXX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := strings.Split(Place(tt.cfg, "XX", grid(5, 3)), "\n")
			require.Len(t, lines, 3)
			assert.Equal(t, tt.want, lines[tt.row])
		})
	}
}

func TestPlace_PadsShortBackground(t *testing.T) {
	out := Place(Config{Width: 4, Height: 3, Position: Center}, "X", "")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, " X", strings.TrimRight(lines[1], " "))
}

func TestPlace_LargeForeground(t *testing.T) {
	out := Place(Config{Width: 3, Height: 3, Position: Center}, "XXXXX\nXXXXX", grid(3, 3))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "XXXXX", lines[0])
}

func TestPlace_PreservesANSI(t *testing.T) {
	bg := "\x1b[31mRRRRRR\x1b[0m"
	out := Place(Config{Width: 6, Height: 1, Position: Center}, "XX", bg)
	assert.Contains(t, out, "XX")
	assert.Contains(t, out, "\x1b[31m")
}

func TestCalculatePosition_NeverNegative(t *testing.T) {
	for _, pos := range []Position{Center, Top, Bottom, Anchored} {
		x, y := calculatePosition(Config{Width: 2, Height: 2, Position: pos, X: -4, Y: -4}, 10, 10)
		assert.GreaterOrEqual(t, x, 0)
		assert.GreaterOrEqual(t, y, 0)
	}
}
