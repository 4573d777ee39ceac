// Package overlay draws menus, prompts and toasts on top of an already
// rendered view without clearing the screen.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position selects how Place locates the foreground block.
type Position int

const (
	Center Position = iota
	Top
	Bottom
	// Anchored puts the block's top-left corner at (X, Y), pulled left and up
	// as far as needed to keep it inside the viewport.
	Anchored
)

// Config describes the viewport and where the block goes inside it.
// PadY is the gap kept from the edge for Top and Bottom.
type Config struct {
	Width, Height int
	Position      Position
	PadX, PadY    int
	X, Y          int
}

// Place splices fg into bg line by line. Both may carry ANSI styling; the
// background cells left and right of each foreground line keep theirs.
func Place(cfg Config, fg, bg string) string {
	rows := strings.Split(bg, "\n")
	for len(rows) < cfg.Height {
		rows = append(rows, strings.Repeat(" ", cfg.Width))
	}

	block := strings.Split(fg, "\n")
	x, y := calculatePosition(cfg, lipgloss.Width(fg), len(block))
	for i, line := range block {
		if y+i >= len(rows) {
			break
		}
		rows[y+i] = splice(rows[y+i], line, x)
	}
	return strings.Join(rows, "\n")
}

// splice replaces the cells of row starting at column x with line.
func splice(row, line string, x int) string {
	var b strings.Builder
	left := ansi.Truncate(row, x, "")
	b.WriteString(left)
	if gap := x - ansi.StringWidth(left); gap > 0 {
		b.WriteString(strings.Repeat(" ", gap))
	}
	b.WriteString(line)
	if end := x + ansi.StringWidth(line); end < ansi.StringWidth(row) {
		b.WriteString(ansi.TruncateLeft(row, end, ""))
	}
	return b.String()
}

func calculatePosition(cfg Config, w, h int) (int, int) {
	x, y := (cfg.Width-w)/2, (cfg.Height-h)/2
	switch cfg.Position {
	case Top:
		y = cfg.PadY
	case Bottom:
		y = cfg.Height - h - cfg.PadY
	case Anchored:
		x, y = min(cfg.X, cfg.Width-w), min(cfg.Y, cfg.Height-h)
	}
	return max(x, 0), max(y, 0)
}
