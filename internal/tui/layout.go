package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane returns s as a block of exactly width columns by height
// lines. Pane contents go through this before lipgloss.JoinHorizontal, which
// otherwise misaligns columns when line widths vary.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		lines[i] = fitLine(ln, width)
	}
	return strings.Join(lines, "\n")
}

// fitLine pads or truncates one line to exactly width cells, ANSI-aware.
// Truncation leaves an ellipsis when there is room for one.
func fitLine(ln string, width int) string {
	// StringWidth is linear in the line; cap pathological lines first.
	if width > 0 && len(ln) > 8192 {
		ln = xansi.Cut(ln, 0, width+1)
	}
	w := xansi.StringWidth(ln)
	if w > width {
		switch {
		case width > 1:
			ln = xansi.Cut(ln, 0, width-1) + "…"
		case width == 1:
			ln = xansi.Cut(ln, 0, 1)
		default:
			return ""
		}
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}
