package tui

import (
	"strings"

	"github.com/muesli/termenv"
)

// ColorizeDiffLines colors the local fallback diff for terminal display.
// Added lines are green, the section markers cyan, existing text dimmed.
func ColorizeDiffLines(lines []string) []string {
	p := termenv.ColorProfile()
	out := make([]string, len(lines))
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+ "):
			out[i] = termenv.String(line).Foreground(p.Color("#22c55e")).String()
		case strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++"):
			out[i] = termenv.String(line).Foreground(p.Color("#22d3ee")).Bold().String()
		default:
			out[i] = termenv.String(line).Faint().String()
		}
	}
	return out
}
