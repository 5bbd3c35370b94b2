package components

import "github.com/charmbracelet/lipgloss"

// Truncate shortens s to maxW runes, marking the cut with an ellipsis.
func Truncate(s string, maxW int) string {
	r := []rune(s)
	if maxW <= 0 {
		return ""
	}
	if len(r) <= maxW {
		return s
	}
	if maxW == 1 {
		return "…"
	}
	return string(r[:maxW-1]) + "…"
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}
