package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/apitrack/internal/tracker"
)

// Theme holds all colors for the application.
type Theme struct {
	Name string

	Base    lipgloss.Color
	Surface lipgloss.Color
	Overlay lipgloss.Color

	Text    lipgloss.Color
	Subtext lipgloss.Color
	Muted   lipgloss.Color

	Accent lipgloss.Color
	Red    lipgloss.Color
	Peach  lipgloss.Color
	Yellow lipgloss.Color
	Green  lipgloss.Color
	Teal   lipgloss.Color
	Blue   lipgloss.Color
}

// MethodColor returns the color for an HTTP method.
func (t Theme) MethodColor(m tracker.Method) lipgloss.Color {
	switch m {
	case tracker.MethodGET:
		return t.Green
	case tracker.MethodPOST:
		return t.Yellow
	case tracker.MethodPUT:
		return t.Blue
	case tracker.MethodDELETE:
		return t.Red
	default:
		return t.Text
	}
}

// StatusColor returns the color for an HTTP status code. nil means the call
// never got a response.
func (t Theme) StatusColor(code *int) lipgloss.Color {
	if code == nil {
		return t.Muted
	}
	switch c := *code; {
	case c >= 200 && c < 300:
		return t.Green
	case c >= 300 && c < 400:
		return t.Blue
	case c >= 400 && c < 500:
		return t.Yellow
	case c >= 500:
		return t.Red
	default:
		return t.Text
	}
}

// merge fills zero colors of t from fallback.
func (t Theme) merge(fallback Theme) Theme {
	pick := func(c, f lipgloss.Color) lipgloss.Color {
		if c == "" {
			return f
		}
		return c
	}
	t.Base = pick(t.Base, fallback.Base)
	t.Surface = pick(t.Surface, fallback.Surface)
	t.Overlay = pick(t.Overlay, fallback.Overlay)
	t.Text = pick(t.Text, fallback.Text)
	t.Subtext = pick(t.Subtext, fallback.Subtext)
	t.Muted = pick(t.Muted, fallback.Muted)
	t.Accent = pick(t.Accent, fallback.Accent)
	t.Red = pick(t.Red, fallback.Red)
	t.Peach = pick(t.Peach, fallback.Peach)
	t.Yellow = pick(t.Yellow, fallback.Yellow)
	t.Green = pick(t.Green, fallback.Green)
	t.Teal = pick(t.Teal, fallback.Teal)
	t.Blue = pick(t.Blue, fallback.Blue)
	return t
}
