package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

// Header is the top bar: the app name and the screen trail.
type Header struct {
	trail  []msgs.Screen
	width  int
	styles theme.Styles
}

// NewHeader creates a header.
func NewHeader(s theme.Styles) Header {
	return Header{styles: s}
}

// SetTrail sets the screens from the root to the current one.
func (m *Header) SetTrail(trail []msgs.Screen) {
	m.trail = append(m.trail[:0], trail...)
}

// SetWidth sets the available width.
func (m *Header) SetWidth(w int) { m.width = w }

// View renders the header.
func (m Header) View() string {
	t := m.styles.Theme
	name := lipgloss.NewStyle().Foreground(t.Base).Background(t.Accent).Bold(true).Padding(0, 1).Render("apitrack")

	sep := m.styles.Muted.Render(" › ")
	parts := make([]string, len(m.trail))
	for i, s := range m.trail {
		if i == len(m.trail)-1 {
			parts[i] = m.styles.Bold.Render(s.String())
		} else {
			parts[i] = m.styles.Subtitle.Render(s.String())
		}
	}
	line := name + " " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Width(m.width).MaxWidth(m.width).Render(line)
}
