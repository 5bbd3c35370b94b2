package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/apitrack/internal/chart"
	"github.com/sadopc/apitrack/internal/tracker"
)

// Styles holds pre-computed Lip Gloss styles for the current theme.
type Styles struct {
	Theme Theme

	Panel lipgloss.Style
	Modal lipgloss.Style

	// Text styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	URL      lipgloss.Style
	Key      lipgloss.Style
	Value    lipgloss.Style
	Hint     lipgloss.Style

	// Tables
	Header   lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style

	// Pager
	PageActive   lipgloss.Style
	PageButton   lipgloss.Style
	PageDisabled lipgloss.Style

	// Forms
	Label        lipgloss.Style
	LabelFocused lipgloss.Style
	FieldError   lipgloss.Style

	StatusBar  lipgloss.Style
	StatusMode lipgloss.Style
	ToastInfo  lipgloss.Style
	ToastError lipgloss.Style
}

// NewStyles creates a Styles set from a Theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Theme: t,

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Overlay).
			Padding(0, 1),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent).
			Padding(1, 2),

		Title:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Subtitle: lipgloss.NewStyle().Foreground(t.Subtext),
		Normal:   lipgloss.NewStyle().Foreground(t.Text),
		Muted:    lipgloss.NewStyle().Foreground(t.Muted),
		Bold:     lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(t.Red),
		Success:  lipgloss.NewStyle().Foreground(t.Green),
		Warning:  lipgloss.NewStyle().Foreground(t.Yellow),
		URL:      lipgloss.NewStyle().Foreground(t.Blue).Underline(true),
		Key:      lipgloss.NewStyle().Foreground(t.Accent),
		Value:    lipgloss.NewStyle().Foreground(t.Text),
		Hint:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true),

		Header: lipgloss.NewStyle().Foreground(t.Subtext).Bold(true),
		Selected: lipgloss.NewStyle().
			Background(t.Surface).
			Foreground(t.Text),
		Cursor: lipgloss.NewStyle().
			Background(t.Overlay).
			Foreground(t.Text),

		PageActive: lipgloss.NewStyle().
			Background(t.Accent).
			Foreground(t.Base).
			Bold(true).
			Padding(0, 1),
		PageButton:   lipgloss.NewStyle().Foreground(t.Text).Padding(0, 1),
		PageDisabled: lipgloss.NewStyle().Foreground(t.Muted).Padding(0, 1),

		Label:        lipgloss.NewStyle().Foreground(t.Subtext),
		LabelFocused: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		FieldError:   lipgloss.NewStyle().Foreground(t.Red).Italic(true),

		StatusBar: lipgloss.NewStyle().
			Background(t.Surface).
			Foreground(t.Text).
			Padding(0, 1),
		StatusMode: lipgloss.NewStyle().
			Background(t.Accent).
			Foreground(t.Base).
			Bold(true).
			Padding(0, 1),
		ToastInfo: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Green).
			Foreground(t.Text).
			Padding(0, 1),
		ToastError: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Red).
			Foreground(t.Red).
			Padding(0, 1),
	}
}

// MethodStyle returns the style for an HTTP method.
func (s Styles) MethodStyle(m tracker.Method) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.Theme.MethodColor(m)).Bold(true)
}

// CodeStyle returns the style for a recorded status code.
func (s Styles) CodeStyle(code *int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.Theme.StatusColor(code))
}

// HealthStyle colors the active/inactive column.
func (s Styles) HealthStyle(active bool) lipgloss.Style {
	if active {
		return s.Success
	}
	return s.Error
}

// Chart returns the bar chart styles for this theme.
func (s Styles) Chart() chart.Styles {
	return chart.Styles{
		Label: s.Muted,
		Bar:   lipgloss.NewStyle().Foreground(s.Theme.Teal),
		Fail:  lipgloss.NewStyle().Foreground(s.Theme.Red),
		Value: s.Subtitle,
	}
}
