package components

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

// clearStatusMsg clears a temporary status message.
type clearStatusMsg struct{}

// StatusBar is a full-width bottom status bar.
type StatusBar struct {
	mode      msgs.AppMode
	message   string
	user      string
	apiURL    string
	loading   bool
	refreshed time.Time
	now       func() time.Time
	width     int
	styles    theme.Styles
}

// NewStatusBar creates a new status bar.
func NewStatusBar(s theme.Styles) StatusBar {
	return StatusBar{
		styles: s,
		mode:   msgs.ModeNormal,
		now:    time.Now,
	}
}

// SetMode sets the current app mode.
func (m *StatusBar) SetMode(mode msgs.AppMode) { m.mode = mode }

// Mode returns the current app mode.
func (m StatusBar) Mode() msgs.AppMode { return m.mode }

// SetWidth sets the available width.
func (m *StatusBar) SetWidth(w int) { m.width = w }

// SetMessage sets a status message until it is replaced or cleared.
func (m *StatusBar) SetMessage(text string) { m.message = text }

// Message returns the current status message.
func (m StatusBar) Message() string { return m.message }

// ClearAfter returns a Cmd clearing the message after d.
func (m StatusBar) ClearAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// SetSession sets the user and backend shown on the right.
func (m *StatusBar) SetSession(user, apiURL string) {
	m.user = user
	m.apiURL = apiURL
}

// SetLoading toggles the loading indicator.
func (m *StatusBar) SetLoading(v bool) { m.loading = v }

// MarkRefreshed records when data was last loaded.
func (m *StatusBar) MarkRefreshed(t time.Time) { m.refreshed = t }

// Update implements tea.Model.
func (m StatusBar) Update(msg tea.Msg) (StatusBar, tea.Cmd) {
	if _, ok := msg.(clearStatusMsg); ok {
		m.message = ""
	}
	return m, nil
}

// View renders the status bar.
func (m StatusBar) View() string {
	t := m.styles.Theme
	bg := lipgloss.NewStyle().Background(t.Surface)

	left := m.styles.StatusMode.Render(m.mode.String())
	switch {
	case m.message != "":
		left += bg.Foreground(t.Text).Render(" " + m.message)
	case m.loading:
		left += bg.Foreground(t.Yellow).Render(" loading…")
	case !m.refreshed.IsZero():
		left += bg.Foreground(t.Subtext).Render(" refreshed " + humanize.RelTime(m.refreshed, m.now(), "ago", "from now"))
	}

	var right []string
	if m.user != "" {
		right = append(right, bg.Foreground(t.Teal).Bold(true).Render(m.user))
	}
	if m.apiURL != "" {
		right = append(right, bg.Foreground(t.Muted).Render(m.apiURL))
	}
	right = append(right, bg.Foreground(t.Muted).Render("?:help  ctrl+k:command"))
	hint := strings.Join(right, bg.Render("  "))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(hint) - 1
	if gap < 1 {
		gap = 1
	}
	line := left + bg.Render(strings.Repeat(" ", gap)) + hint
	return lipgloss.NewStyle().Background(t.Surface).Width(m.width).MaxWidth(m.width).Render(line)
}
