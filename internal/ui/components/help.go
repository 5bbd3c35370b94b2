package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

type helpSection struct {
	Title    string
	Bindings []helpBinding
}

type helpBinding struct {
	Key  string
	Desc string
}

var helpSections = []helpSection{
	{
		Title: "General",
		Bindings: []helpBinding{
			{"Ctrl+C", "Quit"},
			{"Ctrl+K", "Open command palette"},
			{"?", "Toggle this help"},
			{"Esc", "Back / leave input"},
			{"Ctrl+L", "Log out"},
			{"q", "Quit from the API list"},
		},
	},
	{
		Title: "API list",
		Bindings: []helpBinding{
			{"j / k", "Move cursor down / up"},
			{"h / l", "Previous / next page"},
			{"g / G", "First / last page"},
			{"Enter", "Open details"},
			{"f", "Jump to a row"},
			{"/", "Search this page (Enter applies on the server)"},
			{"F", "Edit filters (method, status, code)"},
			{"X", "Clear search and filters"},
			{"s / o", "Cycle sort column / flip order"},
			{"z", "Cycle rows per page (5, 10, 25)"},
			{"P", "Pick rows per page"},
			{"a / I", "Add API / add from file"},
			{"e / d", "Edit / delete selected"},
			{"x", "Hit selected API"},
			{"t", "Load test selected API"},
			{"r", "Refresh"},
		},
	},
	{
		Title: "Details",
		Bindings: []helpBinding{
			{"x", "Hit API"},
			{"e / d", "Edit / delete"},
			{"t", "Load test"},
			{"y", "Copy as cURL"},
			{"h / l", "Previous / next log page"},
			{"s / o", "Cycle log sort / flip order"},
			{"r", "Refresh"},
		},
	},
	{
		Title: "Forms",
		Bindings: []helpBinding{
			{"Tab / Shift+Tab", "Next / previous field"},
			{"Ctrl+S", "Submit"},
			{"Ctrl+T", "Switch between manual entry and file import"},
			{"a / d", "Add / delete header or param row"},
			{"Enter", "Edit the selected cell"},
			{"← / →", "Change method"},
		},
	},
}

// Help is a help overlay showing keybindings.
type Help struct {
	Visible  bool
	viewport viewport.Model
	styles   theme.Styles
	width    int
	height   int
	ready    bool
}

// NewHelp creates a new help overlay.
func NewHelp(s theme.Styles) Help {
	return Help{styles: s}
}

// SetSize sets the terminal dimensions for centering.
func (m *Help) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.Visible {
		m.buildViewport()
	}
}

// Toggle toggles help visibility.
func (m *Help) Toggle() {
	m.Visible = !m.Visible
	if m.Visible {
		m.buildViewport()
	}
}

func (m *Help) buildViewport() {
	const boxWidth = 70
	contentWidth := boxWidth - 6

	keyStyle := m.styles.Key.Bold(true).Width(18).Align(lipgloss.Right)
	sectionStyle := m.styles.Title.MarginTop(1)
	sep := m.styles.Muted

	var lines []string
	for _, section := range helpSections {
		lines = append(lines, sectionStyle.Render(section.Title))
		lines = append(lines, sep.Render(strings.Repeat("─", contentWidth)))
		for _, b := range section.Bindings {
			lines = append(lines, keyStyle.Render(b.Key)+sep.Render(" │ ")+m.styles.Normal.Render(b.Desc))
		}
	}

	m.viewport = viewport.New(contentWidth, max(m.height-8, 10))
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.ready = true
}

// Update implements tea.Model.
func (m Help) Update(msg tea.Msg) (Help, tea.Cmd) {
	if !m.Visible {
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc", "?", "q":
			m.Visible = false
			return m, func() tea.Msg { return msgs.SetModeMsg{Mode: msgs.ModeNormal} }
		}
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the help overlay.
func (m Help) View() string {
	if !m.Visible {
		return ""
	}
	if !m.ready {
		m.buildViewport()
	}

	title := lipgloss.NewStyle().Width(64).Align(lipgloss.Center).Inherit(m.styles.Bold).Render("Keyboard Shortcuts")
	return m.styles.Modal.Width(70).Render(title + "\n\n" + m.viewport.View())
}
