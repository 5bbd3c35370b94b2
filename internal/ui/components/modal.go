package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

// Modal is a confirm dialog. Cancel is focused first so a stray enter never
// confirms a destructive action.
type Modal struct {
	Visible     bool
	Title       string
	Message     string
	ConfirmText string
	onConfirm   tea.Msg
	focusOK     bool
	styles      theme.Styles
}

// NewModal creates a new modal dialog.
func NewModal(s theme.Styles) Modal {
	return Modal{styles: s}
}

// Show displays the modal. onConfirm is emitted when the user confirms.
func (m *Modal) Show(title, message, confirmText string, onConfirm tea.Msg) {
	if confirmText == "" {
		confirmText = "OK"
	}
	m.Visible = true
	m.Title = title
	m.Message = message
	m.ConfirmText = confirmText
	m.onConfirm = onConfirm
	m.focusOK = false
}

func (m *Modal) close() tea.Cmd {
	m.Visible = false
	return func() tea.Msg { return msgs.SetModeMsg{Mode: msgs.ModeNormal} }
}

// Update implements tea.Model.
func (m Modal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	if !m.Visible {
		return m, nil
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "esc", "n":
		return m, m.close()
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.focusOK = !m.focusOK
	case "y":
		m.focusOK = true
		fallthrough
	case "enter":
		mode := m.close()
		if m.focusOK && m.onConfirm != nil {
			confirm := m.onConfirm
			return m, tea.Batch(mode, func() tea.Msg { return confirm })
		}
		return m, mode
	}
	return m, nil
}

// View renders the modal dialog.
func (m Modal) View() string {
	if !m.Visible {
		return ""
	}

	const boxWidth = 50
	t := m.styles.Theme

	center := lipgloss.NewStyle().Width(boxWidth - 4).Align(lipgloss.Center)
	button := lipgloss.NewStyle().Padding(0, 3)
	idle := button.Background(t.Surface).Foreground(t.Subtext)

	ok, cancel := idle, idle
	if m.focusOK {
		ok = button.Background(t.Red).Foreground(t.Base).Bold(true)
	} else {
		cancel = button.Background(t.Accent).Foreground(t.Base).Bold(true)
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		cancel.Render("Cancel"),
		"  ",
		ok.Render(m.ConfirmText),
	)

	content := center.Inherit(m.styles.Bold).Render(m.Title) + "\n\n" +
		center.Inherit(m.styles.Subtitle).Render(m.Message) + "\n\n" +
		center.Render(buttons)

	return m.styles.Modal.Width(boxWidth).Render(content)
}
