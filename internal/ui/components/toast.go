package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/apitrack/internal/ui/theme"
)

const defaultToastDuration = 3 * time.Second

// toastDismissMsg dismisses the toast shown with the same id.
type toastDismissMsg struct {
	id int
}

// Toast is an auto-dismiss notification.
type Toast struct {
	Visible bool
	text    string
	isError bool
	id      int
	styles  theme.Styles
}

// NewToast creates a new toast component.
func NewToast(s theme.Styles) Toast {
	return Toast{styles: s}
}

// Show displays a toast message and returns a Cmd for auto-dismiss. A newer
// toast is not dismissed by the timer of an older one.
func (m *Toast) Show(text string, isError bool, duration time.Duration) tea.Cmd {
	m.Visible = true
	m.text = text
	m.isError = isError
	m.id++
	if duration <= 0 {
		duration = defaultToastDuration
		if isError {
			duration = 5 * time.Second
		}
	}
	id := m.id
	return tea.Tick(duration, func(time.Time) tea.Msg {
		return toastDismissMsg{id: id}
	})
}

// Text is the current message.
func (m Toast) Text() string { return m.text }

// IsError reports whether the current message is an error.
func (m Toast) IsError() bool { return m.isError }

// Update implements tea.Model.
func (m Toast) Update(msg tea.Msg) (Toast, tea.Cmd) {
	if d, ok := msg.(toastDismissMsg); ok && d.id == m.id {
		m.Visible = false
		m.text = ""
	}
	return m, nil
}

// View renders the toast notification.
func (m Toast) View() string {
	if !m.Visible || m.text == "" {
		return ""
	}
	if m.isError {
		return m.styles.ToastError.Render(m.text)
	}
	return m.styles.ToastInfo.Render(m.text)
}
