// Package login is the credential screen shown before any API call.
package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

// Func exchanges credentials for a session.
type Func func(ctx context.Context, username, password string) error

const requiredMsg = "This field is required."

type resultMsg struct {
	username string
	err      error
}

// Model is the login form.
type Model struct {
	ctx    context.Context
	login  Func
	styles theme.Styles

	username textinput.Model
	password textinput.Model
	focus    int

	pending     bool
	message     string
	fieldErrors map[string]string
	apiURL      string

	width, height int
}

// New creates the login form for the backend at apiURL.
func New(ctx context.Context, login Func, apiURL string, s theme.Styles) Model {
	user := textinput.New()
	user.Prompt = ""
	user.Placeholder = "username"
	user.CharLimit = 150
	user.Focus()

	pass := textinput.New()
	pass.Prompt = ""
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128

	return Model{
		ctx:      ctx,
		login:    login,
		styles:   s,
		username: user,
		password: pass,
		apiURL:   apiURL,
	}
}

// SetSize sets the available area.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	inputW := min(max(w/3, 20), 40)
	m.username.Width = inputW
	m.password.Width = inputW
}

// SetMessage shows a banner above the form, e.g. after a session expired.
func (m *Model) SetMessage(text string) { m.message = text }

// SetStyles applies a new theme.
func (m *Model) SetStyles(s theme.Styles) { m.styles = s }

// Reset clears the password and any errors, keeping the username.
func (m *Model) Reset() {
	m.password.SetValue("")
	m.fieldErrors = nil
	m.pending = false
}

// Pending reports whether a login request is in flight.
func (m Model) Pending() bool { return m.pending }

// Init focuses the username field.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.pending = false
		if msg.err == nil {
			m.message = ""
			m.fieldErrors = nil
			m.password.SetValue("")
			name := msg.username
			return m, func() tea.Msg { return msgs.LoggedInMsg{Username: name} }
		}
		m.fieldErrors = tracker.FieldErrors(msg.err)
		if len(m.fieldErrors) == 0 {
			m.message = tracker.UserMessage(msg.err)
		} else {
			m.message = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.pending {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down", "shift+tab", "up":
			return m.toggleFocus()
		case "enter":
			if m.focus == 0 && m.password.Value() == "" {
				return m.toggleFocus()
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) toggleFocus() (Model, tea.Cmd) {
	m.focus = 1 - m.focus
	if m.focus == 0 {
		m.password.Blur()
		return m, m.username.Focus()
	}
	m.username.Blur()
	return m, m.password.Focus()
}

func (m Model) submit() (Model, tea.Cmd) {
	user := strings.TrimSpace(m.username.Value())
	pass := m.password.Value()

	m.fieldErrors = map[string]string{}
	if user == "" {
		m.fieldErrors["username"] = requiredMsg
	}
	if pass == "" {
		m.fieldErrors["password"] = requiredMsg
	}
	if len(m.fieldErrors) > 0 {
		return m, nil
	}
	m.fieldErrors = nil
	m.pending = true

	ctx, login := m.ctx, m.login
	return m, func() tea.Msg {
		return resultMsg{username: user, err: login(ctx, user, pass)}
	}
}

// View renders the form centered in the available area.
func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Sign in") + "\n")
	b.WriteString(s.Muted.Render(m.apiURL) + "\n\n")
	if m.message != "" {
		b.WriteString(s.Error.Render(m.message) + "\n\n")
	}

	field := func(idx int, label, key string, in textinput.Model) {
		ls := s.Label
		if m.focus == idx {
			ls = s.LabelFocused
		}
		b.WriteString(ls.Render(label) + "\n")
		b.WriteString(in.View() + "\n")
		if e := m.fieldErrors[key]; e != "" {
			b.WriteString(s.FieldError.Render(e) + "\n")
		}
		b.WriteString("\n")
	}
	field(0, "Username", "username", m.username)
	field(1, "Password", "password", m.password)

	if m.pending {
		b.WriteString(s.Hint.Render("Signing in…"))
	} else {
		b.WriteString(s.Hint.Render("enter: sign in  tab: next field  ctrl+c: quit"))
	}

	box := s.Panel.Render(b.String())
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
