package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

// JumpTarget is a row or action reachable by typing its label.
type JumpTarget struct {
	Label  string  // a-z, then aa-az, ...
	Name   string  // human-readable name
	Action tea.Msg // emitted when selected
}

// JumpOverlay manages jump-to-target navigation.
type JumpOverlay struct {
	Visible bool
	targets []JumpTarget
	typed   string
	styles  theme.Styles
}

// NewJumpOverlay creates a new jump overlay.
func NewJumpOverlay(s theme.Styles) JumpOverlay {
	return JumpOverlay{styles: s}
}

// Open activates jump mode with the given targets.
func (m *JumpOverlay) Open(targets []JumpTarget) {
	labeled := make([]JumpTarget, len(targets))
	for i, t := range targets {
		t.Label = generateLabel(i)
		labeled[i] = t
	}
	m.targets = labeled
	m.typed = ""
	m.Visible = true
}

// Close hides the jump overlay.
func (m *JumpOverlay) Close() {
	m.Visible = false
	m.targets = nil
	m.typed = ""
}

// Update handles key input during jump mode.
func (m JumpOverlay) Update(msg tea.Msg) (JumpOverlay, tea.Cmd) {
	if !m.Visible {
		return m, nil
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	normal := func() tea.Msg { return msgs.SetModeMsg{Mode: msgs.ModeNormal} }
	ch := km.String()
	if ch == "esc" || len(ch) != 1 || ch[0] < 'a' || ch[0] > 'z' {
		m.Close()
		return m, normal
	}

	m.typed += ch
	var matching []JumpTarget
	for _, t := range m.targets {
		if strings.HasPrefix(t.Label, m.typed) {
			matching = append(matching, t)
		}
	}
	switch len(matching) {
	case 0:
		m.Close()
		return m, normal
	case 1:
		action := matching[0].Action
		m.Close()
		return m, tea.Batch(normal, func() tea.Msg { return action })
	}
	return m, nil
}

// View renders the jump target labels.
func (m JumpOverlay) View() string {
	if !m.Visible || len(m.targets) == 0 {
		return ""
	}

	t := m.styles.Theme
	labelStyle := lipgloss.NewStyle().Foreground(t.Base).Background(t.Yellow).Bold(true).Padding(0, 1)

	var lines []string
	for _, target := range m.targets {
		if m.typed != "" && !strings.HasPrefix(target.Label, m.typed) {
			continue
		}
		lines = append(lines, "  "+labelStyle.Render(target.Label)+" "+m.styles.Normal.Render(Truncate(target.Name, 50)))
	}

	content := m.styles.Bold.Render("Jump to:") + "\n\n" + strings.Join(lines, "\n")
	return m.styles.Modal.BorderForeground(t.Yellow).Render(content)
}

// generateLabel creates a label for the given index: a-z, then aa-az, ba-bz, etc.
func generateLabel(idx int) string {
	if idx < 26 {
		return string(rune('a' + idx))
	}
	idx -= 26
	return string(rune('a'+idx/26)) + string(rune('a'+idx%26))
}
