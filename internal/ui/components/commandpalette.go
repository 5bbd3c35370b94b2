package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

// Command is an entry in the palette.
type Command struct {
	Name     string
	Shortcut string
	Msg      tea.Msg
}

const (
	paletteWidth    = 60
	paletteMaxItems = 12
)

// CommandPalette is a fuzzy command palette overlay.
type CommandPalette struct {
	Visible  bool
	input    textinput.Model
	commands []Command
	filtered []Command
	cursor   int
	styles   theme.Styles
}

// NewCommandPalette creates a new command palette.
func NewCommandPalette(s theme.Styles) CommandPalette {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = paletteWidth - 6

	return CommandPalette{
		input:  ti,
		styles: s,
	}
}

// Open shows the palette with the given commands.
func (m *CommandPalette) Open(commands []Command) {
	m.open(commands, "Type a command...")
}

// OpenPicker shows the palette as a picker: each choice emits pick(choice).
func (m *CommandPalette) OpenPicker(placeholder string, choices []string, pick func(string) tea.Msg) {
	cmds := make([]Command, len(choices))
	for i, c := range choices {
		cmds[i] = Command{Name: c, Msg: pick(c)}
	}
	m.open(cmds, placeholder)
}

func (m *CommandPalette) open(commands []Command, placeholder string) {
	m.Visible = true
	m.commands = commands
	m.filtered = commands
	m.cursor = 0
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
}

// Close hides the command palette.
func (m *CommandPalette) Close() {
	m.Visible = false
	m.input.Blur()
}

// Filtered returns the commands matching the current query.
func (m CommandPalette) Filtered() []Command { return m.filtered }

// Update implements tea.Model.
func (m CommandPalette) Update(msg tea.Msg) (CommandPalette, tea.Cmd) {
	if !m.Visible {
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.Close()
			return m, func() tea.Msg { return msgs.SetModeMsg{Mode: msgs.ModeNormal} }
		case "enter":
			if m.cursor < len(m.filtered) {
				selected := m.filtered[m.cursor]
				m.Close()
				return m, tea.Batch(
					func() tea.Msg { return msgs.SetModeMsg{Mode: msgs.ModeNormal} },
					func() tea.Msg { return selected.Msg },
				)
			}
			return m, nil
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filter(m.input.Value())
	return m, cmd
}

func (m *CommandPalette) filter(query string) {
	if query == "" {
		m.filtered = m.commands
	} else {
		names := make([]string, len(m.commands))
		for i, c := range m.commands {
			names[i] = c.Name
		}
		matches := fuzzy.Find(query, names)
		m.filtered = make([]Command, len(matches))
		for i, match := range matches {
			m.filtered[i] = m.commands[match.Index]
		}
	}
	m.cursor = max(min(m.cursor, len(m.filtered)-1), 0)
}

// View renders the command palette overlay.
func (m CommandPalette) View() string {
	if !m.Visible {
		return ""
	}

	inner := paletteWidth - 6
	title := lipgloss.NewStyle().Width(inner).Align(lipgloss.Center).Inherit(m.styles.Bold).Render("Command Palette")

	var items []string
	for i, c := range m.filtered[:min(len(m.filtered), paletteMaxItems)] {
		name := c.Name
		if w := inner - len(c.Shortcut) - 1; lipgloss.Width(name) > w {
			name = Truncate(name, w)
		}
		gap := max(inner-lipgloss.Width(name)-len(c.Shortcut), 1)
		if i == m.cursor {
			items = append(items, m.styles.Cursor.Width(inner).Render(name+strings.Repeat(" ", gap)+c.Shortcut))
			continue
		}
		items = append(items, m.styles.Normal.Render(name)+strings.Repeat(" ", gap)+m.styles.Muted.Render(c.Shortcut))
	}
	if len(items) == 0 {
		items = append(items, m.styles.Hint.Render("No matches"))
	}

	content := title + "\n\n" + m.input.View() + "\n\n" + strings.Join(items, "\n")
	return m.styles.Modal.Width(paletteWidth).Render(content)
}
