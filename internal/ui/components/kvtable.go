package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

// KVPair is one row of a KVTable.
type KVPair struct {
	Key   string
	Value string
}

// Column identifies which column is focused.
type Column int

const (
	ColKey Column = iota
	ColValue
)

// KVTable edits header or parameter rows.
type KVTable struct {
	pairs   []KVPair
	cursor  int
	column  Column
	editing bool
	focused bool
	input   textinput.Model
	width   int
	styles  theme.Styles
}

// NewKVTable creates a table with one empty row.
func NewKVTable(styles theme.Styles) KVTable {
	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Prompt = ""

	return KVTable{
		pairs:  []KVPair{{}},
		styles: styles,
		input:  ti,
		width:  60,
	}
}

// SetPairs replaces all rows.
func (m *KVTable) SetPairs(pairs []KVPair) {
	m.pairs = append([]KVPair(nil), pairs...)
	if len(m.pairs) == 0 {
		m.pairs = []KVPair{{}}
	}
	if m.cursor >= len(m.pairs) {
		m.cursor = len(m.pairs) - 1
	}
}

// SetMap replaces all rows with the entries of kv in key order.
func (m *KVTable) SetMap(kv map[string]string) {
	pairs := make([]KVPair, 0, len(kv))
	for _, k := range tracker.SortedKeys(kv) {
		pairs = append(pairs, KVPair{Key: k, Value: kv[k]})
	}
	m.SetPairs(pairs)
}

// GetPairs returns a copy of all rows.
func (m KVTable) GetPairs() []KVPair {
	return append([]KVPair(nil), m.pairs...)
}

// Map returns the rows as a map. Rows with a blank key are dropped; a later
// row wins over an earlier one with the same key.
func (m KVTable) Map() map[string]string {
	out := make(map[string]string)
	for _, p := range m.pairs {
		k := strings.TrimSpace(p.Key)
		if k == "" {
			continue
		}
		out[k] = p.Value
	}
	return out
}

// SetSize sets the table width.
func (m *KVTable) SetSize(w int) { m.width = w }

// Focus marks the table as the active form field.
func (m *KVTable) Focus() { m.focused = true }

// Blur leaves the table, committing a cell being edited.
func (m *KVTable) Blur() {
	if m.editing {
		m.commitEdit()
		m.editing = false
	}
	m.focused = false
}

// Editing returns whether a cell is being edited.
func (m KVTable) Editing() bool { return m.editing }

// Update implements tea.Model.
func (m KVTable) Update(msg tea.Msg) (KVTable, tea.Cmd) {
	if m.editing {
		return m.updateEditing(msg)
	}
	return m.updateNormal(msg)
}

func (m KVTable) updateNormal(msg tea.Msg) (KVTable, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "j", "down":
		if m.cursor < len(m.pairs)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "h", "left":
		m.column = ColKey
	case "l", "right":
		m.column = ColValue
	case "enter":
		m.startEditing()
		return m, textinput.Blink
	case "a":
		m.pairs = append(m.pairs, KVPair{})
		m.cursor = len(m.pairs) - 1
		m.column = ColKey
		m.startEditing()
		return m, textinput.Blink
	case "d":
		if len(m.pairs) > 1 {
			m.pairs = append(m.pairs[:m.cursor], m.pairs[m.cursor+1:]...)
			m.cursor = min(m.cursor, len(m.pairs)-1)
		} else {
			m.pairs[0] = KVPair{}
		}
	}
	return m, nil
}

func (m KVTable) updateEditing(msg tea.Msg) (KVTable, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc", "enter":
			m.commitEdit()
			m.editing = false
			return m, nil
		case "tab":
			m.commitEdit()
			if m.column == ColKey {
				m.column = ColValue
				m.startEditing()
				return m, textinput.Blink
			}
			m.editing = false
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *KVTable) startEditing() {
	m.editing = true
	if m.column == ColKey {
		m.input.SetValue(m.pairs[m.cursor].Key)
	} else {
		m.input.SetValue(m.pairs[m.cursor].Value)
	}
	m.input.Focus()
	m.input.CursorEnd()
}

func (m *KVTable) commitEdit() {
	if m.cursor >= len(m.pairs) {
		return
	}
	if m.column == ColKey {
		m.pairs[m.cursor].Key = m.input.Value()
	} else {
		m.pairs[m.cursor].Value = m.input.Value()
	}
	m.input.Blur()
}

// View implements tea.Model.
func (m KVTable) View() string {
	const prefixW, sepW = 2, 3
	available := max(m.width-prefixW-sepW, 10)
	keyW := available * 2 / 5
	valW := available - keyW

	m.input.Width = keyW - 1
	if m.column == ColValue {
		m.input.Width = valW - 1
	}

	sep := m.styles.Muted.Render(" │ ")
	rows := make([]string, 0, len(m.pairs))
	for i, pair := range m.pairs {
		isCursor := m.focused && i == m.cursor
		prefix := "  "
		if isCursor {
			prefix = m.styles.Key.Render("› ")
		}
		key := m.cell(pair.Key, "key", keyW, isCursor, ColKey)
		val := m.cell(pair.Value, "value", valW, isCursor, ColValue)
		rows = append(rows, prefix+key+sep+val)
	}
	return strings.Join(rows, "\n")
}

func (m KVTable) cell(text, placeholder string, width int, isCursor bool, col Column) string {
	if isCursor && m.column == col {
		if m.editing {
			return PadRight(m.input.View(), width)
		}
		if text == "" {
			text = placeholder
		}
		return m.styles.Cursor.Render(PadRight(Truncate(text, width), width))
	}
	if text == "" {
		return m.styles.Muted.Render(PadRight(placeholder, width))
	}
	style := m.styles.Value
	if col == ColKey {
		style = m.styles.Key
	}
	return style.Render(PadRight(Truncate(text, width), width))
}
