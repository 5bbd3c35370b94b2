// Package form adds and edits tracked APIs, by hand or from a file.
package form

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/ui/components"
	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

// Tab selects how endpoints are entered.
type Tab int

const (
	TabManual Tab = iota
	TabImport
)

type field int

const (
	fieldMethod field = iota
	fieldEndpoint
	fieldParams
	fieldHeaders
	fieldBody
	fieldCount
)

// Model is the add/edit form.
type Model struct {
	styles theme.Styles

	id     string
	tab    Tab
	focus  field
	method tracker.Method

	endpoint textinput.Model
	params   components.KVTable
	headers  components.KVTable
	body     textarea.Model
	file     textinput.Model

	fieldErrors map[string]string
	submitting  bool

	width, height int
}

// New creates an empty add form.
func New(s theme.Styles) Model {
	endpoint := textinput.New()
	endpoint.Prompt = ""
	endpoint.Placeholder = "https://api.example.com/health"
	endpoint.CharLimit = 2048

	body := textarea.New()
	body.Placeholder = "Request body..."
	body.ShowLineNumbers = false
	body.CharLimit = 0
	body.SetHeight(5)

	file := textinput.New()
	file.Prompt = ""
	file.Placeholder = "./apis.json"
	file.CharLimit = 1024

	m := Model{
		styles:   s,
		endpoint: endpoint,
		params:   components.NewKVTable(s),
		headers:  components.NewKVTable(s),
		body:     body,
		file:     file,
	}
	m.Reset()
	return m
}

// SetSize sets the available area.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	inner := max(w-4, 20)
	m.endpoint.Width = inner
	m.file.Width = inner
	m.params.SetSize(inner)
	m.headers.SetSize(inner)
	m.body.SetWidth(inner)
	m.body.SetHeight(max(min(h-20, 12), 3))
}

// Reset clears the form for adding a new endpoint.
func (m *Model) Reset() {
	m.id = ""
	m.tab = TabManual
	m.method = tracker.MethodGET
	m.endpoint.SetValue("")
	m.params.SetPairs(nil)
	m.headers.SetPairs(nil)
	m.body.SetValue("")
	m.file.SetValue("")
	m.fieldErrors = nil
	m.submitting = false
	m.setFocus(fieldEndpoint)
}

// Edit loads e for updating.
func (m *Model) Edit(e tracker.Endpoint) {
	m.Reset()
	m.id = e.ID
	m.method = e.Method
	if !m.method.Valid() {
		m.method = tracker.MethodGET
	}
	m.endpoint.SetValue(e.Endpoint)
	m.endpoint.CursorEnd()
	m.params.SetMap(e.Params)
	m.headers.SetMap(e.Headers)
	m.body.SetValue(e.Body)
}

// ShowImport switches an add form to the file tab.
func (m *Model) ShowImport() {
	if m.id != "" {
		return
	}
	m.tab = TabImport
	m.fieldErrors = nil
	m.endpoint.Blur()
	m.body.Blur()
	m.file.Focus()
}

// ID is the endpoint being edited, empty when adding.
func (m Model) ID() string { return m.id }

// Tab is the active entry mode.
func (m Model) Tab() Tab { return m.tab }

// SetStyles applies a new theme, keeping the rows entered so far.
func (m *Model) SetStyles(s theme.Styles) {
	m.styles = s
	params, headers := components.NewKVTable(s), components.NewKVTable(s)
	params.SetPairs(m.params.GetPairs())
	headers.SetPairs(m.headers.GetPairs())
	m.params, m.headers = params, headers
	m.SetSize(m.width, m.height)
	if m.tab == TabManual {
		m.setFocus(m.focus)
	}
}

// SetFieldErrors shows server or local validation messages inline.
func (m *Model) SetFieldErrors(errs map[string]string) {
	m.fieldErrors = errs
	m.submitting = false
}

// SetSubmitting marks a request as in flight.
func (m *Model) SetSubmitting(v bool) { m.submitting = v }

// Editing reports whether keystrokes go to a text field.
func (m Model) Editing() bool {
	if m.tab == TabImport {
		return true
	}
	switch m.focus {
	case fieldEndpoint, fieldBody:
		return true
	case fieldParams:
		return m.params.Editing()
	case fieldHeaders:
		return m.headers.Editing()
	}
	return false
}

// Payload builds the create/update body from the form.
func (m Model) Payload() tracker.Payload {
	return tracker.Payload{
		Endpoint: strings.TrimSpace(m.endpoint.Value()),
		Method:   m.method,
		Headers:  m.headers.Map(),
		Params:   m.params.Map(),
		Body:     m.body.Value(),
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.forward(msg)
	}
	if m.submitting {
		return m, nil
	}

	switch key.String() {
	case "ctrl+s":
		return m.submit()
	case "ctrl+t":
		if m.id == "" {
			if m.tab == TabManual {
				m.ShowImport()
			} else {
				m.tab = TabManual
				m.file.Blur()
				m.setFocus(fieldEndpoint)
			}
		}
		return m, nil
	}

	if m.tab == TabImport {
		if key.String() == "esc" {
			return m, back
		}
		var cmd tea.Cmd
		m.file, cmd = m.file.Update(key)
		return m, cmd
	}

	kvEditing := (m.focus == fieldParams && m.params.Editing()) ||
		(m.focus == fieldHeaders && m.headers.Editing())
	if !kvEditing {
		switch key.String() {
		case "tab", "down":
			if key.String() == "tab" || m.focus != fieldBody {
				m.setFocus((m.focus + 1) % fieldCount)
				return m, nil
			}
		case "shift+tab", "up":
			if key.String() == "shift+tab" || m.focus != fieldBody {
				m.setFocus((m.focus + fieldCount - 1) % fieldCount)
				return m, nil
			}
		case "esc":
			return m, back
		}
	}

	switch m.focus {
	case fieldMethod:
		switch key.String() {
		case "left", "h":
			m.method = stepMethod(m.method, -1)
		case "right", "l", " ", "enter":
			m.method = stepMethod(m.method, 1)
		}
		return m, nil
	case fieldEndpoint:
		if key.String() == "enter" {
			m.setFocus(fieldParams)
			return m, nil
		}
	}
	return m.forward(key)
}

func (m Model) forward(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.tab == TabImport {
		m.file, cmd = m.file.Update(msg)
		return m, cmd
	}
	switch m.focus {
	case fieldEndpoint:
		m.endpoint, cmd = m.endpoint.Update(msg)
	case fieldParams:
		m.params, cmd = m.params.Update(msg)
	case fieldHeaders:
		m.headers, cmd = m.headers.Update(msg)
	case fieldBody:
		m.body, cmd = m.body.Update(msg)
	}
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	m.params.Blur()
	m.headers.Blur()
	if m.focus == fieldParams {
		m.params.Focus()
	}
	if m.focus == fieldHeaders {
		m.headers.Focus()
	}
	m.fieldErrors = nil
	m.submitting = true

	if m.tab == TabImport {
		path := strings.TrimSpace(m.file.Value())
		return m, func() tea.Msg { return msgs.ImportFileMsg{Path: path} }
	}
	id, p := m.id, m.Payload()
	return m, func() tea.Msg { return msgs.SubmitEndpointMsg{ID: id, Payload: p} }
}

func (m *Model) setFocus(f field) {
	m.focus = f
	m.endpoint.Blur()
	m.body.Blur()
	m.params.Blur()
	m.headers.Blur()
	switch f {
	case fieldEndpoint:
		m.endpoint.Focus()
	case fieldParams:
		m.params.Focus()
	case fieldHeaders:
		m.headers.Focus()
	case fieldBody:
		m.body.Focus()
	}
}

func stepMethod(cur tracker.Method, delta int) tracker.Method {
	n := len(tracker.Methods)
	for i, m := range tracker.Methods {
		if m == cur {
			return tracker.Methods[(i+delta+n)%n]
		}
	}
	return tracker.MethodGET
}

func back() tea.Msg { return msgs.BackMsg{} }

// View renders the form.
func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	title := "Add API"
	if m.id != "" {
		title = "Edit API"
	}
	b.WriteString(s.Title.Render(title))
	if m.id == "" {
		manual, file := s.Muted, s.Muted
		if m.tab == TabManual {
			manual = s.Bold
		} else {
			file = s.Bold
		}
		b.WriteString("   " + manual.Render("Manual") + s.Muted.Render(" │ ") + file.Render("From file"))
	}
	b.WriteString("\n\n")

	if m.tab == TabImport {
		b.WriteString(s.LabelFocused.Render("JSON, YAML or curl file") + "\n")
		b.WriteString(m.file.View() + "\n")
		m.writeError(&b, "file")
		b.WriteString("\n" + m.hint("ctrl+s: import  ctrl+t: manual entry  esc: cancel"))
		return b.String()
	}

	m.label(&b, fieldMethod, "Request type")
	var methods []string
	for _, meth := range tracker.Methods {
		if meth == m.method {
			methods = append(methods, s.MethodStyle(meth).Bold(true).Render("["+string(meth)+"]"))
		} else {
			methods = append(methods, s.Muted.Render(" "+string(meth)+" "))
		}
	}
	b.WriteString(strings.Join(methods, " ") + "\n")
	m.writeError(&b, "method")

	m.label(&b, fieldEndpoint, "API Endpoint")
	b.WriteString(m.endpoint.View() + "\n")
	m.writeError(&b, "endpoint")

	m.label(&b, fieldParams, "Parameters")
	b.WriteString(m.params.View() + "\n")
	m.writeError(&b, "params")

	m.label(&b, fieldHeaders, "Headers")
	b.WriteString(m.headers.View() + "\n")
	m.writeError(&b, "headers")

	m.label(&b, fieldBody, "Body")
	b.WriteString(m.body.View() + "\n")
	m.writeError(&b, "body")

	help := "tab: next field  ctrl+s: save  esc: cancel"
	if m.id == "" {
		help += "  ctrl+t: from file"
	}
	b.WriteString("\n" + m.hint(help))
	return b.String()
}

func (m Model) label(b *strings.Builder, f field, text string) {
	st := m.styles.Label
	if m.focus == f {
		st = m.styles.LabelFocused
	}
	b.WriteString(st.Render(text) + "\n")
}

func (m Model) writeError(b *strings.Builder, key string) {
	if e := m.fieldErrors[key]; e != "" {
		b.WriteString(m.styles.FieldError.Render(e) + "\n")
	}
}

func (m Model) hint(text string) string {
	if m.submitting {
		return m.styles.Hint.Render("Saving…")
	}
	return m.styles.Hint.Render(text)
}
