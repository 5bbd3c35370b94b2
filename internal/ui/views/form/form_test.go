package form

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

func newForm() Model {
	m := New(theme.NewStyles(theme.Default()))
	m.SetSize(80, 40)
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(runes(string(r)))
	}
	return m
}

func send(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

func submitMsg(t *testing.T, m Model) (Model, tea.Msg) {
	t.Helper()
	m, cmd := m.Update(key(tea.KeyCtrlS))
	if cmd == nil {
		t.Fatal("ctrl+s produced no command")
	}
	return m, cmd()
}

func TestAddFormBuildsPayload(t *testing.T) {
	m := newForm()
	if !m.Editing() {
		t.Fatal("endpoint field should capture keys on open")
	}
	m = typeText(m, " https://api.example.com/orders ")

	// method: shift+tab back to the selector, step to POST
	m = send(m, key(tea.KeyShiftTab), key(tea.KeyRight))

	// params: tab twice, add a row
	m = send(m, key(tea.KeyTab), key(tea.KeyTab), runes("a"))
	m = typeText(m, "limit")
	m = send(m, key(tea.KeyTab))
	m = typeText(m, "10")
	m = send(m, key(tea.KeyEnter))

	// body
	m = send(m, key(tea.KeyTab), key(tea.KeyTab))
	m = typeText(m, `{"a":1}`)

	m, msg := submitMsg(t, m)
	sub, ok := msg.(msgs.SubmitEndpointMsg)
	if !ok {
		t.Fatalf("msg = %#v", msg)
	}
	p := sub.Payload
	if sub.ID != "" || p.Endpoint != "https://api.example.com/orders" || p.Method != tracker.MethodPOST {
		t.Errorf("payload = %+v", sub)
	}
	if p.Params["limit"] != "10" || len(p.Headers) != 0 || p.Body != `{"a":1}` {
		t.Errorf("payload maps/body = %+v", p)
	}
	if !strings.Contains(m.View(), "Saving…") {
		t.Error("submitting state not shown")
	}
	if _, cmd := m.Update(key(tea.KeyCtrlS)); cmd != nil {
		t.Error("double submit while in flight")
	}
}

func TestEditFormLoadsEndpoint(t *testing.T) {
	m := newForm()
	m.Edit(tracker.Endpoint{
		ID:       "e9",
		Endpoint: "https://x.example.com",
		Method:   tracker.MethodPUT,
		Headers:  map[string]string{"B": "2", "A": "1"},
		Params:   map[string]string{"q": "v"},
		Body:     "raw",
	})
	if m.ID() != "e9" || !strings.Contains(m.View(), "Edit API") {
		t.Fatal("not in edit mode")
	}
	if strings.Contains(m.View(), "From file") {
		t.Error("edit form offers file import")
	}

	_, msg := submitMsg(t, m)
	sub := msg.(msgs.SubmitEndpointMsg)
	if sub.ID != "e9" || sub.Payload.Method != tracker.MethodPUT || sub.Payload.Headers["A"] != "1" || sub.Payload.Params["q"] != "v" || sub.Payload.Body != "raw" {
		t.Errorf("update payload = %+v", sub)
	}

	m.ShowImport()
	if m.Tab() != TabManual {
		t.Error("edit form switched to import")
	}
}

func TestFieldErrorsRendered(t *testing.T) {
	m := newForm()
	m, _ = submitMsg(t, m)
	m.SetFieldErrors(map[string]string{"endpoint": tracker.MsgEndpointRequired, "params": tracker.MsgParamsRequired})
	view := m.View()
	if !strings.Contains(view, tracker.MsgEndpointRequired) || !strings.Contains(view, tracker.MsgParamsRequired) {
		t.Error("field errors not rendered")
	}
	if strings.Contains(view, "Saving…") {
		t.Error("still submitting after errors")
	}
}

func TestImportTab(t *testing.T) {
	m := newForm()
	m, _ = m.Update(key(tea.KeyCtrlT))
	if m.Tab() != TabImport {
		t.Fatal("ctrl+t did not open the import tab")
	}
	m = typeText(m, "apis.json")
	_, msg := submitMsg(t, m)
	if msg != (msgs.ImportFileMsg{Path: "apis.json"}) {
		t.Errorf("msg = %#v", msg)
	}

	m.SetFieldErrors(map[string]string{"file": tracker.MsgFileRequired})
	if !strings.Contains(m.View(), tracker.MsgFileRequired) {
		t.Error("file error not shown")
	}

	m, _ = m.Update(key(tea.KeyCtrlT))
	if m.Tab() != TabManual {
		t.Error("ctrl+t did not return to manual entry")
	}
}

func TestEscCancels(t *testing.T) {
	m := newForm()
	_, cmd := m.Update(key(tea.KeyEsc))
	if cmd == nil || cmd() != (msgs.BackMsg{}) {
		t.Error("esc should go back")
	}
}

func TestResetClearsForm(t *testing.T) {
	m := newForm()
	m = typeText(m, "https://a")
	m.SetFieldErrors(map[string]string{"endpoint": "bad"})
	m.Reset()
	if p := m.Payload(); p.Endpoint != "" || p.Method != tracker.MethodGET {
		t.Errorf("after reset %+v", p)
	}
	if strings.Contains(m.View(), "bad") {
		t.Error("errors survived reset")
	}
}

func TestStepMethodWraps(t *testing.T) {
	if got := stepMethod(tracker.MethodGET, -1); got != tracker.MethodDELETE {
		t.Errorf("GET-1 = %s", got)
	}
	if got := stepMethod(tracker.MethodDELETE, 1); got != tracker.MethodGET {
		t.Errorf("DELETE+1 = %s", got)
	}
}
