package loadtest

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/apitrack/internal/mutation"
	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newModel(c *clock) Model {
	m := New(theme.NewStyles(theme.Default()), c.now)
	m.SetSize(100, 40)
	m.Open("e1", "https://api.example.com")
	return m
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// findRun returns the RunLoadTestMsg in cmd's batch without running the
// spinner tick.
func findRun(t *testing.T, cmd tea.Cmd) msgs.RunLoadTestMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("no command")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("expected a batch")
	}
	for _, c := range batch {
		if c == nil {
			continue
		}
		if run, ok := c().(msgs.RunLoadTestMsg); ok {
			return run
		}
	}
	t.Fatal("no RunLoadTestMsg in batch")
	return msgs.RunLoadTestMsg{}
}

func TestDefaultsAndStart(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	m := newModel(c)

	req, errs := m.Request()
	if errs != nil || req != (tracker.LoadTestRequest{Users: DefaultUsers, Duration: DefaultDuration}) {
		t.Fatalf("defaults = %+v, %v", req, errs)
	}

	m, cmd := m.Update(key(tea.KeyEnter))
	run := findRun(t, cmd)
	if run.ID != "e1" || run.Request.Users != 10 {
		t.Errorf("run = %+v", run)
	}
	if !m.Running() {
		t.Fatal("not running")
	}

	c.t = c.t.Add(75 * time.Second)
	if !strings.Contains(m.View(), "1m15s elapsed") {
		t.Errorf("elapsed not shown: %q", m.View())
	}
	if _, cmd := m.Update(key(tea.KeyEnter)); cmd != nil {
		t.Error("second start while running")
	}
}

func TestInvalidInputs(t *testing.T) {
	m := newModel(&clock{})
	m, _ = m.Update(key(tea.KeyBackspace))
	m, _ = m.Update(key(tea.KeyBackspace))
	m, _ = m.Update(runes("x"))
	m, cmd := m.Update(key(tea.KeyEnter))
	if cmd != nil || m.Running() {
		t.Fatal("started with invalid users")
	}
	if !strings.Contains(m.View(), "Number of users must be a positive number.") {
		t.Error("users error not shown")
	}
}

func TestResultRendered(t *testing.T) {
	m := newModel(&clock{})
	m, _ = m.Update(key(tea.KeyEnter))

	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	res := tracker.LoadTestResult{
		UserCount: 10, Duration: 2,
		MinResponseTime: 0.1, MaxResponseTime: 0.9, AvgResponseTime: 0.4567,
		Responses: []tracker.LoadTestSample{
			{GroupStartTime: base, ResponseTime: 0.2, StatusCode: 200},
			{GroupStartTime: base.Add(time.Second), ResponseTime: 0.9, StatusCode: 500},
		},
	}

	m, _ = m.Update(msgs.LoadTestDoneMsg{ID: "other", Result: res})
	if !m.Running() {
		t.Fatal("result for another endpoint was applied")
	}

	m, _ = m.Update(msgs.LoadTestDoneMsg{ID: "e1", Result: res})
	if m.Running() || m.Result() == nil {
		t.Fatal("result not applied")
	}
	view := m.View()
	for _, want := range []string{"0.457s", "0.100s", "0.900s", "Response time per second", "2 min"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.Open("e1", "https://api.example.com")
	if m.Result() == nil {
		t.Error("reopening the same endpoint dropped the result")
	}
	m.Open("e2", "https://other")
	if m.Result() != nil {
		t.Error("result kept for a different endpoint")
	}
}

func TestFailedRunShowsFieldErrors(t *testing.T) {
	m := newModel(&clock{})
	m, _ = m.Update(key(tea.KeyEnter))
	m, _ = m.Update(msgs.LoadTestDoneMsg{ID: "e1", Outcome: mutation.Outcome{
		Err:         errors.New("bad"),
		FieldErrors: map[string]string{"numUsers": "Number of users must be at most 100."},
	}})
	if m.Running() || m.Result() != nil {
		t.Fatal("state after failure")
	}
	if !strings.Contains(m.View(), "at most 100") {
		t.Error("server field error not shown")
	}
}

func TestEscGoesBack(t *testing.T) {
	m := newModel(&clock{})
	_, cmd := m.Update(key(tea.KeyEsc))
	if cmd == nil || cmd() != (msgs.BackMsg{}) {
		t.Error("esc should go back")
	}
}
