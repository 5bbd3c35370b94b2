// Package loadtest runs a backend load test against one tracked API and
// charts the grouped response times.
package loadtest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/apitrack/internal/chart"
	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/ui/components"
	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

const (
	DefaultUsers    = 10
	DefaultDuration = 2
)

// Model is the load-test screen.
type Model struct {
	styles theme.Styles
	now    func() time.Time

	id    string
	label string

	users    textinput.Model
	duration textinput.Model
	focus    int

	running bool
	started time.Time
	spin    spinner.Model

	result      *tracker.LoadTestResult
	fieldErrors map[string]string

	width, height int
}

// New creates the screen. now may be nil.
func New(s theme.Styles, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	users := textinput.New()
	users.Prompt = ""
	users.CharLimit = 5
	users.Width = 8

	duration := textinput.New()
	duration.Prompt = ""
	duration.CharLimit = 4
	duration.Width = 8

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Key

	return Model{styles: s, now: now, users: users, duration: duration, spin: sp}
}

// SetSize sets the available area.
func (m *Model) SetSize(w, h int) { m.width, m.height = w, h }

// SetStyles applies a new theme.
func (m *Model) SetStyles(s theme.Styles) {
	m.styles = s
	m.spin.Style = s.Key
}

// Open prepares a test for the endpoint. A finished result for the same
// endpoint is kept.
func (m *Model) Open(id, label string) tea.Cmd {
	if id != m.id {
		m.result = nil
		m.running = false
	}
	m.id, m.label = id, label
	m.fieldErrors = nil
	if m.users.Value() == "" {
		m.users.SetValue(strconv.Itoa(DefaultUsers))
	}
	if m.duration.Value() == "" {
		m.duration.SetValue(strconv.Itoa(DefaultDuration))
	}
	m.focus = 0
	m.duration.Blur()
	return m.users.Focus()
}

// ID is the endpoint under test.
func (m Model) ID() string { return m.id }

// Running reports whether a test is in flight.
func (m Model) Running() bool { return m.running }

// Result is the last finished test, if any.
func (m Model) Result() *tracker.LoadTestResult { return m.result }

// Request parses the inputs. Invalid fields are reported by name.
func (m Model) Request() (tracker.LoadTestRequest, map[string]string) {
	errs := map[string]string{}
	users, err := strconv.Atoi(strings.TrimSpace(m.users.Value()))
	if err != nil || users <= 0 {
		errs["numUsers"] = "Number of users must be a positive number."
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(m.duration.Value()))
	if err != nil || minutes <= 0 {
		errs["duration"] = "Duration must be a positive number of minutes."
	}
	if len(errs) > 0 {
		return tracker.LoadTestRequest{}, errs
	}
	return tracker.LoadTestRequest{Users: users, Duration: minutes}, nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case msgs.LoadTestDoneMsg:
		if msg.ID != m.id || !m.running {
			return m, nil
		}
		m.running = false
		if msg.Outcome.OK() {
			res := msg.Result
			m.result = &res
			return m, nil
		}
		m.fieldErrors = msg.Outcome.FieldErrors
		return m, nil

	case tea.KeyMsg:
		if m.running {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return msgs.BackMsg{} }
		case "tab", "shift+tab", "up", "down":
			m.focus = 1 - m.focus
			if m.focus == 0 {
				m.duration.Blur()
				return m, m.users.Focus()
			}
			m.users.Blur()
			return m, m.duration.Focus()
		case "enter", "ctrl+s":
			return m.start()
		}
		var cmd tea.Cmd
		if m.focus == 0 {
			m.users, cmd = m.users.Update(msg)
		} else {
			m.duration, cmd = m.duration.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) start() (Model, tea.Cmd) {
	req, errs := m.Request()
	m.fieldErrors = errs
	if errs != nil {
		return m, nil
	}
	m.running = true
	m.started = m.now()
	m.result = nil
	id := m.id
	return m, tea.Batch(
		m.spin.Tick,
		func() tea.Msg { return msgs.RunLoadTestMsg{ID: id, Request: req} },
	)
}

// View renders inputs, progress and the last result.
func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Load test") + "  " + s.URL.Render(m.label) + "\n\n")

	input := func(idx int, label, key string, in textinput.Model, unit string) {
		ls := s.Label
		if m.focus == idx {
			ls = s.LabelFocused
		}
		b.WriteString(ls.Render(components.PadRight(label, 18)) + in.View() + " " + s.Muted.Render(unit) + "\n")
		if e := m.fieldErrors[key]; e != "" {
			b.WriteString(s.FieldError.Render(e) + "\n")
		}
	}
	input(0, "Concurrent users", "numUsers", m.users, "users")
	input(1, "Duration", "duration", m.duration, "minutes")
	b.WriteString("\n")

	switch {
	case m.running:
		elapsed := m.now().Sub(m.started).Truncate(time.Second)
		b.WriteString(m.spin.View() + " " + s.Normal.Render("Running… "+elapsed.String()+" elapsed") + "\n")
	case m.result != nil:
		b.WriteString(m.viewResult())
	default:
		b.WriteString(s.Hint.Render("enter: start  tab: next field  esc: back") + "\n")
	}
	return b.String()
}

func (m Model) viewResult() string {
	s := m.styles
	r := m.result
	var b strings.Builder

	row := func(k, v string) {
		b.WriteString(s.Key.Render(components.PadRight(k, 10)) + s.Value.Render(v) + "\n")
	}
	row("Users", humanize.Comma(int64(r.UserCount)))
	row("Duration", fmt.Sprintf("%d min", r.Duration))
	row("Average", chart.FormatSeconds(r.AvgResponseTime))
	row("Fastest", chart.FormatSeconds(r.MinResponseTime))
	row("Slowest", chart.FormatSeconds(r.MaxResponseTime))
	b.WriteString("\n")

	points := chart.FromLoadTest(*r)
	if len(points) == 0 {
		b.WriteString(s.Muted.Render("No responses were recorded.") + "\n")
	} else {
		b.WriteString(s.Subtitle.Render("Response time per second") + "  " + s.Muted.Render(chart.Sparkline(points)) + "\n")
		b.WriteString(chart.Bars(points, max(m.width-30, 10), s.Chart()) + "\n")
	}
	b.WriteString("\n" + s.Hint.Render("enter: run again  esc: back") + "\n")
	return b.String()
}
