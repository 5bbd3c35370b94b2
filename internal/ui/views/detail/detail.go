// Package detail shows one tracked API with its call history.
package detail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/apitrack/internal/chart"
	"github.com/sadopc/apitrack/internal/export"
	"github.com/sadopc/apitrack/internal/gateway"
	"github.com/sadopc/apitrack/internal/listview"
	"github.com/sadopc/apitrack/internal/mutation"
	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/ui/components"
	"github.com/sadopc/apitrack/internal/ui/layout"
	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

var logSortCycle = []string{
	"",
	listview.FieldTimestamp,
	listview.FieldStatusCode,
	listview.FieldResponseTime,
}

// Source loads the endpoint and its call logs.
type Source struct {
	Endpoint func(ctx context.Context, id string) (tracker.Endpoint, error)
	Logs     func(ctx context.Context, id string, page, pageSize int) (tracker.Page[tracker.CallLog], error)
}

// Options configures the detail view.
type Options struct {
	LogPageSize int
	MaxButtons  int
	Now         func() time.Time
	Copy        func(string) error
}

// Model is the detail screen.
type Model struct {
	ctx    context.Context
	src    Source
	styles theme.Styles
	opts   Options

	id       string
	endpoint tracker.Endpoint
	loaded   bool
	err      error

	logs *listview.Store[tracker.CallLog]
	body viewport.Model

	layout layout.ScreenLayout
}

// New creates an empty detail view. Open selects the endpoint.
func New(ctx context.Context, src Source, s theme.Styles, opts Options) Model {
	if opts.LogPageSize <= 0 {
		opts.LogPageSize = 10
	}
	if opts.MaxButtons <= 0 {
		opts.MaxButtons = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	return Model{
		ctx:    ctx,
		src:    src,
		styles: s,
		opts:   opts,
		logs:   listview.NewStore(opts.LogPageSize, listview.LogRefiner()),
		body:   viewport.New(0, 0),
	}
}

// SetLayout resizes the two columns.
func (m *Model) SetLayout(l layout.ScreenLayout) {
	m.layout = l
	m.body.Width = max(l.LeftWidth-4, 10)
	m.body.Height = max(m.bodyHeight(), 3)
	m.renderBody()
}

func (m Model) bodyHeight() int {
	if m.layout.Stacked {
		return m.layout.ContentHeight / 4
	}
	// title, URL, status block and the headers/params sections
	used := 9 + len(m.endpoint.Headers) + len(m.endpoint.Params)
	return m.layout.ContentHeight - used
}

// Open shows the endpoint with the given id. A preloaded endpoint, when
// provided, is rendered while the fresh copy is fetched.
func (m *Model) Open(id string, preload *tracker.Endpoint) tea.Cmd {
	m.id = id
	m.err = nil
	m.loaded = false
	m.endpoint = tracker.Endpoint{}
	if preload != nil && preload.ID == id {
		m.endpoint, m.loaded = *preload, true
	}
	m.logs = listview.NewStore(m.opts.LogPageSize, listview.LogRefiner())
	m.body.GotoTop()
	m.renderBody()
	return tea.Batch(m.fetchEndpoint(), m.runLogs(m.logs.Load()))
}

// ID is the endpoint on screen.
func (m Model) ID() string { return m.id }

// Endpoint returns the endpoint on screen once loaded.
func (m Model) Endpoint() (tracker.Endpoint, bool) { return m.endpoint, m.loaded }

// Logs exposes the call-log view state.
func (m Model) Logs() *listview.Store[tracker.CallLog] { return m.logs }

// SetStyles applies a new theme.
func (m *Model) SetStyles(s theme.Styles) {
	m.styles = s
	m.renderBody()
}

// SetEndpoint replaces the endpoint with a fresher copy, e.g. after a hit.
func (m *Model) SetEndpoint(e tracker.Endpoint) {
	if e.ID != m.id {
		return
	}
	m.endpoint, m.loaded = e, true
	m.renderBody()
}

// Refetch reloads the parts named in what.
func (m Model) Refetch(what mutation.Refetch) tea.Cmd {
	if m.id == "" {
		return nil
	}
	var cmds []tea.Cmd
	if what.Has(mutation.RefetchDetail) {
		cmds = append(cmds, m.fetchEndpoint())
	}
	if what.Has(mutation.RefetchLogs) {
		cmds = append(cmds, m.runLogs(m.logs.Refresh()))
	}
	return tea.Batch(cmds...)
}

func (m Model) fetchEndpoint() tea.Cmd {
	ctx, id, fetch := m.ctx, m.id, m.src.Endpoint
	return func() tea.Msg {
		e, err := fetch(ctx, id)
		return msgs.EndpointFetchedMsg{ID: id, Endpoint: e, Err: err}
	}
}

func (m Model) runLogs(f listview.Fetch) tea.Cmd {
	ctx, id, logs := m.ctx, m.id, m.src.Logs
	fetch := func(ctx context.Context, q tracker.ListQuery) (tracker.Page[tracker.CallLog], error) {
		return logs(ctx, id, q.Page, q.PageSize)
	}
	return func() tea.Msg {
		return msgs.LogsFetchedMsg{EndpointID: id, Result: listview.Run(ctx, fetch, f)}
	}
}

func (m *Model) renderBody() {
	if m.endpoint.Body == "" {
		m.body.SetContent(m.styles.Muted.Render("No body"))
		return
	}
	content := renderBody(m.endpoint.Body)
	if m.body.Width > 0 {
		content = lipgloss.NewStyle().Width(m.body.Width).Render(content)
	}
	m.body.SetContent(content)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case msgs.EndpointFetchedMsg:
		if msg.ID != m.id {
			return m, nil
		}
		if msg.Err != nil {
			return m, m.fetchFailed(msg.Err)
		}
		m.endpoint, m.loaded, m.err = msg.Endpoint, true, nil
		m.body.Height = max(m.bodyHeight(), 3)
		m.renderBody()
		return m, nil

	case msgs.LogsFetchedMsg:
		if msg.EndpointID != m.id {
			return m, nil
		}
		res := m.logs.Resolve(msg.Result)
		if !res.Applied {
			return m, nil
		}
		if res.Follow != nil {
			return m, m.runLogs(*res.Follow)
		}
		if err := msg.Result.Err; err != nil {
			if tracker.IsAuthExpired(err) {
				return m, sessionExpired
			}
			return m, toast("Could not load call logs: "+tracker.UserMessage(err), true)
		}
		return m, nil

	case msgs.CopyAsCurlMsg:
		return m, m.copyAsCurl()

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *Model) fetchFailed(err error) tea.Cmd {
	switch {
	case tracker.IsAuthExpired(err):
		return sessionExpired
	case gateway.IsNotFound(err):
		return tea.Batch(toast("API not found.", true), func() tea.Msg { return msgs.BackMsg{} })
	}
	m.err = err
	return toast("Could not load API: "+tracker.UserMessage(err), true)
}

func (m Model) updateKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		return m, m.Refetch(mutation.RefetchDetail | mutation.RefetchLogs)
	case "h", "left", "[":
		if f, ok := m.logs.PrevPage(); ok {
			return m, m.runLogs(f)
		}
		return m, nil
	case "l", "right", "]":
		if f, ok := m.logs.NextPage(); ok {
			return m, m.runLogs(f)
		}
		return m, nil
	case "s":
		cur := m.logs.SortState()
		next := logSortCycle[0]
		for i, f := range logSortCycle {
			if f == cur.Field {
				next = logSortCycle[(i+1)%len(logSortCycle)]
				break
			}
		}
		m.logs.SetSort(next, cur.Order)
		return m, nil
	case "o":
		if f := m.logs.SortState().Field; f != "" {
			m.logs.ToggleSort(f)
		}
		return m, nil
	case "y":
		return m, m.copyAsCurl()
	case "j", "down", "k", "up", "pgdown", "pgup", "ctrl+d", "ctrl+u":
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return m, cmd
	}

	if !m.loaded {
		return m, nil
	}
	e := m.endpoint
	switch msg.String() {
	case "x":
		return m, func() tea.Msg { return msgs.InvokeMsg{ID: e.ID} }
	case "e":
		return m, func() tea.Msg { return msgs.NavigateMsg{Screen: msgs.ScreenForm, ID: e.ID, Endpoint: &e} }
	case "t":
		return m, func() tea.Msg { return msgs.NavigateMsg{Screen: msgs.ScreenLoadTest, ID: e.ID, Endpoint: &e} }
	case "d":
		return m, func() tea.Msg { return msgs.RequestDeleteMsg{ID: e.ID, Label: e.Endpoint} }
	}
	return m, nil
}

func (m Model) copyAsCurl() tea.Cmd {
	if !m.loaded {
		return nil
	}
	text, copyFn := export.AsCurl(m.endpoint.Payload()), m.opts.Copy
	return func() tea.Msg {
		if err := copyFn(text); err != nil {
			return msgs.ToastMsg{Text: "Clipboard error: " + err.Error(), IsError: true}
		}
		return msgs.ToastMsg{Text: "Copied as cURL", Duration: 2 * time.Second}
	}
}

func sessionExpired() tea.Msg { return msgs.SessionExpiredMsg{} }

func toast(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return msgs.ToastMsg{Text: text, IsError: isError} }
}

// View renders the endpoint beside its call history.
func (m Model) View() string {
	s := m.styles
	if !m.loaded {
		if m.err != nil {
			return s.Error.Render("Could not load API: "+tracker.UserMessage(m.err)) + s.Hint.Render("  (r to retry)")
		}
		return s.Hint.Render("Loading…")
	}

	left := m.viewEndpoint()
	right := m.viewHistory()
	if m.layout.Stacked || m.layout.Width == 0 {
		return left + "\n\n" + right
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.layout.LeftWidth).Render(left),
		lipgloss.NewStyle().Width(m.layout.RightWidth).PaddingLeft(2).Render(right),
	)
}

func (m Model) viewEndpoint() string {
	s := m.styles
	e := m.endpoint
	var b strings.Builder

	b.WriteString(s.MethodStyle(e.Method).Render(string(e.Method)) + " " + s.URL.Render(e.Endpoint) + "\n\n")

	row := func(k, v string, vs lipgloss.Style) {
		b.WriteString(s.Key.Render(components.PadRight(k, 10)) + vs.Render(v) + "\n")
	}
	row("Status", e.StatusLabel(), s.HealthStyle(e.Status))
	row("Code", e.CodeLabel(), s.CodeStyle(e.Code))
	row("Time", e.ResponseTimeLabel(), s.Value)
	updated := "never"
	if !e.UpdatedAt.IsZero() {
		updated = humanize.Time(e.UpdatedAt) + " (" + e.UpdatedAt.Local().Format("2006-01-02 15:04:05") + ")"
	}
	row("Updated", updated, s.Muted)

	section := func(title string, kv map[string]string) {
		b.WriteString("\n" + s.Subtitle.Render(title) + "\n")
		if len(kv) == 0 {
			b.WriteString(s.Muted.Render("  none") + "\n")
			return
		}
		for _, k := range tracker.SortedKeys(kv) {
			b.WriteString("  " + s.Key.Render(k) + s.Muted.Render(": ") + s.Value.Render(kv[k]) + "\n")
		}
	}
	section("Headers", e.Headers)
	section("Params", e.Params)

	b.WriteString("\n" + s.Subtitle.Render("Body") + "\n")
	b.WriteString(m.body.View())
	return b.String()
}

func (m Model) viewHistory() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Call history"))
	if st := m.logs.SortState(); st.Field != "" {
		b.WriteString(s.Muted.Render(fmt.Sprintf("  sort: %s %s", st.Field, st.Order)))
	}
	b.WriteString("\n")

	rows := m.logs.Visible()
	switch {
	case !m.logs.Loaded() && m.logs.Phase() == listview.PhaseLoading:
		b.WriteString(s.Hint.Render("Loading…"))
		return b.String()
	case !m.logs.Loaded() && m.logs.Err() != nil:
		b.WriteString(s.Error.Render("Could not load call logs: " + tracker.UserMessage(m.logs.Err())))
		return b.String()
	case len(rows) == 0:
		b.WriteString(s.Muted.Render("This API has not been hit yet."))
		return b.String()
	}

	chartWidth := max(m.layout.RightWidth-30, 10)
	b.WriteString(chart.Bars(chart.FromLogs(rows), chartWidth, s.Chart()) + "\n\n")

	header := components.PadRight("#", 5) + components.PadRight("TIMESTAMP", 21) + components.PadRight("CODE", 6) + "TIME"
	b.WriteString(s.Header.Render(header) + "\n")
	for i, l := range rows {
		num := listview.RowNumber(m.logs.Page(), m.logs.PageSize(), i)
		b.WriteString(s.Muted.Render(components.PadRight(fmt.Sprint(num), 5)))
		b.WriteString(s.Normal.Render(components.PadRight(l.Timestamp.Local().Format("2006-01-02 15:04:05"), 21)))
		b.WriteString(s.CodeStyle(l.StatusCode).Render(components.PadRight(l.StatusLabel(), 6)))
		b.WriteString(s.Value.Render(chart.FormatSeconds(l.ResponseTime)) + "\n")
	}
	b.WriteString(components.Pager(s, m.logs.Window(m.opts.MaxButtons), m.logs.Page(), m.logs.TotalPages(), m.logs.Total()))
	return b.String()
}
