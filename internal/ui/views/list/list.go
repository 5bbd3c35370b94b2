// Package list is the paged, filterable list of tracked APIs.
package list

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/apitrack/internal/listview"
	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/ui/components"
	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

// sortCycle is the order "s" walks through; "" means server order.
var sortCycle = []string{
	"",
	listview.FieldEndpoint,
	listview.FieldMethod,
	listview.FieldStatus,
	listview.FieldCode,
	listview.FieldResponseTime,
	listview.FieldUpdatedAt,
}

var columnTitles = map[string]string{
	listview.FieldEndpoint:     "ENDPOINT",
	listview.FieldMethod:       "METHOD",
	listview.FieldStatus:       "STATUS",
	listview.FieldCode:         "CODE",
	listview.FieldResponseTime: "TIME",
	listview.FieldUpdatedAt:    "UPDATED",
}

// Options configures a list model.
type Options struct {
	PageSize   int
	PageSizes  []int
	MaxButtons int
	Now        func() time.Time
}

// Model is the API list screen.
type Model struct {
	ctx    context.Context
	fetch  listview.Fetcher[tracker.Endpoint]
	store  *listview.Store[tracker.Endpoint]
	styles theme.Styles

	pageSizes  []int
	maxButtons int
	now        func() time.Time

	cursor int
	offset int

	searching bool
	search    textinput.Model

	filtering bool
	filters   filterBar

	refreshed     time.Time
	width, height int
}

// New creates the list screen. Nothing is fetched until Load.
func New(ctx context.Context, fetch listview.Fetcher[tracker.Endpoint], s theme.Styles, opts Options) Model {
	if len(opts.PageSizes) == 0 {
		opts.PageSizes = []int{5, 10, 25}
	}
	if opts.MaxButtons <= 0 {
		opts.MaxButtons = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search endpoints"
	search.CharLimit = 256

	return Model{
		ctx:        ctx,
		fetch:      fetch,
		store:      listview.NewStore(opts.PageSize, listview.EndpointRefiner()),
		styles:     s,
		pageSizes:  opts.PageSizes,
		maxButtons: opts.MaxButtons,
		now:        opts.Now,
		search:     search,
		filters:    newFilterBar(s),
	}
}

// Store exposes the view state.
func (m Model) Store() *listview.Store[tracker.Endpoint] { return m.store }

// SetStyles applies a new theme.
func (m *Model) SetStyles(s theme.Styles) {
	m.styles = s
	m.filters.styles = s
}

// SetSize sets the available area.
func (m *Model) SetSize(w, h int) {
	m.width, m.height = w, h
	m.search.Width = max(w-4, 10)
	m.keepCursorVisible()
}

// Capturing reports whether keystrokes go to a text field.
func (m Model) Capturing() bool { return m.searching || m.filtering }

// Refreshed is when the list was last loaded successfully.
func (m Model) Refreshed() time.Time { return m.refreshed }

// Load issues the initial fetch.
func (m Model) Load() tea.Cmd { return m.run(m.store.Load()) }

// Refresh reloads the current page.
func (m Model) Refresh() tea.Cmd { return m.run(m.store.Refresh()) }

// SetPageSize switches rows per page.
func (m *Model) SetPageSize(n int) tea.Cmd {
	f, ok := m.store.SetPageSize(n)
	if !ok {
		return nil
	}
	m.cursor, m.offset = 0, 0
	return m.run(f)
}

// Selected returns the endpoint under the cursor.
func (m Model) Selected() (tracker.Endpoint, bool) {
	rows := m.store.Visible()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return tracker.Endpoint{}, false
	}
	return rows[m.cursor], true
}

// JumpTargets lists the visible rows for jump mode.
func (m Model) JumpTargets() []components.JumpTarget {
	rows := m.store.Visible()
	out := make([]components.JumpTarget, len(rows))
	for i, e := range rows {
		out[i] = components.JumpTarget{
			Name:   fmt.Sprintf("%-6s %s", e.Method, e.Endpoint),
			Action: msgs.NavigateMsg{Screen: msgs.ScreenDetail, ID: e.ID},
		}
	}
	return out
}

func (m Model) run(f listview.Fetch) tea.Cmd {
	ctx, fetch := m.ctx, m.fetch
	return func() tea.Msg {
		return msgs.ListFetchedMsg{Result: listview.Run(ctx, fetch, f)}
	}
}

func (m Model) page(f listview.Fetch, ok bool) (Model, tea.Cmd) {
	if !ok {
		return m, nil
	}
	m.cursor, m.offset = 0, 0
	return m, m.run(f)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case msgs.ListFetchedMsg:
		return m.resolve(msg.Result)
	case tea.KeyMsg:
		switch {
		case m.searching:
			return m.updateSearch(msg)
		case m.filtering:
			return m.updateFilters(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) resolve(r listview.Result[tracker.Endpoint]) (Model, tea.Cmd) {
	res := m.store.Resolve(r)
	if !res.Applied {
		return m, nil
	}
	m.clampCursor()
	if res.Follow != nil {
		return m, m.run(*res.Follow)
	}
	if r.Err != nil {
		if tracker.IsAuthExpired(r.Err) {
			return m, func() tea.Msg { return msgs.SessionExpiredMsg{} }
		}
		text := "Could not load APIs: " + tracker.UserMessage(r.Err)
		return m, func() tea.Msg { return msgs.ToastMsg{Text: text, IsError: true} }
	}
	m.refreshed = m.now()
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "h", "left", "[":
		return m.page(m.store.PrevPage())
	case "l", "right", "]":
		return m.page(m.store.NextPage())
	case "g", "home":
		return m.page(m.store.SetPage(1))
	case "G", "end":
		return m.page(m.store.SetPage(m.store.TotalPages()))
	case "r":
		return m, m.Refresh()
	case "/":
		m.searching = true
		m.search.SetValue(m.store.SearchTerm())
		m.search.CursorEnd()
		focus := m.search.Focus()
		return m, tea.Batch(focus, setMode(msgs.ModeSearch))
	case "F":
		m.filtering = true
		m.filters.load(m.store.Draft())
		return m, setMode(msgs.ModeInsert)
	case "X":
		m.search.SetValue("")
		return m.page(m.store.ClearFilters(), true)
	case "s":
		m.cycleSort()
		m.clampCursor()
	case "o":
		if f := m.store.SortState().Field; f != "" {
			m.store.ToggleSort(f)
		}
	case "z":
		return m, m.SetPageSize(m.nextPageSize())
	case "a":
		return m, navigate(msgs.NavigateMsg{Screen: msgs.ScreenForm})
	case "I":
		return m, navigate(msgs.NavigateMsg{Screen: msgs.ScreenForm, Import: true})
	}

	sel, ok := m.Selected()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "enter":
		return m, navigate(msgs.NavigateMsg{Screen: msgs.ScreenDetail, ID: sel.ID})
	case "e":
		return m, navigate(msgs.NavigateMsg{Screen: msgs.ScreenForm, ID: sel.ID, Endpoint: &sel})
	case "t":
		return m, navigate(msgs.NavigateMsg{Screen: msgs.ScreenLoadTest, ID: sel.ID, Endpoint: &sel})
	case "d":
		return m, func() tea.Msg { return msgs.RequestDeleteMsg{ID: sel.ID, Label: sel.Endpoint} }
	case "x":
		return m, func() tea.Msg { return msgs.InvokeMsg{ID: sel.ID} }
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, setMode(msgs.ModeNormal)
	case "enter":
		m.searching = false
		m.search.Blur()
		m.store.SetSearchTerm(m.search.Value())
		m.cursor, m.offset = 0, 0
		return m, tea.Batch(setMode(msgs.ModeNormal), m.run(m.store.ApplyFilters()))
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.store.SetSearchTerm(m.search.Value())
	m.clampCursor()
	return m, cmd
}

func (m Model) updateFilters(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filters.blur()
		return m, setMode(msgs.ModeNormal)
	case "enter":
		draft, err := m.filters.draft()
		if err != "" {
			m.filters.err = err
			return m, nil
		}
		m.filtering = false
		m.filters.blur()
		m.store.SetFilters(draft)
		m.cursor, m.offset = 0, 0
		return m, tea.Batch(setMode(msgs.ModeNormal), m.run(m.store.ApplyFilters()))
	}
	var cmd tea.Cmd
	m.filters, cmd = m.filters.update(msg)
	return m, cmd
}

func (m *Model) cycleSort() {
	cur := m.store.SortState()
	next := sortCycle[0]
	for i, f := range sortCycle {
		if f == cur.Field {
			next = sortCycle[(i+1)%len(sortCycle)]
			break
		}
	}
	m.store.SetSort(next, cur.Order)
}

func (m Model) nextPageSize() int {
	cur := m.store.PageSize()
	for i, n := range m.pageSizes {
		if n == cur {
			return m.pageSizes[(i+1)%len(m.pageSizes)]
		}
	}
	return m.pageSizes[0]
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.store.Visible())
	m.cursor = max(min(m.cursor, n-1), 0)
	m.keepCursorVisible()
}

func (m *Model) keepCursorVisible() {
	rows := m.tableRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(m.offset, 0)
}

// tableRows is the number of rows that fit under the title, bars, header
// and pager.
func (m Model) tableRows() int {
	chrome := 5
	if m.searching || m.store.SearchTerm() != "" {
		chrome++
	}
	if m.filtering {
		chrome += 2
	}
	if m.height <= 0 {
		return 25
	}
	return max(m.height-chrome, 1)
}

func navigate(n msgs.NavigateMsg) tea.Cmd {
	return func() tea.Msg { return n }
}

func setMode(mode msgs.AppMode) tea.Cmd {
	return func() tea.Msg { return msgs.SetModeMsg{Mode: mode} }
}

// View renders the list.
func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Tracked APIs"))
	if summary := m.summary(); summary != "" {
		b.WriteString("  " + s.Muted.Render(summary))
	}
	b.WriteString("\n")

	if m.searching || m.store.SearchTerm() != "" {
		b.WriteString(m.search.View() + "\n")
	}
	if m.filtering {
		b.WriteString(m.filters.view() + "\n")
	}

	rows := m.store.Visible()
	widths := m.columnWidths()
	b.WriteString(m.header(widths) + "\n")

	switch {
	case !m.store.Loaded() && m.store.Phase() == listview.PhaseLoading:
		b.WriteString(s.Hint.Render("Loading…") + "\n")
	case !m.store.Loaded() && m.store.Err() != nil:
		b.WriteString(s.Error.Render("Could not load APIs: "+tracker.UserMessage(m.store.Err())) + s.Hint.Render("  (r to retry)") + "\n")
	case len(rows) == 0:
		b.WriteString(s.Muted.Render("No APIs found.") + "\n")
	default:
		end := min(m.offset+m.tableRows(), len(rows))
		for i := m.offset; i < end; i++ {
			b.WriteString(m.row(i, rows[i], widths) + "\n")
		}
	}

	b.WriteString(components.Pager(s, m.store.Window(m.maxButtons), m.store.Page(), m.store.TotalPages(), m.store.Total()))
	b.WriteString(s.Muted.Render(fmt.Sprintf("  %d per page", m.store.PageSize())))
	return b.String()
}

func (m Model) summary() string {
	q := m.store.Query()
	var parts []string
	if q.SearchTerm != "" {
		parts = append(parts, "search: "+q.SearchTerm)
	}
	if q.Method != "" {
		parts = append(parts, "method: "+string(q.Method))
	}
	switch q.Status {
	case "true":
		parts = append(parts, "status: active")
	case "false":
		parts = append(parts, "status: inactive")
	}
	if q.Code != "" {
		parts = append(parts, "code: "+q.Code)
	}
	if st := m.store.SortState(); st.Field != "" {
		parts = append(parts, "sort: "+columnTitles[st.Field]+" "+st.Order.String())
	}
	return strings.Join(parts, " · ")
}

type widths struct {
	num, method, endpoint, status, code, time, updated int
}

func (m Model) columnWidths() widths {
	w := widths{num: 4, method: 7, status: 9, code: 5, time: 9, updated: 16}
	fixed := w.num + w.method + w.status + w.code + w.time + w.updated + 6
	total := m.width
	if total <= 0 {
		total = 100
	}
	w.endpoint = max(total-fixed-2, 12)
	return w
}

func (m Model) header(w widths) string {
	title := func(field, text string, width int) string {
		if st := m.store.SortState(); st.Field == field {
			if st.Order == listview.Asc {
				text += "↑"
			} else {
				text += "↓"
			}
		}
		return components.PadRight(text, width)
	}
	line := strings.Join([]string{
		components.PadRight("#", w.num),
		title(listview.FieldMethod, "METHOD", w.method),
		title(listview.FieldEndpoint, "ENDPOINT", w.endpoint),
		title(listview.FieldStatus, "STATUS", w.status),
		title(listview.FieldCode, "CODE", w.code),
		title(listview.FieldResponseTime, "TIME", w.time),
		title(listview.FieldUpdatedAt, "UPDATED", w.updated),
	}, " ")
	return "  " + m.styles.Header.Render(line)
}

func (m Model) row(i int, e tracker.Endpoint, w widths) string {
	s := m.styles
	num := listview.RowNumber(m.store.Page(), m.store.PageSize(), i)
	updated := "never"
	if !e.UpdatedAt.IsZero() {
		updated = humanize.RelTime(e.UpdatedAt, m.now(), "ago", "from now")
	}

	cells := []string{
		s.Muted.Render(components.PadRight(fmt.Sprint(num), w.num)),
		s.MethodStyle(e.Method).Render(components.PadRight(string(e.Method), w.method)),
		s.Normal.Render(components.PadRight(components.Truncate(e.Endpoint, w.endpoint), w.endpoint)),
		s.HealthStyle(e.Status).Render(components.PadRight(e.StatusLabel(), w.status)),
		s.CodeStyle(e.Code).Render(components.PadRight(e.CodeLabel(), w.code)),
		s.Subtitle.Render(components.PadRight(e.ResponseTimeLabel(), w.time)),
		s.Muted.Render(components.PadRight(components.Truncate(updated, w.updated), w.updated)),
	}
	line := strings.Join(cells, " ")
	if i == m.cursor {
		return s.Key.Render("› ") + s.Selected.Render(line)
	}
	return "  " + line
}
