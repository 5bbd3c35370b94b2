package list

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/apitrack/internal/listview"
	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

type filterField int

const (
	fieldMethod filterField = iota
	fieldStatus
	fieldCode
	fieldCount
)

var statusCycle = []string{"", "true", "false"}

// filterBar edits a filter draft. Changes stay in the bar until enter.
type filterBar struct {
	styles theme.Styles
	active filterField
	method tracker.Method
	status string
	code   textinput.Model
	err    string
}

func newFilterBar(s theme.Styles) filterBar {
	code := textinput.New()
	code.Prompt = ""
	code.Placeholder = "any"
	code.CharLimit = 3
	code.Width = 5
	return filterBar{styles: s, code: code}
}

func (f *filterBar) load(d listview.Filters) {
	f.method, f.status = d.Method, d.Status
	f.code.SetValue(d.Code)
	f.active = fieldMethod
	f.err = ""
}

func (f *filterBar) focus() tea.Cmd {
	if f.active == fieldCode {
		return f.code.Focus()
	}
	return nil
}

func (f *filterBar) blur() { f.code.Blur() }

// draft validates the bar and returns it as filters.
func (f filterBar) draft() (listview.Filters, string) {
	code := strings.TrimSpace(f.code.Value())
	for _, r := range code {
		if r < '0' || r > '9' {
			return listview.Filters{}, "Code must be a number."
		}
	}
	return listview.Filters{Method: f.method, Status: f.status, Code: code}, ""
}

func (f filterBar) update(msg tea.KeyMsg) (filterBar, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return f.move(1)
	case "shift+tab", "up":
		return f.move(-1)
	}

	switch f.active {
	case fieldMethod:
		switch msg.String() {
		case "left", "h":
			f.method = cycleMethod(f.method, -1)
		case "right", "l", " ":
			f.method = cycleMethod(f.method, 1)
		}
	case fieldStatus:
		switch msg.String() {
		case "left", "h":
			f.status = cycle(statusCycle, f.status, -1)
		case "right", "l", " ":
			f.status = cycle(statusCycle, f.status, 1)
		}
	case fieldCode:
		var cmd tea.Cmd
		f.code, cmd = f.code.Update(msg)
		f.err = ""
		return f, cmd
	}
	return f, nil
}

func (f filterBar) move(delta int) (filterBar, tea.Cmd) {
	f.active = (f.active + filterField(delta) + fieldCount) % fieldCount
	f.code.Blur()
	cmd := f.focus()
	return f, cmd
}

// cycleMethod steps through "" and every method.
func cycleMethod(cur tracker.Method, delta int) tracker.Method {
	opts := make([]string, 0, len(tracker.Methods)+1)
	opts = append(opts, "")
	for _, m := range tracker.Methods {
		opts = append(opts, string(m))
	}
	return tracker.Method(cycle(opts, string(cur), delta))
}

func cycle(opts []string, cur string, delta int) string {
	for i, o := range opts {
		if o == cur {
			return opts[(i+delta+len(opts))%len(opts)]
		}
	}
	return opts[0]
}

func statusLabel(s string) string {
	switch s {
	case "true":
		return "active"
	case "false":
		return "inactive"
	}
	return "any"
}

func (f filterBar) view() string {
	s := f.styles
	label := func(field filterField, text string) string {
		if f.active == field {
			return s.LabelFocused.Render(text)
		}
		return s.Label.Render(text)
	}
	method := "any"
	if f.method != "" {
		method = string(f.method)
	}

	line := label(fieldMethod, "Method ") + s.Value.Render("‹ "+method+" ›") + "   " +
		label(fieldStatus, "Status ") + s.Value.Render("‹ "+statusLabel(f.status)+" ›") + "   " +
		label(fieldCode, "Code ") + f.code.View()
	hint := s.Hint.Render("tab: next field  ←/→: change  enter: apply  esc: cancel")
	if f.err != "" {
		hint = s.FieldError.Render(f.err)
	}
	return line + "\n" + hint
}
