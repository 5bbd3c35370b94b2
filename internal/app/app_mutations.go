package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/apitrack/internal/mutation"
	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/ui/msgs"
)

func (a App) submitEndpoint(msg msgs.SubmitEndpointMsg) (tea.Model, tea.Cmd) {
	a.form.SetSubmitting(true)
	ctx, coord := a.ctx, a.coord
	return a, func() tea.Msg {
		if msg.ID == "" {
			return msgs.MutationDoneMsg{Op: msgs.OpCreate, Outcome: coord.Create(ctx, msg.Payload)}
		}
		return msgs.MutationDoneMsg{Op: msgs.OpUpdate, ID: msg.ID, Outcome: coord.Update(ctx, msg.ID, msg.Payload)}
	}
}

func (a App) importFile(msg msgs.ImportFileMsg) (tea.Model, tea.Cmd) {
	a.form.SetSubmitting(true)
	ctx, coord, read := a.ctx, a.coord, a.readFile
	return a, func() tea.Msg {
		defs, err := read(msg.Path)
		if err != nil {
			return msgs.MutationDoneMsg{Op: msgs.OpImport, Outcome: importFailure(err)}
		}
		return msgs.MutationDoneMsg{Op: msgs.OpImport, Outcome: importAll(ctx, coord, defs)}
	}
}

// importFailure reports a file that could not be read or parsed against the
// file field.
func importFailure(err error) mutation.Outcome {
	fields := tracker.FieldErrors(err)
	if len(fields) == 0 {
		fields = map[string]string{"file": tracker.UserMessage(err)}
	}
	return mutation.Outcome{
		Notice:      mutation.Notice{Text: tracker.UserMessage(err), IsError: true},
		FieldErrors: fields,
		Err:         err,
	}
}

// importAll creates every definition in order. It stops at an expired
// session; other failures are counted and the rest still go through.
func importAll(ctx context.Context, coord *mutation.Coordinator, defs []tracker.Payload) mutation.Outcome {
	if len(defs) == 0 {
		return importFailure(&tracker.ValidationError{Field: "file", Message: "The file has no API definitions."})
	}
	var created int
	var firstFail *mutation.Outcome
	for _, p := range defs {
		out := coord.Create(ctx, p)
		if out.OK() {
			created++
			continue
		}
		if out.Navigate == mutation.NavLogin {
			return out
		}
		if firstFail == nil {
			firstFail = &out
		}
	}
	if created == 0 {
		out := *firstFail
		out.Notice.Text = "No APIs imported: " + out.Notice.Text
		return out
	}
	text := fmt.Sprintf("Imported %d %s.", created, plural(created, "API", "APIs"))
	if failed := len(defs) - created; failed > 0 {
		text = fmt.Sprintf("Imported %d of %d APIs; %d failed.", created, len(defs), failed)
	}
	return mutation.Outcome{
		Notice:   mutation.Notice{Text: text, IsError: firstFail != nil},
		Navigate: mutation.NavList,
		Refetch:  mutation.RefetchList,
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func (a App) deleteEndpoint(msg msgs.DeleteConfirmedMsg) (tea.Model, tea.Cmd) {
	req := msg.Request
	if req == nil {
		return a, nil
	}
	req.Confirm()
	ctx, coord := a.ctx, a.coord
	return a, func() tea.Msg {
		return msgs.MutationDoneMsg{Op: msgs.OpDelete, ID: req.ID, Outcome: coord.Delete(ctx, req)}
	}
}

func (a App) invoke(msg msgs.InvokeMsg) (tea.Model, tea.Cmd) {
	a.statusBar.SetMessage("Hitting API…")
	ctx, coord := a.ctx, a.coord
	return a, func() tea.Msg {
		return msgs.MutationDoneMsg{Op: msgs.OpInvoke, ID: msg.ID, Outcome: coord.Invoke(ctx, msg.ID)}
	}
}

func (a App) runLoadTest(msg msgs.RunLoadTestMsg) (tea.Model, tea.Cmd) {
	ctx, coord := a.ctx, a.coord
	return a, func() tea.Msg {
		res, out := coord.LoadTest(ctx, msg.ID, msg.Request)
		return msgs.LoadTestDoneMsg{ID: msg.ID, Result: res, Outcome: out}
	}
}

// applyOutcome carries a finished mutation into the views: field errors,
// the notice, navigation and refetches.
func (a App) applyOutcome(op msgs.Op, id string, out mutation.Outcome) (tea.Model, tea.Cmd) {
	if op == msgs.OpInvoke {
		a.statusBar.SetMessage("")
	}
	switch op {
	case msgs.OpCreate, msgs.OpUpdate, msgs.OpImport:
		if out.OK() {
			a.form.SetSubmitting(false)
		} else {
			a.form.SetFieldErrors(out.FieldErrors)
		}
	}

	var cmds []tea.Cmd
	if out.Notice.Text != "" {
		cmds = append(cmds, a.toast.Show(out.Notice.Text, out.Notice.IsError, 0))
	}

	if out.Navigate == mutation.NavLogin {
		a.backend.Logout()
		next, cmd := a.toLogin(msgs.SessionExpiredText)
		return next, tea.Batch(append(cmds, cmd)...)
	}

	if out.Endpoint != nil {
		a.detail.SetEndpoint(*out.Endpoint)
	}

	switch {
	case out.Navigate == mutation.NavList:
		a = a.showList()
	case op == msgs.OpDelete && out.OK() && a.detail.ID() == id && a.screen != msgs.ScreenList:
		a = a.showList()
	}

	cmds = append(cmds, a.refetch(out.Refetch))
	return a, tea.Batch(cmds...)
}

func (a App) showList() App {
	a.stack = nil
	a.screen = msgs.ScreenList
	a.syncHeader()
	return a.setMode(msgs.ModeNormal)
}
