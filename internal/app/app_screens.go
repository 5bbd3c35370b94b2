package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/apitrack/internal/mutation"
	"github.com/sadopc/apitrack/internal/ui/components"
	"github.com/sadopc/apitrack/internal/ui/msgs"
)

func (a App) navigate(msg msgs.NavigateMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.Screen {
	case msgs.ScreenLogin:
		return a.toLogin("")

	case msgs.ScreenList:
		a.stack = nil
		a.screen = msgs.ScreenList
		if !a.list.Store().Loaded() {
			cmd = a.list.Load()
		}

	case msgs.ScreenDetail:
		a = a.push(msgs.ScreenDetail)
		cmd = a.detail.Open(msg.ID, msg.Endpoint)

	case msgs.ScreenForm:
		a = a.push(msgs.ScreenForm)
		switch {
		case msg.Endpoint != nil:
			a.form.Edit(*msg.Endpoint)
		default:
			a.form.Reset()
			if msg.Import {
				a.form.ShowImport()
			}
		}

	case msgs.ScreenLoadTest:
		label := msg.ID
		if msg.Endpoint != nil {
			label = string(msg.Endpoint.Method) + " " + msg.Endpoint.Endpoint
		}
		a = a.push(msgs.ScreenLoadTest)
		cmd = a.loadtest.Open(msg.ID, label)
	}

	a.syncHeader()
	return a.setMode(msgs.ModeNormal), cmd
}

// push shows next, remembering the current screen for BackMsg.
func (a App) push(next msgs.Screen) App {
	if a.screen != next {
		a.stack = append(a.stack, a.screen)
	}
	a.screen = next
	return a
}

func (a App) back() (tea.Model, tea.Cmd) {
	if len(a.stack) == 0 {
		return a, nil
	}
	a.screen = a.stack[len(a.stack)-1]
	a.stack = a.stack[:len(a.stack)-1]
	a.syncHeader()
	return a.setMode(msgs.ModeNormal), nil
}

// toLogin drops the navigation history and shows the login screen with an
// optional banner.
func (a App) toLogin(message string) (tea.Model, tea.Cmd) {
	a.stack = nil
	a.screen = msgs.ScreenLogin
	a.modal.Visible = false
	a.jump.Close()
	a.commandPalette.Close()
	a.login.Reset()
	a.login.SetMessage(message)
	a.statusBar.SetSession("", a.cfg.APIURL)
	a.syncHeader()
	return a.setMode(msgs.ModeNormal), a.login.Init()
}

func (a App) handleLoggedIn(msg msgs.LoggedInMsg) (tea.Model, tea.Cmd) {
	a.logger.Info("logged in", "user", msg.Username)
	a.statusBar.SetSession(msg.Username, a.cfg.APIURL)
	a.stack = nil
	a.screen = msgs.ScreenList
	a.syncHeader()
	toast := a.toast.Show("Welcome, "+msg.Username, false, 2*time.Second)
	return a.setMode(msgs.ModeNormal), tea.Batch(a.list.Load(), toast)
}

func (a App) refetch(what mutation.Refetch) tea.Cmd {
	var cmds []tea.Cmd
	if what.Has(mutation.RefetchList) {
		cmds = append(cmds, a.list.Refresh())
	}
	if what.Has(mutation.RefetchDetail) || what.Has(mutation.RefetchLogs) {
		cmds = append(cmds, a.detail.Refetch(what))
	}
	return tea.Batch(cmds...)
}

func (a App) openJump() App {
	targets := a.list.JumpTargets()
	if len(targets) == 0 {
		return a
	}
	a.jump.Open(targets)
	return a.setMode(msgs.ModeModal)
}

// commands lists the palette entries for the visible screen.
func (a App) commands() []components.Command {
	var cmds []components.Command
	switch a.screen {
	case msgs.ScreenList:
		cmds = append(cmds,
			components.Command{Name: "Add API", Shortcut: "a", Msg: msgs.NavigateMsg{Screen: msgs.ScreenForm}},
			components.Command{Name: "Add API From File", Shortcut: "I", Msg: msgs.NavigateMsg{Screen: msgs.ScreenForm, Import: true}},
			components.Command{Name: "Refresh", Shortcut: "r", Msg: msgs.RefetchMsg{What: mutation.RefetchList}},
			components.Command{Name: "Rows Per Page", Shortcut: "P", Msg: msgs.SetPageSizeMsg{}},
		)
		if sel, ok := a.list.Selected(); ok {
			cmds = append(cmds,
				components.Command{Name: "Open " + sel.Endpoint, Shortcut: "enter", Msg: msgs.NavigateMsg{Screen: msgs.ScreenDetail, ID: sel.ID}},
				components.Command{Name: "Hit " + sel.Endpoint, Shortcut: "x", Msg: msgs.InvokeMsg{ID: sel.ID}},
			)
		}
	case msgs.ScreenDetail:
		if e, ok := a.detail.Endpoint(); ok {
			cmds = append(cmds,
				components.Command{Name: "Hit API", Shortcut: "x", Msg: msgs.InvokeMsg{ID: e.ID}},
				components.Command{Name: "Edit API", Shortcut: "e", Msg: msgs.NavigateMsg{Screen: msgs.ScreenForm, ID: e.ID, Endpoint: &e}},
				components.Command{Name: "Load Test", Shortcut: "t", Msg: msgs.NavigateMsg{Screen: msgs.ScreenLoadTest, ID: e.ID, Endpoint: &e}},
				components.Command{Name: "Copy as cURL", Shortcut: "y", Msg: msgs.CopyAsCurlMsg{}},
				components.Command{Name: "Delete API", Shortcut: "d", Msg: msgs.RequestDeleteMsg{ID: e.ID, Label: e.Endpoint}},
			)
		}
		cmds = append(cmds,
			components.Command{Name: "Refresh", Shortcut: "r", Msg: msgs.RefetchMsg{What: mutation.RefetchDetail | mutation.RefetchLogs}},
			components.Command{Name: "Back to List", Shortcut: "esc", Msg: msgs.NavigateMsg{Screen: msgs.ScreenList}},
		)
	}
	return append(cmds,
		components.Command{Name: "Switch Theme", Msg: msgs.SwitchThemeMsg{}},
		components.Command{Name: "Help", Shortcut: "?", Msg: msgs.ShowHelpMsg{}},
		components.Command{Name: "Log Out", Shortcut: "ctrl+l", Msg: msgs.LogoutMsg{}},
		components.Command{Name: "Quit", Shortcut: "ctrl+c", Msg: tea.QuitMsg{}},
	)
}
