package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/apitrack/internal/ui/msgs"
)

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	// Overlays take keys first.
	var cmd tea.Cmd
	switch {
	case a.commandPalette.Visible:
		a.commandPalette, cmd = a.commandPalette.Update(msg)
		return a, cmd
	case a.help.Visible:
		a.help, cmd = a.help.Update(msg)
		if !a.help.Visible {
			a = a.setMode(msgs.ModeNormal)
		}
		return a, cmd
	case a.modal.Visible:
		a.modal, cmd = a.modal.Update(msg)
		return a, cmd
	case a.jump.Visible:
		a.jump, cmd = a.jump.Update(msg)
		return a, cmd
	}

	if a.capturing() {
		return a.updateScreen(msg)
	}

	if cmd, ok := a.handleGlobalKey(msg); ok {
		return a, cmd
	}
	if a.screen == msgs.ScreenList && key.Matches(msg, a.keys.Jump) {
		return a.openJump(), nil
	}
	return a.updateScreen(msg)
}

// capturing reports whether the screen is reading text, in which case only
// ctrl+c is handled above it.
func (a App) capturing() bool {
	switch a.screen {
	case msgs.ScreenLogin, msgs.ScreenLoadTest:
		return true
	case msgs.ScreenList:
		return a.list.Capturing()
	case msgs.ScreenForm:
		return a.form.Editing()
	}
	return false
}

func (a App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, a.keys.QuitList) && a.screen == msgs.ScreenList:
		return tea.Quit, true
	case key.Matches(msg, a.keys.CommandPalette):
		return func() tea.Msg { return msgs.OpenCommandPaletteMsg{} }, true
	case key.Matches(msg, a.keys.Help):
		return func() tea.Msg { return msgs.ShowHelpMsg{} }, true
	case key.Matches(msg, a.keys.Logout):
		return func() tea.Msg { return msgs.LogoutMsg{} }, true
	case key.Matches(msg, a.keys.PageSize) && a.screen == msgs.ScreenList:
		return func() tea.Msg { return msgs.SetPageSizeMsg{} }, true
	case key.Matches(msg, a.keys.Back) && a.screen == msgs.ScreenDetail:
		return func() tea.Msg { return msgs.BackMsg{} }, true
	}
	return nil, false
}
