package app

import (
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/apitrack/internal/config"
	"github.com/sadopc/apitrack/internal/ui/components"
	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
)

func (a App) handleSwitchTheme(msg msgs.SwitchThemeMsg) (tea.Model, tea.Cmd) {
	if msg.Name == "" {
		a.commandPalette.OpenPicker("Pick a theme...", theme.Names(), func(name string) tea.Msg {
			return msgs.SwitchThemeMsg{Name: name}
		})
		return a.setMode(msgs.ModeCommandPalette), nil
	}

	t := theme.Resolve(msg.Name, filepath.Join(a.cfg.Dir(), "themes"))
	s := theme.NewStyles(t)
	a.theme = t
	a.styles = s

	// Overlays and bars are stateless enough to rebuild.
	a.header = components.NewHeader(s)
	a.statusBar = components.NewStatusBar(s)
	a.commandPalette = components.NewCommandPalette(s)
	a.help = components.NewHelp(s)
	a.toast = components.NewToast(s)
	a.modal = components.NewModal(s)
	a.jump = components.NewJumpOverlay(s)

	a.login.SetStyles(s)
	a.list.SetStyles(s)
	a.detail.SetStyles(s)
	a.form.SetStyles(s)
	a.loadtest.SetStyles(s)

	a.statusBar.SetSession(a.auth.Username(), a.cfg.APIURL)
	a.statusBar.MarkRefreshed(a.list.Refreshed())
	a.syncHeader()
	a.resizeViews()
	a = a.setMode(msgs.ModeNormal)

	cmd := a.toast.Show("Theme: "+t.Name, false, 2*time.Second)
	return a, cmd
}

func (a App) handleSetPageSize(msg msgs.SetPageSizeMsg) (tea.Model, tea.Cmd) {
	if msg.Size == 0 {
		choices := make([]string, len(config.PageSizeChoices))
		for i, n := range config.PageSizeChoices {
			choices[i] = strconv.Itoa(n)
		}
		a.commandPalette.OpenPicker("Rows per page...", choices, func(c string) tea.Msg {
			n, _ := strconv.Atoi(c)
			return msgs.SetPageSizeMsg{Size: n}
		})
		return a.setMode(msgs.ModeCommandPalette), nil
	}
	return a, a.list.SetPageSize(msg.Size)
}
