// Package app is the root Bubble Tea model. It routes between the screens,
// hosts the overlays and runs mutations through the coordinator.
package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/apitrack/internal/auth"
	"github.com/sadopc/apitrack/internal/config"
	"github.com/sadopc/apitrack/internal/importer"
	"github.com/sadopc/apitrack/internal/listview"
	"github.com/sadopc/apitrack/internal/mutation"
	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/ui/components"
	"github.com/sadopc/apitrack/internal/ui/layout"
	"github.com/sadopc/apitrack/internal/ui/msgs"
	"github.com/sadopc/apitrack/internal/ui/theme"
	"github.com/sadopc/apitrack/internal/ui/views/detail"
	"github.com/sadopc/apitrack/internal/ui/views/form"
	"github.com/sadopc/apitrack/internal/ui/views/list"
	"github.com/sadopc/apitrack/internal/ui/views/loadtest"
	"github.com/sadopc/apitrack/internal/ui/views/login"
)

// Backend is the remote collection gateway as the TUI uses it.
type Backend interface {
	mutation.Gateway
	FetchPage(ctx context.Context, q tracker.ListQuery) (tracker.Page[tracker.Endpoint], error)
	FetchOne(ctx context.Context, id string) (tracker.Endpoint, error)
	FetchLogs(ctx context.Context, id string, page, pageSize int) (tracker.Page[tracker.CallLog], error)
	Login(ctx context.Context, username, password string) error
	Logout()
}

// Options wires the app to its collaborators. Config, Backend and Auth are
// required.
type Options struct {
	Config  config.Config
	Backend Backend
	Auth    *auth.Context
	Logger  *slog.Logger

	Now      func() time.Time
	Copy     func(string) error
	ReadFile func(path string) ([]tracker.Payload, error)
}

// App is the root Bubble Tea model.
type App struct {
	ctx     context.Context
	cfg     config.Config
	backend Backend
	auth    *auth.Context
	coord   *mutation.Coordinator
	logger  *slog.Logger

	now      func() time.Time
	readFile func(string) ([]tracker.Payload, error)

	login    login.Model
	list     list.Model
	detail   detail.Model
	form     form.Model
	loadtest loadtest.Model

	header         components.Header
	statusBar      components.StatusBar
	commandPalette components.CommandPalette
	help           components.Help
	toast          components.Toast
	modal          components.Modal
	jump           components.JumpOverlay

	screen msgs.Screen
	stack  []msgs.Screen
	mode   msgs.AppMode
	layout layout.ScreenLayout
	keys   KeyMap

	theme  theme.Theme
	styles theme.Styles

	width  int
	height int
	ready  bool
}

// New creates the app. It starts on the API list when the auth context
// already holds a token, otherwise on the login screen.
func New(ctx context.Context, opts Options) App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.ReadFile == nil {
		opts.ReadFile = importer.ReadFile
	}
	cfg := opts.Config

	t := theme.Resolve(cfg.Theme, filepath.Join(cfg.Dir(), "themes"))
	s := theme.NewStyles(t)
	b := opts.Backend

	a := App{
		ctx:     ctx,
		cfg:     cfg,
		backend: b,
		auth:    opts.Auth,
		coord: mutation.New(b, tracker.Rules{RequireParamsForNonGET: cfg.RequireParamsForNonGET},
			mutation.WithLogger(opts.Logger)),
		logger:   opts.Logger,
		now:      opts.Now,
		readFile: opts.ReadFile,

		login: login.New(ctx, b.Login, cfg.APIURL, s),
		list: list.New(ctx, b.FetchPage, s, list.Options{
			PageSize:   cfg.PageSize,
			PageSizes:  config.PageSizeChoices,
			MaxButtons: cfg.MaxPageButtons,
			Now:        opts.Now,
		}),
		detail: detail.New(ctx, detail.Source{Endpoint: b.FetchOne, Logs: b.FetchLogs}, s, detail.Options{
			LogPageSize: cfg.LogPageSize,
			MaxButtons:  cfg.MaxPageButtons,
			Now:         opts.Now,
			Copy:        opts.Copy,
		}),
		form:     form.New(s),
		loadtest: loadtest.New(s, opts.Now),

		header:         components.NewHeader(s),
		statusBar:      components.NewStatusBar(s),
		commandPalette: components.NewCommandPalette(s),
		help:           components.NewHelp(s),
		toast:          components.NewToast(s),
		modal:          components.NewModal(s),
		jump:           components.NewJumpOverlay(s),

		screen: msgs.ScreenLogin,
		mode:   msgs.ModeNormal,
		keys:   DefaultKeyMap(),
		theme:  t,
		styles: s,
	}
	if a.auth.LoggedIn() {
		a.screen = msgs.ScreenList
	}
	a.statusBar.SetSession(a.auth.Username(), cfg.APIURL)
	a.syncHeader()
	return a
}

// Screen is the visible screen.
func (a App) Screen() msgs.Screen { return a.screen }

func (a App) Init() tea.Cmd {
	if a.screen == msgs.ScreenList {
		return a.list.Load()
	}
	return a.login.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout = layout.HandleResize(msg)
		a.resizeViews()
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case msgs.SetModeMsg:
		a.mode = msg.Mode
		a.statusBar.SetMode(msg.Mode)
		return a, nil

	case msgs.OpenCommandPaletteMsg:
		a.commandPalette.Open(a.commands())
		return a.setMode(msgs.ModeCommandPalette), nil

	case msgs.ShowHelpMsg:
		a.help.SetSize(a.width, a.height)
		a.help.Toggle()
		return a.setMode(msgs.ModeModal), nil

	case msgs.SwitchThemeMsg:
		return a.handleSwitchTheme(msg)

	case msgs.SetPageSizeMsg:
		return a.handleSetPageSize(msg)

	case msgs.StatusMsg:
		a.statusBar.SetMessage(msg.Text)
		if msg.Duration > 0 {
			return a, a.statusBar.ClearAfter(msg.Duration)
		}
		return a, nil

	case msgs.ToastMsg:
		return a, a.toast.Show(msg.Text, msg.IsError, msg.Duration)

	case msgs.NavigateMsg:
		return a.navigate(msg)

	case msgs.BackMsg:
		return a.back()

	case msgs.LoggedInMsg:
		return a.handleLoggedIn(msg)

	case msgs.LogoutMsg:
		a.modal.Show("Log out", "End the session for "+a.auth.Username()+"?", "Log out", msgs.LogoutConfirmedMsg{})
		return a.setMode(msgs.ModeModal), nil

	case msgs.LogoutConfirmedMsg:
		a.backend.Logout()
		a.logger.Info("logged out")
		return a.toLogin("")

	case msgs.SessionExpiredMsg:
		a.backend.Logout()
		a.logger.Warn("session expired")
		return a.toLogin(msgs.SessionExpiredText)

	case msgs.ListFetchedMsg:
		var cmd tea.Cmd
		a.list, cmd = a.list.Update(msg)
		a.statusBar.SetLoading(a.list.Store().Phase() == listview.PhaseLoading)
		a.statusBar.MarkRefreshed(a.list.Refreshed())
		return a, cmd

	case msgs.EndpointFetchedMsg, msgs.LogsFetchedMsg, msgs.CopyAsCurlMsg:
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd

	case msgs.RefetchMsg:
		return a, a.refetch(msg.What)

	case msgs.SubmitEndpointMsg:
		return a.submitEndpoint(msg)

	case msgs.ImportFileMsg:
		return a.importFile(msg)

	case msgs.RequestDeleteMsg:
		req := a.coord.RequestDelete(msg.ID, msg.Label)
		a.modal.Show(req.Title(), req.Message(), req.ConfirmText(), msgs.DeleteConfirmedMsg{Request: req})
		return a.setMode(msgs.ModeModal), nil

	case msgs.DeleteConfirmedMsg:
		return a.deleteEndpoint(msg)

	case msgs.InvokeMsg:
		return a.invoke(msg)

	case msgs.RunLoadTestMsg:
		return a.runLoadTest(msg)

	case msgs.MutationDoneMsg:
		return a.applyOutcome(msg.Op, msg.ID, msg.Outcome)

	case msgs.LoadTestDoneMsg:
		var cmd tea.Cmd
		a.loadtest, cmd = a.loadtest.Update(msg)
		next, outcomeCmd := a.applyOutcome(msgs.OpLoadTest, msg.ID, msg.Outcome)
		return next, tea.Batch(cmd, outcomeCmd)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.toast, cmd = a.toast.Update(msg)
	cmds = append(cmds, cmd)
	a.statusBar, cmd = a.statusBar.Update(msg)
	cmds = append(cmds, cmd)
	a, cmd = a.updateScreen(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// updateScreen forwards msg to the visible screen.
func (a App) updateScreen(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.screen {
	case msgs.ScreenLogin:
		a.login, cmd = a.login.Update(msg)
	case msgs.ScreenList:
		a.list, cmd = a.list.Update(msg)
	case msgs.ScreenDetail:
		a.detail, cmd = a.detail.Update(msg)
	case msgs.ScreenForm:
		a.form, cmd = a.form.Update(msg)
	case msgs.ScreenLoadTest:
		a.loadtest, cmd = a.loadtest.Update(msg)
	}
	return a, cmd
}

func (a App) setMode(mode msgs.AppMode) App {
	a.mode = mode
	a.statusBar.SetMode(mode)
	return a
}

func (a *App) resizeViews() {
	l := a.layout
	a.header.SetWidth(l.Width)
	a.statusBar.SetWidth(l.Width)
	a.help.SetSize(l.Width, l.Height)
	a.login.SetSize(l.Width, l.ContentHeight)
	a.list.SetSize(l.Width, l.ContentHeight)
	a.detail.SetLayout(l)
	a.form.SetSize(l.Width, l.ContentHeight)
	a.loadtest.SetSize(l.Width, l.ContentHeight)
}

func (a *App) syncHeader() {
	trail := append(append([]msgs.Screen(nil), a.stack...), a.screen)
	a.header.SetTrail(trail)
}

func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var body string
	switch a.screen {
	case msgs.ScreenLogin:
		body = a.login.View()
	case msgs.ScreenList:
		body = a.list.View()
	case msgs.ScreenDetail:
		body = a.detail.View()
	case msgs.ScreenForm:
		body = a.form.View()
	case msgs.ScreenLoadTest:
		body = a.loadtest.View()
	}
	body = lipgloss.NewStyle().Width(a.width).Height(a.layout.ContentHeight).MaxHeight(a.layout.ContentHeight).Render(body)

	main := lipgloss.JoinVertical(lipgloss.Left, a.header.View(), body, a.statusBar.View())

	switch {
	case a.commandPalette.Visible:
		main = overlayCenter(a.commandPalette.View(), a.width, a.height)
	case a.help.Visible:
		main = overlayCenter(a.help.View(), a.width, a.height)
	case a.modal.Visible:
		main = overlayCenter(a.modal.View(), a.width, a.height)
	case a.jump.Visible:
		main = overlayCenter(a.jump.View(), a.width, a.height)
	}
	if a.toast.Visible {
		main = overlayTopRight(main, a.toast.View(), a.width)
	}
	return main
}

func overlayCenter(overlay string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func overlayTopRight(bg, overlay string, width int) string {
	gap := max(width-lipgloss.Width(overlay)-2, 0)
	positioned := lipgloss.NewStyle().MarginLeft(gap).Render(overlay)
	return positioned + "\n" + bg
}
