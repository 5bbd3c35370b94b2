package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/apitrack/internal/app"
	"github.com/sadopc/apitrack/internal/auth"
	"github.com/sadopc/apitrack/internal/config"
	"github.com/sadopc/apitrack/internal/gateway"
	"github.com/sadopc/apitrack/internal/logging"
	"github.com/sadopc/apitrack/internal/mutation"
	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/transport"
)

// Set with -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	exitExpired = 3
)

// env is what every subcommand runs against.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    config.Config
	logger *slog.Logger
}

func main() {
	e := &env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(run(e, os.Args[1:]))
}

func run(e *env, args []string) int {
	e.cfg = config.Load()
	if err := e.cfg.Validate(); err != nil {
		fmt.Fprintf(e.stderr, "Error: invalid configuration: %v\n", err)
		return exitUsage
	}
	e.logger = logging.New(e.stderr, e.cfg.LogLevel)

	if len(args) == 0 {
		return tuiCmd(e)
	}
	rest := args[1:]
	switch args[0] {
	case "tui":
		return tuiCmd(e)
	case "login":
		return loginCmd(e, rest)
	case "logout":
		return logoutCmd(e, rest)
	case "list", "ls":
		return listCmd(e, rest)
	case "show":
		return showCmd(e, rest)
	case "hit":
		return hitCmd(e, rest)
	case "delete", "rm":
		return deleteCmd(e, rest)
	case "add":
		return addCmd(e, rest)
	case "import":
		return importCmd(e, rest)
	case "loadtest":
		return loadTestCmd(e, rest)
	case "mock":
		return mockCmd(e, rest)
	case "version", "--version":
		fmt.Fprintf(e.stdout, "apitrack %s (%s) built %s\n", version, commit, date)
		return exitOK
	case "help", "-h", "--help":
		printHelp(e.stdout)
		return exitOK
	}
	fmt.Fprintf(e.stderr, "Error: unknown command %q\n\n", args[0])
	printHelp(e.stderr)
	return exitUsage
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `apitrack - track and probe HTTP APIs from the terminal

Usage:
  apitrack                         Launch the TUI
  apitrack <command> [args] [flags]

Commands:
  login      Log in and save the session
  logout     Forget the saved session
  list       List tracked APIs
  show       Show one API with its call logs
  hit        Call a tracked API once through the backend
  add        Track a new API
  import     Track APIs from a JSON, YAML or curl file
  delete     Stop tracking an API
  loadtest   Run a backend load test against an API
  mock       Start the local reference backend
  version    Print version information
  help       Show this help message

Exit codes:
  0  success
  1  the operation failed
  2  usage error
  3  session expired, log in again

Run 'apitrack <command> --help' for the flags of a command.
`)
}

// signalContext is cancelled on Ctrl+C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// session bundles a gateway client with its persisted auth context.
type session struct {
	client *gateway.Client
	auth   *auth.Context
	store  *auth.SessionStore
}

func (s *session) Close() error { return s.store.Close() }

// openSession binds the saved token for the configured backend and builds a
// gateway client around it.
func (e *env) openSession(logger *slog.Logger) (*session, error) {
	store, err := auth.OpenSessionStore(e.cfg.SessionPath(), auth.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	ac := auth.NewContext("")
	if err := store.Bind(ac, e.cfg.APIURL); err != nil {
		store.Close()
		return nil, fmt.Errorf("loading session: %w", err)
	}
	hc, err := transport.NewClient(e.cfg.Transport())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("configuring HTTP client: %w", err)
	}
	client := gateway.New(e.cfg.APIURL, ac, gateway.WithHTTPClient(hc), gateway.WithLogger(logger))
	return &session{client: client, auth: ac, store: store}, nil
}

// requireLogin opens the session and fails with exitExpired when no token
// is saved.
func (e *env) requireLogin() (*session, int) {
	s, err := e.openSession(e.logger)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return nil, exitFailed
	}
	if !s.auth.LoggedIn() {
		s.Close()
		fmt.Fprintf(e.stderr, "Not logged in to %s. Run 'apitrack login' first.\n", e.cfg.APIURL)
		return nil, exitExpired
	}
	return s, exitOK
}

func (e *env) coordinator(s *session) *mutation.Coordinator {
	return mutation.New(s.client, tracker.Rules{RequireParamsForNonGET: e.cfg.RequireParamsForNonGET},
		mutation.WithLogger(e.logger))
}

// fail prints err and maps it to an exit code.
func (e *env) fail(err error) int {
	fmt.Fprintf(e.stderr, "Error: %s\n", tracker.UserMessage(err))
	var ve tracker.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 1 {
		for _, v := range ve {
			fmt.Fprintf(e.stderr, "  %s: %s\n", v.Field, v.Message)
		}
	}
	if tracker.IsAuthExpired(err) {
		return exitExpired
	}
	return exitFailed
}

// report prints a mutation notice and maps the outcome to an exit code.
func (e *env) report(out mutation.Outcome) int {
	if !out.OK() {
		return e.fail(out.Err)
	}
	if out.Notice.Text != "" {
		fmt.Fprintln(e.stderr, out.Notice.Text)
	}
	return exitOK
}

func tuiCmd(e *env) int {
	logger, closer, err := logging.OpenFile(e.cfg.LogPath(), e.cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitFailed
	}
	defer closer.Close()

	s, err := e.openSession(logger)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitFailed
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("starting tui", "api_url", e.cfg.APIURL, "logged_in", s.auth.LoggedIn())
	model := app.New(ctx, app.Options{
		Config:  e.cfg,
		Backend: s.client,
		Auth:    s.auth,
		Logger:  logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitFailed
	}
	return exitOK
}
