// Package msgs defines the messages exchanged between the views, the
// components and the root model.
package msgs

import (
	"time"

	"github.com/sadopc/apitrack/internal/listview"
	"github.com/sadopc/apitrack/internal/mutation"
	"github.com/sadopc/apitrack/internal/tracker"
)

// SessionExpiredText is shown on the login view after a 401.
const SessionExpiredText = "Session expired. Please log in again."

// Screen is a top-level view.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenList
	ScreenDetail
	ScreenForm
	ScreenLoadTest
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "Login"
	case ScreenList:
		return "APIs"
	case ScreenDetail:
		return "Details"
	case ScreenForm:
		return "Editor"
	case ScreenLoadTest:
		return "Load Test"
	default:
		return "Unknown"
	}
}

// AppMode represents the current input mode.
type AppMode int

const (
	ModeNormal AppMode = iota
	ModeInsert
	ModeCommandPalette
	ModeModal
	ModeSearch
)

func (m AppMode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModeCommandPalette:
		return "COMMAND"
	case ModeModal:
		return "MODAL"
	case ModeSearch:
		return "SEARCH"
	default:
		return "UNKNOWN"
	}
}

// SetModeMsg changes the app mode.
type SetModeMsg struct {
	Mode AppMode
}

// OpenCommandPaletteMsg opens the command palette.
type OpenCommandPaletteMsg struct{}

// ShowHelpMsg toggles the help overlay.
type ShowHelpMsg struct{}

// SwitchThemeMsg switches the theme. An empty name opens the theme picker.
type SwitchThemeMsg struct {
	Name string
}

// SetPageSizeMsg changes rows per page on the API list. A zero size opens
// the page-size picker.
type SetPageSizeMsg struct {
	Size int
}

// ToastMsg shows a toast notification.
type ToastMsg struct {
	Text     string
	IsError  bool
	Duration time.Duration
}

// NoticeToast turns a mutation notice into a toast.
func NoticeToast(n mutation.Notice) ToastMsg {
	return ToastMsg{Text: n.Text, IsError: n.IsError}
}

// StatusMsg sets a temporary status bar message.
type StatusMsg struct {
	Text     string
	Duration time.Duration
}

// NavigateMsg switches the visible screen. ID selects the endpoint for the
// detail and load-test screens; Endpoint preloads the form for editing.
// Import opens the form on the add-from-file tab.
type NavigateMsg struct {
	Screen   Screen
	ID       string
	Endpoint *tracker.Endpoint
	Import   bool
}

// BackMsg returns to the previous screen.
type BackMsg struct{}

// LoggedInMsg is sent after a successful login.
type LoggedInMsg struct {
	Username string
}

// LogoutMsg asks for a logout confirmation.
type LogoutMsg struct{}

// LogoutConfirmedMsg performs the logout.
type LogoutConfirmedMsg struct{}

// SessionExpiredMsg is sent when any request came back 401.
type SessionExpiredMsg struct{}

// ListFetchedMsg carries a page of endpoints.
type ListFetchedMsg struct {
	Result listview.Result[tracker.Endpoint]
}

// LogsFetchedMsg carries a page of call logs for one endpoint.
type LogsFetchedMsg struct {
	EndpointID string
	Result     listview.Result[tracker.CallLog]
}

// EndpointFetchedMsg carries a single endpoint for the detail view.
type EndpointFetchedMsg struct {
	ID       string
	Endpoint tracker.Endpoint
	Err      error
}

// RefetchMsg reloads the views named in What.
type RefetchMsg struct {
	What mutation.Refetch
}

// SubmitEndpointMsg creates (ID empty) or updates an endpoint.
type SubmitEndpointMsg struct {
	ID      string
	Payload tracker.Payload
}

// ImportFileMsg creates endpoints from a JSON, YAML or curl file.
type ImportFileMsg struct {
	Path string
}

// RequestDeleteMsg asks for a delete confirmation.
type RequestDeleteMsg struct {
	ID    string
	Label string
}

// DeleteConfirmedMsg runs a confirmed delete.
type DeleteConfirmedMsg struct {
	Request *mutation.DeleteRequest
}

// InvokeMsg hits a tracked endpoint once.
type InvokeMsg struct {
	ID string
}

// RunLoadTestMsg starts a load test.
type RunLoadTestMsg struct {
	ID      string
	Request tracker.LoadTestRequest
}

// Op names the mutation a MutationDoneMsg reports on.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
	OpDelete
	OpInvoke
	OpImport
	OpLoadTest
)

// MutationDoneMsg reports the outcome of a mutation.
type MutationDoneMsg struct {
	Op      Op
	ID      string
	Outcome mutation.Outcome
}

// LoadTestDoneMsg reports a finished load test.
type LoadTestDoneMsg struct {
	ID      string
	Result  tracker.LoadTestResult
	Outcome mutation.Outcome
}

// CopyAsCurlMsg copies the endpoint on screen as a curl command.
type CopyAsCurlMsg struct{}
