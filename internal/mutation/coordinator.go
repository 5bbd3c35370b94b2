// Package mutation performs create, update, delete, hit and load-test
// actions against the gateway and reports what the views must do next.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sadopc/apitrack/internal/tracker"
)

// Gateway is the subset of the backend client the coordinator needs.
type Gateway interface {
	Create(ctx context.Context, p tracker.Payload) (tracker.Endpoint, error)
	Update(ctx context.Context, id string, p tracker.Payload) (tracker.Endpoint, error)
	Delete(ctx context.Context, id string) error
	Invoke(ctx context.Context, id string) (tracker.Endpoint, error)
	LoadTest(ctx context.Context, id string, req tracker.LoadTestRequest) (tracker.LoadTestResult, error)
}

// ErrNotConfirmed is returned by Delete for a request the user did not confirm.
var ErrNotConfirmed = errors.New("delete not confirmed")

// Refetch is a set of views that must reload after a mutation.
type Refetch uint8

const (
	RefetchList Refetch = 1 << iota
	RefetchDetail
	RefetchLogs
)

// Has reports whether r includes v.
func (r Refetch) Has(v Refetch) bool { return r&v != 0 }

// Navigate is where the UI should go after a mutation.
type Navigate int

const (
	NavStay Navigate = iota
	NavList
	NavLogin
)

// Notice is a transient user notification.
type Notice struct {
	Text    string
	IsError bool
}

// Outcome describes the result of a mutation for the caller to act on.
type Outcome struct {
	Notice      Notice
	Refetch     Refetch
	Navigate    Navigate
	FieldErrors map[string]string
	Endpoint    *tracker.Endpoint
	Err         error
}

// OK reports whether the mutation succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Notification texts.
const (
	MsgCreated      = "API added successfully!"
	MsgUpdated      = "API updated successfully!"
	MsgDeleted      = "API deleted successfully!"
	MsgHit          = "API hit successfully."
	MsgLoadTestDone = "Load test completed."
)

// DeleteRequest is a pending destructive action awaiting confirmation.
type DeleteRequest struct {
	ID        string
	Label     string
	confirmed bool
}

// Title is the confirmation prompt title.
func (r *DeleteRequest) Title() string { return "Delete API" }

// Message is the confirmation prompt body.
func (r *DeleteRequest) Message() string {
	if r.Label == "" {
		return "Are you sure you want to delete this API?"
	}
	return fmt.Sprintf("Are you sure you want to delete %s?", r.Label)
}

// ConfirmText is the label of the confirm button.
func (r *DeleteRequest) ConfirmText() string { return "Delete" }

// Confirm records the user's explicit confirmation.
func (r *DeleteRequest) Confirm() { r.confirmed = true }

// Confirmed reports whether Confirm was called.
func (r *DeleteRequest) Confirmed() bool { return r.confirmed }

// Coordinator runs mutations. It holds no view state.
type Coordinator struct {
	gw     Gateway
	rules  tracker.Rules
	logger *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// New creates a Coordinator.
func New(gw Gateway, rules tracker.Rules, opts ...Option) *Coordinator {
	c := &Coordinator{gw: gw, rules: rules, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns the local validation rules in effect.
func (c *Coordinator) Rules() tracker.Rules { return c.rules }

// RequestDelete opens a delete confirmation for id. Nothing is sent until
// the returned request is confirmed and passed to Delete.
func (c *Coordinator) RequestDelete(id, label string) *DeleteRequest {
	return &DeleteRequest{ID: id, Label: label}
}

// Delete deletes a confirmed request and asks for a list refetch, since the
// total and page boundaries may shift.
func (c *Coordinator) Delete(ctx context.Context, req *DeleteRequest) Outcome {
	if req == nil || !req.Confirmed() {
		return Outcome{Err: ErrNotConfirmed}
	}
	if err := c.gw.Delete(ctx, req.ID); err != nil {
		c.logger.Warn("delete failed", "id", req.ID, "error", err)
		return c.failure(err)
	}
	c.logger.Info("endpoint deleted", "id", req.ID)
	return Outcome{Notice: Notice{Text: MsgDeleted}, Refetch: RefetchList}
}

// Create validates p locally and registers it. On success the UI returns to
// the list.
func (c *Coordinator) Create(ctx context.Context, p tracker.Payload) Outcome {
	p = p.Normalize()
	if err := c.rules.Validate(p); err != nil {
		return c.invalid(err)
	}
	e, err := c.gw.Create(ctx, p)
	if err != nil {
		c.logger.Warn("create failed", "endpoint", p.Endpoint, "error", err)
		return c.failure(err)
	}
	c.logger.Info("endpoint created", "id", e.ID, "endpoint", e.Endpoint)
	return Outcome{Notice: Notice{Text: MsgCreated}, Navigate: NavList, Refetch: RefetchList, Endpoint: &e}
}

// Update validates p locally and replaces endpoint id.
func (c *Coordinator) Update(ctx context.Context, id string, p tracker.Payload) Outcome {
	p = p.Normalize()
	if err := c.rules.Validate(p); err != nil {
		return c.invalid(err)
	}
	e, err := c.gw.Update(ctx, id, p)
	if err != nil {
		c.logger.Warn("update failed", "id", id, "error", err)
		return c.failure(err)
	}
	c.logger.Info("endpoint updated", "id", id)
	return Outcome{Notice: Notice{Text: MsgUpdated}, Navigate: NavList, Refetch: RefetchList | RefetchDetail, Endpoint: &e}
}

// Invoke hits endpoint id through the backend. The list row, detail and logs
// are refetched whether or not the call succeeded.
func (c *Coordinator) Invoke(ctx context.Context, id string) Outcome {
	e, err := c.gw.Invoke(ctx, id)
	if err != nil {
		c.logger.Warn("hit failed", "id", id, "error", err)
		out := c.failure(err)
		if out.Navigate != NavLogin {
			out.Refetch = RefetchList | RefetchDetail | RefetchLogs
		}
		return out
	}
	c.logger.Info("endpoint hit", "id", id, "code", e.CodeLabel(), "status", e.StatusLabel())
	return Outcome{
		Notice:   Notice{Text: fmt.Sprintf("%s Status %s in %s.", MsgHit, e.CodeLabel(), e.ResponseTimeLabel())},
		Refetch:  RefetchList | RefetchDetail | RefetchLogs,
		Endpoint: &e,
	}
}

// LoadTest runs a backend load test. Users and duration must be positive.
func (c *Coordinator) LoadTest(ctx context.Context, id string, req tracker.LoadTestRequest) (tracker.LoadTestResult, Outcome) {
	var errs tracker.ValidationErrors
	if req.Users <= 0 {
		errs = append(errs, &tracker.ValidationError{Field: "users", Message: "Number of users must be at least 1."})
	}
	if req.Duration <= 0 {
		errs = append(errs, &tracker.ValidationError{Field: "duration", Message: "Duration must be at least 1 minute."})
	}
	if len(errs) > 0 {
		return tracker.LoadTestResult{}, c.invalid(errs)
	}
	res, err := c.gw.LoadTest(ctx, id, req)
	if err != nil {
		c.logger.Warn("load test failed", "id", id, "error", err)
		return tracker.LoadTestResult{}, c.failure(err)
	}
	c.logger.Info("load test finished", "id", id, "users", res.UserCount, "avg", res.AvgResponseTime)
	return res, Outcome{Notice: Notice{Text: MsgLoadTestDone}}
}

// invalid reports a local validation failure; nothing was sent.
func (c *Coordinator) invalid(err error) Outcome {
	return Outcome{
		Notice:      Notice{Text: tracker.UserMessage(err), IsError: true},
		FieldErrors: tracker.FieldErrors(err),
		Err:         err,
	}
}

// failure converts a gateway error into a user-facing outcome.
func (c *Coordinator) failure(err error) Outcome {
	out := Outcome{
		Notice:      Notice{Text: tracker.UserMessage(err), IsError: true},
		FieldErrors: tracker.FieldErrors(err),
		Err:         err,
	}
	if tracker.IsAuthExpired(err) {
		out.Navigate = NavLogin
	}
	return out
}
