// Package gateway is the client for the API Tracker REST backend. It holds no
// state besides the injected auth context, and is the only place that knows
// about historical response shapes.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/apitrack/internal/auth"
	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/transport"
)

// maxBody caps how much of a response body is read.
const maxBody = 10 << 20

// Client talks to the backend on behalf of one operator session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       *auth.Context
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request traces.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for baseURL. ac supplies the bearer token; a nil ac
// means requests go out unauthenticated.
func New(baseURL string, ac *auth.Context, opts ...Option) *Client {
	if ac == nil {
		ac = auth.NewContext("")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: transport.DefaultTimeout},
		auth:       ac,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Auth returns the session context the client reads its token from.
func (c *Client) Auth() *auth.Context { return c.auth }

// FetchPage returns one server-side page of tracked endpoints.
func (c *Client) FetchPage(ctx context.Context, q tracker.ListQuery) (tracker.Page[tracker.Endpoint], error) {
	raw, err := c.do(ctx, request{op: "list endpoints", method: http.MethodGet, path: "/api/api-list/", query: q.Values()})
	if err != nil {
		return tracker.Page[tracker.Endpoint]{}, err
	}
	page, err := decodeEndpointPage(raw)
	if err != nil {
		return tracker.Page[tracker.Endpoint]{}, fmt.Errorf("list endpoints: %w", err)
	}
	return page, nil
}

// FetchOne returns a single tracked endpoint.
func (c *Client) FetchOne(ctx context.Context, id string) (tracker.Endpoint, error) {
	raw, err := c.do(ctx, request{op: "get endpoint", method: http.MethodGet, path: endpointPath(id)})
	if err != nil {
		return tracker.Endpoint{}, err
	}
	return decodeEndpointResponse("get endpoint", raw)
}

// Create registers a new endpoint.
func (c *Client) Create(ctx context.Context, p tracker.Payload) (tracker.Endpoint, error) {
	raw, err := c.do(ctx, request{op: "create endpoint", method: http.MethodPost, path: "/api/api-list/", body: p})
	if err != nil {
		return tracker.Endpoint{}, err
	}
	return decodeEndpointResponse("create endpoint", raw)
}

// Update replaces the editable fields of endpoint id.
func (c *Client) Update(ctx context.Context, id string, p tracker.Payload) (tracker.Endpoint, error) {
	raw, err := c.do(ctx, request{op: "update endpoint", method: http.MethodPut, path: endpointPath(id), body: p})
	if err != nil {
		return tracker.Endpoint{}, err
	}
	return decodeEndpointResponse("update endpoint", raw)
}

// Delete removes endpoint id.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{op: "delete endpoint", method: http.MethodDelete, path: endpointPath(id)})
	return err
}

// Invoke asks the backend to call the tracked endpoint now. The result is the
// endpoint with refreshed status, code and response time.
func (c *Client) Invoke(ctx context.Context, id string) (tracker.Endpoint, error) {
	raw, err := c.do(ctx, request{op: "hit endpoint", method: http.MethodPost, path: "/api/hit-api/" + url.PathEscape(id) + "/"})
	if err != nil {
		return tracker.Endpoint{}, err
	}
	return decodeEndpointResponse("hit endpoint", raw)
}

// FetchLogs returns one page of the call history of endpoint id.
func (c *Client) FetchLogs(ctx context.Context, id string, page, pageSize int) (tracker.Page[tracker.CallLog], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	raw, err := c.do(ctx, request{op: "list call logs", method: http.MethodGet, path: endpointPath(id) + "call-logs/", query: q})
	if err != nil {
		return tracker.Page[tracker.CallLog]{}, err
	}
	logs, err := decodeLogPage(raw, id)
	if err != nil {
		return tracker.Page[tracker.CallLog]{}, fmt.Errorf("list call logs: %w", err)
	}
	return logs, nil
}

// LoadTest runs a backend load test against endpoint id. The call blocks for
// roughly req.Duration minutes, so the client timeout is extended by that much.
func (c *Client) LoadTest(ctx context.Context, id string, req tracker.LoadTestRequest) (tracker.LoadTestResult, error) {
	q := url.Values{}
	q.Set("numUsers", strconv.Itoa(req.Users))
	q.Set("duration", strconv.Itoa(req.Duration))

	hc := *c.httpClient
	base := hc.Timeout
	if base <= 0 {
		base = transport.DefaultTimeout
	}
	hc.Timeout = 0
	ctx, cancel := context.WithTimeout(ctx, base+time.Duration(req.Duration)*time.Minute)
	defer cancel()

	raw, err := c.doWith(ctx, &hc, request{op: "load test", method: http.MethodGet, path: endpointPath(id) + "load-test/", query: q})
	if err != nil {
		return tracker.LoadTestResult{}, err
	}
	var res tracker.LoadTestResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return tracker.LoadTestResult{}, fmt.Errorf("load test: decoding response: %w", err)
	}
	return res, nil
}

// Login exchanges credentials for a bearer token and stores it in the auth
// context. Rejected credentials come back as a ValidationError.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	raw, err := c.do(ctx, request{op: "login", method: http.MethodPost, path: "/login/", form: form, public: true})
	if err != nil {
		return err
	}
	var resp struct {
		Token       string `json:"token"`
		Access      string `json:"access"`
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("login: decoding response: %w", err)
	}
	token := firstNonEmpty(resp.Token, resp.Access, resp.AccessToken)
	if token == "" {
		return fmt.Errorf("login: response carried no token")
	}
	c.auth.Set(username, token)
	return nil
}

// Logout clears the local session. The backend keeps no server-side session.
func (c *Client) Logout() {
	c.auth.Clear()
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	form   url.Values
	// public requests send no token, and a 401 is a credential failure rather
	// than an expired session.
	public bool
}

func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	return c.doWith(ctx, c.httpClient, r)
}

func (c *Client) doWith(ctx context.Context, hc *http.Client, r request) ([]byte, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case r.form != nil:
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.body != nil:
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding body: %w", r.op, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.auth.Token(); tok != "" && !r.public {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn("request failed", "op", r.op, "method", r.method, "path", r.path, "duration", elapsed, "error", err)
		return nil, &tracker.NetworkError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &tracker.NetworkError{Op: r.op, Err: fmt.Errorf("reading response: %w", err)}
	}
	c.logger.Debug("request", "op", r.op, "method", r.method, "path", r.path, "status", resp.StatusCode, "duration", elapsed)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	err = classify(resp.StatusCode, raw, r.public)
	if tracker.IsAuthExpired(err) {
		c.auth.Clear()
	}
	c.logger.Warn("request rejected", "op", r.op, "status", resp.StatusCode, "error", err)
	return nil, fmt.Errorf("%s: %w", r.op, err)
}

// classify maps a non-2xx response to the error taxonomy.
func classify(status int, raw []byte, public bool) error {
	if status == http.StatusUnauthorized && !public {
		return tracker.AuthExpiredError{}
	}
	if status >= 400 && status < 500 {
		var body map[string]any
		if json.Unmarshal(raw, &body) == nil {
			if ve := tracker.ValidationFromBody(body); ve != nil && (status == http.StatusBadRequest || status == http.StatusUnprocessableEntity || status == http.StatusUnauthorized) {
				return ve
			}
		}
	}
	return &tracker.HTTPError{StatusCode: status, Body: string(raw)}
}

func endpointPath(id string) string {
	return "/api/api-list/" + url.PathEscape(id) + "/"
}

func decodeEndpointResponse(op string, raw []byte) (tracker.Endpoint, error) {
	e, err := decodeEndpoint(raw)
	if err != nil {
		return tracker.Endpoint{}, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var he *tracker.HTTPError
	return errors.As(err, &he) && he.StatusCode == http.StatusNotFound
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
