package mock

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sadopc/apitrack/internal/tracker"
	"github.com/sadopc/apitrack/internal/transport"
)

// Probe is the outcome of one call to a tracked endpoint. Code is nil when
// no HTTP response was received.
type Probe struct {
	Code    *int
	Elapsed time.Duration
	Err     error
}

// Seconds returns the elapsed time in seconds.
func (p Probe) Seconds() float64 { return p.Elapsed.Seconds() }

// Prober performs the real HTTP calls behind "hit API" and load tests.
type Prober struct {
	client *http.Client
}

// NewProber builds a prober with its own transport.
func NewProber(opts transport.Options) (*Prober, error) {
	hc, err := transport.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &Prober{client: hc}, nil
}

// Probe calls e with its method, headers, params and body.
func (p *Prober) Probe(ctx context.Context, e tracker.Endpoint) Probe {
	req, err := buildProbeRequest(ctx, e)
	if err != nil {
		return Probe{Err: err}
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return Probe{Elapsed: time.Since(start), Err: err}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()

	code := resp.StatusCode
	return Probe{Code: &code, Elapsed: time.Since(start)}
}

func buildProbeRequest(ctx context.Context, e tracker.Endpoint) (*http.Request, error) {
	u, err := url.Parse(e.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}
	if len(e.Params) > 0 {
		q := u.Query()
		for k, v := range e.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if e.Body != "" && e.Method != tracker.MethodGET {
		body = strings.NewReader(e.Body)
	}
	method := string(e.Method)
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range e.Headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
