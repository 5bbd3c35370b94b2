// Package tracker defines the API Tracker data model shared by the gateway,
// the list controller, the mutation coordinator and the reference backend.
package tracker

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Method is the HTTP method a tracked endpoint is invoked with.
type Method string

const (
	MethodGET    Method = "GET"
	MethodPOST   Method = "POST"
	MethodPUT    Method = "PUT"
	MethodDELETE Method = "DELETE"
)

// Methods lists the supported methods in display order.
var Methods = []Method{MethodGET, MethodPOST, MethodPUT, MethodDELETE}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if m.Valid() {
		return m, nil
	}
	return "", fmt.Errorf("unsupported method %q (must be GET, POST, PUT or DELETE)", s)
}

// Valid reports whether m is one of the four supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGET, MethodPOST, MethodPUT, MethodDELETE:
		return true
	}
	return false
}

func (m Method) String() string { return string(m) }

// Endpoint is a registered external API target with its last-known health.
type Endpoint struct {
	ID           string            `json:"id"`
	Endpoint     string            `json:"endpoint"`
	Method       Method            `json:"method"`
	Headers      map[string]string `json:"headers"`
	Params       map[string]string `json:"params"`
	Body         string            `json:"body"`
	Status       bool              `json:"status"`
	Code         *int              `json:"code"`
	ResponseTime *float64          `json:"response_time"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// StatusLabel renders the boolean health flag the way the list shows it.
func (e Endpoint) StatusLabel() string {
	if e.Status {
		return "active"
	}
	return "inactive"
}

// CodeLabel renders the last status code, or "---" when the endpoint was never hit.
func (e Endpoint) CodeLabel() string {
	if e.Code == nil {
		return "---"
	}
	return fmt.Sprintf("%d", *e.Code)
}

// ResponseTimeLabel renders the last latency in seconds.
func (e Endpoint) ResponseTimeLabel() string {
	if e.ResponseTime == nil {
		return "---"
	}
	return fmt.Sprintf("%.3fs", *e.ResponseTime)
}

// Payload returns the editable portion of the endpoint.
func (e Endpoint) Payload() Payload {
	return Payload{
		Endpoint: e.Endpoint,
		Method:   e.Method,
		Headers:  copyMap(e.Headers),
		Params:   copyMap(e.Params),
		Body:     e.Body,
	}
}

// CallLog is one historical invocation of a tracked endpoint.
type CallLog struct {
	ID           string    `json:"id"`
	EndpointID   string    `json:"api_id"`
	Timestamp    time.Time `json:"timestamp"`
	StatusCode   *int      `json:"status_code"`
	ResponseTime float64   `json:"response_time"`
}

// StatusLabel renders the logged status code, or "---" for transport failures.
func (l CallLog) StatusLabel() string {
	if l.StatusCode == nil {
		return "---"
	}
	return fmt.Sprintf("%d", *l.StatusCode)
}

// Payload is the body of create and update requests.
type Payload struct {
	Endpoint string            `json:"endpoint" yaml:"endpoint"`
	Method   Method            `json:"method" yaml:"method"`
	Headers  map[string]string `json:"headers" yaml:"headers"`
	Params   map[string]string `json:"params" yaml:"params"`
	Body     string            `json:"body" yaml:"body"`
}

// Page is one page of a remote collection.
type Page[T any] struct {
	Items []T
	Total int
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }
