package tracker

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// NetworkError means the request never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response that carried no structured validation detail.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("API error (%d %s)", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, body)
}

// ValidationError is a field-level (or general, when Field is empty) rejection.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every failed rule of a local validation pass.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Fields returns field -> message, for inline rendering.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		out[e.Field] = e.Message
	}
	return out
}

// As lets errors.As find the first *ValidationError.
func (v ValidationErrors) As(target any) bool {
	if len(v) == 0 {
		return false
	}
	if t, ok := target.(**ValidationError); ok {
		*t = v[0]
		return true
	}
	return false
}

// AuthExpiredError is returned for any 401 response.
type AuthExpiredError struct{}

func (AuthExpiredError) Error() string { return "session expired, please log in again" }

// IsAuthExpired reports whether err (or anything it wraps) is an AuthExpiredError.
func IsAuthExpired(err error) bool {
	var target AuthExpiredError
	return errors.As(err, &target)
}

// FieldErrors extracts inline field messages from err, if it carries any.
func FieldErrors(err error) map[string]string {
	var many ValidationErrors
	if errors.As(err, &many) {
		return many.Fields()
	}
	var one *ValidationError
	if errors.As(err, &one) && one.Field != "" {
		return map[string]string{one.Field: one.Message}
	}
	return nil
}

// UserMessage renders err as a one-line notification text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		netErr  *NetworkError
		httpErr *HTTPError
		valErr  *ValidationError
	)
	switch {
	case IsAuthExpired(err):
		return "Session expired. Please log in again."
	case errors.As(err, &netErr):
		return "Could not reach the server: " + rootCause(netErr.Err)
	case errors.As(err, &valErr):
		return valErr.Message
	case errors.As(err, &httpErr):
		return httpErr.Error()
	}
	return err.Error()
}

func rootCause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// ValidationFromBody decodes the structured detail of a 400-class response.
// It understands {"field","message"}, {"message"}, {"error"} and
// {"<field>": ["msg", ...]} shapes, and returns nil when none apply.
func ValidationFromBody(body map[string]any) *ValidationError {
	if len(body) == 0 {
		return nil
	}
	if msg, ok := body["message"].(string); ok && msg != "" {
		field, _ := body["field"].(string)
		return &ValidationError{Field: field, Message: msg}
	}
	if msg, ok := body["error"].(string); ok && msg != "" {
		return &ValidationError{Message: msg}
	}
	if msg, ok := body["detail"].(string); ok && msg != "" {
		return &ValidationError{Message: msg}
	}

	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := body[k].(type) {
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					return &ValidationError{Field: k, Message: s}
				}
			}
		case string:
			return &ValidationError{Field: k, Message: v}
		}
	}
	return nil
}
