package tracker

import (
	"strings"
)

// Validation messages shown inline next to form fields.
const (
	MsgEndpointRequired = "API Endpoint is required."
	MsgParamsRequired   = "Parameters are required for non-GET requests."
	MsgFileRequired     = "JSON file is required."
	MsgMethodInvalid    = "Request type must be GET, POST, PUT or DELETE."
)

// Rules configures local validation. Historical clients disagreed on whether
// non-GET requests must carry at least one parameter, so it is a switch.
type Rules struct {
	RequireParamsForNonGET bool
}

// Validate checks p before any network call. It returns ValidationErrors or nil.
func (r Rules) Validate(p Payload) error {
	var errs ValidationErrors
	if strings.TrimSpace(p.Endpoint) == "" {
		errs = append(errs, &ValidationError{Field: "endpoint", Message: MsgEndpointRequired})
	}
	if !p.Method.Valid() {
		errs = append(errs, &ValidationError{Field: "method", Message: MsgMethodInvalid})
	}
	if r.RequireParamsForNonGET && p.Method.Valid() && p.Method != MethodGET && countFilled(p.Params) == 0 {
		errs = append(errs, &ValidationError{Field: "params", Message: MsgParamsRequired})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Normalize trims the endpoint and drops header/param rows with an empty key or value.
func (p Payload) Normalize() Payload {
	p.Endpoint = strings.TrimSpace(p.Endpoint)
	p.Headers = dropEmpty(p.Headers)
	p.Params = dropEmpty(p.Params)
	return p
}

func countFilled(m map[string]string) int {
	n := 0
	for k, v := range m {
		if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

func dropEmpty(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		k = strings.TrimSpace(k)
		if k == "" || strings.TrimSpace(v) == "" {
			continue
		}
		out[k] = v
	}
	return out
}
