package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/apitrack/internal/tracker"
)

// ReadFile loads endpoint definitions from path. An empty path is a
// validation error on the "file" field.
func ReadFile(path string) ([]tracker.Payload, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &tracker.ValidationError{Field: "file", Message: tracker.MsgFileRequired}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return defs, nil
}

// Parse decodes definitions in any supported format.
func Parse(data []byte) ([]tracker.Payload, error) {
	switch DetectFormat(data) {
	case FormatJSON:
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return fromDocument(doc)
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		return fromDocument(doc)
	case FormatCurl:
		var out []tracker.Payload
		for i, cmd := range splitCurlCommands(string(data)) {
			p, err := ParseCurl(cmd)
			if err != nil {
				return nil, fmt.Errorf("command %d: %w", i+1, err)
			}
			out = append(out, p)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unrecognised format (expected JSON, YAML or curl commands)")
}

// fromDocument accepts a single definition, a list of them, or an object
// wrapping the list under "apis", "endpoints" or "data".
func fromDocument(doc any) ([]tracker.Payload, error) {
	switch v := doc.(type) {
	case []any:
		out := make([]tracker.Payload, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %d: expected an object", i+1)
			}
			p, err := fromMap(m)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i+1, err)
			}
			out = append(out, p)
		}
		return out, nil
	case map[string]any:
		for _, k := range []string{"apis", "endpoints", "data"} {
			if list, ok := v[k].([]any); ok {
				return fromDocument(list)
			}
		}
		p, err := fromMap(v)
		if err != nil {
			return nil, err
		}
		return []tracker.Payload{p}, nil
	}
	return nil, fmt.Errorf("expected an object or a list of objects")
}

func fromMap(m map[string]any) (tracker.Payload, error) {
	p := tracker.Payload{
		Endpoint: firstString(m, "endpoint", "api_endpoint", "url"),
		Body:     bodyText(m["body"]),
	}
	method := firstString(m, "method", "request_type")
	if method == "" {
		method = "GET"
	}
	mm, err := tracker.ParseMethod(method)
	if err != nil {
		return tracker.Payload{}, err
	}
	p.Method = mm
	if p.Headers, err = stringMap(m["headers"]); err != nil {
		return tracker.Payload{}, fmt.Errorf("headers: %w", err)
	}
	if p.Params, err = stringMap(m["params"]); err != nil {
		return tracker.Payload{}, fmt.Errorf("params: %w", err)
	}
	return p.Normalize(), nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// stringMap accepts {"k": v} or the form editor's [{"key": k, "value": v}].
func stringMap(v any) (map[string]string, error) {
	out := map[string]string{}
	switch t := v.(type) {
	case nil:
	case map[string]any:
		for k, val := range t {
			out[k] = scalar(val)
		}
	case []any:
		for i, row := range t {
			r, ok := row.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("row %d: expected {key, value}", i+1)
			}
			k := scalar(r["key"])
			if k != "" {
				out[k] = scalar(r["value"])
			}
		}
	default:
		return nil, fmt.Errorf("expected an object or a list of {key, value}")
	}
	return out, nil
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		b, _ := json.Marshal(t)
		return string(b)
	}
	return fmt.Sprint(v)
}

// bodyText keeps string bodies verbatim and encodes structured ones as JSON.
func bodyText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
