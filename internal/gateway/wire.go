package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/apitrack/internal/tracker"
)

// Backends in the wild answered with several shapes over time:
//
//	{"data": [...], "total": n}          canonical list
//	{"data": {"data": [...], "total": n}} double-wrapped list
//	{"results": [...], "count": n}       paginator-style list
//	[...]                                bare list
//	{"_id", "api_endpoint", "request_type"} legacy field names
//
// Everything below turns those into tracker types.

type wireEndpoint struct {
	ID           json.RawMessage `json:"id"`
	LegacyID     json.RawMessage `json:"_id"`
	Endpoint     string          `json:"endpoint"`
	APIEndpoint  string          `json:"api_endpoint"`
	Method       string          `json:"method"`
	RequestType  string          `json:"request_type"`
	Headers      json.RawMessage `json:"headers"`
	Params       json.RawMessage `json:"params"`
	Body         json.RawMessage `json:"body"`
	Status       json.RawMessage `json:"status"`
	Code         json.RawMessage `json:"code"`
	ResponseTime json.RawMessage `json:"response_time"`
	UpdatedAt    string          `json:"updated_at"`
	LastUpdated  string          `json:"last_updated"`
}

func (w wireEndpoint) toEndpoint() (tracker.Endpoint, error) {
	e := tracker.Endpoint{
		ID:       firstNonEmpty(rawScalar(w.ID), rawScalar(w.LegacyID)),
		Endpoint: firstNonEmpty(w.Endpoint, w.APIEndpoint),
		Method:   tracker.Method(strings.ToUpper(firstNonEmpty(w.Method, w.RequestType))),
	}
	var err error
	if e.Headers, err = rawStringMap(w.Headers); err != nil {
		return e, fmt.Errorf("headers: %w", err)
	}
	if e.Params, err = rawStringMap(w.Params); err != nil {
		return e, fmt.Errorf("params: %w", err)
	}
	e.Body = rawText(w.Body)
	e.Status = rawBool(w.Status)
	e.Code = rawIntPtr(w.Code)
	e.ResponseTime = rawFloatPtr(w.ResponseTime)
	e.UpdatedAt = parseTime(firstNonEmpty(w.UpdatedAt, w.LastUpdated))
	return e, nil
}

type wireLog struct {
	ID           json.RawMessage `json:"id"`
	LegacyID     json.RawMessage `json:"_id"`
	APIID        json.RawMessage `json:"api_id"`
	API          json.RawMessage `json:"api"`
	Timestamp    string          `json:"timestamp"`
	CreatedAt    string          `json:"created_at"`
	StatusCode   json.RawMessage `json:"status_code"`
	ResponseTime json.RawMessage `json:"response_time"`
}

func (w wireLog) toCallLog(parent string) tracker.CallLog {
	l := tracker.CallLog{
		ID:         firstNonEmpty(rawScalar(w.ID), rawScalar(w.LegacyID)),
		EndpointID: firstNonEmpty(rawScalar(w.APIID), rawScalar(w.API), parent),
		Timestamp:  parseTime(firstNonEmpty(w.Timestamp, w.CreatedAt)),
		StatusCode: rawIntPtr(w.StatusCode),
	}
	if rt := rawFloatPtr(w.ResponseTime); rt != nil {
		l.ResponseTime = *rt
	}
	return l
}

func decodeEndpoint(raw []byte) (tracker.Endpoint, error) {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(raw, &env) == nil && isObject(env.Data) {
		raw = env.Data
	}
	var w wireEndpoint
	if err := json.Unmarshal(raw, &w); err != nil {
		return tracker.Endpoint{}, fmt.Errorf("decoding endpoint: %w", err)
	}
	return w.toEndpoint()
}

func decodeEndpointPage(raw []byte) (tracker.Page[tracker.Endpoint], error) {
	items, total, err := unwrapList(raw, []string{"data", "results", "apis"}, []string{"total", "count"})
	if err != nil {
		return tracker.Page[tracker.Endpoint]{}, err
	}
	page := tracker.Page[tracker.Endpoint]{Items: make([]tracker.Endpoint, 0, len(items)), Total: total}
	for i, item := range items {
		var w wireEndpoint
		if err := json.Unmarshal(item, &w); err != nil {
			return tracker.Page[tracker.Endpoint]{}, fmt.Errorf("decoding item %d: %w", i, err)
		}
		e, err := w.toEndpoint()
		if err != nil {
			return tracker.Page[tracker.Endpoint]{}, fmt.Errorf("decoding item %d: %w", i, err)
		}
		page.Items = append(page.Items, e)
	}
	return page, nil
}

func decodeLogPage(raw []byte, parent string) (tracker.Page[tracker.CallLog], error) {
	items, total, err := unwrapList(raw, []string{"call_logs", "logs", "data", "results"}, []string{"total_logs", "total", "count"})
	if err != nil {
		return tracker.Page[tracker.CallLog]{}, err
	}
	page := tracker.Page[tracker.CallLog]{Items: make([]tracker.CallLog, 0, len(items)), Total: total}
	for i, item := range items {
		var w wireLog
		if err := json.Unmarshal(item, &w); err != nil {
			return tracker.Page[tracker.CallLog]{}, fmt.Errorf("decoding log %d: %w", i, err)
		}
		page.Items = append(page.Items, w.toCallLog(parent))
	}
	return page, nil
}

// unwrapList finds the item array and the total count in raw. A missing total
// falls back to the number of items.
func unwrapList(raw []byte, listKeys, totalKeys []string) ([]json.RawMessage, int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, 0, nil
	}
	if raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, 0, fmt.Errorf("decoding list: %w", err)
		}
		return items, len(items), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, 0, fmt.Errorf("decoding list: %w", err)
	}
	for _, k := range listKeys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		if isObject(v) {
			// double-wrapped: {"data": {"data": [...], "total": n}}
			items, total, err := unwrapList(v, listKeys, totalKeys)
			if err != nil {
				return nil, 0, err
			}
			if t, ok := lookupTotal(obj, totalKeys); ok {
				total = t
			}
			return items, total, nil
		}
		var items []json.RawMessage
		if string(v) != "null" {
			if err := json.Unmarshal(v, &items); err != nil {
				return nil, 0, fmt.Errorf("decoding %q: %w", k, err)
			}
		}
		total, ok := lookupTotal(obj, totalKeys)
		if !ok {
			total = len(items)
		}
		return items, total, nil
	}
	return nil, 0, fmt.Errorf("decoding list: none of %v present", listKeys)
}

func lookupTotal(obj map[string]json.RawMessage, keys []string) (int, bool) {
	for _, k := range keys {
		if p := rawIntPtr(obj[k]); p != nil {
			return *p, true
		}
	}
	return 0, false
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// rawScalar renders a JSON string or number as text.
func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// rawText returns a JSON string as-is and re-encodes anything else, so that a
// body stored as an object still round-trips as text.
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// rawStringMap accepts an object, a JSON-encoded object in a string, or null.
// Non-string values are rendered as their JSON text.
func rawStringMap(raw json.RawMessage) (map[string]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]string{}, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return map[string]string{}, nil
		}
		raw = json.RawMessage(s)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		out[k] = rawText(v)
	}
	return out, nil
}

func rawBool(raw json.RawMessage) bool {
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return b
	}
	switch strings.ToLower(rawScalar(raw)) {
	case "true", "1", "active", "up", "success":
		return true
	}
	return false
}

func rawIntPtr(raw json.RawMessage) *int {
	s := rawScalar(raw)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}

func rawFloatPtr(raw json.RawMessage) *float64 {
	s := rawScalar(raw)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// parseTime accepts RFC 3339 and the naive layouts older backends emitted
// (interpreted as UTC). Unparseable input yields the zero time.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
