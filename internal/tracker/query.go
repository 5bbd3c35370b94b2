package tracker

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ListQuery holds the server-side parameters of a list page request.
type ListQuery struct {
	Page       int
	PageSize   int
	SearchTerm string
	Method     Method
	Status     string // "", "true" or "false"
	Code       string
}

// Values encodes q as query parameters. Empty filters are omitted.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("page_size", strconv.Itoa(q.PageSize))
	if s := strings.TrimSpace(q.SearchTerm); s != "" {
		v.Set("search_term", s)
	}
	if q.Method != "" {
		v.Set("method", string(q.Method))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Code != "" {
		v.Set("code", q.Code)
	}
	return v
}

// ParseStatusFilter maps the user-facing status filter to the wire value.
// Accepted inputs: "", "active", "inactive", "true", "false".
func ParseStatusFilter(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", true
	case "active", "true", "up":
		return "true", true
	case "inactive", "false", "down":
		return "false", true
	}
	return "", false
}

// LoadTestRequest configures a backend load test. Duration is in minutes.
type LoadTestRequest struct {
	Users    int
	Duration int
}

// LoadTestSample is one time-grouped response measurement.
type LoadTestSample struct {
	GroupStartTime time.Time `json:"group_start_time"`
	ResponseTime   float64   `json:"response_time"`
	StatusCode     int       `json:"status_code"`
}

// LoadTestResult summarises a backend load test.
type LoadTestResult struct {
	UserCount       int              `json:"user_count"`
	Duration        int              `json:"duration"`
	MinResponseTime float64          `json:"min_response_time"`
	MaxResponseTime float64          `json:"max_response_time"`
	AvgResponseTime float64          `json:"avg_response_time"`
	Responses       []LoadTestSample `json:"responses"`
}
