// Package output renders tracker data for the headless CLI commands.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/sadopc/apitrack/internal/chart"
	"github.com/sadopc/apitrack/internal/listview"
	"github.com/sadopc/apitrack/internal/tracker"
)

// Format selects text or JSON output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" (or empty) and "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected text or json)", s)
}

// ListPage is a rendered list page plus its pager state.
type ListPage struct {
	Items      []tracker.Endpoint `json:"items"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
	Window     []listview.Button  `json:"-"`
}

// PrintList outputs a page of endpoints as a table followed by the pager line.
func PrintList(w io.Writer, p ListPage) {
	if len(p.Items) == 0 {
		fmt.Fprintln(w, "No APIs found.")
	} else {
		fmt.Fprintf(w, "%-4s %-6s %-44s %-9s %-5s %-9s %s\n", "#", "METHOD", "ENDPOINT", "STATUS", "CODE", "TIME", "UPDATED")
		for i, e := range p.Items {
			fmt.Fprintf(w, "%-4d %-6s %-44s %-9s %-5s %-9s %s\n",
				listview.RowNumber(p.Page, p.PageSize, i),
				e.Method, truncate(e.Endpoint, 44), e.StatusLabel(), e.CodeLabel(),
				e.ResponseTimeLabel(), updatedLabel(e))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Page %d of %d (%d total)  %s\n", p.Page, max(p.TotalPages, 1), p.Total, WindowLine(p.Window))
}

// WindowLine renders a page window, bracketing the active page.
func WindowLine(buttons []listview.Button) string {
	parts := make([]string, 0, len(buttons))
	for _, b := range buttons {
		if b.Active {
			parts = append(parts, "["+b.Label()+"]")
		} else {
			parts = append(parts, b.Label())
		}
	}
	return strings.Join(parts, " ")
}

// PrintEndpoint outputs one endpoint with its headers, params and body.
func PrintEndpoint(w io.Writer, e tracker.Endpoint) {
	fmt.Fprintf(w, "ID:            %s\n", e.ID)
	fmt.Fprintf(w, "Endpoint:      %s\n", e.Endpoint)
	fmt.Fprintf(w, "Method:        %s\n", e.Method)
	fmt.Fprintf(w, "Status:        %s\n", e.StatusLabel())
	fmt.Fprintf(w, "Code:          %s\n", e.CodeLabel())
	fmt.Fprintf(w, "Response time: %s\n", e.ResponseTimeLabel())
	fmt.Fprintf(w, "Updated:       %s\n", updatedLabel(e))
	printMap(w, "Headers", e.Headers)
	printMap(w, "Params", e.Params)
	if e.Body != "" {
		fmt.Fprintln(w, "Body:")
		for _, line := range strings.Split(e.Body, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// PrintLogs outputs a page of call logs numbered across the whole history,
// followed by a response-time chart of the page.
func PrintLogs(w io.Writer, logs []tracker.CallLog, page, pageSize, total, maxButtons int) {
	fmt.Fprintf(w, "\nCall logs (%d total)\n", total)
	if len(logs) == 0 {
		fmt.Fprintln(w, "No call logs yet.")
		return
	}
	fmt.Fprintf(w, "%-4s %-25s %-6s %s\n", "#", "TIMESTAMP", "CODE", "TIME")
	for i, l := range logs {
		fmt.Fprintf(w, "%-4d %-25s %-6s %s\n",
			listview.RowNumber(page, pageSize, i),
			l.Timestamp.Local().Format("2006-01-02 15:04:05"),
			l.StatusLabel(), chart.FormatSeconds(l.ResponseTime))
	}
	fmt.Fprintf(w, "Page %d of %d  %s\n\n", page, max(listview.TotalPages(total, pageSize), 1),
		WindowLine(listview.PageWindow(page, total, pageSize, maxButtons)))
	fmt.Fprintln(w, chart.Bars(chart.FromLogs(logs), 40, chart.PlainStyles()))
}

// PrintLoadTest outputs the load-test summary and its response-time chart.
func PrintLoadTest(w io.Writer, r tracker.LoadTestResult) {
	fmt.Fprintf(w, "Users:    %d\n", r.UserCount)
	fmt.Fprintf(w, "Duration: %d min\n", r.Duration)
	fmt.Fprintf(w, "Average:  %s\n", chart.FormatSeconds(r.AvgResponseTime))
	fmt.Fprintf(w, "Minimum:  %s\n", chart.FormatSeconds(r.MinResponseTime))
	fmt.Fprintf(w, "Maximum:  %s\n", chart.FormatSeconds(r.MaxResponseTime))
	if len(r.Responses) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, chart.Bars(chart.FromLoadTest(r), 40, chart.PlainStyles()))
	}
}

// PrintJSON outputs v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMap(w io.Writer, title string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, k := range tracker.SortedKeys(m) {
		fmt.Fprintf(w, "  %s: %s\n", k, m[k])
	}
}

func updatedLabel(e tracker.Endpoint) string {
	if e.UpdatedAt.IsZero() {
		return "never"
	}
	return humanize.Time(e.UpdatedAt)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
