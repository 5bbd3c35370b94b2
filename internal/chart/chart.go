// Package chart shapes response-time series and draws them as terminal
// bar charts and sparklines.
package chart

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/apitrack/internal/tracker"
)

// Point is one sample on a response-time series, in seconds.
type Point struct {
	Label   string
	Value   float64
	Failed  bool
	Code    int
	HasCode bool
}

// FromLogs orders call logs oldest first and turns them into points. Logs
// without a status code are marked failed.
func FromLogs(logs []tracker.CallLog) []Point {
	sorted := slices.Clone(logs)
	slices.SortStableFunc(sorted, func(a, b tracker.CallLog) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	out := make([]Point, 0, len(sorted))
	for _, l := range sorted {
		p := Point{Label: l.Timestamp.Local().Format("15:04:05"), Value: l.ResponseTime}
		if l.StatusCode == nil {
			p.Failed = true
		} else {
			p.Code, p.HasCode = *l.StatusCode, true
		}
		out = append(out, p)
	}
	return out
}

// FromLoadTest turns the grouped load-test samples into points.
func FromLoadTest(r tracker.LoadTestResult) []Point {
	out := make([]Point, 0, len(r.Responses))
	for _, s := range r.Responses {
		out = append(out, Point{
			Label:   s.GroupStartTime.Local().Format("15:04:05"),
			Value:   s.ResponseTime,
			Code:    s.StatusCode,
			HasCode: s.StatusCode != 0,
			Failed:  s.StatusCode == 0 || s.StatusCode >= 400,
		})
	}
	return out
}

// Summary holds min, max and mean over a series.
type Summary struct {
	Count int
	Min   float64
	Max   float64
	Avg   float64
}

// Summarize computes min/max/avg. An empty series has a zero Summary.
func Summarize(points []Point) Summary {
	if len(points) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(points), Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, p := range points {
		s.Min = min(s.Min, p.Value)
		s.Max = max(s.Max, p.Value)
		sum += p.Value
	}
	s.Avg = sum / float64(len(points))
	return s
}

// Styles colors the parts of a bar chart.
type Styles struct {
	Label lipgloss.Style
	Bar   lipgloss.Style
	Fail  lipgloss.Style
	Value lipgloss.Style
}

// PlainStyles renders without colors.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Label: s, Bar: s, Fail: s, Value: s}
}

const barRune = "█"

// Bars draws one horizontal bar per point, scaled so the largest value
// fills width cells.
func Bars(points []Point, width int, st Styles) string {
	if len(points) == 0 {
		return "No data"
	}
	width = max(width, 1)
	peak := Summarize(points).Max

	labelWidth := 0
	for _, p := range points {
		labelWidth = max(labelWidth, lipgloss.Width(p.Label))
	}

	var b strings.Builder
	for i, p := range points {
		n := 0
		if peak > 0 {
			n = int(math.Round(p.Value / peak * float64(width)))
		}
		if n == 0 && p.Value > 0 {
			n = 1
		}
		bar := st.Bar
		if p.Failed {
			bar = st.Fail
		}
		label := p.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(p.Label))
		fmt.Fprintf(&b, "%s │%s%s %s",
			st.Label.Render(label),
			bar.Render(strings.Repeat(barRune, n)),
			strings.Repeat(" ", width-n),
			st.Value.Render(FormatSeconds(p.Value)))
		if i < len(points)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws the series on a single line.
func Sparkline(points []Point) string {
	if len(points) == 0 {
		return ""
	}
	s := Summarize(points)
	spread := s.Max - s.Min
	var b strings.Builder
	for _, p := range points {
		idx := len(sparkRunes) - 1
		if spread > 0 {
			idx = int((p.Value - s.Min) / spread * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// FormatSeconds renders a latency in seconds with three decimals.
func FormatSeconds(v float64) string {
	return fmt.Sprintf("%.3fs", v)
}
