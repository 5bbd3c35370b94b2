package mock

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's collectors on a private registry so several
// servers can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ProbesTotal     *prometheus.CounterVec
	ProbeDuration   prometheus.Histogram
	LoadTestsTotal  prometheus.Counter
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "apitrack_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"status", "route"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "apitrack_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ProbesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "apitrack_probes_total",
			Help: "Calls made to tracked endpoints, by outcome",
		}, []string{"outcome"}),
		ProbeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "apitrack_probe_duration_seconds",
			Help:    "Response time of tracked endpoints",
			Buckets: prometheus.DefBuckets,
		}),
		LoadTestsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "apitrack_load_tests_total",
			Help: "Completed load tests",
		}),
	}
}

// Middleware records request counts and latency by route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		m.RequestsTotal.WithLabelValues(status, route).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}

// ObserveProbe records one tracked-endpoint call.
func (m *Metrics) ObserveProbe(p Probe) {
	outcome := "error"
	if p.Code != nil {
		outcome = strconv.Itoa(*p.Code/100) + "xx"
	}
	m.ProbesTotal.WithLabelValues(outcome).Inc()
	m.ProbeDuration.Observe(p.Seconds())
}
