package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the tracking engine and the local
// status API.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	submissionsTotal    *prometheus.CounterVec
	pollsTotal          *prometheus.CounterVec
	pollFailuresTotal   *prometheus.CounterVec
	reconcileDuration   prometheus.Histogram
	overallProgress     prometheus.Gauge
	filesByStatus       *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signtrack",
				Name:      "http_requests_total",
				Help:      "Total number of status API requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "signtrack",
				Name:      "http_request_duration_seconds",
				Help:      "Status API request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signtrack",
				Name:      "submissions_total",
				Help:      "Total number of batch submissions by result.",
			},
			[]string{"result"},
		),
		pollsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signtrack",
				Name:      "polls_total",
				Help:      "Total number of progress polls by result.",
			},
			[]string{"result"},
		),
		pollFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signtrack",
				Name:      "poll_failures_total",
				Help:      "Total number of failed progress polls by reason.",
			},
			[]string{"reason"},
		),
		reconcileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "signtrack",
				Name:      "reconcile_duration_seconds",
				Help:      "Duration of merging one poll response into local state.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
		),
		overallProgress: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "signtrack",
				Name:      "overall_progress",
				Help:      "Current aggregate batch progress (0-100).",
			},
		),
		filesByStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "signtrack",
				Name:      "files",
				Help:      "Current number of tracked files grouped by status.",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.submissionsTotal,
		m.pollsTotal,
		m.pollFailuresTotal,
		m.reconcileDuration,
		m.overallProgress,
		m.filesByStatus,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncSubmission(result string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *Metrics) IncPoll(result string) {
	if m == nil {
		return
	}
	m.pollsTotal.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *Metrics) IncPollFailure(reason string) {
	if m == nil {
		return
	}
	m.pollFailuresTotal.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *Metrics) ObserveReconcileDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.reconcileDuration.Observe(seconds)
}

func (m *Metrics) SetOverallProgress(progress int) {
	if m == nil {
		return
	}
	m.overallProgress.Set(float64(progress))
}

func (m *Metrics) SetFilesByStatus(counts map[string]int) {
	if m == nil {
		return
	}
	for status, count := range counts {
		m.filesByStatus.WithLabelValues(normalizeLabel(status)).Set(float64(count))
	}
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
