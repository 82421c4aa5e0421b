package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	inFlightRequests prometheus.Gauge

	timersActive     prometheus.Gauge
	timerCompletions prometheus.Counter
	alarmsFired      prometheus.Counter
	searchCache      *prometheus.CounterVec
	searchErrors     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.3, 1, 3, 8},
			},
			[]string{"method", "route"},
		),
		inFlightRequests: f.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "Current number of in-flight HTTP requests",
		}),
		timersActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "focusdeck_timers_active",
			Help: "Countdowns currently running",
		}),
		timerCompletions: f.NewCounter(prometheus.CounterOpts{
			Name: "focusdeck_timer_completions_total",
			Help: "Countdowns that ran to completion",
		}),
		alarmsFired: f.NewCounter(prometheus.CounterOpts{
			Name: "focusdeck_alarms_fired_total",
			Help: "Daily alarms fired",
		}),
		searchCache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusdeck_search_cache_total",
				Help: "Music search cache lookups by result",
			},
			[]string{"result"},
		),
		searchErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "focusdeck_search_upstream_errors_total",
				Help: "Music search upstream failures by kind",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) TimersActive(n int) {
	if m == nil {
		return
	}
	m.timersActive.Set(float64(n))
}

func (m *Metrics) TimerCompleted() {
	if m == nil {
		return
	}
	m.timerCompletions.Inc()
}

func (m *Metrics) AlarmFired() {
	if m == nil {
		return
	}
	m.alarmsFired.Inc()
}

func (m *Metrics) SearchCache(result string) {
	if m == nil {
		return
	}
	m.searchCache.WithLabelValues(result).Inc()
}

func (m *Metrics) SearchUpstreamError(kind string) {
	if m == nil {
		return
	}
	m.searchErrors.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count, latency and in-flight requests.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlightRequests.Inc()
		defer m.inFlightRequests.Dec()

		route := NormalizeRoute(r.URL.Path)
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// NormalizeRoute replaces task and notification ids with {id} so label
// cardinality stays bounded.
func NormalizeRoute(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if i == 0 || part == "" {
			continue
		}
		if i >= 3 && (parts[i-1] == "tasks" || parts[i-1] == "notifications") && part != "latest" {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}
