package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "waste_service"

// Metrics holds the Prometheus collectors exported by the service. Each
// instance owns its registry so tests can build isolated copies.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	wasteRecorded   *prometheus.CounterVec
	wasteWeight     *prometheus.CounterVec
	usersRegistered prometheus.Counter
	dashboardBuild  prometheus.Histogram
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "HTTP errors by error code.",
		}, []string{"method", "path", "code"}),
		wasteRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "waste",
			Name:      "records_total",
			Help:      "Waste records logged.",
		}, []string{"type", "recycled"}),
		wasteWeight: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "waste",
			Name:      "weight_kg_total",
			Help:      "Kilograms of waste logged.",
		}, []string{"type", "recycled"}),
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "users",
			Name:      "registered_total",
			Help:      "Accounts created.",
		}),
		dashboardBuild: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "build_duration_seconds",
			Help:      "Time spent loading records and computing the dashboard.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .5, 1},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.errors,
		m.wasteRecorded,
		m.wasteWeight,
		m.usersRegistered,
		m.dashboardBuild,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, path, code).Inc()
}

// RecordWaste counts a stored waste record and its weight.
func (m *Metrics) RecordWaste(wasteType string, recycled bool, weight float64) {
	if m == nil {
		return
	}
	flag := strconv.FormatBool(recycled)
	m.wasteRecorded.WithLabelValues(wasteType, flag).Inc()
	m.wasteWeight.WithLabelValues(wasteType, flag).Add(weight)
}

// RecordUserRegistered counts a new account.
func (m *Metrics) RecordUserRegistered() {
	if m == nil {
		return
	}
	m.usersRegistered.Inc()
}

// ObserveDashboardBuild records how long a dashboard took to compute.
func (m *Metrics) ObserveDashboardBuild(d time.Duration) {
	if m == nil {
		return
	}
	m.dashboardBuild.Observe(d.Seconds())
}
