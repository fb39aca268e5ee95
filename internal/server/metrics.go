package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the registry served on /metrics and the HTTP collectors of
// the server itself. Progress collectors register against Registry.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	activeRequests  prometheus.Gauge
	requestsTotal   prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates a private registry holding the Go runtime and process
// collectors plus the HTTP request collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tallyrun_active_requests",
			Help: "HTTP requests currently being served.",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tallyrun_requests_total",
			Help: "HTTP requests served.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tallyrun_request_duration_seconds",
			Help:    "HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.activeRequests,
		m.requestsTotal,
		m.requestDuration,
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// Registry returns the registry served by WritePrometheus.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// IncrementActiveRequests marks the start of a request.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests marks the end of a request.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(method, route string, d time.Duration) {
	m.requestsTotal.Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// WritePrometheus writes the registry in the Prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
