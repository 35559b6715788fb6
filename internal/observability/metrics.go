package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the console's prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	apiCalls        *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	pollTicks       *prometheus.CounterVec
	activeStreams   *prometheus.GaugeVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Console HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Console HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Console HTTP errors by code.",
		}, []string{"method", "route", "code"}),
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Backend API calls by outcome.",
		}, []string{"method", "outcome"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Backend API call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		pollTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "support",
			Name:      "poll_ticks_total",
			Help:      "Support poll ticks by result.",
		}, []string{"view", "result"}),
		activeStreams: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "support",
			Name:      "active_streams",
			Help:      "Open support view streams.",
		}, []string{"view"}),
	}

	reg.MustRegister(
		m.requestCount,
		m.requestDuration,
		m.errorCount,
		m.apiCalls,
		m.apiDuration,
		m.pollTicks,
		m.activeStreams,
	)
	return m
}

// RecordRequest increments counters for console requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(method, route, code).Inc()
}

// RecordAPICall tracks one backend call; outcome is "ok" or an error code.
func (m *Metrics) RecordAPICall(method, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiCalls.WithLabelValues(method, outcome).Inc()
	m.apiDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordPollTick tracks a support poll tick.
func (m *Metrics) RecordPollTick(view string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.pollTicks.WithLabelValues(view, result).Inc()
}

// StreamOpened and StreamClosed track live support streams.
func (m *Metrics) StreamOpened(view string) {
	if m == nil {
		return
	}
	m.activeStreams.WithLabelValues(view).Inc()
}

func (m *Metrics) StreamClosed(view string) {
	if m == nil {
		return
	}
	m.activeStreams.WithLabelValues(view).Dec()
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
