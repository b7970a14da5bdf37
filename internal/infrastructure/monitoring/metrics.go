package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Direction labels bridge traffic
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Content metrics
	ContentRequests *prometheus.CounterVec
	ContentDuration *prometheus.HistogramVec
	ContentBytes    *prometheus.CounterVec

	// Control HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Bridge metrics
	BridgeMessages    *prometheus.CounterVec
	BridgeDropped     *prometheus.CounterVec
	BridgeConnections prometheus.Gauge
	PendingCallbacks  prometheus.Gauge

	startTime time.Time
}

// NewMetrics creates a new metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		ContentRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_content_requests_total",
				Help: "Total number of virtual content requests",
			},
			[]string{"route", "outcome"},
		),
		ContentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "viewer_content_request_duration_seconds",
				Help:    "Virtual content request duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"route"},
		),
		ContentBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_content_bytes_total",
				Help: "Total payload bytes served by the content server",
			},
			[]string{"route"},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_http_requests_total",
				Help: "Total number of control HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "viewer_http_request_duration_seconds",
				Help:    "Control HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		BridgeMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_bridge_messages_total",
				Help: "Total number of bridge messages",
			},
			[]string{"direction", "name"},
		),
		BridgeDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_bridge_dropped_total",
				Help: "Inbound bridge frames dropped before dispatch",
			},
			[]string{"reason"},
		),
		BridgeConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "viewer_bridge_connections",
				Help: "Number of open bridge connections",
			},
		),
		PendingCallbacks: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "viewer_bridge_pending_callbacks",
				Help: "Correlated calls still waiting for a reply",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "viewer_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)
	reg.MustRegister(collectors.NewGoCollector())

	return m
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordContentRequest records one virtual content request
func (m *Metrics) RecordContentRequest(route, outcome string, size int, duration time.Duration) {
	m.ContentRequests.WithLabelValues(route, outcome).Inc()
	m.ContentDuration.WithLabelValues(route).Observe(duration.Seconds())
	if size > 0 {
		m.ContentBytes.WithLabelValues(route).Add(float64(size))
	}
}

// RecordHTTPRequest records a control HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordBridgeMessage records a bridge message
func (m *Metrics) RecordBridgeMessage(direction Direction, name string) {
	m.BridgeMessages.WithLabelValues(string(direction), name).Inc()
}

// RecordBridgeDropped records an inbound frame that was not dispatched
func (m *Metrics) RecordBridgeDropped(reason string) {
	m.BridgeDropped.WithLabelValues(reason).Inc()
}

// SetPendingCallbacks sets the number of outstanding correlated calls
func (m *Metrics) SetPendingCallbacks(count int) {
	m.PendingCallbacks.Set(float64(count))
}

// IncBridgeConnections increments open bridge connections
func (m *Metrics) IncBridgeConnections() {
	m.BridgeConnections.Inc()
}

// DecBridgeConnections decrements open bridge connections
func (m *Metrics) DecBridgeConnections() {
	m.BridgeConnections.Dec()
}
