package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the relay.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     prometheus.Counter
	errorsTotal       prometheus.Counter
	messagesTotal     *prometheus.CounterVec
	deliveriesTotal   *prometheus.CounterVec
	deliveryFailures  prometheus.Counter
	activeRooms       prometheus.Gauge
	activeConnections prometheus.Gauge
}

// New creates and registers Prometheus metrics for the relay.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "videochat_http_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "videochat_http_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	messagesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "videochat_ws_messages_total",
		Help: "Total number of websocket messages received, by type",
	}, []string{"type"})
	deliveriesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "videochat_ws_deliveries_total",
		Help: "Total number of relayed frames written to room members, by type",
	}, []string{"type"})
	deliveryFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "videochat_ws_delivery_failures_total",
		Help: "Total number of relayed frames that could not be written",
	})
	activeRooms := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "videochat_active_rooms",
		Help: "Number of rooms with at least one member",
	})
	activeConnections := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "videochat_joined_connections",
		Help: "Number of connections that joined a room",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		messagesTotal,
		deliveriesTotal,
		deliveryFailures,
		activeRooms,
		activeConnections,
	)

	return &Metrics{
		registry:          registry,
		requestsTotal:     requestsTotal,
		errorsTotal:       errorsTotal,
		messagesTotal:     messagesTotal,
		deliveriesTotal:   deliveriesTotal,
		deliveryFailures:  deliveryFailures,
		activeRooms:       activeRooms,
		activeConnections: activeConnections,
	}
}

func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

func (m *Metrics) IncMessages(messageType string) {
	m.messagesTotal.WithLabelValues(messageType).Inc()
}

func (m *Metrics) AddDeliveries(messageType string, n int) {
	m.deliveriesTotal.WithLabelValues(messageType).Add(float64(n))
}

func (m *Metrics) IncDeliveryFailures() {
	m.deliveryFailures.Inc()
}

// SetRooms sets the active rooms and joined connections gauges.
func (m *Metrics) SetRooms(rooms, conns int) {
	m.activeRooms.Set(float64(rooms))
	m.activeConnections.Set(float64(conns))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
