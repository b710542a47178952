// Package metrics holds Prometheus instrumentation for the relay.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the relay process.
type Metrics struct {
	registry           *prometheus.Registry
	activeConnections  prometheus.Gauge
	activeRooms        prometheus.Gauge
	chunksRelayedTotal prometheus.Counter
	initSegmentsTotal  prometheus.Counter
	vodTransfersTotal  *prometheus.CounterVec
}

// New creates and registers Prometheus metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	activeConnections := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "relay_active_connections",
		Help: "Number of currently connected clients",
	})
	activeRooms := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "relay_active_rooms",
		Help: "Number of rooms ever created and not yet garbage collected",
	})
	chunksRelayedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "relay_chunks_relayed_total",
		Help: "Total number of media chunks accepted and fanned out",
	})
	initSegmentsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "relay_init_segments_total",
		Help: "Total number of init segments accepted and fanned out",
	})
	vodTransfersTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_vod_transfers_total",
		Help: "Total number of VOD transfers by terminal status",
	}, []string{"status"})

	registry.MustRegister(
		activeConnections,
		activeRooms,
		chunksRelayedTotal,
		initSegmentsTotal,
		vodTransfersTotal,
	)

	return &Metrics{
		registry:           registry,
		activeConnections:  activeConnections,
		activeRooms:        activeRooms,
		chunksRelayedTotal: chunksRelayedTotal,
		initSegmentsTotal:  initSegmentsTotal,
		vodTransfersTotal:  vodTransfersTotal,
	}
}

// SetActiveConnections sets the live connection gauge.
func (m *Metrics) SetActiveConnections(n int) {
	m.activeConnections.Set(float64(n))
}

// SetActiveRooms sets the room count gauge.
func (m *Metrics) SetActiveRooms(n int) {
	m.activeRooms.Set(float64(n))
}

// IncChunksRelayed increments the relayed chunk counter.
func (m *Metrics) IncChunksRelayed() {
	m.chunksRelayedTotal.Inc()
}

// IncInitSegments increments the accepted init segment counter.
func (m *Metrics) IncInitSegments() {
	m.initSegmentsTotal.Inc()
}

// IncVODTransfers increments the VOD transfer counter for a terminal
// status ("completed", "failed" or "aborted").
func (m *Metrics) IncVODTransfers(status string) {
	m.vodTransfersTotal.WithLabelValues(status).Inc()
}

// Handler returns an http.Handler serving the private registry.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	inner := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		inner.ServeHTTP(w, r)
	})
}
