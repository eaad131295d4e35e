// Package metrics exposes relay counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "n3x_rtc"

// Drop reasons.
const (
	ReasonMalformed = "malformed"
	ReasonNoSession = "no_session"
)

// Metrics holds the relay collectors on a private registry so several
// relays (tests) can live in one process. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	connections      prometheus.Gauge
	sessions         prometheus.Gauge
	framesReceived   *prometheus.CounterVec
	framesDropped    *prometheus.CounterVec
	deliveries       prometheus.Counter
	deliveriesFailed prometheus.Counter
	handshakes       prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of open signaling connections",
		}),
		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of sessions with at least one member",
		}),
		framesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Decoded inbound frames by message type",
		}, []string{"type"}),
		framesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Inbound frames dropped without reply",
		}, []string{"reason"}),
		deliveries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Frames queued to session members",
		}),
		deliveriesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_skipped_total",
			Help:      "Deliveries skipped because the recipient was not writable",
		}),
		handshakes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshakes_total",
			Help:      "Handshake frames answered",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ConnectionOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) ConnectionClosed() {
	if m != nil {
		m.connections.Dec()
	}
}

func (m *Metrics) SetSessions(n int) {
	if m != nil {
		m.sessions.Set(float64(n))
	}
}

func (m *Metrics) FrameReceived(kind string) {
	if m != nil {
		m.framesReceived.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) FrameDropped(reason string) {
	if m != nil {
		m.framesDropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) Delivered(sent, skipped int) {
	if m != nil {
		m.deliveries.Add(float64(sent))
		m.deliveriesFailed.Add(float64(skipped))
	}
}

func (m *Metrics) Handshake() {
	if m != nil {
		m.handshakes.Inc()
	}
}
