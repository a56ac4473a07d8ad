// Package metrics exposes relay counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "remotemouse"

// Metrics holds the relay's collectors. A nil *Metrics is valid and
// records nothing, so callers never need to check.
type Metrics struct {
	registry *prometheus.Registry

	sessionsTotal   prometheus.Counter
	sessionActive   prometheus.Gauge
	framesTotal     *prometheus.CounterVec
	protocolErrors  *prometheus.CounterVec
	inputEvents     *prometheus.CounterVec
	accelMultiplier prometheus.Histogram
}

// New creates the collectors on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of client connections accepted",
		}),
		sessionActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_active",
			Help:      "1 while a client is connected",
		}),
		framesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Total number of frames decoded, by command tag",
		}, []string{"tag"}),
		protocolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Total number of rejected frames, by error kind",
		}, []string{"kind"}),
		inputEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_events_total",
			Help:      "Total number of input events delivered, by type",
		}, []string{"type"}),
		accelMultiplier: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "accel_multiplier",
			Help:      "Acceleration multiplier applied to move commands",
			Buckets:   []float64{1, 1.5, 2, 3, 5, 8, 13, 21, 34},
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// SessionStarted records an accepted connection
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsTotal.Inc()
	m.sessionActive.Set(1)
}

// SessionEnded records a closed connection
func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.sessionActive.Set(0)
}

// Frame records a decoded frame
func (m *Metrics) Frame(tag string) {
	if m == nil {
		return
	}
	m.framesTotal.WithLabelValues(sanitizeTag(tag)).Inc()
}

// ProtocolError records a rejected frame
func (m *Metrics) ProtocolError(kind string) {
	if m == nil {
		return
	}
	m.protocolErrors.WithLabelValues(kind).Inc()
}

// InputEvent records a delivered input event
func (m *Metrics) InputEvent(eventType string) {
	if m == nil {
		return
	}
	m.inputEvents.WithLabelValues(eventType).Inc()
}

// Multiplier records an acceleration multiplier
func (m *Metrics) Multiplier(v float64) {
	if m == nil {
		return
	}
	m.accelMultiplier.Observe(v)
}

// sanitizeTag keeps label cardinality bounded: anything that is not a
// printable lowercase tag is folded into "other".
func sanitizeTag(tag string) string {
	for i := 0; i < len(tag); i++ {
		if tag[i] < 'a' || tag[i] > 'z' {
			return "other"
		}
	}
	return tag
}
