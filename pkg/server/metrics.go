package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the navigation session metrics.
type Metrics struct {
	sessionsActive prometheus.Gauge
	sessionsTotal  prometheus.Counter
	frames         *prometheus.CounterVec
}

// NewMetrics registers session metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "fractals",
			Subsystem: "server",
			Name:      "nav_sessions_active",
			Help:      "Number of open navigation sessions.",
		}),
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fractals",
			Subsystem: "server",
			Name:      "nav_sessions_total",
			Help:      "Total number of navigation sessions opened.",
		}),
		frames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fractals",
			Subsystem: "server",
			Name:      "nav_frames_total",
			Help:      "Navigation socket frames by direction and type.",
		}, []string{"direction", "type"}),
	}
}

func (m *Metrics) sessionOpened() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
	m.sessionsTotal.Inc()
}

func (m *Metrics) sessionClosed() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

func (m *Metrics) frame(direction, typ string) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(direction, typ).Inc()
}
