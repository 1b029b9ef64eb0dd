package entity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of a runtime. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	created   prometheus.Counter
	destroyed prometheus.Counter
	live      prometheus.Gauge
	changes   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		created: f.NewCounter(prometheus.CounterOpts{
			Name: "liteclass_records_created_total",
			Help: "Records constructed successfully.",
		}),
		destroyed: f.NewCounter(prometheus.CounterOpts{
			Name: "liteclass_records_destroyed_total",
			Help: "Records torn down with Destroy.",
		}),
		live: f.NewGauge(prometheus.GaugeOpts{
			Name: "liteclass_records_live",
			Help: "Records currently holding an identifier.",
		}),
		changes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "liteclass_changes_total",
			Help: "Change notifications dispatched, by action.",
		}, []string{"action"}),
	}
}

func (m *Metrics) recordCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
	m.live.Inc()
}

func (m *Metrics) recordDestroyed() {
	if m == nil {
		return
	}
	m.destroyed.Inc()
	m.live.Dec()
}

func (m *Metrics) recordChange(a Action) {
	if m == nil {
		return
	}
	m.changes.WithLabelValues(string(a)).Inc()
}
