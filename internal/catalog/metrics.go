package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes controller activity as Prometheus collectors.
type Metrics struct {
	Reloads *prometheus.CounterVec
	Writes  *prometheus.CounterVec
	Seeded  prometheus.Counter
	Items   prometheus.Gauge
}

// NewMetrics creates the controller collectors and registers them with reg.
// A nil reg leaves them unregistered, which tests use to read values
// directly.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orchard",
			Subsystem: "catalog",
			Name:      "reloads_total",
			Help:      "Catalog reloads by outcome (loaded, seeded, fallback).",
		}, []string{"outcome"}),
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orchard",
			Subsystem: "catalog",
			Name:      "writes_total",
			Help:      "Catalog write operations by operation and result.",
		}, []string{"op", "result"}),
		Seeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orchard",
			Subsystem: "catalog",
			Name:      "seeded_items_total",
			Help:      "Default items successfully written by the seeding policy.",
		}),
		Items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orchard",
			Subsystem: "catalog",
			Name:      "items",
			Help:      "Number of items currently held by the controller.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Reloads, m.Writes, m.Seeded, m.Items)
	}
	return m
}

func (m *Metrics) observeReload(outcome ReloadOutcome, items int) {
	if m == nil {
		return
	}
	m.Reloads.WithLabelValues(string(outcome)).Inc()
	m.Items.Set(float64(items))
}

func (m *Metrics) observeWrite(op string, n Notification) {
	if m == nil {
		return
	}
	result := "ok"
	if !n.OK() {
		result = "failed"
	}
	m.Writes.WithLabelValues(op, result).Inc()
}

func (m *Metrics) observeSeed(r SeedReport) {
	if m == nil {
		return
	}
	m.Seeded.Add(float64(r.Created))
}
