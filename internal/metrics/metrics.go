// Package metrics exposes watchset engine counters through Prometheus.
//
// Collectors are registered on the Registerer handed to New, never on the
// global default registry, so several engines (and tests) can coexist in
// one process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for OpsTotal.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
)

type Metrics struct {
	OpsTotal        *prometheus.CounterVec
	EvictedEntries  *prometheus.CounterVec
	CurrentSN       prometheus.Gauge
	RetainedEntries *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OpsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "watchset_ops_total",
			Help: "Total number of registry operations by kind and outcome",
		}, []string{"kind", "outcome"}),
		EvictedEntries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "watchset_evicted_entries_total",
			Help: "Total number of list steps evicted by the retention window",
		}, []string{"list"}),
		CurrentSN: f.NewGauge(prometheus.GaugeOpts{
			Name: "watchset_current_sn",
			Help: "Current registry sequence number",
		}),
		RetainedEntries: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "watchset_retained_entries",
			Help: "Number of steps currently retained per list",
		}, []string{"list"}),
	}
}

func (m *Metrics) ObserveOp(kind string, ok bool) {
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeRejected
	}
	m.OpsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) SetCurrentSN(sn int64) {
	m.CurrentSN.Set(float64(sn))
}

func (m *Metrics) SetRetained(list string, n int) {
	m.RetainedEntries.WithLabelValues(list).Set(float64(n))
}

// Evicted implements registry.EvictionObserver.
func (m *Metrics) Evicted(list string, _ int64, removed int, retained int) {
	m.EvictedEntries.WithLabelValues(list).Add(float64(removed))
	m.SetRetained(list, retained)
}
