// Package metrics exposes Prometheus instruments for the allocation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded for reservation writes.
const (
	OutcomeCreated   = "created"
	OutcomeExhausted = "capacity_exhausted"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
	OutcomeUpdated   = "updated"
	OutcomeShort     = "short"
)

// Metrics records allocation outcomes.  A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	creates *prometheus.CounterVec
	updates *prometheus.CounterVec
	tables  prometheus.Histogram
}

// New registers the allocation metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	creates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_create_total",
		Help: "Reservation create attempts by outcome.",
	}, []string{"outcome"})
	updates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_update_total",
		Help: "Reservation edits by outcome.",
	}, []string{"outcome"})
	tables := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reservation_tables_allocated",
		Help:    "Tables attached to a reservation when it is created.",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	})
	reg.MustRegister(creates, updates, tables)
	return &Metrics{creates: creates, updates: updates, tables: tables}
}

func (m *Metrics) ObserveCreate(outcome string) {
	if m == nil || m.creates == nil {
		return
	}
	m.creates.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveUpdate(outcome string) {
	if m == nil || m.updates == nil {
		return
	}
	m.updates.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveTables(n int) {
	if m == nil || m.tables == nil {
		return
	}
	m.tables.Observe(float64(n))
}
