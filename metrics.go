package unit

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts dispatch outcomes and pushes per unit id. Attach it with
// WithMetrics.
type Metrics struct {
	dispatches *prometheus.CounterVec
	emits      *prometheus.CounterVec
}

// NewMetrics registers the unit collectors on reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unit_dispatch_total",
			Help: "Dispatches by unit, outcome and rejection reason.",
		}, []string{"unit", "outcome", "reason"}),
		emits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unit_emit_total",
			Help: "Values pushed to subscribers by unit.",
		}, []string{"unit"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.dispatches, m.emits} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

func (m *Metrics) ObserveDispatch(unitID string, outcome Outcome, reason Reason) {
	m.dispatches.WithLabelValues(unitID, outcome.String(), string(reason)).Inc()
}

func (m *Metrics) ObserveEmit(unitID string) {
	m.emits.WithLabelValues(unitID).Inc()
}

// Dispatches returns the counter for one label combination, mostly for tests.
func (m *Metrics) Dispatches(unitID string, outcome Outcome, reason Reason) prometheus.Counter {
	return m.dispatches.WithLabelValues(unitID, outcome.String(), string(reason))
}

func (m *Metrics) Emits(unitID string) prometheus.Counter {
	return m.emits.WithLabelValues(unitID)
}
