package driver

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes RealTimeDriver counters as Prometheus instruments behind
// a caller-supplied Registerer — an observability hook the driver updates,
// never a web surface. Registerer may be nil, in which case metrics are a
// no-op.
type Metrics struct {
	signalsTotal  *prometheus.CounterVec
	stateChanges  prometheus.Counter
	barsProcessed prometheus.Counter
}

// NewMetrics registers the driver's instruments against reg. Passing a
// nil Registerer yields a Metrics whose methods are safe no-ops.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	m := &Metrics{
		signalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "decision_engine_signals_total",
			Help: "Count of emitted state-change signals by action.",
		}, []string{"action"}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decision_engine_state_changes_total",
			Help: "Count of RealTimeDriver state-change emissions.",
		}),
		barsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "decision_engine_bars_processed_total",
			Help: "Count of bar events processed by RealTimeDriver.",
		}),
	}
	reg.MustRegister(m.signalsTotal, m.stateChanges, m.barsProcessed)
	return m
}

func (m *Metrics) observeSignal(action string) {
	if m == nil {
		return
	}
	m.signalsTotal.WithLabelValues(action).Inc()
	m.stateChanges.Inc()
}

func (m *Metrics) observeBar() {
	if m == nil {
		return
	}
	m.barsProcessed.Inc()
}
