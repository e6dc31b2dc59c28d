package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics records outcomes of allocation runs.
type RunMetrics struct {
	runs        *prometheus.CounterVec
	suggestions *prometheus.CounterVec
	units       *prometheus.CounterVec
}

// NewRunMetrics registers allocation run metrics on the provided registerer.
func NewRunMetrics(reg prometheus.Registerer) *RunMetrics {
	if reg == nil {
		return &RunMetrics{}
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_runs_total",
		Help: "Allocation runs by type and terminal status.",
	}, []string{"run_type", "status"})
	suggestions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_suggestions_total",
		Help: "Suggestions generated per run type.",
	}, []string{"run_type"})
	units := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_suggested_units_total",
		Help: "Total units proposed for transfer per run type.",
	}, []string{"run_type"})
	reg.MustRegister(runs, suggestions, units)
	return &RunMetrics{
		runs:        runs,
		suggestions: suggestions,
		units:       units,
	}
}

// ObserveRun records a completed or failed run with its generated totals.
func (m *RunMetrics) ObserveRun(runType, status string, suggestions, units int) {
	if m == nil || m.runs == nil {
		return
	}
	m.runs.WithLabelValues(normalizeLabel(runType), normalizeLabel(status)).Inc()
	m.suggestions.WithLabelValues(normalizeLabel(runType)).Add(float64(suggestions))
	m.units.WithLabelValues(normalizeLabel(runType)).Add(float64(units))
}
