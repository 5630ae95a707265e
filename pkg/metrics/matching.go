package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MatchingMetrics records how supplier matching behaves in production.
type MatchingMetrics struct {
	candidates  prometheus.Histogram
	empty       prometheus.Counter
	assignments *prometheus.CounterVec
}

// NewMatchingMetrics registers the matching metrics on the provided registerer.
func NewMatchingMetrics(reg prometheus.Registerer) *MatchingMetrics {
	if reg == nil {
		return &MatchingMetrics{}
	}
	candidates := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fulfillment_candidates_per_request",
		Help:    "Number of supplier candidates returned per matching request.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})
	empty := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_empty_results_total",
		Help: "Matching requests where no supplier lists any ordered product.",
	})
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_assignments_total",
		Help: "Assignment commits by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(candidates, empty, assignments)
	return &MatchingMetrics{
		candidates:  candidates,
		empty:       empty,
		assignments: assignments,
	}
}

// ObserveCandidates records the size of a candidate list.
func (m *MatchingMetrics) ObserveCandidates(count int) {
	if m == nil || m.candidates == nil {
		return
	}
	m.candidates.Observe(float64(count))
	if count == 0 && m.empty != nil {
		m.empty.Inc()
	}
}

// IncAssignment counts an assignment attempt with the given outcome.
func (m *MatchingMetrics) IncAssignment(outcome string) {
	if m == nil || m.assignments == nil {
		return
	}
	m.assignments.WithLabelValues(labelOrUnknown(outcome)).Inc()
}
