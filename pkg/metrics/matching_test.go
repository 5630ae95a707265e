package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMatchingMetricsRecordsCandidatesAndOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMatchingMetrics(reg)

	m.ObserveCandidates(3)
	m.ObserveCandidates(0)
	m.IncAssignment("committed")
	m.IncAssignment("committed")
	m.IncAssignment("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "fulfillment_assignments_total", "outcome", "committed"); err != nil {
		t.Fatalf("fetch committed: %v", err)
	} else if got != 2 {
		t.Fatalf("expected committed=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "fulfillment_assignments_total", "outcome", "unknown"); err != nil {
		t.Fatalf("fetch unknown: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unknown=1, got %f", got)
	}

	empty := findMetricFamily(mfs, "fulfillment_empty_results_total")
	if empty == nil || len(empty.GetMetric()) != 1 || empty.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected one empty result")
	}
	hist := findMetricFamily(mfs, "fulfillment_candidates_per_request")
	if hist == nil || hist.GetMetric()[0].GetHistogram().GetSampleCount() != 2 {
		t.Fatalf("expected two candidate observations")
	}
}

func TestMatchingMetricsNilSafe(t *testing.T) {
	var m *MatchingMetrics
	m.ObserveCandidates(1)
	m.IncAssignment("committed")

	unregistered := NewMatchingMetrics(nil)
	unregistered.ObserveCandidates(0)
	unregistered.IncAssignment("rejected")
}
