package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEventsIngestedIncrementsByStreamAndFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.EventsIngested.WithLabelValues("events", "json").Inc()
	m.EventsIngested.WithLabelValues("events", "json").Inc()

	if got := testutil.ToFloat64(m.EventsIngested.WithLabelValues("events", "json")); got != 2 {
		t.Fatalf("expected counter 2, got %v", got)
	}
}

func TestDiskGaugesAreLabeledByMount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TotalDisk.WithLabelValues("/var/lib/logcove").Set(1024)
	if got := testutil.ToFloat64(m.TotalDisk.WithLabelValues("/var/lib/logcove")); got != 1024 {
		t.Fatalf("expected gauge 1024, got %v", got)
	}
}

func TestNewIsIsolatedPerRegistry(t *testing.T) {
	// Calling New twice against separate registries must not panic with a
	// duplicate-registration error.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
