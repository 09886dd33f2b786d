package querysession

import (
	"strings"
	"testing"
	"time"
)

func TestFinalPlanAttachesFilterWhenAbsent(t *testing.T) {
	tr := NewTransformer()
	lo := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	out, err := tr.FinalPlan(`SELECT * FROM events`, lo, hi, "ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "ts >=") || !strings.Contains(out, "ts <") {
		t.Fatalf("expected synthesized filter, got %q", out)
	}
}

func TestFinalPlanLeavesExistingFilterAlone(t *testing.T) {
	tr := NewTransformer()
	lo := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	raw := `SELECT * FROM events WHERE ts >= 0`
	out, err := tr.FinalPlan(raw, lo, hi, "ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != raw {
		t.Fatalf("expected plan unchanged, got %q", out)
	}
}

func TestFinalPlanPreservesExplainWrapper(t *testing.T) {
	tr := NewTransformer()
	lo := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	out, err := tr.FinalPlan(`EXPLAIN SELECT * FROM events`, lo, hi, "ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "EXPLAIN ") {
		t.Fatalf("expected EXPLAIN prefix preserved, got %q", out)
	}
}

func TestFinalPlanNoopWhenAttachFiltersDisabled(t *testing.T) {
	tr := &Transformer{AttachFilters: false}
	lo := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	raw := `SELECT * FROM events`
	out, err := tr.FinalPlan(raw, lo, hi, "ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != raw {
		t.Fatalf("expected no-op plan when AttachFilters is false, got %q", out)
	}
}

func TestFinalPlanDefaultsTimestampColumn(t *testing.T) {
	tr := NewTransformer()
	lo := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	out, err := tr.FinalPlan(`SELECT * FROM events`, lo, hi, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, DefaultTimestampColumn+" >=") {
		t.Fatalf("expected default timestamp column filter, got %q", out)
	}
}
