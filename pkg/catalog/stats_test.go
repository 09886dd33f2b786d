package catalog

import (
	"testing"
	"time"
)

func TestMatchesRangeInt64(t *testing.T) {
	tests := []struct {
		name       string
		min, max   int64
		lo, hi     int64
		wantMatch  bool
	}{
		{"overlap", 10, 20, 15, 25, true},
		{"touching", 10, 20, 20, 30, true},
		{"disjoint", 10, 20, 21, 30, false},
		{"contains", 10, 20, 0, 100, true},
		{"contained", 0, 100, 10, 20, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &TypedStatistics{Int64: &Int64Stats{Min: tt.min, Max: tt.max}}
			got := s.MatchesRange(tt.lo, tt.hi)
			if got != tt.wantMatch {
				t.Fatalf("MatchesRange(%d,%d) on [%d,%d] = %v, want %v", tt.lo, tt.hi, tt.min, tt.max, got, tt.wantMatch)
			}
		})
	}
}

func TestMatchesRangeNullOnly(t *testing.T) {
	s := &TypedStatistics{NullCount: 5}
	if s.MatchesRange(int64(0), int64(100)) {
		t.Fatal("null-only column must never report a range match")
	}
}

func TestMatchesRangeUtf8Lexicographic(t *testing.T) {
	s := &TypedStatistics{Utf8: &Utf8Stats{Min: "apple", Max: "mango"}}
	if !s.MatchesRange("kiwi", "zebra") {
		t.Fatal("expected lexicographic overlap")
	}
	if s.MatchesRange("nectarine", "zebra") {
		t.Fatal("expected no overlap past max")
	}
}

func TestMatchesRangeBoolOrdering(t *testing.T) {
	// false < true
	s := &TypedStatistics{Bool: &BoolStats{Min: false, Max: false}}
	if s.MatchesRange(true, true) {
		t.Fatal("all-false column should not match an all-true range")
	}
	if !s.MatchesRange(false, true) {
		t.Fatal("all-false column should match a range spanning false..true")
	}
}

func TestPartitionPathSameDate(t *testing.T) {
	got := PartitionPath("orders", mustParse(t, "2024-01-15T01:00:00Z"), mustParse(t, "2024-01-15T23:00:00Z"))
	want := "orders/date=2024-01-15"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestPartitionPathSpanningDates(t *testing.T) {
	got := PartitionPath("orders", mustParse(t, "2024-01-15T23:00:00Z"), mustParse(t, "2024-01-16T01:00:00Z"))
	want := "orders/date=2024-01-15:2024-01-16"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestManifestsInRangeSortedAndFiltered(t *testing.T) {
	snap := &Snapshot{Items: []ManifestListItem{
		{ManifestPath: "b", TimeLowerBound: mustParse(t, "2024-01-02T00:00:00Z"), TimeUpperBound: mustParse(t, "2024-01-02T12:00:00Z")},
		{ManifestPath: "a", TimeLowerBound: mustParse(t, "2024-01-01T00:00:00Z"), TimeUpperBound: mustParse(t, "2024-01-01T12:00:00Z")},
		{ManifestPath: "out", TimeLowerBound: mustParse(t, "2024-03-01T00:00:00Z"), TimeUpperBound: mustParse(t, "2024-03-01T12:00:00Z")},
	}}
	got := ManifestsInRange(snap, mustParse(t, "2024-01-01T00:00:00Z"), mustParse(t, "2024-01-03T00:00:00Z"))
	if len(got) != 2 || got[0].ManifestPath != "a" || got[1].ManifestPath != "b" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return parsed
}
