package manifest

import "testing"

func TestApplyDefaultsSetsVersion(t *testing.T) {
	m := &Manifest{Name: "orders"}
	m.ApplyDefaults()
	if m.Version != DefaultVersion {
		t.Fatalf("expected version %q, got %q", DefaultVersion, m.Version)
	}
}

func TestApplyDefaultsPreservesExplicitVersion(t *testing.T) {
	m := &Manifest{Name: "orders", Version: "1.0"}
	m.ApplyDefaults()
	if m.Version != "1.0" {
		t.Fatalf("expected version to remain 1.0, got %q", m.Version)
	}
}
