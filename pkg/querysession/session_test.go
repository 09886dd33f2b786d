package querysession

import "testing"

func TestResolveMemoryPoolSizeHonorsExplicitOverride(t *testing.T) {
	size, err := resolveMemoryPoolSize(Config{MemoryPoolBytes: 1024})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 1024 {
		t.Fatalf("expected explicit override to be used verbatim, got %d", size)
	}
}

func TestDefaultConfigPinsAllKnobsOn(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.PruneEnabled || !cfg.PushdownEnabled || !cfg.RepartitionEnabled || !cfg.BinaryAsString {
		t.Fatalf("expected all knobs on by default, got %+v", cfg)
	}
}
