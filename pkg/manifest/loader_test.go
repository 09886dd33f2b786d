package manifest

import "testing"

func TestLoadFromBytesYAML(t *testing.T) {
	data := []byte("version: \"1.0\"\nname: orders\ntime_partition_column: event_time\n")
	m, err := LoadFromBytes(data, "stream.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "orders" || m.TimePartitionColumn != "event_time" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestLoadFromBytesJSON(t *testing.T) {
	data := []byte(`{"version":"1.0","name":"orders"}`)
	m, err := LoadFromBytes(data, "stream.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "orders" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestLoadFromBytesRejectsUnknownFieldJSON(t *testing.T) {
	data := []byte(`{"version":"1.0","name":"orders","bogus":true}`)
	if _, err := LoadFromBytes(data, "stream.json"); err == nil {
		t.Fatal("expected unknown field to be rejected before struct parsing")
	}
}

func TestLoadFromBytesEmpty(t *testing.T) {
	if _, err := LoadFromBytes(nil, "stream.json"); err == nil {
		t.Fatal("expected empty input to be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/stream.yaml"); err == nil {
		t.Fatal("expected missing file to error")
	}
}
