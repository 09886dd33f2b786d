// Package manifest provides loading and validation of logcove stream
// manifests.
//
// A stream manifest is a YAML or JSON document that declares a new log
// stream: its name, how it is partitioned by time, and whether its schema
// is fixed ("static") or allowed to grow as new fields are observed at
// ingest time.
//
// Manifests are validated against a JSON Schema to ensure correctness
// before a stream is created. The schema enforces strict typing and
// disallows unknown properties.
//
// Example manifest (YAML):
//
//	version: "1.0"
//	name: orders
//	time_partition_column: event_time
//	static_schema: false
//	fields:
//	  - name: order_id
//	    type: utf8
//	  - name: total
//	    type: float64
package manifest

// Manifest represents a validated stream manifest.
//
// Required fields are Version and Name. Fields and TimePartitionColumn are
// optional: an unspecified schema starts empty and grows at ingest time
// (unless StaticSchema is true, in which case Fields must be non-empty),
// and an unspecified TimePartitionColumn falls back to the implicit
// ingestion-timestamp partitioning column.
type Manifest struct {
	// Schema is an optional JSON Schema reference for editor support.
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty"`

	// Version is the manifest schema version. Must be "1.0".
	Version string `json:"version" yaml:"version"`

	// Name is the stream name. Must be non-empty and unique.
	Name string `json:"name" yaml:"name"`

	// TimePartitionColumn is the event field used for time partitioning.
	// Optional; empty means the implicit ingestion-timestamp column.
	TimePartitionColumn string `json:"time_partition_column,omitempty" yaml:"time_partition_column,omitempty"`

	// StaticSchema forbids schema evolution at ingest time when true.
	// Default: false.
	StaticSchema bool `json:"static_schema,omitempty" yaml:"static_schema,omitempty"`

	// Fields declares the stream's starting schema. Required and non-empty
	// when StaticSchema is true; optional otherwise.
	Fields []FieldConfig `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// FieldConfig declares one schema field in a stream manifest.
type FieldConfig struct {
	// Name is the field name.
	Name string `json:"name" yaml:"name"`

	// Type is the field's logical type: one of int64, float64, utf8, bool,
	// timestamp_ms, struct, or a list type written as "list<T>".
	Type string `json:"type" yaml:"type"`
}

// Default values for optional configuration fields.
const (
	// DefaultVersion is the current manifest schema version.
	DefaultVersion = "1.0"

	// DefaultStaticSchema is the default value for StaticSchema.
	DefaultStaticSchema = false
)

// ApplyDefaults fills in default values for optional fields.
//
// This should be called after loading and validating the manifest to
// ensure all optional fields have sensible values.
func (m *Manifest) ApplyDefaults() {
	if m.Version == "" {
		m.Version = DefaultVersion
	}
}
