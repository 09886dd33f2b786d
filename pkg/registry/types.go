// Package registry is the process-wide stream metadata registry (spec §4.3):
// a concurrent, many-reader/single-writer mapping from stream name to
// {schema, time-partition field, static-schema flag}.
package registry

import "github.com/3leaps/logcove/pkg/catalog"

// Field is a named column in a stream's schema.
type Field struct {
	Name string              `json:"name"`
	Type catalog.LogicalType `json:"type"`
}

// Schema is an ordered set of named fields. Per spec §3/§4.3, schemas only
// ever grow: fields are never removed, and an existing field's type never
// changes, for the lifetime of the process.
type Schema struct {
	Fields []Field `json:"fields"`
}

// Get returns the field with the given name, or nil if absent.
func (s *Schema) Get(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// Clone returns a deep copy, safe to hand to a reader outside the lock.
func (s *Schema) Clone() Schema {
	out := Schema{Fields: make([]Field, len(s.Fields))}
	copy(out.Fields, s.Fields)
	return out
}

// StreamMeta is one stream's registry entry.
type StreamMeta struct {
	Name string `json:"name"`

	Schema Schema `json:"schema"`

	// TimePartitionColumn is the event field that drives partitioning.
	// Empty means the implicit ingestion-timestamp field is used instead
	// (spec §3/§4.4 step 6).
	TimePartitionColumn string `json:"time_partition_column,omitempty"`

	// StaticSchema forbids schema evolution at ingest time when true.
	StaticSchema bool `json:"static_schema"`
}

// Clone returns a deep copy of the entry.
func (m *StreamMeta) Clone() StreamMeta {
	return StreamMeta{
		Name:                m.Name,
		Schema:              m.Schema.Clone(),
		TimePartitionColumn: m.TimePartitionColumn,
		StaticSchema:        m.StaticSchema,
	}
}

// SchemaConflict is returned by Evolve when a field's incoming type
// disagrees with its existing, already-committed type (spec §4.3).
type SchemaConflict struct {
	Field    string
	Existing catalog.LogicalType
	Incoming catalog.LogicalType
}

func (e *SchemaConflict) Error() string {
	return "schema conflict on field " + e.Field + ": existing=" + string(e.Existing) + " incoming=" + string(e.Incoming)
}
