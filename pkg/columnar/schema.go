// Package columnar implements the JSON-to-columnar converter: flattening
// nested JSON payloads, reconciling them against an evolving or static
// per-stream schema, and emitting record batches aligned to that schema.
package columnar

import (
	"encoding/json"
	"strings"

	"github.com/3leaps/logcove/pkg/catalog"
	"github.com/3leaps/logcove/pkg/registry"
)

// Field is a column name paired with its inferred or declared logical type.
type Field = registry.Field

// SchemaMismatch is returned when a static-schema stream receives an event
// whose leaf is absent from the stream's declared schema, or whose type
// disagrees with it.
type SchemaMismatch struct {
	Field    string
	Declared catalog.LogicalType
	Observed catalog.LogicalType
}

func (e *SchemaMismatch) Error() string {
	if e.Declared == "" {
		return "columnar: field " + e.Field + " not present in static schema"
	}
	return "columnar: field " + e.Field + " declared as " + string(e.Declared) + ", observed " + string(e.Observed)
}

// SchemaConflict is returned when two rows of the same evolving-schema batch
// disagree about a previously-inferred leaf's type.
type SchemaConflict struct {
	Field    string
	Existing catalog.LogicalType
	Incoming catalog.LogicalType
}

func (e *SchemaConflict) Error() string {
	return "columnar: schema conflict on field " + e.Field + ": existing=" + string(e.Existing) + " incoming=" + string(e.Incoming)
}

// inferType derives a logical type from a decoded JSON value. The document
// is decoded with json.Decoder.UseNumber so that whole numbers infer as
// int64 and fractional numbers as float64; ok is false for nil (no type can
// be inferred from a null leaf).
func inferType(v any) (catalog.LogicalType, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case bool:
		return catalog.LogicalType("bool"), true
	case json.Number:
		if !strings.ContainsAny(string(val), ".eE") {
			return catalog.LogicalType("int64"), true
		}
		return catalog.LogicalType("float64"), true
	case string:
		return catalog.LogicalType("utf8"), true
	default:
		return catalog.LogicalType("utf8"), true
	}
}
