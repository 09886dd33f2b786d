package columnar

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/3leaps/logcove/pkg/catalog"
	"github.com/3leaps/logcove/pkg/registry"
)

// Options configures a single call to Convert (spec §4.4).
type Options struct {
	// Value is a decoded JSON document (object, or array of objects),
	// typically produced by DecodeJSON so numbers arrive as json.Number.
	Value any

	// Headers holds the raw request headers, keyed by canonical header
	// name (as from net/http.Header).
	Headers map[string][]string

	// TagHeaderPrefix and MetadataHeaderPrefix select which headers
	// contribute to the tags/metadata reserved columns.
	TagHeaderPrefix      string
	MetadataHeaderPrefix string

	// Separator joins multiple k=v entries within the tags/metadata
	// columns.
	Separator string

	// Schema is the stream's currently known schema (may be empty).
	Schema registry.Schema

	// StaticSchema forbids introducing leaves absent from Schema.
	StaticSchema bool

	// TimePartitionField names the event field used for partitioning, or
	// is empty to use ingestion time.
	TimePartitionField string

	// HadExistingSchema reports whether the registry already had a
	// non-empty schema for this stream before this call; it drives
	// Result.IsFirstEvent.
	HadExistingSchema bool

	// Now returns the current time; defaults to time.Now when nil.
	Now func() time.Time
}

// Result is the outcome of a successful Convert call.
type Result struct {
	Batch *RecordBatch

	// NewFields lists leaves this call introduced that the caller should
	// pass to registry.Registry.Evolve.
	NewFields []Field

	// ParsedTimestamps holds one parsed partition time per row, in row
	// order.
	ParsedTimestamps []time.Time

	IsFirstEvent bool
}

// Convert implements the JSON → columnar conversion algorithm (spec §4.4).
func Convert(opts Options) (*Result, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	rows, err := normalizeToRows(opts.Value)
	if err != nil {
		return nil, err
	}

	flatRows := make([]map[string]leaf, len(rows))
	for i, row := range rows {
		flatRows[i] = flattenObject(row)
	}

	knownTypes := make(map[string]catalog.LogicalType, len(opts.Schema.Fields))
	for _, f := range opts.Schema.Fields {
		knownTypes[f.Name] = f.Type
	}

	fieldOrder := make([]string, 0, len(opts.Schema.Fields))
	for _, f := range opts.Schema.Fields {
		fieldOrder = append(fieldOrder, f.Name)
	}
	seen := make(map[string]bool, len(fieldOrder))
	for _, name := range fieldOrder {
		seen[name] = true
	}

	leafNames := collectLeafNames(flatRows)
	var newFields []Field

	for _, name := range leafNames {
		if seen[name] {
			if err := checkAgainstKnownType(name, knownTypes[name], flatRows, opts.StaticSchema); err != nil {
				return nil, err
			}
			continue
		}

		observedType, conflictField, ok := inferLeafType(name, flatRows)
		if conflictField != nil {
			return nil, conflictField
		}
		if !ok {
			// Purely null across the whole batch: does not introduce a column.
			continue
		}

		if opts.StaticSchema {
			return nil, &SchemaMismatch{Field: name, Observed: observedType}
		}

		seen[name] = true
		fieldOrder = append(fieldOrder, name)
		knownTypes[name] = observedType
		newFields = append(newFields, Field{Name: name, Type: observedType})
	}

	columns := make([]Column, 0, len(fieldOrder)+3)
	for _, name := range fieldOrder {
		t := knownTypes[name]
		values := make([]any, len(rows))
		for i, flat := range flatRows {
			l, ok := flat[name]
			if !ok || l.isNull {
				values[i] = nil
				continue
			}
			if l.isList {
				values[i] = convertList(l.list, elementType(t))
				continue
			}
			values[i] = convertScalar(l.value, t)
		}
		columns = append(columns, Column{Name: name, Type: t, Values: values})
	}

	tagsValue := joinHeaderPairs(opts.Headers, opts.TagHeaderPrefix, opts.Separator)
	metaValue := joinHeaderPairs(opts.Headers, opts.MetadataHeaderPrefix, opts.Separator)
	tagsCol := Column{Name: TagsColumn, Type: catalog.LogicalType("utf8"), Values: repeat(tagsValue, len(rows))}
	metaCol := Column{Name: MetadataColumn, Type: catalog.LogicalType("utf8"), Values: repeat(metaValue, len(rows))}

	parsedTimestamps := make([]time.Time, len(rows))
	timestampValues := make([]any, len(rows))
	for i, flat := range flatRows {
		ts, err := resolveTimestamp(flat, opts.TimePartitionField, now)
		if err != nil {
			return nil, err
		}
		parsedTimestamps[i] = ts
		timestampValues[i] = ts
	}
	tsCol := Column{Name: TimestampColumn, Type: catalog.LogicalType("timestamp_ms"), Values: timestampValues}

	columns = append(columns, tagsCol, metaCol, tsCol)

	return &Result{
		Batch:            &RecordBatch{NumRows: len(rows), Columns: columns},
		NewFields:        newFields,
		ParsedTimestamps: parsedTimestamps,
		IsFirstEvent:     !opts.HadExistingSchema,
	}, nil
}

// collectLeafNames returns every leaf name observed across all rows, sorted
// for deterministic column ordering within a single Convert call.
func collectLeafNames(flatRows []map[string]leaf) []string {
	seen := make(map[string]bool)
	var names []string
	for _, flat := range flatRows {
		for name := range flat {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// inferLeafType infers a new leaf's logical type from its first non-null
// observation across rows, and reports a SchemaConflict if a later row
// disagrees. ok is false if every row's value for name is null.
func inferLeafType(name string, flatRows []map[string]leaf) (catalog.LogicalType, *SchemaConflict, bool) {
	var inferred catalog.LogicalType
	found := false
	for _, flat := range flatRows {
		l, ok := flat[name]
		if !ok || l.isNull {
			continue
		}
		var t catalog.LogicalType
		if l.isList {
			elemType, _ := inferListElementType(l.list)
			t = catalog.ListOf(elemType)
		} else {
			inferredType, ok := inferType(l.value)
			if !ok {
				continue
			}
			t = inferredType
		}
		if !found {
			inferred = t
			found = true
			continue
		}
		if inferred != t {
			return "", &SchemaConflict{Field: name, Existing: inferred, Incoming: t}, false
		}
	}
	return inferred, nil, found
}

func inferListElementType(list []any) (catalog.LogicalType, bool) {
	for _, el := range list {
		if t, ok := inferType(el); ok {
			return t, true
		}
	}
	return catalog.LogicalType("utf8"), false
}

// checkAgainstKnownType validates every row's observed value for an
// already-known field against its declared type.
func checkAgainstKnownType(name string, known catalog.LogicalType, flatRows []map[string]leaf, static bool) error {
	for _, flat := range flatRows {
		l, ok := flat[name]
		if !ok || l.isNull {
			continue
		}
		var observed catalog.LogicalType
		if l.isList {
			elemType, _ := inferListElementType(l.list)
			observed = catalog.ListOf(elemType)
		} else {
			t, ok := inferType(l.value)
			if !ok {
				continue
			}
			observed = t
		}
		if observed != known {
			if static {
				return &SchemaMismatch{Field: name, Declared: known, Observed: observed}
			}
			return &SchemaConflict{Field: name, Existing: known, Incoming: observed}
		}
	}
	return nil
}

func elementType(listType catalog.LogicalType) catalog.LogicalType {
	s := string(listType)
	if strings.HasPrefix(s, "list<") && strings.HasSuffix(s, ">") {
		return catalog.LogicalType(s[len("list<") : len(s)-1])
	}
	return catalog.LogicalType("utf8")
}

func convertScalar(v any, t catalog.LogicalType) any {
	num, ok := v.(json.Number)
	if !ok {
		return v
	}
	switch t {
	case "int64":
		n, err := num.Int64()
		if err != nil {
			return v
		}
		return n
	case "float64":
		f, err := num.Float64()
		if err != nil {
			return v
		}
		return f
	default:
		return v
	}
}

func convertList(list []any, elemType catalog.LogicalType) []any {
	out := make([]any, len(list))
	for i, el := range list {
		if el == nil {
			continue
		}
		out[i] = convertScalar(el, elemType)
	}
	return out
}

func repeat(v string, n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// joinHeaderPairs collects headers whose canonical name begins with prefix
// into "k1=v1<sep>k2=v2", sorted by key for determinism.
func joinHeaderPairs(headers map[string][]string, prefix string, sep string) string {
	if prefix == "" {
		return ""
	}
	type pair struct{ k, v string }
	var pairs []pair
	for name, values := range headers {
		if !strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) || len(values) == 0 {
			continue
		}
		key := strings.ToLower(name[len(prefix):])
		pairs = append(pairs, pair{k: key, v: values[0]})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%s", p.k, p.v)
	}
	return strings.Join(parts, sep)
}

// resolveTimestamp extracts the row's partition timestamp per spec step 6.
func resolveTimestamp(flat map[string]leaf, field string, now func() time.Time) (time.Time, error) {
	if field == "" {
		return now(), nil
	}
	l, ok := flat[field]
	if !ok || l.isNull {
		return time.Time{}, &InvalidError{Reason: fmt.Sprintf("field %s not part of log", field)}
	}
	s, ok := l.value.(string)
	if !ok {
		return time.Time{}, &InvalidError{Reason: fmt.Sprintf("field %s not in datetime format", field)}
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &InvalidError{Reason: fmt.Sprintf("field %s not in datetime format", field)}
	}
	return ts, nil
}
