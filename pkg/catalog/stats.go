// Package catalog models the time-partitioned, snapshot-indexed directory of
// columnar files that backs query pruning: per-column statistics, manifest
// file entries, and the manifest-list snapshot that indexes them by time
// bounds.
package catalog

import "fmt"

// LogicalType is the logical type of a column, independent of its physical
// encoding on disk.
type LogicalType string

const (
	TypeInt64     LogicalType = "int64"
	TypeFloat64   LogicalType = "float64"
	TypeUtf8      LogicalType = "utf8"
	TypeBool      LogicalType = "bool"
	TypeTimestamp LogicalType = "timestamp_ms"
	TypeStruct    LogicalType = "struct"
)

// ListOf returns the logical type name for a list-of-T column. List columns
// carry their element type in the name ("list<int64>") since the type system
// here is closed and does not need a generic container type.
func ListOf(elem LogicalType) LogicalType {
	return LogicalType(fmt.Sprintf("list<%s>", elem))
}

// TypedStatistics is the per-column min/max/null-count summary used for
// pruning. Exactly one of the typed fields is populated, matching the
// column's LogicalType; Int64Stats doubles as the representation for
// timestamp_ms columns since both are ordered int64 domains.
type TypedStatistics struct {
	Int64   *Int64Stats   `json:"int64,omitempty"`
	Float64 *Float64Stats `json:"float64,omitempty"`
	Utf8    *Utf8Stats    `json:"utf8,omitempty"`
	Bool    *BoolStats    `json:"bool,omitempty"`

	// NullCount is tracked regardless of type; a column containing only
	// nulls has NullCount == row count and every typed field nil.
	NullCount int64 `json:"null_count"`
}

type Int64Stats struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

type Float64Stats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Utf8Stats struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type BoolStats struct {
	// Min/Max encode boolean ordering (false < true): Min is true only if
	// every value observed was true; Max is false only if every value was false.
	Min bool `json:"min"`
	Max bool `json:"max"`
}

// IsEmpty reports whether the statistics carry no typed min/max at all
// (null-only column). Spec §4.1: such columns are "unknown — do not prune".
func (s *TypedStatistics) IsEmpty() bool {
	if s == nil {
		return true
	}
	return s.Int64 == nil && s.Float64 == nil && s.Utf8 == nil && s.Bool == nil
}

// MatchesRange reports whether the statistics' [min, max] interval
// intersects [low, high]. Null-only columns never prune: they report no
// match so callers must treat them as "unknown, keep the file".
//
// low/high must be expressed in the same logical type as the stats: an
// int64/timestamp_ms range as int64 bounds, a float64 range as float64
// bounds, and so on. A type mismatch between low/high and the populated
// field returns false.
func (s *TypedStatistics) MatchesRange(low, high any) bool {
	if s.IsEmpty() {
		return false
	}
	switch {
	case s.Int64 != nil:
		lo, lok := asInt64(low)
		hi, hok := asInt64(high)
		if !lok || !hok {
			return false
		}
		return intervalsOverlap(s.Int64.Min, s.Int64.Max, lo, hi)
	case s.Float64 != nil:
		lo, lok := low.(float64)
		hi, hok := high.(float64)
		if !lok || !hok {
			return false
		}
		return intervalsOverlap(s.Float64.Min, s.Float64.Max, lo, hi)
	case s.Utf8 != nil:
		lo, lok := low.(string)
		hi, hok := high.(string)
		if !lok || !hok {
			return false
		}
		return intervalsOverlap(s.Utf8.Min, s.Utf8.Max, lo, hi)
	case s.Bool != nil:
		lo, lok := low.(bool)
		hi, hok := high.(bool)
		if !lok || !hok {
			return false
		}
		return intervalsOverlap(boolToInt(s.Bool.Min), boolToInt(s.Bool.Max), boolToInt(lo), boolToInt(hi))
	}
	return false
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intervalsOverlap is generic over the ordered scalar domains stats can
// carry: [min,max] ∩ [lo,hi] != empty iff min<=hi && lo<=max.
func intervalsOverlap[T int64 | float64 | string | int](min, max, lo, hi T) bool {
	return min <= hi && lo <= max
}

// Column is a named, typed column with its aggregate statistics.
type Column struct {
	Name        string          `json:"name"`
	LogicalType LogicalType     `json:"logical_type"`
	Stats       TypedStatistics `json:"stats"`
}
