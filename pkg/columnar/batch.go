package columnar

import "github.com/3leaps/logcove/pkg/catalog"

// Reserved column names (spec §3).
const (
	TagsColumn      = "tags"
	MetadataColumn  = "metadata"
	TimestampColumn = "p_timestamp"
)

// Column is one named, typed column of a RecordBatch. Values has exactly
// NumRows entries; a nil entry is a null cell. For a list column, each
// non-nil entry is itself a []any of element values (which may contain
// nil).
type Column struct {
	Name   string
	Type   catalog.LogicalType
	Values []any
}

// RecordBatch is a columnar, N-row container aligned to a schema.
type RecordBatch struct {
	NumRows int
	Columns []Column
}

// Column returns the named column, or nil if absent.
func (b *RecordBatch) Column(name string) *Column {
	for i := range b.Columns {
		if b.Columns[i].Name == name {
			return &b.Columns[i]
		}
	}
	return nil
}
