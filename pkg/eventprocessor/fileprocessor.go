package eventprocessor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/3leaps/logcove/pkg/catalog"
	"github.com/3leaps/logcove/pkg/columnar"
	"github.com/3leaps/logcove/pkg/provider"
)

// FileProcessor is the in-repo Processor implementation: it persists one
// batch as a single JSON-encoded columnar file per flush, writes the
// manifest describing it, and merges the new manifest into the stream's
// canonical snapshot.
//
// A production deployment would replace this with a real columnar file
// format (Parquet, ORC); per spec §1/§4.6, the wire format of the persisted
// file itself is out of scope here, so FileProcessor uses a JSON encoding
// of the RecordBatch that satisfies the same manifest/snapshot contract
// the query side (pkg/querycatalog, pkg/counts) reads back.
//
// Grounded on gonimbus's pkg/jobregistry.Store flush idiom: serialize,
// upload under a generated name, then record the artifact in an index file.
type FileProcessor struct {
	Store    *catalog.Store
	Provider provider.Provider

	mu sync.Mutex
}

// fileRecord is the on-disk encoding of one RecordBatch.
type fileRecord struct {
	NumRows int                `json:"num_rows"`
	Columns []fileRecordColumn `json:"columns"`
}

type fileRecordColumn struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Values []any  `json:"values"`
}

// NewFileProcessor builds a FileProcessor writing through store/p.
func NewFileProcessor(store *catalog.Store, p provider.Provider) *FileProcessor {
	return &FileProcessor{Store: store, Provider: p}
}

// Process persists one batch: it uploads the batch's data file, computes
// per-column statistics, writes a manifest referencing the file, and
// appends the manifest to the stream's snapshot.
//
// Flushes for the same stream are serialized: concurrent writers append to
// independent per-writer snapshot files in production deployments (spec §5
// "per-writer snapshot"), but this stand-in writes directly to the stream's
// single canonical snapshot, so overlapping flushes must not race.
func (p *FileProcessor) Process(ctx context.Context, batch Batch) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if batch.Record == nil || batch.Record.NumRows == 0 {
		return nil
	}

	putter, ok := p.Provider.(provider.ObjectPutter)
	if !ok {
		return fmt.Errorf("eventprocessor: provider does not support writes")
	}

	lo, hi := timePartitionBounds(batch)

	objectPath := fmt.Sprintf("%s/date=%s/%s.data.json",
		batch.Stream, lo.UTC().Format("2006-01-02"), uuid.NewString())

	record := fileRecord{NumRows: batch.Record.NumRows}
	for _, col := range batch.Record.Columns {
		record.Columns = append(record.Columns, fileRecordColumn{
			Name:   col.Name,
			Type:   string(col.Type),
			Values: col.Values,
		})
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("eventprocessor: marshal batch for %s: %w", batch.Stream, err)
	}
	if err := putter.PutObject(ctx, objectPath, bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("eventprocessor: upload batch file %s: %w", objectPath, err)
	}

	file := catalog.File{
		FilePath:      objectPath,
		NumRows:       int64(batch.Record.NumRows),
		FileSize:      int64(len(data)),
		IngestionSize: int64(batch.OriginSize),
		Columns:       columnStats(batch.Record),
	}

	manifest := &catalog.Manifest{Files: []catalog.File{file}}
	manifestPath, err := p.Store.WriteManifest(ctx, batch.Stream, lo, hi, manifest)
	if err != nil {
		return fmt.Errorf("eventprocessor: write manifest for %s: %w", batch.Stream, err)
	}

	snap, err := p.Store.ReadSnapshot(ctx, batch.Stream)
	if err != nil {
		return fmt.Errorf("eventprocessor: read snapshot for %s: %w", batch.Stream, err)
	}
	snap.Append(catalog.ManifestListItem{
		ManifestPath:   manifestPath,
		TimeLowerBound: lo,
		TimeUpperBound: hi,
	})
	if err := p.Store.WriteSnapshot(ctx, batch.Stream, snap); err != nil {
		return fmt.Errorf("eventprocessor: write snapshot for %s: %w", batch.Stream, err)
	}
	return nil
}

// timePartitionBounds derives the [lo, hi] partition bounds for a batch
// from its p_timestamp column, falling back to the parsed ingestion
// timestamp on the header when the column is absent or empty.
func timePartitionBounds(batch Batch) (time.Time, time.Time) {
	fallback := time.UnixMilli(batch.ParsedTimestamp).UTC()
	col := batch.Record.Column("p_timestamp")
	if col == nil || len(col.Values) == 0 {
		return fallback, fallback
	}

	lo, hi := fallback, fallback
	first := true
	for _, v := range col.Values {
		var ms int64
		switch tv := v.(type) {
		case int64:
			ms = tv
		case time.Time:
			ms = tv.UnixMilli()
		default:
			continue
		}
		t := time.UnixMilli(ms).UTC()
		if first {
			lo, hi = t, t
			first = false
			continue
		}
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	return lo, hi
}

// columnStats computes the min/max/null-count summary catalog.File.Columns
// carries for query-side pruning (spec §3/§4.2).
func columnStats(rb *columnar.RecordBatch) []catalog.Column {
	out := make([]catalog.Column, 0, len(rb.Columns))
	for _, col := range rb.Columns {
		out = append(out, catalog.Column{
			Name:        col.Name,
			LogicalType: col.Type,
			Stats:       computeTypedStats(col),
		})
	}
	return out
}

func computeTypedStats(col columnar.Column) catalog.TypedStatistics {
	var stats catalog.TypedStatistics
	var (
		i64Min, i64Max     int64
		f64Min, f64Max     float64
		strMin, strMax     string
		boolMin, boolMax   bool
		sawInt, sawFloat   bool
		sawString, sawBool bool
	)

	for _, v := range col.Values {
		if v == nil {
			stats.NullCount++
			continue
		}
		if tv, ok := v.(time.Time); ok {
			v = tv.UnixMilli()
		}
		switch val := v.(type) {
		case int64:
			if !sawInt || val < i64Min {
				i64Min = val
			}
			if !sawInt || val > i64Max {
				i64Max = val
			}
			sawInt = true
		case float64:
			if !sawFloat || val < f64Min {
				f64Min = val
			}
			if !sawFloat || val > f64Max {
				f64Max = val
			}
			sawFloat = true
		case string:
			if !sawString || val < strMin {
				strMin = val
			}
			if !sawString || val > strMax {
				strMax = val
			}
			sawString = true
		case bool:
			if !sawBool {
				boolMin, boolMax = val, val
			} else {
				if !val {
					boolMin = false
				}
				if val {
					boolMax = true
				}
			}
			sawBool = true
		}
	}

	switch {
	case sawInt:
		stats.Int64 = &catalog.Int64Stats{Min: i64Min, Max: i64Max}
	case sawFloat:
		stats.Float64 = &catalog.Float64Stats{Min: f64Min, Max: f64Max}
	case sawString:
		stats.Utf8 = &catalog.Utf8Stats{Min: strMin, Max: strMax}
	case sawBool:
		stats.Bool = &catalog.BoolStats{Min: boolMin, Max: boolMax}
	}
	return stats
}
