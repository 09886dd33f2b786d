package querycatalog

import (
	"context"
	"time"

	"github.com/3leaps/logcove/pkg/catalog"
	"github.com/3leaps/logcove/pkg/provider"
	"github.com/3leaps/logcove/pkg/registry"
)

// ScanFile is a single columnar file reachable from a scan's time range,
// ready to be handed to the execution engine.
type ScanFile struct {
	FilePath string
	NumRows  int64
	Columns  []catalog.Column
}

// Table exposes one stream as a queryable table (spec §4.7).
type Table struct {
	Stream string
	Schema registry.Schema

	store     *catalog.Store
	provider  provider.Provider
	queryMode bool
}

// Scan enumerates every file whose manifest's time bounds intersect
// [lo, hi]. In *Query* mode, every per-writer snapshot under the stream's
// .stream/ directory is merged first, since query nodes never maintain the
// single canonical snapshot that *All*/*Ingest* nodes do.
func (t *Table) Scan(ctx context.Context, lo, hi time.Time) ([]ScanFile, error) {
	snap, err := t.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	items := catalog.ManifestsInRange(snap, lo, hi)
	if len(items) == 0 {
		return nil, nil
	}

	paths := make([]string, len(items))
	for i, item := range items {
		paths[i] = item.ManifestPath
	}

	manifests, err := t.store.CollectManifests(ctx, paths)
	if err != nil {
		return nil, err
	}

	var files []ScanFile
	for _, m := range manifests {
		for _, f := range m.Files {
			files = append(files, ScanFile{FilePath: f.FilePath, NumRows: f.NumRows, Columns: f.Columns})
		}
	}
	return files, nil
}

func (t *Table) snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	if t.queryMode {
		return t.store.ReadAllSnapshots(ctx, t.Stream)
	}
	return t.store.ReadSnapshot(ctx, t.Stream)
}
