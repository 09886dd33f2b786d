package querycatalog

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/3leaps/logcove/pkg/catalog"
	"github.com/3leaps/logcove/pkg/ingest"
	"github.com/3leaps/logcove/pkg/provider"
	"github.com/3leaps/logcove/pkg/registry"
)

type memProvider struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemProvider() *memProvider { return &memProvider{objects: make(map[string][]byte)} }

func (p *memProvider) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []provider.ObjectSummary
	for k := range p.objects {
		if len(opts.Prefix) == 0 || len(k) >= len(opts.Prefix) && k[:len(opts.Prefix)] == opts.Prefix {
			out = append(out, provider.ObjectSummary{Key: k})
		}
	}
	return &provider.ListResult{Objects: out}, nil
}

func (p *memProvider) Head(ctx context.Context, key string) (*provider.ObjectMeta, error) {
	return nil, provider.ErrNotFound
}

func (p *memProvider) Close() error { return nil }

func (p *memProvider) PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.objects[key] = data
	return nil
}

func (p *memProvider) GetObject(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	p.mu.Lock()
	data, ok := p.objects[key]
	p.mu.Unlock()
	if !ok {
		return nil, 0, provider.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func TestTableScanIntersectsTimeRange(t *testing.T) {
	ctx := context.Background()
	p := newMemProvider()
	store := catalog.NewStore(p)

	lo := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	manifest := &catalog.Manifest{Files: []catalog.File{{FilePath: "a.parquet", NumRows: 5}}}
	manifestPath, err := store.WriteManifest(ctx, "events", lo, hi, manifest)
	if err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	snap := &catalog.Snapshot{}
	snap.Append(catalog.ManifestListItem{ManifestPath: manifestPath, TimeLowerBound: lo, TimeUpperBound: hi})
	if err := store.WriteSnapshot(ctx, "events", snap); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	reg := registry.New()
	reg.Register(registry.StreamMeta{Name: "events"})

	prov := NewProvider(reg, store, p, ingest.ModeAll)
	table, ok := prov.Table("events")
	if !ok {
		t.Fatal("expected table to resolve")
	}

	files, err := table.Scan(ctx, lo, hi)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(files) != 1 || files[0].NumRows != 5 {
		t.Fatalf("unexpected scan result: %+v", files)
	}

	outside := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	files, err = table.Scan(ctx, outside, outside.Add(time.Hour))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files outside range, got %d", len(files))
	}
}

func TestResolveUnknownTable(t *testing.T) {
	p := newMemProvider()
	prov := NewProvider(registry.New(), catalog.NewStore(p), p, ingest.ModeAll)
	if _, err := prov.Resolve(context.Background(), "nope"); err == nil {
		t.Fatal("expected ErrUnknownTable")
	}
}

func TestQueryModeMergesMultipleSnapshots(t *testing.T) {
	ctx := context.Background()
	p := newMemProvider()
	store := catalog.NewStore(p)

	lo := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	snapA := &catalog.Snapshot{}
	snapA.Append(catalog.ManifestListItem{ManifestPath: "events/date=2024-01-01/a.manifest.json", TimeLowerBound: lo, TimeUpperBound: hi})
	dataA, _ := snapA.Marshal()
	if err := p.PutObject(ctx, "events/.stream/snapshot-writer-a.json", bytes.NewReader(dataA), int64(len(dataA))); err != nil {
		t.Fatalf("seed snapshot a: %v", err)
	}

	snapB := &catalog.Snapshot{}
	snapB.Append(catalog.ManifestListItem{ManifestPath: "events/date=2024-01-01/b.manifest.json", TimeLowerBound: lo, TimeUpperBound: hi})
	dataB, _ := snapB.Marshal()
	if err := p.PutObject(ctx, "events/.stream/snapshot-writer-b.json", bytes.NewReader(dataB), int64(len(dataB))); err != nil {
		t.Fatalf("seed snapshot b: %v", err)
	}

	merged, err := store.ReadAllSnapshots(ctx, "events")
	if err != nil {
		t.Fatalf("read all snapshots: %v", err)
	}
	if len(merged.Items) != 2 {
		t.Fatalf("expected 2 merged items, got %d", len(merged.Items))
	}
}
