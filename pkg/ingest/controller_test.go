package ingest

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/3leaps/logcove/pkg/catalog"
	"github.com/3leaps/logcove/pkg/eventprocessor"
	"github.com/3leaps/logcove/pkg/provider"
	"github.com/3leaps/logcove/pkg/registry"
)

// memProvider is a minimal in-memory provider.Provider supporting the
// ObjectPutter/ObjectGetter capability interfaces, enough to exercise the
// controller's stream-creation and hydration paths without real storage.
type memProvider struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemProvider() *memProvider {
	return &memProvider{objects: make(map[string][]byte)}
}

func (p *memProvider) List(ctx context.Context, opts provider.ListOptions) (*provider.ListResult, error) {
	return &provider.ListResult{}, nil
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

// fakeProcessor records every batch it receives.
type fakeProcessor struct {
	batches []eventprocessor.Batch
}

func (f *fakeProcessor) Process(ctx context.Context, batch eventprocessor.Batch) error {
	f.batches = append(f.batches, batch)
	return nil
}

func newController(mode Mode, proc *fakeProcessor, p *memProvider) *Controller {
	return &Controller{
		Registry:  registry.New(),
		Store:     catalog.NewStore(p),
		Provider:  p,
		Processor: proc,
		Mode:      mode,
	}
}

func TestIngestAutoCreatesStreamInAllMode(t *testing.T) {
	proc := &fakeProcessor{}
	c := newController(ModeAll, proc, newMemProvider())

	headers := Headers{HeaderStream: {"events"}}
	if err := c.Ingest(context.Background(), headers, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Registry.Exists("events") {
		t.Fatal("expected stream to be auto-created")
	}
	if len(proc.batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(proc.batches))
	}
	if !proc.batches[0].IsFirstEvent {
		t.Fatal("expected IsFirstEvent on a brand-new stream")
	}
}

func TestIngestMissingStreamHeaderIsHeaderError(t *testing.T) {
	proc := &fakeProcessor{}
	c := newController(ModeAll, proc, newMemProvider())

	err := c.Ingest(context.Background(), Headers{}, []byte(`{"a":1}`))
	ierr, ok := err.(*Error)
	if !ok || ierr.Kind != KindHeader {
		t.Fatalf("expected KindHeader error, got %v", err)
	}
}

func TestPostUnknownStreamIsStreamNotFound(t *testing.T) {
	proc := &fakeProcessor{}
	c := newController(ModeAll, proc, newMemProvider())

	err := c.Post(context.Background(), "nope", Headers{}, []byte(`{"a":1}`))
	ierr, ok := err.(*Error)
	if !ok || ierr.Kind != KindStreamNotFound {
		t.Fatalf("expected KindStreamNotFound, got %v", err)
	}
}

func TestIngestQueryModeAutoCreatesStream(t *testing.T) {
	proc := &fakeProcessor{}
	c := newController(ModeQuery, proc, newMemProvider())

	err := c.Ingest(context.Background(), Headers{HeaderStream: {"events"}}, []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("expected stream to be auto-created, got %v", err)
	}
	if !c.Registry.Exists("events") {
		t.Fatal("query mode must auto-create a missing stream, like all mode")
	}
}

func TestIngestModeRejectsStreamNeverCreated(t *testing.T) {
	proc := &fakeProcessor{}
	c := newController(ModeIngest, proc, newMemProvider())

	err := c.Ingest(context.Background(), Headers{HeaderStream: {"events"}}, []byte(`{"a":1}`))
	ierr, ok := err.(*Error)
	if !ok || ierr.Kind != KindStreamNotFound {
		t.Fatalf("expected KindStreamNotFound, got %v", err)
	}
}

func TestIngestModeHydratesPreexistingStream(t *testing.T) {
	p := newMemProvider()
	if err := registry.WriteStreamConfig(context.Background(), p, "events", "", false); err != nil {
		t.Fatalf("seed stream config: %v", err)
	}

	proc := &fakeProcessor{}
	c := newController(ModeIngest, proc, p)

	if err := c.Ingest(context.Background(), Headers{HeaderStream: {"events"}}, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(proc.batches))
	}
}

func TestIngestUnknownSourceFlattensOnceNotTwice(t *testing.T) {
	proc := &fakeProcessor{}
	c := newController(ModeAll, proc, newMemProvider())

	headers := Headers{HeaderStream: {"events"}, HeaderLogSource: {"some-unheard-of-source"}}
	if err := c.Ingest(context.Background(), headers, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.batches) != 1 {
		t.Fatalf("unknown source should fall back to generic and push exactly once, got %d batches", len(proc.batches))
	}
	if proc.batches[0].Record.NumRows != 1 {
		t.Fatalf("expected 1 row, got %d", proc.batches[0].Record.NumRows)
	}
}

func TestIngestPerRowTimePartitionSplitsBatches(t *testing.T) {
	proc := &fakeProcessor{}
	p := newMemProvider()
	c := newController(ModeAll, proc, p)
	c.Registry.EnsureRegistered("events", "ts", false)

	body := []byte(`[{"ts":"2024-01-01T00:00:00Z","a":1},{"ts":"2024-01-02T00:00:00Z","a":2}]`)
	headers := Headers{HeaderStream: {"events"}}
	if err := c.Ingest(context.Background(), headers, body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.batches) != 2 {
		t.Fatalf("expected 2 batches (one per row), got %d", len(proc.batches))
	}
}

func TestIngestSchemaConflictIsInvalid(t *testing.T) {
	proc := &fakeProcessor{}
	c := newController(ModeAll, proc, newMemProvider())

	headers := Headers{HeaderStream: {"events"}}
	if err := c.Ingest(context.Background(), headers, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := c.Ingest(context.Background(), headers, []byte(`{"a":"not a number"}`))
	ierr, ok := err.(*Error)
	if !ok || ierr.Kind != KindInvalid {
		t.Fatalf("expected KindInvalid on type conflict, got %v", err)
	}
}
