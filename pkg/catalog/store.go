package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/3leaps/logcove/pkg/provider"
)

// snapshotObjectName is the fixed object name for a stream's canonical
// snapshot file under its .stream/ directory (spec §6 object-store layout).
const snapshotObjectName = ".stream/snapshot.json"

// Store persists manifests and snapshots to object storage.
//
// Grounded on gonimbus's pkg/jobregistry.Store: a thin wrapper around a
// storage backend with a fixed path layout, adapted from local-disk
// atomic-rename semantics to the ObjectPutter/ObjectGetter capability
// interfaces since object stores have no rename primitive.
type Store struct {
	provider provider.Provider
}

// NewStore builds a manifest/snapshot store over the given object-store
// provider. The provider must additionally implement ObjectPutter and
// ObjectGetter; this is checked at call time via type assertion, matching
// the capability-interface pattern in pkg/provider/capabilities.go.
func NewStore(p provider.Provider) *Store {
	return &Store{provider: p}
}

func (s *Store) putter() (provider.ObjectPutter, error) {
	putter, ok := s.provider.(provider.ObjectPutter)
	if !ok {
		return nil, fmt.Errorf("catalog: provider does not support writes")
	}
	return putter, nil
}

func (s *Store) getter() (provider.ObjectGetter, error) {
	getter, ok := s.provider.(provider.ObjectGetter)
	if !ok {
		return nil, fmt.Errorf("catalog: provider does not support reads")
	}
	return getter, nil
}

// WriteManifest serializes and uploads a manifest to the partition path for
// [lo, hi], overwriting any existing manifest there.
func (s *Store) WriteManifest(ctx context.Context, stream string, lo, hi time.Time, m *Manifest) (string, error) {
	putter, err := s.putter()
	if err != nil {
		return "", err
	}
	data, err := m.Marshal()
	if err != nil {
		return "", fmt.Errorf("catalog: marshal manifest: %w", err)
	}
	objectPath := path.Join(PartitionPath(stream, lo, hi), NewManifestFileName())
	if err := putter.PutObject(ctx, objectPath, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("catalog: upload manifest %s: %w", objectPath, err)
	}
	return objectPath, nil
}

// ReadSnapshot reads the stream-root snapshot file. A missing snapshot
// (object not found) is reported as an empty snapshot, not an error: a
// freshly created stream has no manifests yet.
func (s *Store) ReadSnapshot(ctx context.Context, stream string) (*Snapshot, error) {
	getter, err := s.getter()
	if err != nil {
		return nil, err
	}
	objectPath := path.Join(stream, snapshotObjectName)
	body, _, err := getter.GetObject(ctx, objectPath)
	if err != nil {
		if provider.IsNotFound(err) {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("catalog: read snapshot %s: %w", objectPath, err)
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("catalog: read snapshot body %s: %w", objectPath, err)
	}
	return UnmarshalSnapshot(data)
}

// ReadAllSnapshots reads and merges every per-writer snapshot file under a
// stream's `.stream/` directory, last-writer-wins per manifest path. Used
// by *Query* mode nodes, which never write a canonical snapshot themselves
// and so must reconcile whatever snapshot files concurrent *Ingest* writers
// left behind (spec §6: "Query nodes read all per-stream snapshot files
// under /<stream>/.stream/ and merge their manifest lists").
func (s *Store) ReadAllSnapshots(ctx context.Context, stream string) (*Snapshot, error) {
	prefix := path.Join(stream, ".stream") + "/"
	merged := &Snapshot{}
	token := ""
	for {
		res, err := s.provider.List(ctx, provider.ListOptions{Prefix: prefix, ContinuationToken: token})
		if err != nil {
			return nil, fmt.Errorf("catalog: list snapshots %s: %w", prefix, err)
		}
		for _, obj := range res.Objects {
			if !isSnapshotObjectName(obj.Key) {
				continue
			}
			snap, err := s.readSnapshotAt(ctx, obj.Key)
			if err != nil {
				return nil, err
			}
			for _, item := range snap.Items {
				merged.Append(item)
			}
		}
		if !res.IsTruncated {
			break
		}
		token = res.ContinuationToken
	}
	return merged, nil
}

func isSnapshotObjectName(key string) bool {
	base := path.Base(key)
	return strings.HasPrefix(base, "snapshot") && strings.HasSuffix(base, ".json")
}

func (s *Store) readSnapshotAt(ctx context.Context, objectPath string) (*Snapshot, error) {
	getter, err := s.getter()
	if err != nil {
		return nil, err
	}
	body, _, err := getter.GetObject(ctx, objectPath)
	if err != nil {
		if provider.IsNotFound(err) {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("catalog: read snapshot %s: %w", objectPath, err)
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("catalog: read snapshot body %s: %w", objectPath, err)
	}
	return UnmarshalSnapshot(data)
}

// WriteSnapshot rewrites the stream-root snapshot file in full. Per spec
// §3's lifecycle note, the snapshot is rewritten on each addition rather
// than appended to in place.
func (s *Store) WriteSnapshot(ctx context.Context, stream string, snap *Snapshot) error {
	putter, err := s.putter()
	if err != nil {
		return err
	}
	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("catalog: marshal snapshot: %w", err)
	}
	objectPath := path.Join(stream, snapshotObjectName)
	if err := putter.PutObject(ctx, objectPath, bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("catalog: upload snapshot %s: %w", objectPath, err)
	}
	return nil
}

// CollectError is returned by CollectManifests when one or more manifest
// downloads fail; it surfaces as a single error but retains the offending
// path (spec §4.2: "failure on any one path is surfaced as a single error
// with the offending path attached").
type CollectError struct {
	Path string
	Err  error
}

func (e *CollectError) Error() string {
	return fmt.Sprintf("catalog: collect manifest %s: %v", e.Path, e.Err)
}

func (e *CollectError) Unwrap() error { return e.Err }

// CollectManifests downloads and deserializes manifest files concurrently.
func (s *Store) CollectManifests(ctx context.Context, paths []string) ([]*Manifest, error) {
	getter, err := s.getter()
	if err != nil {
		return nil, err
	}

	results := make([]*Manifest, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			m, err := fetchManifest(ctx, getter, p)
			if err != nil {
				errs[i] = &CollectError{Path: p, Err: err}
				return
			}
			results[i] = m
		}(i, p)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func fetchManifest(ctx context.Context, getter provider.ObjectGetter, objectPath string) (*Manifest, error) {
	body, _, err := getter.GetObject(ctx, objectPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	return UnmarshalManifest(data)
}

// DeleteStream removes the snapshot object for a stream. Manifest and data
// files are left for an out-of-band garbage collector, matching the
// append-only ownership model in spec §3 (manifests are owned by the
// object store, not individually torn down by the catalog on stream delete).
func (s *Store) DeleteStream(ctx context.Context, stream string) error {
	deleter, ok := s.provider.(provider.ObjectDeleter)
	if !ok {
		return fmt.Errorf("catalog: provider does not support deletes")
	}
	objectPath := path.Join(stream, snapshotObjectName)
	if err := deleter.DeleteObject(ctx, objectPath); err != nil && !provider.IsNotFound(err) {
		return fmt.Errorf("catalog: delete snapshot %s: %w", objectPath, err)
	}
	return nil
}
