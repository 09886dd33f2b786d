package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/3leaps/logcove/pkg/catalog"
	"github.com/3leaps/logcove/pkg/provider"
)

// streamConfigObjectName holds the fixed, user-declared portion of a
// stream's metadata: its time-partition column and static-schema flag.
// Unlike the schema itself, these are never inferred from data files.
const streamConfigObjectName = ".stream/config.json"

type streamConfig struct {
	TimePartitionColumn string `json:"time_partition_column,omitempty"`
	StaticSchema        bool   `json:"static_schema"`
}

// WriteStreamConfig persists a stream's declared, non-inferred settings.
// Called once at stream creation time (spec §4.6).
func WriteStreamConfig(ctx context.Context, p provider.Provider, stream string, timePartitionColumn string, staticSchema bool) error {
	putter, ok := p.(provider.ObjectPutter)
	if !ok {
		return fmt.Errorf("registry: provider does not support writes")
	}
	cfg := streamConfig{TimePartitionColumn: timePartitionColumn, StaticSchema: staticSchema}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("registry: marshal stream config: %w", err)
	}
	objectPath := path.Join(stream, streamConfigObjectName)
	return putter.PutObject(ctx, objectPath, strings.NewReader(string(data)), int64(len(data)))
}

// ExistsInStorage reports whether a stream was ever created, independent of
// whether it has any registered schema or data yet: it checks for the
// stream's declared config object, written once at creation time by
// WriteStreamConfig. Used by *Ingest* mode, which may rehydrate a stream
// that already exists in the object store but must not fabricate one that
// was never created (spec §4.6).
func ExistsInStorage(ctx context.Context, p provider.Provider, stream string) (bool, error) {
	getter, ok := p.(provider.ObjectGetter)
	if !ok {
		return false, fmt.Errorf("registry: provider does not support reads")
	}
	objectPath := path.Join(stream, streamConfigObjectName)
	body, _, err := getter.GetObject(ctx, objectPath)
	if err != nil {
		if provider.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("registry: check stream config %s: %w", objectPath, err)
	}
	_ = body.Close()
	return true, nil
}

// UpsertFromStorage rebuilds one stream's registry entry from the object
// store: it reads the stream's declared config (time-partition column,
// static-schema flag) and derives the schema as the union of every column
// named in every manifest reachable from the stream's current snapshot.
//
// This is how a freshly started process, or an *Ingest* mode node meeting
// a stream it has not registered, learns about streams that already have
// data sitting in the object store (spec §4.6).
//
// Grounded on gonimbus's pkg/jobregistry.Store.List, which rehydrates
// in-memory job state by scanning the filesystem on startup; adapted here
// from a directory walk to an object-store prefix listing plus manifest
// collection via catalog.Store.
func UpsertFromStorage(ctx context.Context, r *Registry, store *catalog.Store, p provider.Provider, stream string) error {
	cfg, err := readStreamConfig(ctx, p, stream)
	if err != nil {
		return err
	}

	snap, err := store.ReadSnapshot(ctx, stream)
	if err != nil {
		return fmt.Errorf("registry: hydrate %s: %w", stream, err)
	}

	paths := make([]string, len(snap.Items))
	for i, item := range snap.Items {
		paths[i] = item.ManifestPath
	}

	fields := make([]Field, 0)
	seen := make(map[string]catalog.LogicalType)
	if len(paths) > 0 {
		manifests, err := store.CollectManifests(ctx, paths)
		if err != nil {
			return fmt.Errorf("registry: hydrate %s: %w", stream, err)
		}
		for _, m := range manifests {
			for _, f := range m.Files {
				for _, col := range f.Columns {
					// First-seen type wins; reconciling disagreeing historical
					// files is out of scope for a read-only hydration pass.
					if _, ok := seen[col.Name]; ok {
						continue
					}
					seen[col.Name] = col.LogicalType
					fields = append(fields, Field{Name: col.Name, Type: col.LogicalType})
				}
			}
		}
	}

	r.Register(StreamMeta{
		Name:                stream,
		Schema:              Schema{Fields: fields},
		TimePartitionColumn: cfg.TimePartitionColumn,
		StaticSchema:        cfg.StaticSchema,
	})
	return nil
}

// ListStreamNames enumerates the top-level stream prefixes in the object
// store, using the delimiter-listing capability (spec §6 object layout:
// each stream owns a top-level prefix).
func ListStreamNames(ctx context.Context, p provider.Provider) ([]string, error) {
	lister, ok := p.(provider.PrefixLister)
	if !ok {
		return nil, fmt.Errorf("registry: provider does not support prefix listing")
	}

	var names []string
	token := ""
	for {
		res, err := lister.ListCommonPrefixes(ctx, provider.ListCommonPrefixesOptions{
			Prefix:            "",
			Delimiter:         "/",
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("registry: list streams: %w", err)
		}
		for _, prefix := range res.Prefixes {
			names = append(names, strings.TrimSuffix(prefix, "/"))
		}
		if !res.IsTruncated {
			break
		}
		token = res.ContinuationToken
	}
	return names, nil
}

// HydrateAll rebuilds the registry entirely from object storage, stopping
// at the first stream that fails to hydrate. Nothing in this module calls
// it; serve's startup reseed runs its own loop that logs and skips failures.
func HydrateAll(ctx context.Context, r *Registry, store *catalog.Store, p provider.Provider) error {
	names, err := ListStreamNames(ctx, p)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := UpsertFromStorage(ctx, r, store, p, name); err != nil {
			return err
		}
	}
	return nil
}

func readStreamConfig(ctx context.Context, p provider.Provider, stream string) (streamConfig, error) {
	getter, ok := p.(provider.ObjectGetter)
	if !ok {
		return streamConfig{}, fmt.Errorf("registry: provider does not support reads")
	}
	objectPath := path.Join(stream, streamConfigObjectName)
	body, _, err := getter.GetObject(ctx, objectPath)
	if err != nil {
		if provider.IsNotFound(err) {
			return streamConfig{}, nil
		}
		return streamConfig{}, fmt.Errorf("registry: read stream config %s: %w", objectPath, err)
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return streamConfig{}, fmt.Errorf("registry: read stream config body %s: %w", objectPath, err)
	}
	var cfg streamConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return streamConfig{}, fmt.Errorf("registry: parse stream config %s: %w", objectPath, err)
	}
	return cfg, nil
}
