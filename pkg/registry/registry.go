package registry

import (
	"sync"
)

// Registry is the in-process, concurrency-safe map from stream name to
// StreamMeta. One Registry is shared process-wide; it is the in-memory
// mirror of what hydrate.UpsertFromStorage reads back from the object store
// at startup and on demand (spec §4.3).
//
// Grounded on gonimbus's pkg/jobregistry: a sync.RWMutex-guarded map behind
// a small accessor surface, single-writer/many-reader, adapted from job
// records to stream schema metadata.
type Registry struct {
	mu      sync.RWMutex
	streams map[string]*StreamMeta
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{streams: make(map[string]*StreamMeta)}
}

// Exists reports whether the named stream is registered.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.streams[name]
	return ok
}

// Get returns a copy of the stream's metadata, or false if unregistered.
func (r *Registry) Get(name string) (StreamMeta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.streams[name]
	if !ok {
		return StreamMeta{}, false
	}
	return m.Clone(), true
}

// GetSchema returns the stream's current schema.
func (r *Registry) GetSchema(name string) (Schema, bool) {
	m, ok := r.Get(name)
	if !ok {
		return Schema{}, false
	}
	return m.Schema, true
}

// GetTimePartition returns the stream's configured time-partition column,
// which is empty when the stream partitions on implicit ingestion time.
func (r *Registry) GetTimePartition(name string) (string, bool) {
	m, ok := r.Get(name)
	if !ok {
		return "", false
	}
	return m.TimePartitionColumn, true
}

// Register adds a brand-new stream. It overwrites any existing entry of the
// same name; callers that want evolution semantics should use Evolve instead.
func (r *Registry) Register(m StreamMeta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := m.Clone()
	r.streams[m.Name] = &cp
}

// Names returns every registered stream name, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.streams))
	for name := range r.streams {
		names = append(names, name)
	}
	return names
}

// Delete removes a stream from the registry. It is not an error to delete a
// stream that was never registered.
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.streams, name)
}

// Evolve merges an incoming batch's fields into the stream's schema.
//
// Rules (spec §4.3, §4.4 step 3):
//   - A field present in the existing schema but absent from the incoming
//     fields is left untouched.
//   - A field absent from the existing schema is appended, provided the
//     stream is not StaticSchema.
//   - A field present in both with matching LogicalType is left untouched.
//   - A field present in both with a differing LogicalType is a
//     SchemaConflict: the existing type always wins, the caller is told
//     which field and types disagreed, and no columns are ever dropped.
//
// On a StaticSchema stream, any incoming field absent from the existing
// schema is also a SchemaConflict rather than silently ignored, since a
// static-schema stream's contract is that every event's shape is already
// known up front.
func (r *Registry) Evolve(name string, incoming []Field) ([]SchemaConflict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.streams[name]
	if !ok {
		return nil, &UnknownStreamError{Name: name}
	}

	var conflicts []SchemaConflict
	for _, f := range incoming {
		existing := m.Schema.Get(f.Name)
		switch {
		case existing == nil && m.StaticSchema:
			conflicts = append(conflicts, SchemaConflict{Field: f.Name, Existing: "", Incoming: f.Type})
		case existing == nil:
			m.Schema.Fields = append(m.Schema.Fields, f)
		case existing.Type != f.Type:
			conflicts = append(conflicts, SchemaConflict{Field: f.Name, Existing: existing.Type, Incoming: f.Type})
		}
	}
	return conflicts, nil
}

// UnknownStreamError is returned by operations against a stream name that
// has never been registered.
type UnknownStreamError struct {
	Name string
}

func (e *UnknownStreamError) Error() string {
	return "registry: unknown stream " + e.Name
}

// EnsureRegistered registers name with the given defaults if it is not
// already present, and is a no-op otherwise. Used by *All* and *Query* mode
// (spec §4.6) to implicitly create a stream on first post.
func (r *Registry) EnsureRegistered(name string, timePartitionColumn string, staticSchema bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[name]; ok {
		return
	}
	r.streams[name] = &StreamMeta{
		Name:                name,
		TimePartitionColumn: timePartitionColumn,
		StaticSchema:        staticSchema,
	}
}
