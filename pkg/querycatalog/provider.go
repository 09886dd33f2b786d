// Package querycatalog presents every known stream as a queryable table
// (spec §4.7): for each stream, a scan enumerates the columnar files
// reachable from the stream's merged manifest snapshot, intersected with
// the scan's time-range filter.
package querycatalog

import (
	"context"
	"fmt"

	"github.com/3leaps/logcove/pkg/catalog"
	"github.com/3leaps/logcove/pkg/ingest"
	"github.com/3leaps/logcove/pkg/provider"
	"github.com/3leaps/logcove/pkg/registry"
)

// Provider resolves stream names to queryable Tables.
//
// Grounded on gonimbus's pkg/indexstore (a SQL-backed object query layer);
// adapted here from "query the indexed object metadata" to "enumerate a
// stream's manifest files", since there are no objects to index directly —
// the registry and catalog store already hold the needed metadata.
type Provider struct {
	Registry *registry.Registry
	Store    *catalog.Store
	Provider provider.Provider
	Mode     ingest.Mode
}

// NewProvider builds a catalog Provider over the given registry, store, and
// object-store provider.
func NewProvider(reg *registry.Registry, store *catalog.Store, p provider.Provider, mode ingest.Mode) *Provider {
	return &Provider{Registry: reg, Store: store, Provider: p, Mode: mode}
}

// Tables lists every stream name currently known to the registry.
func (p *Provider) Tables() []string {
	return p.Registry.Names()
}

// Table resolves a single stream into a Table, returning false if the
// stream is not registered.
func (p *Provider) Table(name string) (*Table, bool) {
	meta, ok := p.Registry.Get(name)
	if !ok {
		return nil, false
	}
	return &Table{
		Stream:    name,
		Schema:    meta.Schema,
		store:     p.Store,
		provider:  p.Provider,
		queryMode: p.Mode == ingest.ModeQuery,
	}, true
}

// ErrUnknownTable is returned when a query references a stream the
// provider has no record of.
type ErrUnknownTable struct {
	Name string
}

func (e *ErrUnknownTable) Error() string {
	return fmt.Sprintf("querycatalog: unknown table %q", e.Name)
}

// Resolve is a convenience wrapper over Table that returns ErrUnknownTable
// instead of a boolean, for callers that want a plain error return.
func (p *Provider) Resolve(ctx context.Context, name string) (*Table, error) {
	t, ok := p.Table(name)
	if !ok {
		return nil, &ErrUnknownTable{Name: name}
	}
	return t, nil
}
