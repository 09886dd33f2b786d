// Package eventprocessor stands in for the external persistence layer
// (spec §1, §4.6): the component responsible for flushing record batches
// into columnar data files, writing manifests, and updating snapshots. Its
// internals are explicitly out of scope; the ingestion controller only
// needs a narrow handoff contract.
package eventprocessor

import (
	"context"

	"github.com/3leaps/logcove/pkg/columnar"
)

// Batch is one record batch handed off for persistence, with the metadata
// the processor needs to route and account for it.
type Batch struct {
	Stream          string
	OriginFormat    string // always "json" per spec §4.6
	OriginSize      int
	IsFirstEvent    bool
	ParsedTimestamp int64 // unix millis
	Record          *columnar.RecordBatch
}

// Processor accepts finished record batches for persistence.
type Processor interface {
	Process(ctx context.Context, batch Batch) error
}
