// Package ingest implements the ingestion controller (spec §4.6): it
// resolves the target stream, ensures its existence according to the
// process's deployment mode, dispatches the request body through a source
// flattener and the columnar converter, and hands finished batches to the
// event processor.
package ingest

import (
	"context"

	"github.com/3leaps/logcove/pkg/catalog"
	"github.com/3leaps/logcove/pkg/columnar"
	"github.com/3leaps/logcove/pkg/eventprocessor"
	"github.com/3leaps/logcove/pkg/flatten"
	"github.com/3leaps/logcove/pkg/provider"
	"github.com/3leaps/logcove/pkg/registry"
)

// Headers is the minimal header view the controller needs; it matches the
// shape of net/http.Header so callers can pass one directly.
type Headers map[string][]string

// Get returns the first value for name, case-sensitively, or "".
func (h Headers) Get(name string) string {
	if v, ok := h[name]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

const (
	HeaderStream     = "X-P-Stream"
	HeaderLogSource  = "X-P-Log-Source"
	TagHeaderPrefix  = "X-P-Tag-"
	MetaHeaderPrefix = "X-P-Meta-"

	headerSeparator = "^"
)

// Controller wires together the registry, catalog store, and event
// processor to serve the two HTTP ingest routes.
type Controller struct {
	Registry  *registry.Registry
	Store     *catalog.Store
	Provider  provider.Provider
	Processor eventprocessor.Processor
	Mode      Mode

	// Separator joins multiple tags/metadata header entries. Defaults to
	// "^" when empty.
	Separator string
}

func (c *Controller) separator() string {
	if c.Separator == "" {
		return headerSeparator
	}
	return c.Separator
}

// Ingest serves POST /ingest: the stream name comes from the X-P-Stream
// header, and the stream may be auto-created depending on Mode.
func (c *Controller) Ingest(ctx context.Context, headers Headers, body []byte) error {
	stream := headers.Get(HeaderStream)
	if stream == "" {
		return &Error{Kind: KindHeader, Message: "missing " + HeaderStream + " header"}
	}

	if !c.Registry.Exists(stream) {
		if err := c.ensureStreamForIngest(ctx, stream); err != nil {
			return err
		}
	}

	return c.process(ctx, stream, headers, body)
}

// Post serves POST /logstream/{name}: the stream must already exist.
func (c *Controller) Post(ctx context.Context, stream string, headers Headers, body []byte) error {
	if !c.Registry.Exists(stream) {
		return &Error{Kind: KindStreamNotFound, Message: "stream " + stream + " not found"}
	}
	return c.process(ctx, stream, headers, body)
}

// ensureStreamForIngest implements the mode-aware creation rule of §4.6:
// All/Query modes create an empty-schema stream on the spot; Ingest mode
// may only hydrate an already-persisted stream, never fabricate one.
func (c *Controller) ensureStreamForIngest(ctx context.Context, stream string) error {
	switch c.Mode {
	case ModeIngest:
		exists, err := registry.ExistsInStorage(ctx, c.Provider, stream)
		if err != nil {
			return &Error{Kind: KindObjectStorageError, Message: "check stream " + stream, Err: err}
		}
		if !exists {
			return &Error{Kind: KindStreamNotFound, Message: "stream " + stream + " not found"}
		}
		if err := registry.UpsertFromStorage(ctx, c.Registry, c.Store, c.Provider, stream); err != nil {
			return &Error{Kind: KindObjectStorageError, Message: "hydrate stream " + stream, Err: err}
		}
		return nil
	default:
		c.Registry.EnsureRegistered(stream, "", false)
		if err := registry.WriteStreamConfig(ctx, c.Provider, stream, "", false); err != nil {
			return &Error{Kind: KindCreateStream, Message: "create stream " + stream, Err: err}
		}
		return nil
	}
}

// process dispatches body through the source flattener and the columnar
// converter, then hands the resulting batch(es) to the event processor.
func (c *Controller) process(ctx context.Context, stream string, headers Headers, body []byte) error {
	source := flatten.ParseSource(headers.Get(HeaderLogSource))
	events, err := flatten.Flatten(source, body)
	if err != nil {
		return &Error{Kind: KindSerdeError, Message: "decode request body", Err: err}
	}

	timePartitionField, _ := c.Registry.GetTimePartition(stream)

	if timePartitionField != "" {
		return c.processPerRow(ctx, stream, headers, timePartitionField, events, len(body))
	}
	return c.processBatch(ctx, stream, headers, events, len(body))
}

// processBatch builds and emits a single record batch covering every event
// (spec §4.6: no time partition configured, so rows needn't be split).
func (c *Controller) processBatch(ctx context.Context, stream string, headers Headers, events []map[string]any, originSize int) error {
	schema, _ := c.Registry.GetSchema(stream)
	staticSchema := c.isStaticSchema(stream)

	value := eventsAsValue(events)
	result, err := columnar.Convert(columnar.Options{
		Value:                value,
		Headers:              headers,
		TagHeaderPrefix:      TagHeaderPrefix,
		MetadataHeaderPrefix: MetaHeaderPrefix,
		Separator:            c.separator(),
		Schema:               schema,
		StaticSchema:         staticSchema,
		HadExistingSchema:    len(schema.Fields) > 0,
	})
	if err != nil {
		return convertErr(err)
	}

	if err := c.evolve(stream, result.NewFields); err != nil {
		return err
	}

	ts := int64(0)
	if len(result.ParsedTimestamps) > 0 {
		ts = result.ParsedTimestamps[0].UnixMilli()
	}
	return c.emit(ctx, stream, originSize, result, ts)
}

// processPerRow converts and emits one row at a time, so rows with
// different partition timestamps can flush to different files downstream
// (spec §4.6).
func (c *Controller) processPerRow(ctx context.Context, stream string, headers Headers, timePartitionField string, events []map[string]any, originSize int) error {
	staticSchema := c.isStaticSchema(stream)

	for _, event := range events {
		schema, _ := c.Registry.GetSchema(stream)
		result, err := columnar.Convert(columnar.Options{
			Value:                event,
			Headers:              headers,
			TagHeaderPrefix:      TagHeaderPrefix,
			MetadataHeaderPrefix: MetaHeaderPrefix,
			Separator:            c.separator(),
			Schema:               schema,
			StaticSchema:         staticSchema,
			TimePartitionField:   timePartitionField,
			HadExistingSchema:    len(schema.Fields) > 0,
		})
		if err != nil {
			return convertErr(err)
		}

		if err := c.evolve(stream, result.NewFields); err != nil {
			return err
		}

		ts := result.ParsedTimestamps[0].UnixMilli()
		if err := c.emit(ctx, stream, originSize, result, ts); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) isStaticSchema(stream string) bool {
	meta, ok := c.Registry.Get(stream)
	return ok && meta.StaticSchema
}

func (c *Controller) evolve(stream string, newFields []registry.Field) error {
	if len(newFields) == 0 {
		return nil
	}
	conflicts, err := c.Registry.Evolve(stream, newFields)
	if err != nil {
		return &Error{Kind: KindEvent, Message: "evolve schema for " + stream, Err: err}
	}
	if len(conflicts) > 0 {
		return &Error{Kind: KindInvalid, Message: "schema conflict on " + conflicts[0].Field}
	}
	return nil
}

func (c *Controller) emit(ctx context.Context, stream string, originSize int, result *columnar.Result, parsedTimestampMs int64) error {
	if err := c.Processor.Process(ctx, eventprocessor.Batch{
		Stream:          stream,
		OriginFormat:    "json",
		OriginSize:      originSize,
		IsFirstEvent:    result.IsFirstEvent,
		ParsedTimestamp: parsedTimestampMs,
		Record:          result.Batch,
	}); err != nil {
		return &Error{Kind: KindObjectStorageError, Message: "persist batch for " + stream, Err: err}
	}
	return nil
}

// eventsAsValue reassembles flattened events into the JSON-shaped value
// columnar.Convert expects: a single object when there is exactly one
// event, otherwise an array of objects.
func eventsAsValue(events []map[string]any) any {
	if len(events) == 1 {
		return events[0]
	}
	out := make([]any, len(events))
	for i, e := range events {
		out[i] = e
	}
	return out
}

func convertErr(err error) error {
	switch err.(type) {
	case *columnar.InvalidError, *columnar.SchemaMismatch, *columnar.SchemaConflict:
		return &Error{Kind: KindInvalid, Message: "invalid event", Err: err}
	default:
		return &Error{Kind: KindEvent, Message: "convert event", Err: err}
	}
}
