// Package otelproto stands in for the protobuf-derived wire types of a
// particular telemetry push source. The real wire format is out of scope
// (spec.md §1): this package treats the request body as an opaque payload
// and exposes only the minimal surface the flattener needs from it.
package otelproto

import (
	"bytes"
	"encoding/json"
)

// PushRequest is an opaque telemetry push payload. In a full build this
// would be generated from the source's .proto definitions and decoded with
// google.golang.org/protobuf; here it is carried as raw bytes.
type PushRequest struct {
	raw []byte
}

// ParsePushRequest wraps a raw request body without decoding it.
func ParsePushRequest(body []byte) (*PushRequest, error) {
	return &PushRequest{raw: body}, nil
}

// ExtractEvents yields the logical events carried by the push payload as
// flat key-value maps, one per event, for the flattener to hand to the
// columnar converter.
//
// The opaque body is expected to be either a single JSON object or a JSON
// array of objects; this mirrors the shape OTLP/JSON exporters produce and
// lets the flattener exercise this source without a real protobuf schema.
func (p *PushRequest) ExtractEvents() ([]map[string]any, error) {
	var single map[string]any
	if err := decodeNumberPreserving(p.raw, &single); err == nil {
		return []map[string]any{single}, nil
	}

	var many []map[string]any
	if err := decodeNumberPreserving(p.raw, &many); err != nil {
		return nil, err
	}
	return many, nil
}

// decodeNumberPreserving decodes with json.Number so numeric leaves retain
// enough information for the columnar converter to tell int64 from
// float64, matching the rest of the ingestion path.
func decodeNumberPreserving(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
