package flatten

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/3leaps/logcove/pkg/columnar"
)

// kinesisEnvelope mirrors the shape AWS delivers for a Kinesis Data
// Streams / Firehose subscription: a top-level list of records, each
// carrying its payload as base64 inside a nested "kinesis.data" field.
type kinesisEnvelope struct {
	Records []struct {
		Kinesis struct {
			Data string `json:"data"`
		} `json:"kinesis"`
	} `json:"Records"`
}

// flattenKinesis decodes a Kinesis envelope and extracts one or more
// logical events per record. A record's decoded payload may itself be a
// single JSON object or newline-delimited JSON objects (the common
// Firehose transformation-Lambda output shape).
func flattenKinesis(body []byte) ([]map[string]any, error) {
	var env kinesisEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("flatten: invalid kinesis envelope: %w", err)
	}

	var events []map[string]any
	for i, rec := range env.Records {
		decoded, err := base64.StdEncoding.DecodeString(rec.Kinesis.Data)
		if err != nil {
			return nil, fmt.Errorf("flatten: kinesis record %d: invalid base64 data: %w", i, err)
		}
		recEvents, err := eventsFromPayload(decoded)
		if err != nil {
			return nil, fmt.Errorf("flatten: kinesis record %d: %w", i, err)
		}
		events = append(events, recEvents...)
	}
	return events, nil
}

// eventsFromPayload splits a decoded record payload into one event per
// newline-delimited JSON object, or a single event if the payload is one
// JSON object.
func eventsFromPayload(payload []byte) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return nil, nil
	}

	var events []map[string]any
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := columnar.DecodeJSON([]byte(line))
		if err != nil {
			return nil, err
		}
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, &columnar.InvalidError{Reason: "non-object payload"}
		}
		events = append(events, obj)
	}
	return events, nil
}
