package flatten

import "github.com/3leaps/logcove/pkg/otelproto"

// flattenOTel delegates to the opaque telemetry push payload type; the
// wire format itself is out of scope (spec §1), so this flattener only
// extracts the logical event maps otelproto already knows how to produce.
func flattenOTel(body []byte) ([]map[string]any, error) {
	req, err := otelproto.ParsePushRequest(body)
	if err != nil {
		return nil, err
	}
	return req.ExtractEvents()
}
