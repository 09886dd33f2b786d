package flatten

import "github.com/3leaps/logcove/pkg/columnar"

// flattenGeneric treats body as raw JSON: a single object is one event, an
// array is iterated as one event per element. A non-object payload, or an
// array with a non-object element, is rejected here with InvalidError.
func flattenGeneric(body []byte) ([]map[string]any, error) {
	v, err := columnar.DecodeJSON(body)
	if err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case map[string]any:
		return []map[string]any{val}, nil
	case []any:
		out := make([]map[string]any, 0, len(val))
		for _, el := range val {
			obj, ok := el.(map[string]any)
			if !ok {
				return nil, &columnar.InvalidError{Reason: "non-object payload"}
			}
			out = append(out, obj)
		}
		return out, nil
	default:
		return nil, &columnar.InvalidError{Reason: "non-object payload"}
	}
}
