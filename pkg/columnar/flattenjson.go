package columnar

import (
	"bytes"
	"encoding/json"
)

// leaf is one flattened scalar or list leaf extracted from a JSON object.
type leaf struct {
	value  any  // scalar value (json.Number, string, bool); nil for a null leaf
	isNull bool // true if the leaf was explicitly null or absent
	isList bool
	list   []any // list elements, each possibly nil
}

// flattenObject flattens a single decoded JSON object into named leaves.
//
// Nested object field c with child key a produces leaf "c_a" (recursively,
// for arbitrarily deep nesting, matching the c_a naming rule in one level
// applied repeatedly). An array of scalars becomes a single list-of-T leaf
// under the field's own name. An array of objects produces one list leaf
// per distinct leaf key across all elements, named "<field>_<leafkey>",
// with nulls for elements missing that leaf.
func flattenObject(obj map[string]any) map[string]leaf {
	out := make(map[string]leaf)
	flattenInto("", obj, out)
	return out
}

func flattenInto(prefix string, obj map[string]any, out map[string]leaf) {
	for k, v := range obj {
		name := k
		if prefix != "" {
			name = prefix + "_" + k
		}
		switch val := v.(type) {
		case nil:
			out[name] = leaf{isNull: true}
		case map[string]any:
			flattenInto(name, val, out)
		case []any:
			if objs, ok := arrayOfObjects(val); ok {
				flattenArrayOfObjects(name, objs, out)
			} else {
				out[name] = leaf{isList: true, list: val}
			}
		default:
			out[name] = leaf{value: val}
		}
	}
}

// arrayOfObjects reports whether every element of arr is a JSON object
// (or nil), and returns the element list if so. An empty array is not
// treated as an array of objects, since there is nothing to flatten.
func arrayOfObjects(arr []any) ([]map[string]any, bool) {
	if len(arr) == 0 {
		return nil, false
	}
	out := make([]map[string]any, len(arr))
	for i, el := range arr {
		switch v := el.(type) {
		case nil:
			out[i] = nil
		case map[string]any:
			out[i] = v
		default:
			return nil, false
		}
	}
	return out, true
}

// flattenArrayOfObjects produces one list leaf per distinct scalar leaf key
// observed across elems, preserving first-seen key order.
func flattenArrayOfObjects(prefix string, elems []map[string]any, out map[string]leaf) {
	perElement := make([]map[string]leaf, len(elems))
	var order []string
	seen := make(map[string]bool)
	for i, el := range elems {
		if el == nil {
			perElement[i] = nil
			continue
		}
		flat := make(map[string]leaf)
		flattenInto("", el, flat)
		perElement[i] = flat
		for key := range flat {
			if !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
		}
	}
	for _, key := range order {
		list := make([]any, len(elems))
		for i, flat := range perElement {
			if flat == nil {
				list[i] = nil
				continue
			}
			if l, ok := flat[key]; ok && !l.isNull && !l.isList {
				list[i] = l.value
			} else {
				list[i] = nil
			}
		}
		out[prefix+"_"+key] = leaf{isList: true, list: list}
	}
}

// normalizeToRows converts a decoded JSON value into a sequence of row
// objects, per spec step 1: an object is a single row, an array of objects
// is N rows, anything else is rejected.
func normalizeToRows(v any) ([]map[string]any, error) {
	switch val := v.(type) {
	case map[string]any:
		return []map[string]any{val}, nil
	case []any:
		rows := make([]map[string]any, 0, len(val))
		for _, el := range val {
			obj, ok := el.(map[string]any)
			if !ok {
				return nil, &InvalidError{Reason: "non-object payload"}
			}
			rows = append(rows, obj)
		}
		return rows, nil
	default:
		return nil, &InvalidError{Reason: "non-object payload"}
	}
}

// DecodeJSON decodes raw JSON bytes into a generic value using json.Number
// for numeric literals, so the converter can distinguish int64 from
// float64 leaves.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
