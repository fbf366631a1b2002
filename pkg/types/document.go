package types

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Document is a JSON-object shaped record: the unit stored in a Collection and
// the body of most endpoint responses.
type Document map[string]any

// Clone returns a deep copy of d. Nested maps and slices are copied so the
// clone can be mutated without touching d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(map[string]any(d)).(Document)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(Document, len(t))
		for k, val := range t {
			out[k] = cloneNested(val)
		}
		return out
	case Document:
		return cloneValue(map[string]any(t))
	default:
		return v
	}
}

// cloneNested copies nested values as plain map[string]any so documents keep
// a uniform shape below the top level.
func cloneNested(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneNested(val)
		}
		return out
	case Document:
		return cloneNested(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneNested(val)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

// AsDocument converts v to a Document when it is a JSON-object shaped map.
// Document and map[string]any are returned as is; any other map with string
// keys (bson.M, map[string]string) is copied one level deep.
func AsDocument(v any) (Document, bool) {
	switch t := v.(type) {
	case Document:
		return t, true
	case map[string]any:
		return Document(t), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	if rv.IsNil() {
		return nil, true
	}
	out := make(Document, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// AsInt converts a numeric value decoded from JSON, YAML or BSON to int.
// Fractional floats are rejected.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// String returns the string stored under key, or "" when absent or not a
// string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// FromYAML converts a mapping decoded by a YAML library into a Document.
// Nested mappings with non-string keys are rewritten to map[string]any so
// the result encodes as JSON.
func FromYAML(m map[string]any) Document {
	if m == nil {
		return Document{}
	}
	doc := make(Document, len(m))
	for k, v := range m {
		doc[k] = normalizeYAML(v)
	}
	return doc
}

func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
