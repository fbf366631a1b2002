package mongo

import (
	"time"

	"github.com/juju/mgo/v3/bson"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// toDocument converts a decoded BSON document to a Document with plain
// map[string]any and []any values. The _id field is dropped.
func toDocument(m bson.M) types.Document {
	doc := make(types.Document, len(m))
	for k, v := range m {
		if k == "_id" {
			continue
		}
		doc[k] = normalize(v)
	}
	return doc
}

func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Name] = normalize(e.Value)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case bson.ObjectId:
		return t.Hex()
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
