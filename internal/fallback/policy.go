// Package fallback decides when an endpoint's live result is unusable and
// substitutes a canned payload for it.
//
// A result is replaced when the operation returned an error, returned nil, or
// returned a JSON-object shaped map that is empty or carries an "error" key.
// Anything else passes through untouched. Replacements are deep copies of a
// Registry entry tagged with MarkerKey.
package fallback

import "github.com/mesh-intelligence/launchpad/pkg/types"

// MarkerKey is added, set to true, to every substituted payload.
const MarkerKey = "_fallback"

// Error bodies produced by the policy itself.
const (
	msgStepNotFound = "Step not found"
	msgUnavailable  = "Fallback data not available for this endpoint"
)

// ShouldFallback reports whether result (or err) must be replaced by canned
// data. Only the top level is inspected: a non-empty map without an "error"
// key is acceptable even when its values are zero or empty.
func ShouldFallback(result any, err error) bool {
	if err != nil {
		return true
	}
	if result == nil {
		return true
	}
	doc, ok := types.AsDocument(result)
	if !ok {
		return false
	}
	if len(doc) == 0 {
		return true
	}
	_, hasError := doc["error"]
	return hasError
}

// Mark returns a copy of doc with MarkerKey set.
func Mark(doc types.Document) types.Document {
	out := doc.Clone()
	if out == nil {
		out = types.Document{}
	}
	out[MarkerKey] = true
	return out
}

// IsMarked reports whether body carries MarkerKey set to true.
func IsMarked(body any) bool {
	doc, ok := types.AsDocument(body)
	if !ok {
		return false
	}
	v, _ := doc[MarkerKey].(bool)
	return v
}

// Decision is the terminal state of one wrapped call.
type Decision string

// Decisions recorded per call.
const (
	// DecisionAccepted: the live result was returned unchanged.
	DecisionAccepted Decision = "accepted"
	// DecisionSubstituted: a canned payload replaced the live result.
	DecisionSubstituted Decision = "substituted"
	// DecisionNotFound: no canned payload exists for the requested step.
	DecisionNotFound Decision = "not_found"
	// DecisionUnavailable: no producer or payload exists for the feature.
	DecisionUnavailable Decision = "unavailable"
)
