package types

import "net/http"

// Request carries the inputs of one endpoint invocation: the caller's user
// id, the path step for step-indexed endpoints, and the decoded JSON body.
type Request struct {
	UserID string
	Step   int
	Body   Document
}

// Query returns the "query" text of the request body, or "".
func (r *Request) Query() string {
	if r == nil || r.Body == nil {
		return ""
	}
	return r.Body.String("query")
}

// Outcome is the response of one endpoint invocation. Status uses HTTP status
// codes so that callers can map outcomes onto any transport.
type Outcome struct {
	Status int
	Body   any
	// Fallback is true when Body is a substituted canned payload.
	Fallback bool
}

// OK returns a 200 outcome with body.
func OK(body any) Outcome {
	return Outcome{Status: http.StatusOK, Body: body}
}

// NotFound returns a 404 outcome with an error-shaped body.
func NotFound(msg string) Outcome {
	return Outcome{Status: http.StatusNotFound, Body: Document{"error": msg}}
}
