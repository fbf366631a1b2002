package fallback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/juju/loggo"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

var logger = loggo.GetLogger("launchpad.fallback")

// ErrOperationPanic wraps a panic raised by a wrapped Operation.
var ErrOperationPanic = errors.New("operation panicked")

// Operation is a data-source call: it returns the live result for req, or an
// error.
type Operation func(ctx context.Context, req *types.Request) (any, error)

// Handler is a wrapped Operation. It never returns an error; failures are
// folded into the Outcome.
type Handler func(ctx context.Context, req *types.Request) types.Outcome

// Policy holds the dispatch table and recorder used by Wrap. A Policy has no
// per-request state and is safe for concurrent use.
type Policy struct {
	table    Table
	recorder Recorder
}

// Option configures a Policy.
type Option func(*Policy)

// WithRecorder sets the Recorder. The default discards observations.
func WithRecorder(r Recorder) Option {
	return func(p *Policy) {
		p.recorder = r
	}
}

// WithProducer replaces the dispatch-table entry for f.
func WithProducer(f Feature, prod Producer) Option {
	return func(p *Policy) {
		p.table[f] = prod
	}
}

// NewPolicy returns a Policy whose dispatch table is built over reg.
func NewPolicy(reg Registry, opts ...Option) *Policy {
	p := &Policy{
		table:    NewTable(reg),
		recorder: NopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Substitute returns the canned payload for f, or the "not available" error
// document when the table has no producer or the producer has nothing.
// The result is not marked.
func (p *Policy) Substitute(f Feature, req *types.Request) types.Document {
	doc, _ := p.substitute(Endpoint{Feature: f}, req)
	return doc
}

func (p *Policy) producer(ep Endpoint) Producer {
	if ep.Fallback != nil {
		return ep.Fallback
	}
	return p.table[ep.Feature]
}

// substitute reports false when it had to fall back to the unavailable
// document.
func (p *Policy) substitute(ep Endpoint, req *types.Request) (types.Document, bool) {
	prod := p.producer(ep)
	if prod == nil {
		return types.Document{"error": msgUnavailable}, false
	}
	doc := prod(req)
	if doc == nil {
		return types.Document{"error": msgUnavailable}, false
	}
	return doc, true
}

// call runs op, turning a panic into an error. Producers are not guarded.
func call(ctx context.Context, op Operation, req *types.Request) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: %v", ErrOperationPanic, r)
		}
	}()
	return op(ctx, req)
}

// Wrap composes op with the fallback policy described by ep.
//
// The returned Handler calls op once. An acceptable result is returned as is
// with status 200. Otherwise the error, if any, is logged and discarded, and
// the canned payload for ep is returned marked with MarkerKey. For stepped
// endpoints a missing step payload yields 404 {"error": "Step not found"}
// without the marker.
func Wrap(ep Endpoint, op Operation, p *Policy) Handler {
	return func(ctx context.Context, req *types.Request) types.Outcome {
		if req == nil {
			req = &types.Request{}
		}

		start := time.Now()
		result, err := call(ctx, op, req)
		p.recorder.ObserveDuration(ep.Feature, time.Since(start))

		if !ShouldFallback(result, err) {
			p.recorder.ObserveDecision(ep.Feature, DecisionAccepted)
			return types.OK(result)
		}

		if ep.Stepped {
			if err != nil {
				logger.Errorf("error in %s for step %d: %v, falling back to mock data", ep.Feature, req.Step, err)
			} else {
				logger.Warningf("%s returned empty/error for step %d, falling back to mock data", ep.Feature, req.Step)
			}
			return p.substituteStep(ep, req)
		}

		if err != nil {
			logger.Errorf("error in %s: %v, falling back to mock data", ep.Feature, err)
		} else {
			logger.Warningf("%s returned empty/error, falling back to mock data", ep.Feature)
		}
		doc, ok := p.substitute(ep, req)
		if ok {
			p.recorder.ObserveDecision(ep.Feature, DecisionSubstituted)
		} else {
			p.recorder.ObserveDecision(ep.Feature, DecisionUnavailable)
		}
		return types.Outcome{Status: http.StatusOK, Body: Mark(doc), Fallback: true}
	}
}

func (p *Policy) substituteStep(ep Endpoint, req *types.Request) types.Outcome {
	var doc types.Document
	if prod := p.producer(ep); prod != nil {
		doc = prod(req)
	}
	if doc == nil {
		p.recorder.ObserveDecision(ep.Feature, DecisionNotFound)
		return types.NotFound(msgStepNotFound)
	}
	p.recorder.ObserveDecision(ep.Feature, DecisionSubstituted)
	return types.Outcome{Status: http.StatusOK, Body: Mark(doc), Fallback: true}
}
