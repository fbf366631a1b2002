// Package api assembles the launchpad endpoint table. Version v2 serves
// every endpoint from the store through the fallback policy; version v1
// serves the same endpoints from static mocks.
package api

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"

	"github.com/juju/loggo"

	"github.com/mesh-intelligence/launchpad/internal/fallback"
	"github.com/mesh-intelligence/launchpad/internal/launchpad"
	"github.com/mesh-intelligence/launchpad/pkg/types"
)

var logger = loggo.GetLogger("launchpad.api")

//go:embed mocks_v1.yaml
var mocksV1YAML []byte

// API versions.
const (
	V1 = "v1"
	V2 = "v2"
)

// Errors returned by the API.
var (
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	ErrUnknownVersion  = errors.New("unknown api version")
)

const msgStepNotFound = "Step not found"

// API dispatches named endpoint calls to their handlers.
type API struct {
	version  string
	routes   []Route
	handlers map[string]fallback.Handler
}

// New builds the table for version. v1 needs only reg; v2 needs svc and
// policy.
func New(version string, svc *launchpad.Service, policy *fallback.Policy, reg fallback.Registry) (*API, error) {
	switch version {
	case V1:
		return NewV1(reg), nil
	case V2:
		if svc == nil || policy == nil {
			return nil, errors.New("v2 api requires a service and a policy")
		}
		return NewV2(svc, policy), nil
	default:
		return nil, fmt.Errorf("%q: %w", version, ErrUnknownVersion)
	}
}

// NewV2 builds the persisted endpoint table: each adapter of svc wrapped by
// policy. Step routes use the step-indexed variant.
func NewV2(svc *launchpad.Service, policy *fallback.Policy) *API {
	a := newAPI(V2)
	for _, r := range routeTable {
		ep := fallback.Endpoint{Feature: r.Feature, Stepped: r.Kind.Stepped()}
		a.handlers[r.Name] = fallback.Wrap(ep, fallback.Operation(r.adapter(svc)), policy)
	}
	return a
}

// NewV1 builds the static endpoint table over reg.
func NewV1(reg fallback.Registry) *API {
	a := newAPI(V1)
	for _, r := range routeTable {
		a.handlers[r.Name] = staticHandler(r, reg)
	}
	return a
}

// MocksV1 returns the v1 registry: the compiled-in v1 mocks backed by the
// fallback registry for anything they do not cover.
func MocksV1(fallbacks fallback.Registry) (fallback.Catalog, error) {
	mocks, err := fallback.LoadRegistry(mocksV1YAML)
	if err != nil {
		return nil, fmt.Errorf("loading v1 mocks: %w", err)
	}
	return fallback.Chain{mocks, fallbacks}, nil
}

func newAPI(version string) *API {
	return &API{
		version:  version,
		routes:   Table(),
		handlers: make(map[string]fallback.Handler, len(routeTable)),
	}
}

// staticHandler serves r from reg without touching a store.
func staticHandler(r Route, reg fallback.Registry) fallback.Handler {
	return func(_ context.Context, req *types.Request) types.Outcome {
		if req == nil {
			req = &types.Request{}
		}
		switch r.Kind {
		case KindStepRead:
			doc, ok := reg.GetStep(string(r.Feature), req.Step)
			if !ok {
				return types.NotFound(msgStepNotFound)
			}
			return types.OK(doc)
		case KindStepSave:
			return types.OK(types.Document{
				"success":  true,
				"nextStep": req.Step + 1,
				"message":  fmt.Sprintf("Step %d saved successfully.", req.Step),
			})
		default:
			doc, ok := reg.Get(string(r.Feature))
			if !ok {
				return types.Outcome{Status: http.StatusNotFound, Body: types.Document{"error": "Not found"}}
			}
			return types.OK(doc)
		}
	}
}

// Version returns the API version.
func (a *API) Version() string {
	return a.version
}

// Routes returns the endpoint descriptions in display order.
func (a *API) Routes() []Route {
	out := make([]Route, len(a.routes))
	copy(out, a.routes)
	return out
}

// Route returns the description of the named endpoint.
func (a *API) Route(name string) (Route, bool) {
	for _, r := range a.routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Call invokes the named endpoint. Returns ErrUnknownEndpoint if name is not
// in the table.
func (a *API) Call(ctx context.Context, name string, req *types.Request) (types.Outcome, error) {
	h, ok := a.handlers[name]
	if !ok {
		return types.Outcome{}, fmt.Errorf("%s %q: %w", a.version, name, ErrUnknownEndpoint)
	}
	out := h(ctx, req)
	logger.Debugf("%s %s -> %d (fallback %t)", a.version, name, out.Status, out.Fallback)
	return out, nil
}
