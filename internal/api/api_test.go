package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/launchpad/internal/fallback"
	"github.com/mesh-intelligence/launchpad/internal/launchpad"
	"github.com/mesh-intelligence/launchpad/internal/sqlite"
	"github.com/mesh-intelligence/launchpad/pkg/types"
)

type env struct {
	api      *API
	store    types.Store
	registry *fallback.StaticRegistry
	metrics  *prometheus.Registry
}

func newV2(t *testing.T) env {
	t.Helper()
	store := sqlite.NewBackend()
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { _ = store.Detach() })

	reg, err := fallback.DefaultRegistry()
	require.NoError(t, err)
	metrics := prometheus.NewRegistry()
	rec := fallback.NewPrometheusRecorder(metrics)
	svc := launchpad.New(store,
		launchpad.WithClock(func() time.Time { return time.Date(2025, 6, 26, 8, 0, 0, 0, time.UTC) }),
		launchpad.WithIDGenerator(func() string { return "token-1" }),
	)
	a, err := New(V2, svc, fallback.NewPolicy(reg, fallback.WithRecorder(rec)), nil)
	require.NoError(t, err)
	return env{api: a, store: store, registry: reg, metrics: metrics}
}

func call(t *testing.T, a *API, name string, req *types.Request) types.Outcome {
	t.Helper()
	out, err := a.Call(context.Background(), name, req)
	require.NoError(t, err)
	return out
}

func body(t *testing.T, out types.Outcome) types.Document {
	t.Helper()
	doc, ok := types.AsDocument(out.Body)
	require.True(t, ok, "body is %T", out.Body)
	return doc
}

func TestV2EmptyStoreServesMarkedFallbacks(t *testing.T) {
	e := newV2(t)
	req := &types.Request{UserID: "u1", Step: 1}

	for _, r := range e.api.Routes() {
		if r.Kind == KindStepSave || r.Kind == KindWrite {
			continue
		}
		t.Run(r.Name, func(t *testing.T) {
			out := call(t, e.api, r.Name, req)
			assert.Equal(t, http.StatusOK, out.Status)
			assert.True(t, out.Fallback)
			assert.True(t, fallback.IsMarked(out.Body))
		})
	}
}

func TestV2HomeFallbackMatchesRegistry(t *testing.T) {
	e := newV2(t)

	out := call(t, e.api, "home", &types.Request{UserID: "u1"})

	want, ok := e.registry.Get("home")
	require.True(t, ok)
	want[fallback.MarkerKey] = true
	assert.Equal(t, want, out.Body)
}

func TestV2MissingUserFallsBack(t *testing.T) {
	e := newV2(t)

	out := call(t, e.api, "user.progress", &types.Request{})

	assert.True(t, out.Fallback)
	assert.Equal(t, 65, body(t, out)["overallProgress"])
}

func TestV2StepNotFound(t *testing.T) {
	e := newV2(t)

	out := call(t, e.api, "profile.step", &types.Request{UserID: "u1", Step: 99})

	assert.Equal(t, http.StatusNotFound, out.Status)
	assert.False(t, out.Fallback)
	assert.Equal(t, types.Document{"error": "Step not found"}, out.Body)
}

func TestV2StepSaveThenRead(t *testing.T) {
	e := newV2(t)
	ctx := context.Background()

	out, err := e.api.Call(ctx, "profile.save", &types.Request{UserID: "u1", Step: 2, Body: types.Document{"userResponses": map[string]any{"height": 180}}})
	require.NoError(t, err)
	assert.False(t, out.Fallback)
	assert.Equal(t, 3, body(t, out)["nextStep"])

	out, err = e.api.Call(ctx, "profile.step", &types.Request{UserID: "u1", Step: 2})
	require.NoError(t, err)
	assert.False(t, out.Fallback)
	assert.Equal(t, types.Document{"step": 2.0, "userResponses": map[string]any{"height": 180.0}}, out.Body)
}

func TestV2SearchQueryEchoesQuery(t *testing.T) {
	e := newV2(t)

	out := call(t, e.api, "search.query", &types.Request{Body: types.Document{"query": "yoga"}})

	doc := body(t, out)
	assert.True(t, out.Fallback)
	assert.Equal(t, "yoga", doc["query"])
	assert.Equal(t, true, doc[fallback.MarkerKey])
}

func TestV2SearchQueryLiveResults(t *testing.T) {
	e := newV2(t)
	c, err := e.store.GetCollection(types.CollectionSearch)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), "yoga", types.Document{"title": "Morning Yoga", "description": "Stretch"}))

	out := call(t, e.api, "search.query", &types.Request{Body: types.Document{"query": "yoga"}})

	assert.False(t, out.Fallback)
	assert.False(t, fallback.IsMarked(out.Body))
	assert.Equal(t, 1, body(t, out)["totalCount"])
}

func TestV2GenuineResultUnchanged(t *testing.T) {
	e := newV2(t)
	c, err := e.store.GetCollection(types.CollectionHRA)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), "u1", types.Document{"report": map[string]any{"riskScore": 0}}))

	out := call(t, e.api, "hra.report", &types.Request{UserID: "u1"})

	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, types.Document{"riskScore": 0.0}, out.Body)
}

func TestV2WritesPersist(t *testing.T) {
	e := newV2(t)

	out := call(t, e.api, "navigation.exit", &types.Request{UserID: "u1", Body: types.Document{"section": "hra", "step": 2}})
	assert.Equal(t, "token-1", body(t, out)["resumeToken"])
	assert.False(t, out.Fallback)

	out = call(t, e.api, "activity.log", &types.Request{UserID: "u1"})
	assert.True(t, out.Fallback, "missing body falls back")
	assert.Equal(t, "mock_activity_123", body(t, out)["activityId"])
}

func TestV2FallbackIsIdempotent(t *testing.T) {
	e := newV2(t)
	req := &types.Request{UserID: "u1"}

	first, err := json.Marshal(call(t, e.api, "activity.dashboard", req).Body)
	require.NoError(t, err)
	second, err := json.Marshal(call(t, e.api, "activity.dashboard", req).Body)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}

func TestV2RecordsDecisions(t *testing.T) {
	e := newV2(t)
	call(t, e.api, "home", &types.Request{UserID: "u1"})
	call(t, e.api, "goals.step", &types.Request{UserID: "u1", Step: 7})

	count, err := testutil.GatherAndCount(e.metrics, "launchpad_fallback_decisions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUnknownEndpoint(t *testing.T) {
	e := newV2(t)

	_, err := e.api.Call(context.Background(), "nope", &types.Request{})
	assert.ErrorIs(t, err, ErrUnknownEndpoint)
}

func TestNewRejectsBadArguments(t *testing.T) {
	_, err := New("v3", nil, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownVersion)

	_, err = New(V2, nil, nil, nil)
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	e := newV2(t)
	routes := e.api.Routes()

	assert.Len(t, routes, 22)
	names := map[string]bool{}
	for _, r := range routes {
		assert.False(t, names[r.Name], "duplicate route %s", r.Name)
		names[r.Name] = true
	}

	r, ok := e.api.Route("hra.save")
	require.True(t, ok)
	assert.Equal(t, "/hra/{step}/save", r.Path)
	assert.Equal(t, http.MethodPost, r.Method)
	assert.True(t, r.Kind.Stepped())

	_, ok = e.api.Route("nope")
	assert.False(t, ok)
}

func TestStepRoutesSaveIntoFeatureCollection(t *testing.T) {
	e := newV2(t)
	ctx := context.Background()

	for _, r := range e.api.Routes() {
		if r.Kind != KindStepSave {
			continue
		}
		t.Run(r.Name, func(t *testing.T) {
			out := call(t, e.api, r.Name, &types.Request{UserID: "u7", Step: 1, Body: types.Document{"answer": "yes"}})
			require.Equal(t, http.StatusOK, out.Status)

			name, ok := launchpad.StepCollections[string(r.Feature)]
			require.True(t, ok, "no collection for %s", r.Feature)
			c, err := e.store.GetCollection(name)
			require.NoError(t, err)
			doc, err := c.Get(ctx, "u7")
			require.NoError(t, err)
			assert.NotEmpty(t, doc["steps"])
		})
	}
}

func newV1(t *testing.T) *API {
	t.Helper()
	reg, err := fallback.DefaultRegistry()
	require.NoError(t, err)
	mocks, err := MocksV1(reg)
	require.NoError(t, err)
	a, err := New(V1, nil, nil, mocks)
	require.NoError(t, err)
	return a
}

func TestV1StepReads(t *testing.T) {
	a := newV1(t)

	out := call(t, a, "onboarding.step", &types.Request{Step: 5})
	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, 5, body(t, out)["step"])
	assert.False(t, out.Fallback)

	out = call(t, a, "onboarding.step", &types.Request{Step: 6})
	assert.Equal(t, http.StatusNotFound, out.Status)
	assert.Equal(t, types.Document{"error": "Step not found"}, out.Body)
}

func TestV1StepSaveAcknowledges(t *testing.T) {
	a := newV1(t)

	out := call(t, a, "goals.save", &types.Request{Step: 1, Body: types.Document{"target": 5}})

	assert.Equal(t, types.Document{
		"success":  true,
		"nextStep": 2,
		"message":  "Step 1 saved successfully.",
	}, out.Body)
}

func TestV1ServesMocks(t *testing.T) {
	a := newV1(t)
	assert.Equal(t, V1, a.Version())

	out := call(t, a, "activity.dashboard", &types.Request{})
	assert.Equal(t, http.StatusOK, out.Status)
	assert.NotEmpty(t, body(t, out))
	assert.False(t, fallback.IsMarked(out.Body))

	// home has no v1 mock; the fallback registry covers it.
	out = call(t, a, "home", &types.Request{})
	assert.Equal(t, http.StatusOK, out.Status)
	assert.NotEmpty(t, body(t, out))
}

func TestV1ServesEveryReadRoute(t *testing.T) {
	a := newV1(t)

	for _, r := range a.Routes() {
		if r.Kind.Stepped() {
			continue
		}
		out := call(t, a, r.Name, &types.Request{})
		assert.Equal(t, http.StatusOK, out.Status, r.Name)
	}
}

func TestV1UnknownFeature(t *testing.T) {
	a := NewV1(fallback.NewStaticRegistry(nil, nil))

	out := call(t, a, "home", &types.Request{})
	assert.Equal(t, http.StatusNotFound, out.Status)
	assert.Equal(t, types.Document{"error": "Not found"}, out.Body)
}
