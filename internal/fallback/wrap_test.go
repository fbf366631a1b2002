package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/juju/mgo/v3/bson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

func returning(result any, err error) Operation {
	return func(context.Context, *types.Request) (any, error) {
		return result, err
	}
}

func newTestPolicy(t *testing.T, opts ...Option) (*Policy, *StaticRegistry) {
	t.Helper()
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	return NewPolicy(reg, opts...), reg
}

func TestWrapSubstitutesOnError(t *testing.T) {
	p, reg := newTestPolicy(t)
	h := Wrap(Endpoint{Feature: FeatureHome}, returning(nil, errors.New("connection refused")), p)

	out := h(context.Background(), &types.Request{UserID: "u1"})

	want, ok := reg.Get(string(FeatureHome))
	require.True(t, ok)
	want[MarkerKey] = true

	assert.Equal(t, http.StatusOK, out.Status)
	assert.True(t, out.Fallback)
	assert.Equal(t, want, out.Body)
}

func TestWrapSubstitutesOnEmptyAndErrorShapedResults(t *testing.T) {
	p, _ := newTestPolicy(t)

	for name, result := range map[string]any{
		"nil":         nil,
		"empty":       types.Document{},
		"error-shape": types.Document{"error": "Missing user_id"},
	} {
		t.Run(name, func(t *testing.T) {
			h := Wrap(Endpoint{Feature: FeatureWellness}, returning(result, nil), p)
			out := h(context.Background(), &types.Request{UserID: "u1"})

			assert.Equal(t, http.StatusOK, out.Status)
			assert.True(t, IsMarked(out.Body))
			assert.Equal(t, "Welcome to Wellness", out.Body.(types.Document)["title"])
		})
	}
}

func TestWrapPassesGenuineResultThrough(t *testing.T) {
	p, _ := newTestPolicy(t)
	live := types.Document{"healthScore": 0, "dailyGoals": []any{}}
	h := Wrap(Endpoint{Feature: FeatureHome}, returning(live, nil), p)

	out := h(context.Background(), &types.Request{UserID: "u1"})

	assert.Equal(t, http.StatusOK, out.Status)
	assert.False(t, out.Fallback)
	assert.Equal(t, types.Document{"healthScore": 0, "dailyGoals": []any{}}, out.Body)
	assert.False(t, IsMarked(out.Body))
	_, ok := live[MarkerKey]
	assert.False(t, ok)
}

func TestWrapStepSubstitutesRequestedStep(t *testing.T) {
	p, reg := newTestPolicy(t)
	h := Wrap(Endpoint{Feature: FeatureProfile, Stepped: true}, returning(types.Document{}, nil), p)

	out := h(context.Background(), &types.Request{UserID: "u1", Step: 2})

	want, ok := reg.GetStep(string(FeatureProfile), 2)
	require.True(t, ok)
	want[MarkerKey] = true

	assert.Equal(t, http.StatusOK, out.Status)
	assert.True(t, out.Fallback)
	assert.Equal(t, want, out.Body)
}

func TestWrapStepMissingIsNotFound(t *testing.T) {
	p, _ := newTestPolicy(t)
	h := Wrap(Endpoint{Feature: FeatureProfile, Stepped: true}, returning(types.Document{}, nil), p)

	out := h(context.Background(), &types.Request{UserID: "u1", Step: 99})

	assert.Equal(t, http.StatusNotFound, out.Status)
	assert.False(t, out.Fallback)
	assert.Equal(t, types.Document{"error": "Step not found"}, out.Body)
	assert.False(t, IsMarked(out.Body))
}

func TestWrapStepErrorIsAbsorbed(t *testing.T) {
	p, _ := newTestPolicy(t)
	h := Wrap(Endpoint{Feature: FeatureGoals, Stepped: true}, returning(nil, errors.New("timeout")), p)

	out := h(context.Background(), &types.Request{UserID: "u1", Step: 1})

	assert.Equal(t, http.StatusOK, out.Status)
	assert.True(t, IsMarked(out.Body))
	assert.Equal(t, "Set Your Health Goals", out.Body.(types.Document)["title"])
}

func TestWrapSearchResultsEchoesQuery(t *testing.T) {
	p, _ := newTestPolicy(t)
	h := Wrap(Endpoint{Feature: FeatureSearchResults}, returning(nil, nil), p)

	out := h(context.Background(), &types.Request{Body: types.Document{"query": "yoga"}})

	body, ok := out.Body.(types.Document)
	require.True(t, ok)
	assert.Equal(t, "yoga", body["query"])
	assert.True(t, IsMarked(body))
	assert.Equal(t, 3, body["totalCount"])
	suggestions := body["suggestions"].([]any)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "yoga for beginners", suggestions[0])
}

func TestWrapSearchResultsWithoutQuery(t *testing.T) {
	p, _ := newTestPolicy(t)
	h := Wrap(Endpoint{Feature: FeatureSearchResults}, returning(nil, nil), p)

	out := h(context.Background(), nil)

	body := out.Body.(types.Document)
	assert.Equal(t, "", body["query"])
	assert.Equal(t, []any{"Try yoga", "Healthy snacks", "Morning routine"}, body["suggestions"])
}

func TestWrapIsIdempotent(t *testing.T) {
	p, _ := newTestPolicy(t)
	h := Wrap(Endpoint{Feature: FeatureUserProgress}, returning(nil, errors.New("down")), p)

	first, err := json.Marshal(h(context.Background(), &types.Request{UserID: "u1"}).Body)
	require.NoError(t, err)
	second, err := json.Marshal(h(context.Background(), &types.Request{UserID: "u1"}).Body)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
}

func TestWrapSubstitutionDoesNotLeakIntoRegistry(t *testing.T) {
	p, reg := newTestPolicy(t)
	h := Wrap(Endpoint{Feature: FeatureHome}, returning(nil, nil), p)

	out := h(context.Background(), &types.Request{})
	out.Body.(types.Document)["userName"] = "changed"

	doc, ok := reg.Get(string(FeatureHome))
	require.True(t, ok)
	assert.Equal(t, "John Doe", doc["userName"])
	_, marked := doc[MarkerKey]
	assert.False(t, marked)
}

func TestWrapUsesEndpointOverride(t *testing.T) {
	p, _ := newTestPolicy(t)
	ep := Endpoint{
		Feature: FeatureHome,
		Fallback: func(req *types.Request) types.Document {
			return types.Document{"userName": req.UserID}
		},
	}

	out := Wrap(ep, returning(nil, nil), p)(context.Background(), &types.Request{UserID: "u42"})

	assert.Equal(t, types.Document{"userName": "u42", MarkerKey: true}, out.Body)
}

func TestWrapUsesPolicyProducerOverride(t *testing.T) {
	p, _ := newTestPolicy(t, WithProducer(FeatureWellness, func(*types.Request) types.Document {
		return types.Document{"title": "custom"}
	}))

	out := Wrap(Endpoint{Feature: FeatureWellness}, returning(nil, nil), p)(context.Background(), &types.Request{})

	assert.Equal(t, types.Document{"title": "custom", MarkerKey: true}, out.Body)
}

func TestWrapUnknownFeatureIsUnavailable(t *testing.T) {
	p, _ := newTestPolicy(t)

	out := Wrap(Endpoint{Feature: "nonexistent"}, returning(nil, nil), p)(context.Background(), &types.Request{})

	assert.Equal(t, http.StatusOK, out.Status)
	assert.True(t, out.Fallback)
	assert.Equal(t, types.Document{
		"error":   "Fallback data not available for this endpoint",
		MarkerKey: true,
	}, out.Body)
}

func TestWrapCallsOperationOnce(t *testing.T) {
	p, _ := newTestPolicy(t)
	calls := 0
	op := func(context.Context, *types.Request) (any, error) {
		calls++
		return nil, errors.New("fail")
	}

	Wrap(Endpoint{Feature: FeatureHome}, op, p)(context.Background(), &types.Request{})

	assert.Equal(t, 1, calls)
}

func TestWrapProducerPanicPropagates(t *testing.T) {
	p, _ := newTestPolicy(t, WithProducer(FeatureHome, func(*types.Request) types.Document {
		panic("producer broke")
	}))
	h := Wrap(Endpoint{Feature: FeatureHome}, returning(nil, nil), p)

	assert.PanicsWithValue(t, "producer broke", func() {
		h(context.Background(), &types.Request{})
	})
}

func TestWrapOperationPanicFallsBack(t *testing.T) {
	p, reg := newTestPolicy(t)
	op := func(context.Context, *types.Request) (any, error) {
		panic("store driver broke")
	}

	var out types.Outcome
	require.NotPanics(t, func() {
		out = Wrap(Endpoint{Feature: FeatureHome}, op, p)(context.Background(), &types.Request{UserID: "u1"})
	})

	want, ok := reg.Get(string(FeatureHome))
	require.True(t, ok)
	want[MarkerKey] = true
	assert.Equal(t, http.StatusOK, out.Status)
	assert.Equal(t, want, out.Body)
}

func TestWrapStepOperationPanicFallsBack(t *testing.T) {
	p, _ := newTestPolicy(t)
	op := func(context.Context, *types.Request) (any, error) {
		panic(errors.New("nil collection"))
	}

	out := Wrap(Endpoint{Feature: FeatureGoals, Stepped: true}, op, p)(context.Background(), &types.Request{Step: 2})

	assert.True(t, out.Fallback)
	assert.Equal(t, 2, out.Body.(types.Document)["step"])
}

func TestCallConvertsPanicToError(t *testing.T) {
	_, err := call(context.Background(), func(context.Context, *types.Request) (any, error) {
		panic("boom")
	}, &types.Request{})

	assert.ErrorIs(t, err, ErrOperationPanic)
	assert.Contains(t, err.Error(), "boom")
}

func TestWrapSubstitutesOnForeignMapTypes(t *testing.T) {
	p, _ := newTestPolicy(t)

	for name, result := range map[string]any{
		"empty bson.M":     bson.M{},
		"error bson.M":     bson.M{"error": "not reachable"},
		"empty string map": map[string]string{},
		"error string map": map[string]string{"error": "x"},
	} {
		t.Run(name, func(t *testing.T) {
			out := Wrap(Endpoint{Feature: FeatureHome}, returning(result, nil), p)(context.Background(), &types.Request{})

			assert.True(t, out.Fallback)
			assert.True(t, IsMarked(out.Body))
		})
	}

	out := Wrap(Endpoint{Feature: FeatureHome}, returning(bson.M{"userName": "Ana"}, nil), p)(context.Background(), &types.Request{})
	assert.False(t, out.Fallback)
	assert.Equal(t, bson.M{"userName": "Ana"}, out.Body)
}

func TestSubstituteIsUnmarked(t *testing.T) {
	p, _ := newTestPolicy(t)

	doc := p.Substitute(FeatureNavigationExit, &types.Request{})
	assert.Equal(t, "mock_token_123", doc["resumeToken"])
	assert.False(t, IsMarked(doc))

	doc = p.Substitute("nonexistent", &types.Request{})
	assert.Equal(t, types.Document{"error": "Fallback data not available for this endpoint"}, doc)
}

func TestWrapRecordsDecisions(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)
	p, _ := newTestPolicy(t, WithRecorder(rec))
	ctx := context.Background()

	Wrap(Endpoint{Feature: FeatureHome}, returning(types.Document{"a": 1}, nil), p)(ctx, &types.Request{})
	Wrap(Endpoint{Feature: FeatureHome}, returning(nil, nil), p)(ctx, &types.Request{})
	Wrap(Endpoint{Feature: FeatureHome}, returning(nil, errors.New("x")), p)(ctx, &types.Request{})
	Wrap(Endpoint{Feature: FeatureHRA, Stepped: true}, returning(nil, nil), p)(ctx, &types.Request{Step: 7})
	Wrap(Endpoint{Feature: "nonexistent"}, returning(nil, nil), p)(ctx, &types.Request{})

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.decisionsTotal.WithLabelValues("home", "accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.decisionsTotal.WithLabelValues("home", "substituted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.decisionsTotal.WithLabelValues("hra", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.decisionsTotal.WithLabelValues("nonexistent", "unavailable")))
	assert.Equal(t, 3, testutil.CollectAndCount(rec.operationDuration))
}
