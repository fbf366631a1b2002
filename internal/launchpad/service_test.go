package launchpad

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/launchpad/internal/sqlite"
	"github.com/mesh-intelligence/launchpad/pkg/types"
)

var fixedNow = time.Date(2025, 6, 26, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, types.Store) {
	t.Helper()
	store := sqlite.NewBackend()
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { _ = store.Detach() })

	ids := 0
	svc := New(store,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			ids++
			return []string{"id-1", "id-2", "id-3"}[ids-1]
		}),
	)
	return svc, store
}

func put(t *testing.T, store types.Store, collection, key string, doc types.Document) {
	t.Helper()
	c, err := store.GetCollection(collection)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), key, doc))
}

func get(t *testing.T, store types.Store, collection, key string) types.Document {
	t.Helper()
	c, err := store.GetCollection(collection)
	require.NoError(t, err)
	doc, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	return doc
}

func TestAdaptersRequireUserID(t *testing.T) {
	svc, _ := newTestService(t)
	adapters := map[string]Adapter{
		"home":          svc.Home,
		"wellness":      svc.WellnessIntro,
		"get step":      svc.GetStep(types.CollectionProfiles),
		"save step":     svc.SaveStep(types.CollectionProfiles),
		"hra report":    svc.HRAReport,
		"dashboard":     svc.ActivityDashboard,
		"log":           svc.LogActivity,
		"goals":         svc.UpdateActivityGoals,
		"continue":      svc.SaveAndContinue,
		"exit":          svc.SaveAndExit,
		"progress":      svc.UserProgress,
		"progress save": svc.UpdateUserProgress,
	}
	for name, a := range adapters {
		t.Run(name, func(t *testing.T) {
			got, err := a(context.Background(), &types.Request{Step: 1, Body: types.Document{"step": 1}})
			require.NoError(t, err)
			assert.Equal(t, types.Document{"error": "Missing user_id"}, got)
		})
	}
}

func TestHomeConformsToConfig(t *testing.T) {
	svc, store := newTestService(t)
	put(t, store, types.CollectionConfigs, HomeConfigKey, types.Document{
		"value": map[string]any{"userName": map[string]any{}, "healthScore": map[string]any{}, "dailyGoals": map[string]any{}},
	})
	put(t, store, types.CollectionHomeData, "u1", types.Document{
		"data": map[string]any{"userName": "Ann", "healthScore": 70, "extra": "dropped"},
	})

	got, err := svc.Home(context.Background(), &types.Request{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, types.Document{"userName": "Ann", "healthScore": 70.0, "dailyGoals": nil}, got)
}

func TestHomeMissingConfigOrData(t *testing.T) {
	svc, store := newTestService(t)
	req := &types.Request{UserID: "u1"}

	got, err := svc.Home(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, got)

	put(t, store, types.CollectionConfigs, HomeConfigKey, types.Document{"value": map[string]any{"userName": "x"}})
	got, err = svc.Home(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWellnessIntro(t *testing.T) {
	svc, store := newTestService(t)

	got, err := svc.WellnessIntro(context.Background(), &types.Request{UserID: "u1"})
	require.NoError(t, err)
	assert.Nil(t, got)

	put(t, store, types.CollectionWellness, "u1", types.Document{"intro": map[string]any{"title": "Hello"}})
	got, err = svc.WellnessIntro(context.Background(), &types.Request{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, types.Document{"title": "Hello"}, got)
}

func TestStepRoundTrip(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	save := svc.SaveStep(types.CollectionGoals)
	load := svc.GetStep(types.CollectionGoals)

	got, err := load(ctx, &types.Request{UserID: "u1", Step: 1})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = save(ctx, &types.Request{UserID: "u1", Step: 1, Body: types.Document{"selectedGoals": []any{"weight_loss"}}})
	require.NoError(t, err)
	assert.Equal(t, types.Document{"success": true, "nextStep": 2, "message": "Step 1 saved successfully."}, got)

	_, err = save(ctx, &types.Request{UserID: "u1", Step: 2, Body: types.Document{"target": 5}})
	require.NoError(t, err)
	_, err = save(ctx, &types.Request{UserID: "u1", Step: 1, Body: types.Document{"selectedGoals": []any{"nutrition"}}})
	require.NoError(t, err)

	got, err = load(ctx, &types.Request{UserID: "u1", Step: 1})
	require.NoError(t, err)
	assert.Equal(t, types.Document{"step": 1.0, "selectedGoals": []any{"nutrition"}}, got)

	steps := get(t, store, types.CollectionGoals, "u1")["steps"].([]any)
	assert.Len(t, steps, 2, "re-saving a step replaces it")

	got, err = load(ctx, &types.Request{UserID: "u1", Step: 3})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveStepOverridesBodyStep(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.SaveStep(types.CollectionHRA)(context.Background(), &types.Request{
		UserID: "u1", Step: 2, Body: types.Document{"step": 9, "responses": map[string]any{}},
	})
	require.NoError(t, err)

	steps := get(t, store, types.CollectionHRA, "u1")["steps"].([]any)
	require.Len(t, steps, 1)
	assert.Equal(t, 2.0, steps[0].(map[string]any)["step"])
}

func TestSaveStepKeepsOtherFields(t *testing.T) {
	svc, store := newTestService(t)
	put(t, store, types.CollectionHRA, "u1", types.Document{"report": map[string]any{"riskScore": 10}})

	_, err := svc.SaveStep(types.CollectionHRA)(context.Background(), &types.Request{UserID: "u1", Step: 1, Body: types.Document{}})
	require.NoError(t, err)

	doc := get(t, store, types.CollectionHRA, "u1")
	assert.Contains(t, doc, "report")
	assert.Len(t, doc["steps"], 1)
}

func TestSaveStepRequiresBody(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.SaveStep(types.CollectionOnboarding)(context.Background(), &types.Request{UserID: "u1", Step: 1})
	require.NoError(t, err)
	assert.Equal(t, types.Document{"error": "Missing request body"}, got)
}

func TestStepCollectionsAreStandard(t *testing.T) {
	for feature, collection := range StepCollections {
		assert.True(t, types.IsStandardCollection(collection), feature)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	svc, store := newTestService(t)
	require.NoError(t, store.Detach())

	_, err := svc.WellnessIntro(context.Background(), &types.Request{UserID: "u1"})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

var errDisk = errors.New("disk failure")

// brokenStore hands out collections whose reads and writes fail.
type brokenStore struct{ types.Store }

func (brokenStore) GetCollection(name string) (types.Collection, error) {
	return brokenCollection{name: name}, nil
}

type brokenCollection struct {
	types.Collection
	name string
}

func (c brokenCollection) Name() string { return c.name }

func (brokenCollection) Get(context.Context, string) (types.Document, error) { return nil, errDisk }

func (brokenCollection) Set(context.Context, string, types.Document) error { return errDisk }

func TestStoreErrorsNameCollection(t *testing.T) {
	svc := New(brokenStore{})
	ctx := context.Background()

	_, err := svc.GetStep(StepCollections["goals"])(ctx, &types.Request{UserID: "u1", Step: 1})
	require.ErrorIs(t, err, errDisk)
	assert.Contains(t, err.Error(), "reading goals/u1")

	err = svc.save(ctx, types.CollectionProfiles, "u1", types.Document{"a": 1})
	require.ErrorIs(t, err, errDisk)
	assert.Contains(t, err.Error(), "writing user_profiles/u1")
}
