package recommend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mwhite7112/woodpantry-recommender/internal/embedding"
	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
	"github.com/mwhite7112/woodpantry-recommender/internal/store"
)

type fakeInventory struct {
	items []pantry.InventoryItem
	err   error
	calls int
}

func (f *fakeInventory) GetInventory(_ context.Context, now time.Time) ([]pantry.InventoryItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := append([]pantry.InventoryItem(nil), f.items...)
	pantry.Prioritize(out, now)
	return out, nil
}

type fakeRecipes struct {
	recipes []pantry.Recipe
	err     error
}

func (f *fakeRecipes) GetRecipes(context.Context) ([]pantry.Recipe, error) {
	return f.recipes, f.err
}

type fakeUsers struct {
	users []pantry.User
	err   error
}

func (f *fakeUsers) GetUsers(context.Context) ([]pantry.User, error) {
	return f.users, f.err
}

type fakeSink struct {
	saved []pantry.Interaction
}

func (f *fakeSink) SaveInteractions(_ context.Context, in []pantry.Interaction) error {
	f.saved = in
	return nil
}

func householdInventory() []pantry.InventoryItem {
	return []pantry.InventoryItem{
		item("milk", 2),
		item("eggs", 1),
		item("bread", 5),
		item("chicken", 0),
		item("tomatoes", 7),
	}
}

func householdRecipes() []pantry.Recipe {
	return []pantry.Recipe{
		{ID: 0, Name: "Scrambled Eggs", Ingredients: []string{"eggs", "milk"}},
		{ID: 1, Name: "Chicken Sandwich", Ingredients: []string{"chicken", "bread", "tomatoes"}},
		{ID: 2, Name: "Tomato Soup", Ingredients: []string{"tomatoes"}},
		{ID: 3, Name: "Beef Stew", Ingredients: []string{"beef", "carrots", "potatoes"}},
		{ID: 4, Name: "French Toast", Ingredients: []string{"bread", "eggs", "milk"}},
	}
}

func newTestService(t *testing.T, stores Stores) *Service {
	t.Helper()
	return New(stores, Options{
		Content:       DefaultContentWeights(),
		ThresholdDays: 14,
		TopK:          4,
		Embedding:     embedding.Config{Dim: 4, Hidden: 8, Epochs: 50, LearningRate: 0.05, ValidationSplit: 0.2, Seed: 42},
		Clock:         func() time.Time { return testNow },
	}, zaptest.NewLogger(t))
}

func defaultStores() Stores {
	return Stores{
		Inventory: &fakeInventory{items: householdInventory()},
		Recipes:   &fakeRecipes{recipes: householdRecipes()},
		Users:     &fakeUsers{users: []pantry.User{{ID: 0}, {ID: 1}, {ID: 2}}},
	}
}

func TestRecommendByContent(t *testing.T) {
	svc := newTestService(t, defaultStores())

	recs, err := svc.RecommendByContent(context.Background(), []string{"milk", "eggs"})
	require.NoError(t, err)
	require.Len(t, recs, 5, "content variant returns every recipe")

	assert.Equal(t, "Scrambled Eggs", recs[0].RecipeName)
	assert.Equal(t, "eggs (1 days), milk (2 days)", recs[0].ExpiringIngredients)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score)
	}

	last := recs[len(recs)-1]
	assert.Equal(t, pantry.NoneExpiring, last.ExpiringIngredients)
}

func TestRecommendByContent_EmptySelection(t *testing.T) {
	svc := newTestService(t, defaultStores())

	for _, sel := range [][]string{nil, {}, {"caviar"}} {
		recs, err := svc.RecommendByContent(context.Background(), sel)
		require.NoError(t, err)
		assert.NotNil(t, recs)
		assert.Empty(t, recs)
	}
}

func TestRecommendByContent_DataErrors(t *testing.T) {
	ctx := context.Background()
	missing := fmt.Errorf("inventory.csv: %w", store.ErrNotFound)

	tests := []struct {
		name    string
		stores  Stores
		wantErr error
	}{
		{
			name:    "inventory file missing",
			stores:  Stores{Inventory: &fakeInventory{err: missing}, Recipes: &fakeRecipes{recipes: householdRecipes()}},
			wantErr: ErrNoData,
		},
		{
			name:    "recipe file missing",
			stores:  Stores{Inventory: &fakeInventory{items: householdInventory()}, Recipes: &fakeRecipes{err: missing}},
			wantErr: ErrNoData,
		},
		{
			name:    "recipes empty",
			stores:  Stores{Inventory: &fakeInventory{items: householdInventory()}, Recipes: &fakeRecipes{}},
			wantErr: ErrNoData,
		},
		{
			name: "malformed inventory",
			stores: Stores{
				Inventory: &fakeInventory{err: &store.ParseError{File: "inventory.csv", Column: "item", Err: store.ErrMissingColumn}},
				Recipes:   &fakeRecipes{recipes: householdRecipes()},
			},
			wantErr: store.ErrMissingColumn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.stores)
			_, err := svc.RecommendByContent(ctx, []string{"milk"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestInventory_ReloadsEachCall(t *testing.T) {
	inv := &fakeInventory{items: householdInventory()}
	svc := newTestService(t, Stores{Inventory: inv, Recipes: &fakeRecipes{recipes: householdRecipes()}})

	items, err := svc.Inventory(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, 100.0, items[3].PriorityScore)

	_, err = svc.RecommendByContent(context.Background(), []string{"milk"})
	require.NoError(t, err)
	assert.Equal(t, 2, inv.calls)
}

func TestRecommendByEmbedding_NotReady(t *testing.T) {
	svc := newTestService(t, defaultStores())
	_, err := svc.RecommendByEmbedding(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrModelNotReady)
	assert.Nil(t, svc.Model())
}

func TestTrainAndRecommendByEmbedding(t *testing.T) {
	stores := defaultStores()
	sink := &fakeSink{}
	stores.Interactions = sink
	svc := newTestService(t, stores)
	ctx := context.Background()

	m, err := svc.Train(ctx)
	require.NoError(t, err)
	assert.Same(t, m, svc.Model())
	assert.Len(t, sink.saved, 15, "3 users x 5 recipes")
	assert.Equal(t, 3, len(m.UserIndex))

	recs, err := svc.RecommendByEmbedding(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, recs, 4, "default top-k")
	for i, r := range recs {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, recs[i-1].Score, r.Score)
		}
		assert.NotEmpty(t, r.ExpiringIngredients)
	}

	recs, err = svc.RecommendByEmbedding(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = svc.RecommendByEmbedding(ctx, 42, 0)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestTrain_NoUserStoreUsesDefaultUser(t *testing.T) {
	stores := defaultStores()
	stores.Users = &fakeUsers{err: fmt.Errorf("users.csv: %w", store.ErrNotFound)}
	svc := newTestService(t, stores)

	m, err := svc.Train(context.Background())
	require.NoError(t, err)
	assert.True(t, m.HasUser(0))
	assert.Len(t, m.UserIndex, 1)
}

func TestTrain_SavesArtifact(t *testing.T) {
	svc := newTestService(t, defaultStores())
	svc.opts.ModelPath = filepath.Join(t.TempDir(), "model.gob.gz")

	m, err := svc.Train(context.Background())
	require.NoError(t, err)

	loaded, meta, err := embedding.LoadArtifact(svc.opts.ModelPath)
	require.NoError(t, err)
	assert.Equal(t, m.ID, meta.ID)
	assert.Equal(t, m.ID, loaded.ID)
}

func TestTrain_NoData(t *testing.T) {
	svc := newTestService(t, Stores{Inventory: &fakeInventory{}, Recipes: &fakeRecipes{recipes: householdRecipes()}})
	_, err := svc.Train(context.Background())
	assert.True(t, errors.Is(err, ErrNoData))
	assert.Nil(t, svc.Model())
}

func TestTrain_Cancelled(t *testing.T) {
	svc := newTestService(t, defaultStores())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Train(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecommendByEmbedding_SkipsChangedRecipes(t *testing.T) {
	stores := defaultStores()
	recipes := stores.Recipes.(*fakeRecipes)
	svc := newTestService(t, stores)
	ctx := context.Background()

	m, err := svc.Train(ctx)
	require.NoError(t, err)
	current, err := svc.ModelCurrent(ctx)
	require.NoError(t, err)
	assert.True(t, current)

	_, ok := m.Predict(0, 0)
	require.True(t, ok, "ID 0 was trained as Scrambled Eggs")

	swapped := householdRecipes()
	swapped[0] = pantry.Recipe{ID: 0, Name: "Lobster Bisque", Ingredients: []string{"lobster", "cream"}}
	recipes.recipes = swapped

	current, err = svc.ModelCurrent(ctx)
	require.NoError(t, err)
	assert.False(t, current)

	recs, err := svc.RecommendByEmbedding(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, recs, 4, "the swapped recipe is dropped, the rest are served")
	for _, r := range recs {
		assert.NotEqual(t, 0, r.RecipeID)
		assert.NotEqual(t, "Lobster Bisque", r.RecipeName)
	}

	_, err = svc.Train(ctx)
	require.NoError(t, err)
	recs, err = svc.RecommendByEmbedding(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, recs, 5, "retraining brings the new recipe back")
}

func TestModelCurrent_NoModel(t *testing.T) {
	current, err := newTestService(t, defaultStores()).ModelCurrent(context.Background())
	require.NoError(t, err)
	assert.False(t, current)
}
