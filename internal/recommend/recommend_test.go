package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func item(name string, days int) pantry.InventoryItem {
	exp := testNow.Add(time.Duration(days) * 24 * time.Hour)
	return pantry.InventoryItem{Name: name, ExpirationDate: exp, PriorityScore: pantry.PriorityScore(exp, testNow)}
}

func TestScoreContent_EggsScenario(t *testing.T) {
	recipes := []pantry.Recipe{
		{ID: 0, Name: "Scrambled Eggs", Ingredients: []string{"eggs", "milk"}},
		{ID: 1, Name: "Tomato Soup", Ingredients: []string{"tomatoes"}},
	}
	inventory := []pantry.InventoryItem{item("milk", 30), item("eggs", 30)}

	vocab := pantry.NewVocabulary(recipes)
	require.Equal(t, []string{"eggs", "milk", "tomatoes"}, vocab.Terms())
	assert.Equal(t, []float64{1, 1, 0}, vocab.Vector(pantry.Names(inventory)))
	assert.Equal(t, []float64{1, 1, 0}, vocab.Vector(recipes[0].Ingredients))
	assert.Equal(t, []float64{0, 0, 1}, vocab.Vector(recipes[1].Ingredients))

	scored := ScoreContent(recipes, inventory, DefaultContentWeights())
	assert.InDelta(t, 1.0, scored[0].Similarity, 1e-9)
	assert.InDelta(t, 0.0, scored[1].Similarity, 1e-9)

	ranked := Rank(scored, 0)
	assert.Equal(t, "Scrambled Eggs", ranked[0].Recipe.Name)
	assert.Equal(t, "Tomato Soup", ranked[1].Recipe.Name)
}

func TestScoreContent_Normalization(t *testing.T) {
	recipes := []pantry.Recipe{{ID: 0, Name: "Scrambled Eggs", Ingredients: []string{"eggs", "milk"}}}
	inventory := []pantry.InventoryItem{item("eggs", 1), item("milk", 2)} // 95 + 90

	raw := ScoreContent(recipes, inventory, ContentWeights{Similarity: 0.7, Priority: 0.3, Normalization: NormalizeRaw})
	assert.InDelta(t, 185.0, raw[0].PriorityTerm, 1e-9)
	assert.InDelta(t, 0.7+0.3*185, raw[0].Score, 1e-9)

	mean := ScoreContent(recipes, inventory, DefaultContentWeights())
	assert.InDelta(t, 0.925, mean[0].PriorityTerm, 1e-9)
	assert.InDelta(t, 0.7+0.3*0.925, mean[0].Score, 1e-9)
}

func TestScoreContent_PriorityFavorsExpiring(t *testing.T) {
	recipes := []pantry.Recipe{
		{ID: 0, Name: "Toast", Ingredients: []string{"bread"}},
		{ID: 1, Name: "Chicken Salad", Ingredients: []string{"chicken"}},
	}
	inventory := []pantry.InventoryItem{item("bread", 10), item("chicken", 0)}

	ranked := Rank(ScoreContent(recipes, inventory, DefaultContentWeights()), 0)
	assert.Equal(t, "Chicken Salad", ranked[0].Recipe.Name)
}

func TestScoreContent_Degenerate(t *testing.T) {
	recipes := []pantry.Recipe{{ID: 0, Name: "Air", Ingredients: nil}}
	scored := ScoreContent(recipes, []pantry.InventoryItem{item("milk", 3)}, DefaultContentWeights())
	require.Len(t, scored, 1)
	assert.Equal(t, 0.0, scored[0].Score)
	assert.False(t, math.IsNaN(scored[0].Similarity))
}

func TestRank_StableDescending(t *testing.T) {
	in := []Scored{
		{Recipe: pantry.Recipe{Name: "a"}, Score: 0.5},
		{Recipe: pantry.Recipe{Name: "b"}, Score: 0.9},
		{Recipe: pantry.Recipe{Name: "c"}, Score: 0.5},
		{Recipe: pantry.Recipe{Name: "d"}, Score: 0.1},
		{Recipe: pantry.Recipe{Name: "e"}, Score: 0.5},
	}
	names := func(s []Scored) []string {
		out := make([]string, len(s))
		for i := range s {
			out[i] = s[i].Recipe.Name
		}
		return out
	}

	assert.Equal(t, []string{"b", "a", "c", "e", "d"}, names(Rank(in, 0)))
	assert.Equal(t, []string{"b", "a"}, names(Rank(in, 2)))
	assert.Len(t, Rank(in, 10), 5)
	assert.Equal(t, "a", in[0].Recipe.Name, "input is not reordered")

	ranked := Rank(in, 0)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestExpiringIngredients(t *testing.T) {
	r := pantry.Recipe{Name: "Chicken Sandwich", Ingredients: []string{"chicken", "bread", "tomatoes", "mayo"}}
	onHand := pantry.Index([]pantry.InventoryItem{item("bread", 5), item("chicken", 0), item("tomatoes", 20)})

	got := ExpiringIngredients(r, onHand, testNow, 14)
	assert.Equal(t, []pantry.ExpiringIngredient{{Name: "chicken", Days: 0}, {Name: "bread", Days: 5}}, got)
	assert.Equal(t, "chicken (0 days), bread (5 days)", pantry.FormatExpiring(got))

	assert.Empty(t, ExpiringIngredients(r, onHand, testNow, -1))
	assert.Equal(t, pantry.NoneExpiring, pantry.FormatExpiring(nil))
}

func TestLabel_Saturated(t *testing.T) {
	r := pantry.Recipe{ID: 0, Name: "Scrambled Eggs", Ingredients: []string{"eggs", "milk"}}
	onHand := pantry.Index([]pantry.InventoryItem{item("eggs", 1), item("milk", 30)})

	rating, expiring := Label(r, onHand, testNow, 14)
	assert.Equal(t, 1.0, rating)
	require.Len(t, expiring, 1)
	assert.InDelta(t, 18.39, pantry.ExpiringBonus(expiring[0].Days, 14), 0.01)
}

func TestLabel_PartialOverlap(t *testing.T) {
	r := pantry.Recipe{Name: "Chicken Sandwich", Ingredients: []string{"chicken", "bread", "tomatoes"}}
	onHand := pantry.Index([]pantry.InventoryItem{item("bread", 30), item("tomatoes", 3)})

	rating, _ := Label(r, onHand, testNow, 14)
	want := 2.0/3.0 + 50*math.Exp(-3)/100
	assert.InDelta(t, want, rating, 1e-9)

	rating, _ = Label(pantry.Recipe{Name: "Nothing"}, onHand, testNow, 14)
	assert.Equal(t, 0.0, rating)
}

func TestBuildInteractions(t *testing.T) {
	users := []pantry.User{{ID: 0}, {ID: 1}}
	recipes := []pantry.Recipe{
		{ID: 10, Name: "Scrambled Eggs", Ingredients: []string{"eggs", "milk"}},
		{ID: 11, Name: "Tomato Soup", Ingredients: []string{"tomatoes"}},
	}
	inventory := []pantry.InventoryItem{item("eggs", 1), item("milk", 2)}

	got := BuildInteractions(users, recipes, inventory, testNow, 14)
	require.Len(t, got, 4)
	assert.Equal(t, 0, got[0].UserID)
	assert.Equal(t, 10, got[0].RecipeID)
	assert.Equal(t, 1.0, got[0].Rating)
	assert.Equal(t, 11, got[1].RecipeID)
	assert.Equal(t, 0.0, got[1].Rating)
	assert.Equal(t, 1, got[2].UserID)
	assert.Equal(t, got[0].Rating, got[2].Rating)
	for _, in := range got {
		assert.GreaterOrEqual(t, in.Rating, 0.0)
		assert.LessOrEqual(t, in.Rating, 1.0)
	}
}
