package recommend

import (
	"sort"
	"time"

	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
)

// Recommendation is one ranked recipe as returned to callers.
type Recommendation struct {
	RecipeID            int                         `json:"recipe_id"`
	RecipeName          string                      `json:"recipe_name"`
	Score               float64                     `json:"score"`
	ExpiringIngredients string                      `json:"expiring_ingredients"`
	Expiring            []pantry.ExpiringIngredient `json:"expiring,omitempty"`
}

// Rank sorts by score descending and keeps the first k (all when k <= 0).
// Equal scores keep their input order.
func Rank(scored []Scored, k int) []Scored {
	out := make([]Scored, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}

// Present attaches the expiring-ingredient annotation to ranked recipes.
func Present(ranked []Scored, inventory []pantry.InventoryItem, now time.Time, thresholdDays int) []Recommendation {
	onHand := pantry.Index(inventory)
	out := make([]Recommendation, 0, len(ranked))
	for _, s := range ranked {
		expiring := ExpiringIngredients(s.Recipe, onHand, now, thresholdDays)
		out = append(out, Recommendation{
			RecipeID:            s.Recipe.ID,
			RecipeName:          s.Recipe.Name,
			Score:               s.Score,
			ExpiringIngredients: pantry.FormatExpiring(expiring),
			Expiring:            expiring,
		})
	}
	return out
}
