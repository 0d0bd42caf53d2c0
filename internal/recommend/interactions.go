package recommend

import (
	"math"
	"time"

	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
)

// ExpiringIngredients lists the recipe's ingredients that are on hand and
// expire within thresholdDays, soonest first.
func ExpiringIngredients(r pantry.Recipe, onHand map[string]pantry.InventoryItem, now time.Time, thresholdDays int) []pantry.ExpiringIngredient {
	var out []pantry.ExpiringIngredient
	for _, ing := range r.Ingredients {
		it, ok := onHand[pantry.NormalizeIngredient(ing)]
		if !ok {
			continue
		}
		days := pantry.DaysUntil(it.ExpirationDate, now)
		if days <= thresholdDays {
			out = append(out, pantry.ExpiringIngredient{Name: ing, Days: days})
		}
	}
	pantry.SortExpiring(out)
	return out
}

// Label computes the synthetic rating for one recipe against the inventory:
// the fraction of its ingredients on hand plus one hundredth of the summed
// expiring bonuses, capped at 1.
func Label(r pantry.Recipe, onHand map[string]pantry.InventoryItem, now time.Time, thresholdDays int) (float64, []pantry.ExpiringIngredient) {
	if len(r.Ingredients) == 0 {
		return 0, nil
	}

	common := 0
	for _, ing := range r.Ingredients {
		if _, ok := onHand[pantry.NormalizeIngredient(ing)]; ok {
			common++
		}
	}
	overlap := float64(common) / float64(len(r.Ingredients))

	expiring := ExpiringIngredients(r, onHand, now, thresholdDays)
	var bonus float64
	for _, e := range expiring {
		bonus += pantry.ExpiringBonus(e.Days, thresholdDays)
	}
	return math.Min(1, overlap+bonus/100), expiring
}

// BuildInteractions produces one synthetic interaction per (user, recipe)
// pair. Every user shares the household inventory, so ratings differ only by
// recipe; the embedding model is what personalizes them.
func BuildInteractions(users []pantry.User, recipes []pantry.Recipe, inventory []pantry.InventoryItem, now time.Time, thresholdDays int) []pantry.Interaction {
	onHand := pantry.Index(inventory)

	type label struct {
		rating   float64
		expiring []pantry.ExpiringIngredient
	}
	labels := make([]label, len(recipes))
	for i, r := range recipes {
		rating, expiring := Label(r, onHand, now, thresholdDays)
		labels[i] = label{rating: rating, expiring: expiring}
	}

	out := make([]pantry.Interaction, 0, len(users)*len(recipes))
	for _, u := range users {
		for i, r := range recipes {
			out = append(out, pantry.Interaction{
				UserID:   u.ID,
				RecipeID: r.ID,
				Rating:   labels[i].rating,
				Expiring: labels[i].expiring,
			})
		}
	}
	return out
}
