package pantry

import (
	"fmt"
	"sort"
	"strings"
)

// ExpiringIngredient is an ingredient shared by a recipe and the inventory,
// with the whole days it has left.
type ExpiringIngredient struct {
	Name string `json:"name"`
	Days int    `json:"days"`
}

// Interaction is a synthetic (user, recipe) rating used to train the
// embedding model. Ratings lie in [0,1].
type Interaction struct {
	UserID   int                  `json:"user_id"`
	RecipeID int                  `json:"recipe_id"`
	Rating   float64              `json:"rating"`
	Expiring []ExpiringIngredient `json:"expiring_ingredients,omitempty"`
}

// SortExpiring orders by days remaining, soonest first, then by name.
func SortExpiring(list []ExpiringIngredient) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Days != list[j].Days {
			return list[i].Days < list[j].Days
		}
		return list[i].Name < list[j].Name
	})
}

// NoneExpiring is shown when a recipe uses nothing close to expiring.
const NoneExpiring = "No ingredients expiring soon"

// FormatExpiring renders "eggs (1 days), milk (2 days)".
func FormatExpiring(list []ExpiringIngredient) string {
	if len(list) == 0 {
		return NoneExpiring
	}
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = fmt.Sprintf("%s (%d days)", e.Name, e.Days)
	}
	return strings.Join(parts, ", ")
}
