// Package pantry holds the household inventory and recipe types together with
// the pure scoring primitives built on them: expiration priority, the shared
// ingredient vocabulary, and cosine similarity over presence vectors.
package pantry

import (
	"sort"
	"strings"
	"time"
)

type InventoryItem struct {
	Name           string    `json:"name"`
	ExpirationDate time.Time `json:"expiration_date"`
	PriorityScore  float64   `json:"priority_score"`
}

type Recipe struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

type User struct {
	ID int `json:"id"`
}

// NormalizeIngredient folds an ingredient token to its canonical identity so
// that " Eggs" in a recipe and "eggs" in the pantry compare equal.
func NormalizeIngredient(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseIngredients splits a comma-joined ingredient field into normalized,
// deduplicated tokens in first-seen order. Empty tokens are dropped.
func ParseIngredients(field string) []string {
	parts := strings.Split(field, ",")
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		tok := NormalizeIngredient(p)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Index maps normalized item name to inventory item. When a name repeats the
// first occurrence wins.
func Index(items []InventoryItem) map[string]InventoryItem {
	idx := make(map[string]InventoryItem, len(items))
	for _, it := range items {
		key := NormalizeIngredient(it.Name)
		if _, ok := idx[key]; !ok {
			idx[key] = it
		}
	}
	return idx
}

// Names returns the item names in inventory order.
func Names(items []InventoryItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

// Select restricts the inventory to the named items, preserving inventory
// order. Names are matched after normalization.
func Select(items []InventoryItem, names []string) []InventoryItem {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if n = NormalizeIngredient(n); n != "" {
			want[n] = true
		}
	}
	out := make([]InventoryItem, 0, len(want))
	for _, it := range items {
		if want[NormalizeIngredient(it.Name)] {
			out = append(out, it)
		}
	}
	return out
}

// RecipeKey identifies a recipe by content rather than by ID: its normalized
// name and sorted ingredient set. Two recipes share a key only when they
// would be scored identically.
func RecipeKey(r Recipe) string {
	ings := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if ing = NormalizeIngredient(ing); ing != "" {
			ings = append(ings, ing)
		}
	}
	sort.Strings(ings)
	return NormalizeIngredient(r.Name) + "|" + strings.Join(ings, ",")
}

// RecipeKeys maps each recipe ID to its RecipeKey.
func RecipeKeys(recipes []Recipe) map[int]string {
	keys := make(map[int]string, len(recipes))
	for _, r := range recipes {
		keys[r.ID] = RecipeKey(r)
	}
	return keys
}
