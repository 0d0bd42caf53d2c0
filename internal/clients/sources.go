package clients

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
	"github.com/mwhite7112/woodpantry-recommender/internal/store"
)

// Remote serves inventory and recipes from the woodpantry services. Ingredient
// IDs are resolved to names through the dictionary so both sides share the
// same vocabulary as the CSV stores.
type Remote struct {
	pantry      *PantryClient
	recipes     *RecipeClient
	dictionary  *DictionaryClient
	defaultDays int
	log         *zap.Logger
}

func NewRemote(p *PantryClient, r *RecipeClient, d *DictionaryClient, defaultDays int, log *zap.Logger) *Remote {
	return &Remote{pantry: p, recipes: r, dictionary: d, defaultDays: defaultDays, log: log}
}

// GetInventory fetches the pantry and scores each item against now. Items
// without a usable expiry fall back to the default expiration.
func (s *Remote) GetInventory(ctx context.Context, now time.Time) ([]pantry.InventoryItem, error) {
	items, err := s.pantry.GetPantry(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch pantry: %w", err)
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.IngredientID)
	}
	names := s.resolveNames(ctx, ids)

	fallback := store.DefaultExpiration(now, s.defaultDays)
	out := make([]pantry.InventoryItem, 0, len(items))
	for _, it := range items {
		exp, ok := store.ParseDate(it.ExpiresAt, now.Location())
		if !ok {
			if it.ExpiresAt != "" {
				s.log.Warn("unparseable pantry expiry, using default",
					zap.String("ingredient_id", it.IngredientID),
					zap.String("value", it.ExpiresAt),
				)
			}
			exp = fallback
		}
		out = append(out, pantry.InventoryItem{
			Name:           pantry.NormalizeIngredient(names[it.IngredientID]),
			ExpirationDate: exp,
		})
	}
	pantry.Prioritize(out, now)
	return out, nil
}

// GetRecipes fetches recipes and numbers them densely in service order.
// Optional ingredients are left out of the ingredient list.
func (s *Remote) GetRecipes(ctx context.Context) ([]pantry.Recipe, error) {
	recipes, err := s.recipes.GetRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch recipes: %w", err)
	}

	var ids []string
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			if !ing.IsOptional {
				ids = append(ids, ing.IngredientID)
			}
		}
	}
	names := s.resolveNames(ctx, ids)

	out := make([]pantry.Recipe, 0, len(recipes))
	for i, r := range recipes {
		raw := make([]string, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			if !ing.IsOptional {
				raw = append(raw, names[ing.IngredientID])
			}
		}
		out = append(out, pantry.Recipe{
			ID:          i,
			Name:        r.Title,
			Ingredients: pantry.ParseIngredients(strings.Join(raw, ",")),
		})
	}
	return out, nil
}

// resolveNames looks up every unique ID in parallel. IDs the dictionary cannot
// resolve map to themselves.
func (s *Remote) resolveNames(ctx context.Context, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			names[id] = id
			unique = append(unique, id)
		}
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, id := range unique {
		wg.Add(1)
		go func(ingredientID string) {
			defer wg.Done()
			detail, err := s.dictionary.GetIngredient(ctx, ingredientID)
			if err != nil {
				s.log.Debug("ingredient lookup failed", zap.String("ingredient_id", ingredientID), zap.Error(err))
				return
			}
			if detail == nil || detail.Name == "" {
				return
			}
			mu.Lock()
			names[ingredientID] = detail.Name
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return names
}
