package store

import (
	"context"

	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
)

type RecipeStore struct {
	path string
}

func NewRecipeStore(path string) *RecipeStore {
	return &RecipeStore{path: path}
}

// GetRecipes loads recipes in file order. recipe_id is optional; without it
// recipes are numbered densely from 0.
func (s *RecipeStore) GetRecipes(ctx context.Context) ([]pantry.Recipe, error) {
	t, err := readTable(ctx, s.path)
	if err != nil {
		return nil, err
	}
	if len(t.rows) == 0 {
		return []pantry.Recipe{}, nil
	}
	if err := t.require("name", "ingredients"); err != nil {
		return nil, err
	}
	hasID := t.has("recipe_id")

	recipes := make([]pantry.Recipe, 0, len(t.rows))
	for i := range t.rows {
		name, err := t.requireString(i, "name")
		if err != nil {
			return nil, err
		}

		id := i
		if hasID {
			if id, err = t.requireInt(i, "recipe_id"); err != nil {
				return nil, err
			}
		}

		recipes = append(recipes, pantry.Recipe{
			ID:          id,
			Name:        name,
			Ingredients: pantry.ParseIngredients(t.get(i, "ingredients")),
		})
	}
	return recipes, nil
}
