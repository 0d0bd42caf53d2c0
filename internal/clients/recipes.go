package clients

import (
	"context"
	"net/http"
	"time"
)

type RecipeIngredient struct {
	IngredientID string `json:"ingredient_id"`
	IsOptional   bool   `json:"is_optional"`
}

type Recipe struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Ingredients []RecipeIngredient `json:"ingredients"`
}

type RecipeClient struct {
	baseURL string
	http    *http.Client
}

func NewRecipeClient(baseURL string, timeout time.Duration) *RecipeClient {
	return &RecipeClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *RecipeClient) GetRecipes(ctx context.Context) ([]Recipe, error) {
	var recipes []Recipe
	if err := getJSON(ctx, c.http, c.baseURL+"/recipes", "recipe", &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}
