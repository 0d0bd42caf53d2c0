package clients

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// IngredientDetail mirrors GET /ingredients/:id on the dictionary service,
// which serialises structs without json tags.
type IngredientDetail struct {
	ID   string `json:"ID"`
	Name string `json:"Name"`
}

type DictionaryClient struct {
	baseURL string
	http    *http.Client
}

func NewDictionaryClient(baseURL string, timeout time.Duration) *DictionaryClient {
	return &DictionaryClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// GetIngredient fetches a single ingredient by ID. Returns nil if not found.
func (c *DictionaryClient) GetIngredient(ctx context.Context, id string) (*IngredientDetail, error) {
	var ing IngredientDetail
	err := getJSON(ctx, c.http, c.baseURL+"/ingredients/"+url.PathEscape(id), "dictionary", &ing)
	var serr *StatusError
	if errors.As(err, &serr) && serr.Code == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ing, nil
}
