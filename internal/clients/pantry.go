// Package clients reads inventory and recipes from the woodpantry pantry,
// recipe and ingredient dictionary services instead of local CSV files.
package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

type PantryItem struct {
	ID           string  `json:"id"`
	IngredientID string  `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	// ExpiresAt is a date or timestamp; empty when the pantry has none.
	ExpiresAt string `json:"expires_at,omitempty"`
}

type PantryClient struct {
	baseURL string
	http    *http.Client
}

func NewPantryClient(baseURL string, timeout time.Duration) *PantryClient {
	return &PantryClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *PantryClient) GetPantry(ctx context.Context) ([]PantryItem, error) {
	var items []PantryItem
	if err := getJSON(ctx, c.http, c.baseURL+"/pantry", "pantry", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// getJSON issues a GET and decodes a 200 response into out.
func getJSON(ctx context.Context, hc *http.Client, url, service string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Service: service, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", service, err)
	}
	return nil
}

// StatusError reports a non-200 answer from an upstream service.
type StatusError struct {
	Service string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s service returned %d", e.Service, e.Code)
}
