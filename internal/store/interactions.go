package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
)

var interactionHeader = []string{"user_id", "recipe_id", "rating"}

// InteractionStore persists synthetic training interactions. It is written by
// the trainer and only read back for inspection and tests.
type InteractionStore struct {
	path string
}

func NewInteractionStore(path string) *InteractionStore {
	return &InteractionStore{path: path}
}

// SaveInteractions replaces the file contents atomically.
func (s *InteractionStore) SaveInteractions(ctx context.Context, interactions []pantry.Interaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create interaction dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".interactions-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	w := csv.NewWriter(tmp)
	if err := w.Write(interactionHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, in := range interactions {
		rec := []string{
			strconv.Itoa(in.UserID),
			strconv.Itoa(in.RecipeID),
			strconv.FormatFloat(in.Rating, 'f', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("write interaction: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush interactions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *InteractionStore) GetInteractions(ctx context.Context) ([]pantry.Interaction, error) {
	t, err := readTable(ctx, s.path)
	if err != nil {
		return nil, err
	}
	if len(t.rows) == 0 {
		return []pantry.Interaction{}, nil
	}
	if err := t.require(interactionHeader...); err != nil {
		return nil, err
	}

	out := make([]pantry.Interaction, 0, len(t.rows))
	for i := range t.rows {
		uid, err := t.requireInt(i, "user_id")
		if err != nil {
			return nil, err
		}
		rid, err := t.requireInt(i, "recipe_id")
		if err != nil {
			return nil, err
		}
		rating, err := t.requireFloat(i, "rating")
		if err != nil {
			return nil, err
		}
		out = append(out, pantry.Interaction{UserID: uid, RecipeID: rid, Rating: rating})
	}
	return out, nil
}
