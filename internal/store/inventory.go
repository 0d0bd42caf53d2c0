package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
)

// dateLayouts are tried in order when parsing expiration_date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"2006/01/02",
	"Jan 2 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

type InventoryStore struct {
	path        string
	defaultDays int
	log         *zap.Logger
}

// NewInventoryStore reads inventory rows from path. Rows whose expiration date
// is missing or unparseable expire defaultDays after today.
func NewInventoryStore(path string, defaultDays int, log *zap.Logger) *InventoryStore {
	return &InventoryStore{path: path, defaultDays: defaultDays, log: log}
}

// GetInventory loads the inventory and scores each item's priority relative to now.
func (s *InventoryStore) GetInventory(ctx context.Context, now time.Time) ([]pantry.InventoryItem, error) {
	t, err := readTable(ctx, s.path)
	if err != nil {
		return nil, err
	}
	if len(t.rows) == 0 {
		return []pantry.InventoryItem{}, nil
	}
	if err := t.require("item"); err != nil {
		return nil, err
	}

	fallback := DefaultExpiration(now, s.defaultDays)
	hasDates := t.has("expiration_date")

	items := make([]pantry.InventoryItem, 0, len(t.rows))
	for i := range t.rows {
		name, err := t.requireString(i, "item")
		if err != nil {
			return nil, err
		}

		exp := fallback
		if hasDates {
			raw := t.get(i, "expiration_date")
			if parsed, ok := ParseDate(raw, now.Location()); ok {
				exp = parsed
			} else {
				s.log.Debug("defaulting expiration date",
					zap.String("item", name),
					zap.String("raw", raw),
					zap.Int("line", t.lines[i]),
				)
			}
		}

		items = append(items, pantry.InventoryItem{
			Name:           name,
			ExpirationDate: exp,
			PriorityScore:  pantry.PriorityScore(exp, now),
		})
	}
	return items, nil
}

// DefaultExpiration is midnight of now's calendar day plus days.
func DefaultExpiration(now time.Time, days int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, now.Location())
}

// ParseDate accepts any of the supported layouts. Empty or unrecognized input
// reports false.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
