package store

import (
	"context"

	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
)

type UserStore struct {
	path string
}

func NewUserStore(path string) *UserStore {
	return &UserStore{path: path}
}

func (s *UserStore) GetUsers(ctx context.Context) ([]pantry.User, error) {
	t, err := readTable(ctx, s.path)
	if err != nil {
		return nil, err
	}
	if len(t.rows) == 0 {
		return []pantry.User{}, nil
	}
	if err := t.require("user_id"); err != nil {
		return nil, err
	}

	users := make([]pantry.User, 0, len(t.rows))
	for i := range t.rows {
		id, err := t.requireInt(i, "user_id")
		if err != nil {
			return nil, err
		}
		users = append(users, pantry.User{ID: id})
	}
	return users, nil
}
