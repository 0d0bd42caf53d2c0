// Package recommend turns the household inventory and recipe book into ranked
// recipe recommendations that favor ingredients close to expiring.
//
// Two scorers are offered. RecommendByContent blends ingredient-overlap cosine
// similarity with expiration priority. RecommendByEmbedding queries a trained
// two-tower model; training runs out of the request path via Train and the
// serving copy is swapped in atomically.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mwhite7112/woodpantry-recommender/internal/embedding"
	"github.com/mwhite7112/woodpantry-recommender/internal/metrics"
	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
	"github.com/mwhite7112/woodpantry-recommender/internal/store"
)

var (
	ErrNoData        = errors.New("could not load inventory or recipe data")
	ErrModelNotReady = errors.New("recommendation model is not trained yet")
	ErrUnknownUser   = errors.New("unknown user")
)

type InventorySource interface {
	GetInventory(ctx context.Context, now time.Time) ([]pantry.InventoryItem, error)
}

type RecipeSource interface {
	GetRecipes(ctx context.Context) ([]pantry.Recipe, error)
}

type UserSource interface {
	GetUsers(ctx context.Context) ([]pantry.User, error)
}

type InteractionSink interface {
	SaveInteractions(ctx context.Context, interactions []pantry.Interaction) error
}

// Stores bundles the service's data collaborators. Users and Interactions are
// only needed for training and may be nil.
type Stores struct {
	Inventory    InventorySource
	Recipes      RecipeSource
	Users        UserSource
	Interactions InteractionSink
}

// Clock returns the current time; injected so expiration logic is testable.
type Clock func() time.Time

type Options struct {
	Content       ContentWeights
	ThresholdDays int
	TopK          int
	DefaultUser   int
	Embedding     embedding.Config
	// ModelPath, when set, receives every newly trained model artifact.
	ModelPath string
	Clock     Clock
}

type Service struct {
	stores Stores
	opts   Options
	log    *zap.Logger

	model   atomic.Pointer[embedding.Model]
	trainMu sync.Mutex
}

func New(stores Stores, opts Options, log *zap.Logger) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	if opts.Content == (ContentWeights{}) {
		opts.Content = DefaultContentWeights()
	}
	return &Service{stores: stores, opts: opts, log: log.With(zap.String("component", "recommend"))}
}

// DefaultUser is the user served when a request names none.
func (s *Service) DefaultUser() int { return s.opts.DefaultUser }

// Inventory returns the current inventory with priority scores.
func (s *Service) Inventory(ctx context.Context) ([]pantry.InventoryItem, error) {
	return s.loadInventory(ctx, s.opts.Clock())
}

// RecommendByContent ranks every recipe against the selected inventory items.
// An empty selection yields an empty list.
func (s *Service) RecommendByContent(ctx context.Context, selected []string) ([]Recommendation, error) {
	now := s.opts.Clock()
	inventory, recipes, err := s.load(ctx, now)
	if err != nil {
		metrics.Recommendations.WithLabelValues("content", "error").Inc()
		return nil, err
	}

	chosen := pantry.Select(inventory, selected)
	if len(chosen) == 0 {
		metrics.Recommendations.WithLabelValues("content", "empty").Inc()
		return []Recommendation{}, nil
	}

	ranked := Rank(ScoreContent(recipes, chosen, s.opts.Content), 0)
	metrics.Recommendations.WithLabelValues("content", "ok").Inc()
	return Present(ranked, chosen, now, s.opts.ThresholdDays), nil
}

// RecommendByEmbedding returns the k recipes the serving model rates highest
// for userID (k <= 0 uses the configured default).
func (s *Service) RecommendByEmbedding(ctx context.Context, userID, k int) ([]Recommendation, error) {
	m := s.model.Load()
	if m == nil {
		metrics.Recommendations.WithLabelValues("embedding", "not_ready").Inc()
		return nil, ErrModelNotReady
	}
	if !m.HasUser(userID) {
		metrics.Recommendations.WithLabelValues("embedding", "unknown_user").Inc()
		return nil, fmt.Errorf("%w: %d", ErrUnknownUser, userID)
	}
	if k <= 0 {
		k = s.opts.TopK
	}

	now := s.opts.Clock()
	inventory, recipes, err := s.load(ctx, now)
	if err != nil {
		metrics.Recommendations.WithLabelValues("embedding", "error").Inc()
		return nil, err
	}

	scored := make([]Scored, 0, len(recipes))
	var unknown, changed int
	for _, r := range recipes {
		if !m.HasRecipe(r.ID) {
			unknown++
			continue
		}
		if !m.Recognizes(r.ID, pantry.RecipeKey(r)) {
			changed++
			continue
		}
		rating, _ := m.Predict(userID, r.ID)
		scored = append(scored, Scored{Recipe: r, Score: rating})
	}
	if unknown > 0 {
		s.log.Debug("recipes unknown to model", zap.Int("skipped", unknown), zap.String("model_id", m.ID))
	}
	if changed > 0 {
		s.log.Warn("recipes changed since model was trained, skipping them",
			zap.Int("skipped", changed),
			zap.String("model_id", m.ID),
		)
	}

	metrics.Recommendations.WithLabelValues("embedding", "ok").Inc()
	return Present(Rank(scored, k), inventory, now, s.opts.ThresholdDays), nil
}

// Model returns the serving model, or nil before the first training.
func (s *Service) Model() *embedding.Model {
	return s.model.Load()
}

// ModelCurrent reports whether the serving model was trained on the recipe
// book the recipe store holds now. It is false when no model is loaded.
func (s *Service) ModelCurrent(ctx context.Context) (bool, error) {
	m := s.model.Load()
	if m == nil {
		return false, nil
	}
	recipes, err := s.stores.Recipes.GetRecipes(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("load recipes: %w", err)
	}
	return m.MatchesRecipes(pantry.RecipeKeys(recipes)), nil
}

// SetModel swaps in a new serving model.
func (s *Service) SetModel(m *embedding.Model) {
	s.model.Store(m)
	metrics.ModelLoss.WithLabelValues("train").Set(m.TrainLoss)
	metrics.ModelLoss.WithLabelValues("validation").Set(m.ValidationLoss)
}

// Train rebuilds synthetic interactions from the current stores, fits a new
// model, persists it when a model path is configured, and makes it the
// serving model. Concurrent calls are serialized.
func (s *Service) Train(ctx context.Context) (*embedding.Model, error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	start := time.Now()
	m, err := s.train(ctx)
	metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TrainingRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.TrainingRuns.WithLabelValues("ok").Inc()

	s.SetModel(m)
	s.log.Info("model trained",
		zap.String("model_id", m.ID),
		zap.Int("users", len(m.UserIndex)),
		zap.Int("recipes", len(m.RecipeIndex)),
		zap.Float64("train_loss", m.TrainLoss),
		zap.Float64("validation_loss", m.ValidationLoss),
		zap.Duration("duration", time.Since(start)),
	)
	return m, nil
}

func (s *Service) train(ctx context.Context) (*embedding.Model, error) {
	now := s.opts.Clock()
	inventory, recipes, err := s.load(ctx, now)
	if err != nil {
		return nil, err
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	interactions := BuildInteractions(users, recipes, inventory, now, s.opts.ThresholdDays)
	if s.stores.Interactions != nil {
		if err := s.stores.Interactions.SaveInteractions(ctx, interactions); err != nil {
			s.log.Warn("could not save interactions", zap.Error(err))
		}
	}

	m, err := embedding.Train(ctx, s.opts.Embedding, interactions)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}
	m.RecipeKeys = pantry.RecipeKeys(recipes)

	if s.opts.ModelPath != "" {
		meta, err := embedding.SaveArtifact(s.opts.ModelPath, m)
		if err != nil {
			return nil, fmt.Errorf("save model: %w", err)
		}
		s.log.Debug("model artifact saved", zap.String("path", s.opts.ModelPath), zap.String("checksum", meta.Checksum))
	}
	return m, nil
}

// load reads inventory and recipes. A missing file degrades to an empty
// dataset; if either dataset ends up empty the run fails with ErrNoData.
func (s *Service) load(ctx context.Context, now time.Time) ([]pantry.InventoryItem, []pantry.Recipe, error) {
	inventory, err := s.loadInventory(ctx, now)
	if err != nil {
		return nil, nil, err
	}

	recipes, err := s.stores.Recipes.GetRecipes(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			metrics.StoreLoadFailures.WithLabelValues("recipes", "error").Inc()
			return nil, nil, fmt.Errorf("load recipes: %w", err)
		}
		metrics.StoreLoadFailures.WithLabelValues("recipes", "missing").Inc()
		s.log.Warn("recipe store missing, using empty dataset", zap.Error(err))
		recipes = nil
	}

	if len(inventory) == 0 || len(recipes) == 0 {
		return nil, nil, ErrNoData
	}
	return inventory, recipes, nil
}

func (s *Service) loadInventory(ctx context.Context, now time.Time) ([]pantry.InventoryItem, error) {
	inventory, err := s.stores.Inventory.GetInventory(ctx, now)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			metrics.StoreLoadFailures.WithLabelValues("inventory", "error").Inc()
			return nil, fmt.Errorf("load inventory: %w", err)
		}
		metrics.StoreLoadFailures.WithLabelValues("inventory", "missing").Inc()
		s.log.Warn("inventory store missing, using empty dataset", zap.Error(err))
		return []pantry.InventoryItem{}, nil
	}
	return inventory, nil
}

// loadUsers falls back to the default user when no user store is available.
func (s *Service) loadUsers(ctx context.Context) ([]pantry.User, error) {
	fallback := []pantry.User{{ID: s.opts.DefaultUser}}
	if s.stores.Users == nil {
		return fallback, nil
	}

	users, err := s.stores.Users.GetUsers(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			metrics.StoreLoadFailures.WithLabelValues("users", "error").Inc()
			return nil, fmt.Errorf("load users: %w", err)
		}
		metrics.StoreLoadFailures.WithLabelValues("users", "missing").Inc()
		s.log.Warn("user store missing, training for default user only", zap.Error(err))
		return fallback, nil
	}
	if len(users) == 0 {
		return fallback, nil
	}
	return users, nil
}
