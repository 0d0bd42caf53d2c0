// Package app wires configuration into the recommendation service.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mwhite7112/woodpantry-recommender/internal/clients"
	"github.com/mwhite7112/woodpantry-recommender/internal/config"
	"github.com/mwhite7112/woodpantry-recommender/internal/embedding"
	"github.com/mwhite7112/woodpantry-recommender/internal/recommend"
	"github.com/mwhite7112/woodpantry-recommender/internal/store"
)

// NewService builds the configured stores and the service on top of them.
func NewService(cfg *config.Config, log *zap.Logger) *recommend.Service {
	d := cfg.Data
	stores := recommend.Stores{
		Inventory:    store.NewInventoryStore(d.InventoryPath, d.DefaultExpirationDays, log),
		Recipes:      store.NewRecipeStore(d.RecipesPath),
		Users:        store.NewUserStore(d.UsersPath),
		Interactions: store.NewInteractionStore(d.InteractionsPath),
	}
	if d.Source == "http" {
		remote := clients.NewRemote(
			clients.NewPantryClient(d.PantryURL, d.HTTPTimeout),
			clients.NewRecipeClient(d.RecipeURL, d.HTTPTimeout),
			clients.NewDictionaryClient(d.DictionaryURL, d.HTTPTimeout),
			d.DefaultExpirationDays,
			log.Named("clients"),
		)
		stores.Inventory, stores.Recipes = remote, remote
	}

	e := cfg.Embedding
	return recommend.New(stores, recommend.Options{
		Content: recommend.ContentWeights{
			Similarity:    cfg.Content.SimilarityWeight,
			Priority:      cfg.Content.PriorityWeight,
			Normalization: recommend.Normalization(cfg.Content.Normalization),
		},
		ThresholdDays: d.ExpiringThresholdDays,
		TopK:          e.TopK,
		DefaultUser:   e.DefaultUser,
		Embedding: embedding.Config{
			Dim:             e.Dim,
			Hidden:          e.Hidden,
			Epochs:          e.Epochs,
			LearningRate:    e.LearningRate,
			ValidationSplit: e.ValidationSplit,
			Seed:            e.Seed,
		},
		ModelPath: d.ModelPath,
	}, log)
}

// RestoreModel installs the persisted artifact, if any. A missing file is not
// an error; a corrupt one is.
func RestoreModel(svc *recommend.Service, path string, log *zap.Logger) error {
	m, meta, err := embedding.LoadArtifact(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info("no saved model artifact", zap.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore model: %w", err)
	}
	svc.SetModel(m)
	log.Info("restored model artifact",
		zap.String("model_id", meta.ID),
		zap.Time("trained_at", meta.TrainedAt),
		zap.Float64("validation_loss", meta.ValidationLoss),
	)
	return nil
}

// TrainOnStartup decides whether the refresher should train before serving:
// when configured and no model was restored, or whenever the restored model
// was trained on a different recipe book than the store holds now.
func TrainOnStartup(ctx context.Context, svc *recommend.Service, configured bool, log *zap.Logger) bool {
	if svc.Model() == nil {
		return configured
	}
	current, err := svc.ModelCurrent(ctx)
	if err != nil {
		log.Warn("could not compare saved model with recipes", zap.Error(err))
		return configured
	}
	if !current {
		log.Info("saved model was trained on a different recipe book, retraining",
			zap.String("model_id", svc.Model().ID),
		)
		return true
	}
	return false
}
