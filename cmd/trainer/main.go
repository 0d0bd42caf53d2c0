// Command trainer builds the synthetic interaction set, trains the embedding
// model once and writes the artifact the recommender restores at startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mwhite7112/woodpantry-recommender/internal/app"
	"github.com/mwhite7112/woodpantry-recommender/internal/config"
	"github.com/mwhite7112/woodpantry-recommender/internal/logger"
)

func main() {
	configFile := flag.String("config", "", "path to a config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := app.NewService(cfg, log).Train(ctx)
	if err != nil {
		log.Fatal("training failed", zap.Error(err))
	}

	meta := m.Metadata()
	log.Info("model trained",
		zap.String("model_id", meta.ID),
		zap.String("artifact", cfg.Data.ModelPath),
		zap.Int("users", meta.Users),
		zap.Int("recipes", meta.Recipes),
		zap.Int("train_size", meta.TrainSize),
		zap.Int("validation_size", meta.ValidationSize),
		zap.Float64("train_loss", meta.TrainLoss),
		zap.Float64("validation_loss", meta.ValidationLoss),
	)
}
