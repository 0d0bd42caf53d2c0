package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mwhite7112/woodpantry-recommender/internal/api"
	"github.com/mwhite7112/woodpantry-recommender/internal/app"
	"github.com/mwhite7112/woodpantry-recommender/internal/config"
	"github.com/mwhite7112/woodpantry-recommender/internal/logger"
	"github.com/mwhite7112/woodpantry-recommender/internal/supervisor"
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

	svc := app.NewService(cfg, log)
	if err := app.RestoreModel(svc, cfg.Data.ModelPath, log); err != nil {
		log.Warn("ignoring saved model", zap.Error(err))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(svc, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tree := supervisor.New(log, supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout})
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	tree.AddModelService(supervisor.NewModelRefresher(svc, supervisor.RefresherConfig{
		TrainOnStartup: app.TrainOnStartup(ctx, svc, cfg.Embedding.TrainOnStartup, log),
		Interval:       cfg.Embedding.RefreshInterval,
		Timeout:        30 * time.Minute,
	}, log))

	log.Info("recommender listening", zap.String("addr", server.Addr))
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("supervisor exited", zap.Error(err))
	}
	log.Info("recommender stopped")
}
