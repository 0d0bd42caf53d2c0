package supervisor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mwhite7112/woodpantry-recommender/internal/embedding"
)

// Trainer rebuilds and installs the embedding model.
type Trainer interface {
	Train(ctx context.Context) (*embedding.Model, error)
}

// RefresherConfig controls when the model is retrained.
type RefresherConfig struct {
	TrainOnStartup bool
	// Interval between retrains. Zero disables periodic retraining.
	Interval time.Duration
	// Timeout bounds a single training run. Zero means no bound.
	Timeout time.Duration
}

// ModelRefresher keeps the served model fresh. Training runs here, never on
// the request path; a failed run keeps the previous model in service.
type ModelRefresher struct {
	trainer Trainer
	cfg     RefresherConfig
	log     *zap.Logger
}

func NewModelRefresher(trainer Trainer, cfg RefresherConfig, log *zap.Logger) *ModelRefresher {
	return &ModelRefresher{
		trainer: trainer,
		cfg:     cfg,
		log:     log.With(zap.String("service", "model-refresher")),
	}
}

func (r *ModelRefresher) Serve(ctx context.Context) error {
	r.log.Info("model refresher starting",
		zap.Bool("train_on_startup", r.cfg.TrainOnStartup),
		zap.Duration("interval", r.cfg.Interval),
	)

	if r.cfg.TrainOnStartup {
		r.refresh(ctx)
	}

	var tick <-chan time.Time
	if r.cfg.Interval > 0 {
		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			r.log.Info("model refresher shutting down")
			return ctx.Err()
		case <-tick:
			r.refresh(ctx)
		}
	}
}

// refresh runs one training pass. Failures are logged unless the parent
// context is shutting down; hitting the per-run timeout counts as a failure.
func (r *ModelRefresher) refresh(ctx context.Context) {
	trainCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		trainCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	m, err := r.trainer.Train(trainCtx)
	if err != nil {
		if ctx.Err() == nil {
			r.log.Warn("model training failed, keeping previous model",
				zap.Error(err),
				zap.Duration("duration", time.Since(start)),
			)
		}
		return
	}
	r.log.Info("model refreshed",
		zap.String("model_id", m.ID),
		zap.Float64("validation_loss", m.ValidationLoss),
		zap.Duration("duration", time.Since(start)),
	)
}

func (r *ModelRefresher) String() string { return "model-refresher" }
