// Package metrics declares the recommender's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_http_requests_total",
			Help: "HTTP requests by route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommender_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_recommendations_total",
			Help: "Recommendation pipeline runs by variant and outcome",
		},
		[]string{"variant", "outcome"},
	)

	StoreLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_store_load_failures_total",
			Help: "Store reads that failed or degraded to an empty dataset",
		},
		[]string{"store", "reason"},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_training_runs_total",
			Help: "Embedding model training runs by outcome",
		},
		[]string{"outcome"},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommender_training_duration_seconds",
			Help:    "Wall time of embedding model training",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
	)

	ModelLoss = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommender_model_loss",
			Help: "Binary cross-entropy of the serving model by data split",
		},
		[]string{"split"},
	)
)
