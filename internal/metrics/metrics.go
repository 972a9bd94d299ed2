// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellsync_predictions_total",
		Help: "Prediction requests by task and outcome.",
	}, []string{"task", "status"})

	predictionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wellsync_prediction_duration_seconds",
		Help:    "End-to-end prediction latency by task.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})
)

// ObservePrediction records one prediction request.
func ObservePrediction(task, status string, elapsed time.Duration) {
	predictionsTotal.WithLabelValues(task, status).Inc()
	predictionDuration.WithLabelValues(task).Observe(elapsed.Seconds())
}

// Handler serves the Prometheus scrape endpoint through fiber.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
