// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of prediction requests served",
		},
		[]string{"handler"},
	)

	PredictionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_errors_total",
			Help: "Total number of failed prediction requests by error code",
		},
		[]string{"handler", "error_code"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "prediction_duration_seconds",
			Help: "Duration of prediction request handling in seconds",
		},
		[]string{"handler"},
	)

	HubUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_uploads_total",
			Help: "Total number of artifact uploads to the model hub",
		},
		[]string{"status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)
