package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PredictionsTotal      *prometheus.CounterVec
	GeocodeAPIErrors      prometheus.Counter
	GeocodeSeconds        *prometheus.HistogramVec
	ClassifierConfidence  prometheus.Histogram
	VerificationDistances prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		PredictionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pinpoint_predictions_total",
			Help: "Total number of completed image location predictions.",
		}, []string{"status"}),
		GeocodeAPIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "pinpoint_geocoding_api_errors_total",
			Help: "Total number of errors received from the reverse geocoding API.",
		}),
		GeocodeSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pinpoint_geocoding_request_duration_seconds",
			Help:    "Duration of requests to the reverse geocoding API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ClassifierConfidence: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "pinpoint_classifier_confidence",
			Help:    "Confidence scores reported by the region classifier.",
			Buckets: prometheus.LinearBuckets(0.0, 0.1, 11),
		}),
		VerificationDistances: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "pinpoint_verification_distance_km",
			Help:    "Great-circle distance between predicted and actual coordinates.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}
