package forecast

import (
	"github.com/prometheus/client_golang/prometheus"
)

const prometheusMetricNamespace = "cost_forecaster"

var (
	forecastRequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: prometheusMetricNamespace,
			Name:      "forecast_requests_total",
			Help:      "Cost Explorer forecast requests by outcome.",
		},
		[]string{"outcome"},
	)

	forecastRequestDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: prometheusMetricNamespace,
			Name:      "forecast_request_duration_seconds",
			Help:      "Duration of Cost Explorer forecast requests.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	forecastCacheHitsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: prometheusMetricNamespace,
			Name:      "forecast_cache_hits_total",
			Help:      "Forecasts served from the in-process cache.",
		},
	)
)

func init() {
	prometheus.MustRegister(forecastRequestsCounter)
	prometheus.MustRegister(forecastRequestDurationHistogram)
	prometheus.MustRegister(forecastCacheHitsCounter)
}
