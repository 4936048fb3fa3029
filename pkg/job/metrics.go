package job

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cost_forecaster",
			Name:      "runs_total",
			Help:      "Forecast runs by result.",
		},
		[]string{"result"},
	)

	runDurationHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cost_forecaster",
			Name:      "run_duration_seconds",
			Help:      "Duration of a full forecast run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	lastSuccessGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cost_forecaster",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		},
	)

	reportRowsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cost_forecaster",
			Name:      "report_rows",
			Help:      "Rows in the last rendered report, by format.",
		},
		[]string{"format"},
	)
)

func init() {
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(runDurationHistogram)
	prometheus.MustRegister(lastSuccessGauge)
	prometheus.MustRegister(reportRowsGauge)
}
