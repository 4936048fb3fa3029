package storage

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cost_forecaster",
			Name:      "uploads_total",
			Help:      "Report uploads by result.",
		},
		[]string{"result"},
	)

	uploadedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cost_forecaster",
			Name:      "uploaded_bytes_total",
			Help:      "Bytes of report bodies uploaded.",
		},
	)
)

func init() {
	prometheus.MustRegister(uploadsTotal)
	prometheus.MustRegister(uploadedBytesTotal)
}
