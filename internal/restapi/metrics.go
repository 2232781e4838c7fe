package restapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks API requests by method and outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opinion_restapi_requests_total",
			Help: "Total number of REST API requests",
		},
		[]string{"method", "outcome"},
	)

	// RequestDurationSeconds tracks API request latency.
	RequestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "opinion_restapi_request_duration_seconds",
		Help:    "Duration of REST API requests",
		Buckets: prometheus.DefBuckets,
	})
)
