package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersTotal tracks order submissions by side and outcome.
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opinion_client_orders_total",
			Help: "Total number of orders submitted",
		},
		[]string{"side", "outcome"},
	)
)
