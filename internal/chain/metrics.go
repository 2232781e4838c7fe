package chain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TxSentTotal tracks transactions submitted to the chain.
	TxSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opinion_chain_tx_sent_total",
		Help: "Total number of transactions sent",
	})

	// TxErrorsTotal tracks failed submissions and reverted transactions.
	TxErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opinion_chain_tx_errors_total",
		Help: "Total number of transaction errors",
	})
)
