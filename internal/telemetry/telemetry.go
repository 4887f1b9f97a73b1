// Package telemetry exposes the service's Prometheus metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransactionsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moneta_transactions_committed_total",
		Help: "Ledger batches that committed a new transaction.",
	})

	TransactionsReversed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moneta_transactions_reversed_total",
		Help: "Ledger batches that reversed an existing transaction.",
	})

	CommitFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moneta_commit_failures_total",
		Help: "Atomic batches that failed to commit.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moneta_http_requests_total",
		Help: "HTTP requests by method and status class.",
	}, []string{"method", "status"})
)

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
