// Package metrics exposes the ledger's Prometheus collectors. They register
// with the default registry on import.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "creditledger"

// Outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeReplayed  = "replayed"
	OutcomeRejected  = "rejected"
	OutcomeIntegrity = "integrity"
	OutcomeTransient = "transient"
	OutcomeError     = "error"
)

// OperationsTotal counts ledger operations by kind and outcome.
var OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "operations_total",
	Help:      "Ledger operations by entry kind and outcome.",
}, []string{"kind", "outcome"})

// OperationDuration tracks end-to-end latency of ledger operations.
var OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "operation_duration_seconds",
	Help:      "Ledger operation latency including the account lock wait.",
	Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
}, []string{"kind"})

// LockWait tracks how long operations wait for the account row lock.
var LockWait = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "lock_wait_seconds",
	Help:      "Time spent acquiring the account row lock.",
	Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 3},
})

// IntegrityErrors counts invariant violations found by the engine or replay.
var IntegrityErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "integrity_errors_total",
	Help:      "Invariant violations by error kind.",
}, []string{"kind"})

// ReconciliationRuns counts account verifications by result.
var ReconciliationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reconciliation",
	Name:      "accounts_total",
	Help:      "Accounts verified by result (consistent, drift, repaired, error).",
}, []string{"result"})

// IdempotencyPurged counts expired idempotency keys removed.
var IdempotencyPurged = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "idempotency",
	Name:      "keys_purged_total",
	Help:      "Expired idempotency keys removed by the scheduler.",
})

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
