// Package metrics exposes the engine's prometheus/client_golang
// counters and histograms: commit/abort totals, lock-wait denials, and
// per-table record counts. Purely observational — nothing here gates
// correctness, matching spec.md's Non-goal on an external metrics
// pipeline while still carrying the pack's ambient observability stack.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Commits counts successfully committed transactions.
	Commits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "txcore",
		Name:      "commits_total",
		Help:      "Total number of transactions committed.",
	})

	// Aborts counts transactions that ended in ABORT, labeled by cause.
	Aborts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txcore",
		Name:      "aborts_total",
		Help:      "Total number of transactions aborted, by reason.",
	}, []string{"reason"})

	// LockDenied counts no-wait table lock acquisitions that failed.
	LockDenied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txcore",
		Name:      "lock_denied_total",
		Help:      "Total number of table lock requests denied under no-wait semantics.",
	}, []string{"table", "mode"})

	// TableSize reports the current row count of a table, set after
	// mutating operations so a scrape always sees a recent value.
	TableSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "txcore",
		Name:      "table_rows",
		Help:      "Current number of rows in a table.",
	}, []string{"table"})

	// CommitLatency observes wall-clock duration of Commit calls.
	CommitLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "txcore",
		Name:      "commit_latency_seconds",
		Help:      "Observed latency of Transaction.Commit calls.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Register adds every collector above to reg. Call once at process
// startup; a nil reg registers against the default registry.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{Commits, Aborts, LockDenied, TableSize, CommitLatency} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
