// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsAppended counts ledger entries appended, by entry type.
	TransactionsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "societyd_transactions_appended_total",
		Help: "Number of ledger entries appended.",
	}, []string{"type"})

	// TransactionsReversed counts ledger entries removed via payment undo.
	TransactionsReversed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "societyd_transactions_reversed_total",
		Help: "Number of ledger entries reversed by payment undo.",
	})

	// UnpaidSweeps counts runs of the post-cycle unpaid sweep.
	UnpaidSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "societyd_unpaid_sweeps_total",
		Help: "Number of unpaid-marking sweeps executed.",
	})

	// UnpaidResidentsMarked counts residents marked unpaid by the sweep.
	UnpaidResidentsMarked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "societyd_unpaid_residents_marked_total",
		Help: "Number of residents marked unpaid by the sweep.",
	})
)
