// Package metrics defines the Prometheus instruments for the settlement
// core. All instruments self-register via promauto and are served from the
// /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var SettlementsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "splitledger",
	Name:      "settlements_created_total",
	Help:      "Settlement requests created (deduplicated creates not counted).",
})

var SettlementsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "splitledger",
	Name:      "settlements_confirmed_total",
	Help:      "Settlement requests confirmed by the creditor.",
})

var SettlementsRejected = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "splitledger",
	Name:      "settlements_rejected_total",
	Help:      "Settlement requests rejected by the creditor.",
})

var TransitionConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "splitledger",
	Name:      "settlement_transition_conflicts_total",
	Help:      "Confirm/reject attempts that lost the compare-and-swap or came from the wrong party.",
})

var PartialAggregations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "splitledger",
	Name:      "ledger_partial_aggregations_total",
	Help:      "Ledger reads that had to skip malformed transactions.",
})
