// Package metrics exposes Prometheus counters for engine activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ContributionsCreated counts contribution obligations created by the
	// scheduler.
	ContributionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esusu_contributions_created_total",
		Help: "Contribution obligations created by the cycle scheduler.",
	})

	// ContributionsPaid counts contributions marked paid.
	ContributionsPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esusu_contributions_paid_total",
		Help: "Contributions confirmed as paid.",
	})

	// PayoutsProcessed counts cycle payouts recorded.
	PayoutsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esusu_payouts_processed_total",
		Help: "Cycle payouts recorded.",
	})

	// PenaltiesApplied counts late-payment penalties assessed.
	PenaltiesApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esusu_penalties_applied_total",
		Help: "Late-payment penalties assessed.",
	})

	// GroupsCompleted counts groups that finished their rotation.
	GroupsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esusu_groups_completed_total",
		Help: "Groups that completed their full rotation.",
	})

	// PenaltyScanErrors counts per-row failures during the overdue scan.
	PenaltyScanErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "esusu_penalty_scan_errors_total",
		Help: "Per-contribution failures during the overdue penalty scan.",
	})
)
