package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	addsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_adds_total",
			Help: "Total add operations by outcome",
		},
		[]string{"outcome"},
	)

	removesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_removes_total",
			Help: "Total remove operations by outcome",
		},
		[]string{"outcome"},
	)

	reconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_reconciliations_total",
			Help: "Total wishlist loads by source",
		},
		[]string{"source"},
	)

	pendingOps = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wishlist_pending_operations",
			Help: "Operations currently awaiting record-store confirmation",
		},
	)
)

// Add outcomes.
const (
	outcomeConfirmed  = "confirmed"
	outcomeOffline    = "offline"
	outcomeRolledBack = "rolled_back"
	outcomeDuplicate  = "duplicate"
	outcomeNoop       = "noop"
)

// Load sources.
const (
	sourceRemote = "remote"
	sourceCache  = "cache"
)
