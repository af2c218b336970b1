package clearance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "haven_export_policy_decisions_total",
		Help: "Export hash policy decisions by outcome.",
	}, []string{"outcome"})

	grantsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "haven_clearance_grants_total",
		Help: "Security clearances granted.",
	})

	revocationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "haven_clearance_revocations_total",
		Help: "Security clearances revoked before expiry.",
	})
)
