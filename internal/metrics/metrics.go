package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsReconciled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "datrix_payments_reconciled_total",
		Help: "Successful payment callbacks matched to a user and persisted.",
	})

	PaymentsUnmatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "datrix_payments_unmatched_total",
		Help: "Successful payment callbacks with no phone directory entry.",
	})

	InvitesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "datrix_invites_issued_total",
		Help: "Single-use channel invites issued to subscribers.",
	})

	SubscribersSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "datrix_subscribers_swept_total",
		Help: "Expired subscriptions removed by the sweeper.",
	})
)
