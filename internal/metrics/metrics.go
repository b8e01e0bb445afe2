package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PreviewsTotal counts plan change previews by where the numbers came from.
	PreviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "driverportal",
		Subsystem: "billing",
		Name:      "previews_total",
		Help:      "Plan change previews by source (server/local/none) and change type.",
	}, []string{"source", "change_type"})

	// PlanChangesTotal counts plan change attempts and outcomes.
	PlanChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "driverportal",
		Subsystem: "billing",
		Name:      "plan_changes_total",
		Help:      "Plan change attempts by change type and outcome.",
	}, []string{"change_type", "outcome"})

	// CacheLookupsTotal counts cache reads by key prefix and result.
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "driverportal",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups by key prefix and result (fresh/stale/miss/stale_served).",
	}, []string{"prefix", "result"})

	// BillingRequestDuration tracks Billing API latency.
	BillingRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "driverportal",
		Subsystem: "billing_api",
		Name:      "request_duration_seconds",
		Help:      "Billing API request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "status"})
)

const (
	CacheResultFresh       = "fresh"
	CacheResultStale       = "stale"
	CacheResultMiss        = "miss"
	CacheResultStaleServed = "stale_served"

	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)
