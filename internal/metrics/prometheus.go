package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsProcessed counts terminal job outcomes by model and status.
	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mugshot_jobs_processed_total",
			Help: "Total number of generation jobs reaching a terminal state",
		},
		[]string{"model", "status"},
	)

	// JobDuration tracks end-to-end job processing time in seconds.
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mugshot_job_duration_seconds",
			Help:    "Duration of generation job processing in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"model"},
	)

	// CreditsSpent accumulates credits debited for succeeded jobs.
	CreditsSpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mugshot_credits_spent_total",
			Help: "Total credits debited for succeeded jobs",
		},
	)

	// InsufficientCredits counts jobs rejected at the balance check.
	InsufficientCredits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mugshot_insufficient_credits_total",
			Help: "Jobs failed for insufficient credits",
		},
	)

	// WorkersActive tracks concurrently running job processors.
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mugshot_workers_active",
			Help: "Number of currently active job processor goroutines",
		},
	)

	// LedgerDrift reports users whose audit sums disagree with the stored
	// balance, as seen by the last reconciliation sweep.
	LedgerDrift = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mugshot_ledger_drift_users",
			Help: "Users with audit-ledger drift detected by the reconciliation sweep",
		},
	)

	// StuckJobsFailed counts jobs reaped by the running-state watchdog.
	StuckJobsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mugshot_stuck_jobs_failed_total",
			Help: "Jobs failed by the stuck-running watchdog",
		},
	)
)
