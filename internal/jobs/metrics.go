package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "calculate_pi"

const (
	outcomeSucceeded   = "succeeded"
	outcomeFailed      = "failed"
	outcomeInterrupted = "interrupted"
	outcomeSkipped     = "skipped"
)

var jobsSubmittedCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "jobs_submitted_total",
		Help:      "Number of jobs accepted by the submission gateway",
	},
)

var jobsSubmitFailedCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "jobs_submit_failed_total",
		Help:      "Number of submissions rejected because the queue could not be reached",
	},
)

var jobsInFlightGauge = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "jobs_in_flight",
		Help:      "Number of job runners currently revealing digits",
	},
)

var jobsFinishedCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "jobs_finished_total",
		Help:      "Number of job runs that ended, by outcome",
	},
	[]string{"outcome"},
)

var jobDurationHist = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "job_duration_seconds",
		Help:      "Wall-clock duration of successful job runs",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
	},
)
