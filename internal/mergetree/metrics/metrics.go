package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "mergetree"
)

// Status label values
const (
	StatusOK            = "ok"
	StatusEmptyInput    = "empty_input"
	StatusInvalidToken  = "invalid_token"
	StatusTooManyValues = "too_many_values"
)

// Sort metrics
var (
	// SortsTotal counts submissions by validation outcome
	SortsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name:      "sorts_total",
		Namespace: namespace,
		Help:      "Total number of sort submissions, by outcome",
	}, []string{"source", "status"})

	// InputLength tracks the number of values in accepted submissions
	InputLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:      "input_length",
		Namespace: namespace,
		Help:      "Number of values in accepted sort submissions",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 11),
	})

	// SortDuration tracks time spent building the sort tree
	SortDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:      "sort_duration_seconds",
		Namespace: namespace,
		Help:      "Time to sort an input and build its recursion tree",
		Buckets:   prometheus.ExponentialBucketsRange(0.000001, 1, 16),
	})
)

// Submission metrics
var (
	// SubmissionsSuperseded counts requests for a submission after the same client made a newer one
	SubmissionsSuperseded = promauto.NewCounter(prometheus.CounterOpts{
		Name:      "submissions_superseded_total",
		Namespace: namespace,
		Help:      "Requests redirected from a stale submission to the client's latest one",
	})

	// SubmissionsEvicted counts submissions dropped from the in-memory store
	SubmissionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name:      "submissions_evicted_total",
		Namespace: namespace,
		Help:      "Submissions removed from the store after expiry or for capacity",
	})
)
