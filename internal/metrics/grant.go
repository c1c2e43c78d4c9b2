package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GrantsRequested tracks grant requests sent to an authorization server.
	GrantsRequested = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grants",
			Name:      "requested_total",
			Help:      "Total number of GNAP grant requests sent",
		},
		[]string{"access_type"}, // incoming-payment, outgoing-payment, quote
	)

	// GrantStateTransitions tracks a grant's arrivals into each state.
	GrantStateTransitions = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grants",
			Name:      "state_transitions_total",
			Help:      "Total number of GNAP grant state transitions, by state reached",
		},
		[]string{"to_state"}, // gnap.State value: INTERACTION_REQUIRED, PENDING, APPROVED, TERMINAL_CANCELLED
	)

	// GrantsFailed tracks failed grant requests by error type.
	GrantsFailed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grants",
			Name:      "failed_total",
			Help:      "Total number of failed GNAP grant operations by error type",
		},
		[]string{"error_type"}, // server's "error" code, or "rejected" when the body has none
	)

	// GrantOperationDuration tracks GNAP request/continue/cancel latency.
	GrantOperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grants",
			Name:      "operation_duration_seconds",
			Help:      "GNAP grant operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to 2s
		},
		[]string{"operation"}, // request, continue, cancel
	)
)
