package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokensIssued tracks access tokens received from grant responses.
	TokensIssued = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "issued_total",
			Help:      "Total number of GNAP access tokens issued",
		},
		[]string{"status"}, // success, failure
	)

	// TokensActive tracks tokens currently held and usable.
	TokensActive = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "active",
			Help:      "Number of currently active GNAP access tokens",
		},
	)

	// TokensExpired tracks tokens that lapsed without rotation.
	TokensExpired = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "expired_total",
			Help:      "Total number of GNAP access tokens that expired",
		},
	)

	// TokensRevoked tracks tokens explicitly revoked.
	TokensRevoked = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "revoked_total",
			Help:      "Total number of GNAP access tokens revoked",
		},
	)

	// TokenOperationDuration tracks rotate/revoke latency.
	TokenOperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "operation_duration_seconds",
			Help:      "GNAP token operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 0.1ms to 1.6s
		},
		[]string{"operation"}, // rotate, revoke
	)
)
