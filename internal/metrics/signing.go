package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SigningOperations tracks RFC 9421 sign/verify calls.
	SigningOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signing",
			Name:      "operations_total",
			Help:      "Total number of HTTP message signature operations",
		},
		[]string{"operation", "algorithm"}, // sign/verify, ed25519
	)

	// SigningErrors tracks sign/verify failures by operation.
	SigningErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signing",
			Name:      "errors_total",
			Help:      "Total number of HTTP message signature errors",
		},
		[]string{"operation"}, // sign, verify
	)

	// SigningOperationDuration tracks sign/verify latency.
	SigningOperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "signing",
			Name:      "operation_duration_seconds",
			Help:      "HTTP message signature operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 15), // 10µs to 163ms
		},
		[]string{"operation", "algorithm"},
	)
)
