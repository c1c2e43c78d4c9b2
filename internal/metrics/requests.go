package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsProcessed tracks signed resource requests by method and outcome.
	RequestsProcessed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "processed_total",
			Help:      "Total number of signed resource requests processed",
		},
		[]string{"method", "status"}, // GET/POST/..., success/failure
	)

	// SignatureVerificationFailures tracks rejected inbound signatures, e.g.
	// when verifying a response signed by an authorization or resource server.
	SignatureVerificationFailures = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "signature_verification_failures_total",
			Help:      "Total number of inbound signature verification failures",
		},
	)

	// NonceValidations tracks interact finish hash nonce checks.
	NonceValidations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "nonce_validations_total",
			Help:      "Total number of interaction finish nonce validations",
		},
		[]string{"status"}, // valid, invalid
	)

	// RequestProcessingDuration tracks end-to-end signed call latency.
	RequestProcessingDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "processing_duration_seconds",
			Help:      "Signed resource request processing duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to 205ms
		},
	)

	// RequestBodySize tracks outbound request body sizes.
	RequestBodySize = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "body_size_bytes",
			Help:      "Outbound request body size in bytes",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10), // 64B to 16MB
		},
	)
)
