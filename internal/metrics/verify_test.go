package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistration(t *testing.T) {
	if GrantsRequested == nil {
		t.Error("GrantsRequested metric is nil")
	}
	if GrantStateTransitions == nil {
		t.Error("GrantStateTransitions metric is nil")
	}
	if GrantsFailed == nil {
		t.Error("GrantsFailed metric is nil")
	}
	if GrantOperationDuration == nil {
		t.Error("GrantOperationDuration metric is nil")
	}

	if TokensIssued == nil {
		t.Error("TokensIssued metric is nil")
	}
	if TokensActive == nil {
		t.Error("TokensActive metric is nil")
	}
	if TokensExpired == nil {
		t.Error("TokensExpired metric is nil")
	}
	if TokenOperationDuration == nil {
		t.Error("TokenOperationDuration metric is nil")
	}

	if SigningOperations == nil {
		t.Error("SigningOperations metric is nil")
	}
}

func TestMetricsIncrement(t *testing.T) {
	GrantsRequested.WithLabelValues("incoming-payment").Inc()
	GrantStateTransitions.WithLabelValues("approved").Inc()
	GrantsFailed.WithLabelValues("interaction_required").Inc()
	GrantOperationDuration.WithLabelValues("request").Observe(0.5)

	TokensIssued.WithLabelValues("success").Inc()
	TokensActive.Inc()
	TokensExpired.Inc()
	TokenOperationDuration.WithLabelValues("rotate").Observe(1.5)

	SigningOperations.WithLabelValues("sign", "ed25519").Inc()
	SigningOperations.WithLabelValues("verify", "ed25519").Inc()

	count := testutil.CollectAndCount(GrantsRequested)
	if count == 0 {
		t.Error("GrantsRequested has no metrics collected")
	}

	count = testutil.CollectAndCount(TokensIssued)
	if count == 0 {
		t.Error("TokensIssued has no metrics collected")
	}

	count = testutil.CollectAndCount(SigningOperations)
	if count == 0 {
		t.Error("SigningOperations has no metrics collected")
	}
}
