package gnap

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/openpayments-go/client/internal/metrics"
	"github.com/openpayments-go/client/pkg/operrors"
)

// RotateToken POSTs to token's manage_uri carrying the current token as a
// GNAP bearer credential, and returns the replacement token a 2xx response
// describes. The caller discards the previous token on success.
func (p *Protocol) RotateToken(ctx context.Context, token *AccessToken) (*AccessToken, error) {
	start := time.Now()
	defer func() {
		metrics.TokenOperationDuration.WithLabelValues("rotate").Observe(time.Since(start).Seconds())
	}()
	resp, err := p.signAndSend(ctx, http.MethodPost, token.ManageURI, nil, token.Value)
	if err != nil {
		metrics.TokensIssued.WithLabelValues("failure").Inc()
		return nil, err
	}
	switch resp.Status() {
	case http.StatusUnauthorized:
		metrics.TokensIssued.WithLabelValues("failure").Inc()
		return nil, operrors.ErrUnrotatable
	case http.StatusNotFound:
		metrics.TokensIssued.WithLabelValues("failure").Inc()
		return nil, operrors.ErrNotFound
	}
	if resp.Status() < 200 || resp.Status() >= 300 {
		metrics.TokensIssued.WithLabelValues("failure").Inc()
		return nil, p.rejectionError(resp)
	}

	var wire struct {
		AccessToken *tokenResponse `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body(), &wire); err != nil || wire.AccessToken == nil {
		metrics.TokensIssued.WithLabelValues("failure").Inc()
		return nil, operrors.ErrMalformedGrantResponse
	}
	metrics.TokensIssued.WithLabelValues("success").Inc()
	metrics.TokensActive.Inc()
	return &AccessToken{
		Value:         wire.AccessToken.Value,
		ManageURI:     wire.AccessToken.ManageURI,
		ExpiresAt:     p.expiryInstant(wire.AccessToken.ExpiresIn),
		GrantedAccess: wire.AccessToken.GrantedAccess,
		Label:         token.Label,
	}, nil
}

// RevokeToken DELETEs token's manage_uri. A 2xx or 204 response invalidates
// the token; revoking an already-revoked token is idempotent in that both
// calls terminate the token, even if the second returns 404.
func (p *Protocol) RevokeToken(ctx context.Context, token *AccessToken) error {
	start := time.Now()
	defer func() {
		metrics.TokenOperationDuration.WithLabelValues("revoke").Observe(time.Since(start).Seconds())
	}()
	resp, err := p.signAndSend(ctx, http.MethodDelete, token.ManageURI, nil, token.Value)
	if err != nil {
		return err
	}
	if resp.Status() == http.StatusNotFound {
		metrics.TokensRevoked.Inc()
		return nil
	}
	if resp.Status() < 200 || resp.Status() >= 300 {
		return p.rejectionError(resp)
	}
	metrics.TokensRevoked.Inc()
	return nil
}

// ExpiresAt returns the token's absolute expiry instant and whether one is
// known at all (a token with no expires_in in its grant response has none).
func ExpiresAt(token *AccessToken) (time.Time, bool) {
	if token.ExpiresAt.IsZero() {
		return time.Time{}, false
	}
	return token.ExpiresAt, true
}

// IsExpiringWithin reports whether token's absolute expiry falls within
// threshold of now. A token with no known expiry never reports as expiring.
func IsExpiringWithin(token *AccessToken, now time.Time, threshold time.Duration) bool {
	expiry, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	return !expiry.After(now.Add(threshold))
}

// IsExpiredOnUse reports whether token's local expiry has already passed as
// of now, for ResourceAuthBinding to fail fast with TokenKind::ExpiredOnUse
// before spending a round trip on a call that would be rejected anyway.
func IsExpiredOnUse(token *AccessToken, now time.Time) bool {
	expiry, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	expired := !expiry.After(now)
	if expired {
		metrics.TokensExpired.Inc()
	}
	return expired
}
