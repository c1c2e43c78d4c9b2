package gnap_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpayments-go/client/pkg/gnap"
	"github.com/openpayments-go/client/pkg/httpmsg"
	"github.com/openpayments-go/client/pkg/keymaterial"
)

func fixedClock() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}

func transportReturning(status int, body any) httpmsg.Transport {
	return func(_ context.Context, req *httpmsg.Request) (*httpmsg.Response, error) {
		b, _ := json.Marshal(body)
		return httpmsg.NewResponse(status, map[string]string{"Content-Type": "application/json"}, b), nil
	}
}

func TestRequestGrantInteractiveFlowS4(t *testing.T) {
	km, err := keymaterial.Generate()
	require.NoError(t, err)

	transport := transportReturning(200, map[string]any{
		"continue": map[string]any{"access_token": "cont-tok", "uri": "https://as.example.com/continue/1", "wait": 5},
		"interact": map[string]any{"redirect": "https://as.example.com/interact/1", "finish": "server-nonce"},
	})

	p := gnap.NewProtocol(km, transport, gnap.WithClock(fixedClock))
	finish := &gnap.Finish{Method: "redirect", URI: "https://client.example.com/finish", Nonce: "client-nonce"}
	accessRequests := []gnap.AccessRequest{{Type: "incoming-payment", Actions: []string{"create", "read"}}}

	jwk := km.PublicJWK()
	grant, err := p.RequestGrant(context.Background(), "https://as.example.com/", accessRequests, gnap.ClientKey{JWK: &jwk}, finish)
	require.NoError(t, err)
	assert.Equal(t, gnap.StateInteractionRequired, grant.State)
	require.NotNil(t, grant.Interaction)
	require.Nil(t, grant.AccessToken)

	// Continue with an interact_ref, server now issues the token.
	p2 := gnap.NewProtocol(km, transportReturning(200, map[string]any{
		"access_token": map[string]any{"value": "tok_xyz", "manage": "https://as.example.com/token/1", "expires_in": 3600, "access": accessRequestsWire(accessRequests)},
	}), gnap.WithClock(fixedClock))

	approved, err := p2.ContinueGrant(context.Background(), grant, "abc123")
	require.NoError(t, err)
	assert.Equal(t, gnap.StateApproved, approved.State)
	require.NotNil(t, approved.AccessToken)
	assert.Equal(t, "tok_xyz", approved.AccessToken.Value)
}

func accessRequestsWire(ar []gnap.AccessRequest) []map[string]any {
	out := make([]map[string]any, len(ar))
	for i, a := range ar {
		out[i] = map[string]any{"type": a.Type, "actions": a.Actions}
	}
	return out
}

func TestRequestGrantNonInteractiveApproval(t *testing.T) {
	km, err := keymaterial.Generate()
	require.NoError(t, err)
	transport := transportReturning(200, map[string]any{
		"access_token": map[string]any{"value": "tok_1", "manage": "https://as.example.com/token/1", "expires_in": 60},
	})
	p := gnap.NewProtocol(km, transport, gnap.WithClock(fixedClock))

	grant, err := p.RequestGrant(context.Background(), "https://as.example.com/", nil, gnap.ClientKey{URI: "https://client.example.com/keys/1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, gnap.StateApproved, grant.State)
	assert.Equal(t, fixedClock().Add(60*time.Second), grant.AccessToken.ExpiresAt)
}

func TestRequestGrantPendingOnly(t *testing.T) {
	km, err := keymaterial.Generate()
	require.NoError(t, err)
	transport := transportReturning(200, map[string]any{
		"continue": map[string]any{"access_token": "cont", "uri": "https://as.example.com/continue/2", "wait": 5},
	})
	p := gnap.NewProtocol(km, transport)

	grant, err := p.RequestGrant(context.Background(), "https://as.example.com/", nil, gnap.ClientKey{URI: "https://client.example.com/keys/1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, gnap.StatePending, grant.State)
	require.Nil(t, grant.Interaction)
}

func TestRequestGrantRejectedNon2xx(t *testing.T) {
	km, err := keymaterial.Generate()
	require.NoError(t, err)
	transport := transportReturning(400, map[string]any{"error": "invalid_request", "error_description": "bad client key"})
	p := gnap.NewProtocol(km, transport)

	_, err = p.RequestGrant(context.Background(), "https://as.example.com/", nil, gnap.ClientKey{URI: "https://client.example.com/keys/1"}, nil)
	require.Error(t, err)
}

func TestCancelGrantTerminalState(t *testing.T) {
	km, err := keymaterial.Generate()
	require.NoError(t, err)
	transport := func(_ context.Context, req *httpmsg.Request) (*httpmsg.Response, error) {
		assert.Equal(t, "DELETE", req.Method())
		return httpmsg.NewResponse(202, nil, nil), nil
	}
	p := gnap.NewProtocol(km, transport)

	grant := &gnap.Grant{
		Continuation: &gnap.Continuation{ContinueToken: "cont-tok", ContinueURI: "https://as.example.com/continue/1"},
		State:        gnap.StatePending,
	}
	cancelled, err := p.CancelGrant(context.Background(), grant)
	require.NoError(t, err)
	assert.Equal(t, gnap.StateTerminalCancelled, cancelled.State)
	assert.Nil(t, cancelled.AccessToken)
}

func TestContinueGrantWithoutContinuationFails(t *testing.T) {
	km, err := keymaterial.Generate()
	require.NoError(t, err)
	p := gnap.NewProtocol(km, transportReturning(200, map[string]any{}))

	_, err = p.ContinueGrant(context.Background(), &gnap.Grant{}, "ref")
	require.Error(t, err)
}
