package rfc9421_test

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpayments-go/client/pkg/digest"
	"github.com/openpayments-go/client/pkg/httpmsg"
	"github.com/openpayments-go/client/pkg/keymaterial"
	"github.com/openpayments-go/client/pkg/operrors"
	"github.com/openpayments-go/client/pkg/rfc9421"
)

func newSignedRequest(t *testing.T, km *keymaterial.KeyMaterial, opts rfc9421.SignOptions) *httpmsg.Request {
	t.Helper()
	body := []byte(`{"access_token":{"value":"abc"}}`)
	req, err := httpmsg.NewRequest("POST", "https://auth.example.com/continue", map[string]string{
		"Content-Digest": digestHeader(body),
	}, body)
	require.NoError(t, err)

	engine := rfc9421.NewEngine()
	signed, err := engine.SignRequest(req, km, opts)
	require.NoError(t, err)
	return signed
}

func TestSignAndVerifyRequestRoundTrip(t *testing.T) {
	km, err := keymaterial.Generate()
	require.NoError(t, err)

	signed := newSignedRequest(t, km, rfc9421.SignOptions{Created: time.Now()})

	require.NotEmpty(t, signed.Header("signature-input"))
	require.NotEmpty(t, signed.Header("signature"))

	engine := rfc9421.NewEngine()
	resolve := func(keyID string) (ed25519.PublicKey, error) {
		assert.Equal(t, km.KeyID(), keyID)
		return km.PublicKey(), nil
	}
	err = engine.VerifyRequest(signed, resolve, rfc9421.DefaultVerifyOptions)
	assert.NoError(t, err)
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	km, err := keymaterial.Generate()
	require.NoError(t, err)
	signed := newSignedRequest(t, km, rfc9421.SignOptions{Created: time.Now()})

	tampered := signed.WithBody([]byte(`{"access_token":{"value":"evil"}}`))

	engine := rfc9421.NewEngine()
	err = engine.VerifyRequest(tampered, func(string) (ed25519.PublicKey, error) { return km.PublicKey(), nil }, rfc9421.DefaultVerifyOptions)
	require.Error(t, err)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	km, err := keymaterial.Generate()
	require.NoError(t, err)
	other, err := keymaterial.Generate()
	require.NoError(t, err)
	signed := newSignedRequest(t, km, rfc9421.SignOptions{Created: time.Now()})

	engine := rfc9421.NewEngine()
	err = engine.VerifyRequest(signed, func(string) (ed25519.PublicKey, error) { return other.PublicKey(), nil }, rfc9421.DefaultVerifyOptions)
	require.ErrorIs(t, err, operrors.ErrSignatureVerifyFail)
}

func TestVerifyRejectsExpiredSignature(t *testing.T) {
	km, err := keymaterial.Generate()
	require.NoError(t, err)
	signed := newSignedRequest(t, km, rfc9421.SignOptions{Created: time.Now().Add(-1 * time.Hour)})

	engine := rfc9421.NewEngine()
	err = engine.VerifyRequest(signed, func(string) (ed25519.PublicKey, error) { return km.PublicKey(), nil }, rfc9421.DefaultVerifyOptions)
	require.ErrorIs(t, err, operrors.ErrSignatureExpired)
}

func TestVerifyFailsClosedWithoutHeaders(t *testing.T) {
	req, err := httpmsg.NewRequest("GET", "https://example.com/", nil, nil)
	require.NoError(t, err)

	engine := rfc9421.NewEngine()
	err = engine.VerifyRequest(req, func(string) (ed25519.PublicKey, error) { return nil, nil }, rfc9421.DefaultVerifyOptions)
	require.ErrorIs(t, err, operrors.ErrMissingCoveredHeader)
}

func TestSignResponseRoundTrip(t *testing.T) {
	km, err := keymaterial.Generate()
	require.NoError(t, err)
	body := []byte(`{"ok":true}`)
	resp := httpmsg.NewResponse(200, map[string]string{"Content-Digest": digestHeader(body)}, body)

	engine := rfc9421.NewEngine()
	signed, err := engine.SignResponse(resp, km, rfc9421.SignOptions{Created: time.Now()})
	require.NoError(t, err)

	err = engine.VerifyResponse(signed, func(string) (ed25519.PublicKey, error) { return km.PublicKey(), nil }, rfc9421.DefaultVerifyOptions)
	assert.NoError(t, err)
}

func digestHeader(body []byte) string {
	return digest.Compute(body)
}
