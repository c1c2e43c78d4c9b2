package rfc9421_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpayments-go/client/pkg/rfc9421"
)

func TestFormatAndParseSignatureInputRoundTrip(t *testing.T) {
	params := rfc9421.SignatureParameters{
		Label:             "sig1",
		CoveredComponents: []string{"@method", "@target-uri", "content-digest"},
		KeyID:             "key-123",
		Algorithm:         "ed25519",
		Created:           1700000000,
		Expires:           1700000300,
		Nonce:             "abc123",
	}

	header := rfc9421.FormatSignatureInput(params)
	label, parsed, err := rfc9421.ParseSignatureInput(header)
	require.NoError(t, err)

	assert.Equal(t, "sig1", label)
	assert.Equal(t, params.CoveredComponents, parsed.CoveredComponents)
	assert.Equal(t, params.KeyID, parsed.KeyID)
	assert.Equal(t, params.Algorithm, parsed.Algorithm)
	assert.Equal(t, params.Created, parsed.Created)
	assert.Equal(t, params.Expires, parsed.Expires)
	assert.Equal(t, params.Nonce, parsed.Nonce)
}

func TestParseSignatureInputRejectsMalformed(t *testing.T) {
	_, _, err := rfc9421.ParseSignatureInput(`not a valid header`)
	require.Error(t, err)
}

func TestParseSignatureInputRejectsUnknownAlgorithm(t *testing.T) {
	_, _, err := rfc9421.ParseSignatureInput(`sig1=("@method");keyid="k1";alg="rsa-v1_5-sha256"`)
	require.Error(t, err)
}

func TestFormatAndParseSignature(t *testing.T) {
	sig := []byte{1, 2, 3, 4, 5}
	header := rfc9421.FormatSignature("sig1", sig)

	label, decoded, err := rfc9421.ParseSignature(header)
	require.NoError(t, err)
	assert.Equal(t, "sig1", label)
	assert.Equal(t, sig, decoded)
}

func TestSplitMembersRespectsParensAndQuotes(t *testing.T) {
	header := `sig1=("@method" "content-digest");keyid="a,b";alg="ed25519", sig2=("@status");keyid="c";alg="ed25519"`
	members := rfc9421.SplitMembers(header)
	require.Len(t, members, 2)
	assert.Contains(t, members[0], "sig1")
	assert.Contains(t, members[1], "sig2")
}
