package digest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpayments-go/client/pkg/digest"
)

func TestCompute(t *testing.T) {
	cases := []struct {
		name string
		body []byte
		want string
	}{
		{"empty body", []byte{}, "sha-256=:47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=:"},
		{"hello world", []byte("hello world"), "sha-256=:uU0nuZNNPgilLlLX2n2r+sSE7+N6U4DukIj3rOLvzek=:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, digest.Compute(tc.body))
		})
	}
}

func TestVerify(t *testing.T) {
	body := []byte(`{"hello":"world"}`)
	header := digest.Compute(body)

	assert.True(t, digest.Verify(header, body))
	assert.False(t, digest.Verify(header, []byte("tampered")))
	assert.False(t, digest.Verify("sha-512=:xyz:", body))
}

func TestParseHeader(t *testing.T) {
	body := []byte("payload")
	header := digest.Compute(body)

	decoded, err := digest.ParseHeader(header)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)

	_, err = digest.ParseHeader("sha-512=:abcd:")
	require.Error(t, err)

	_, err = digest.ParseHeader("sha-256=:not-base64!!:")
	require.Error(t, err)
}

func TestVerifyMultiMemberDictionary(t *testing.T) {
	body := []byte("multi")
	single := digest.Compute(body)
	combined := "sha-512=:ignored:, " + single
	assert.True(t, digest.Verify(combined, body))
}
