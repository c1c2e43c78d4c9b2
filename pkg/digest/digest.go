// Package digest computes and validates the RFC 9530 Content-Digest header
// this core attaches to every signed request body.
//
// Grounded on the teacher's pkg/agent/core/rfc9421/body_integrity.go
// (ComputeContentDigest, equalDigestHeader), narrowed to the single
// sha-256 algorithm spec.md §4.2 names.
package digest

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/openpayments-go/client/pkg/operrors"
)

const algorithmLabel = "sha-256"

// Compute returns the RFC 9530 structured-field dictionary value for body,
// in the single-member sha-256 form: sha-256=:BASE64(SHA256(body)):. An
// empty body digests as the SHA-256 of zero-length input.
func Compute(body []byte) string {
	sum := sha256.Sum256(body)
	encoded := base64.StdEncoding.EncodeToString(sum[:])
	return algorithmLabel + "=:" + encoded + ":"
}

// Verify reports whether header is a Content-Digest value whose sha-256
// member matches Compute(body). Other algorithm members present in header
// are ignored; if sha-256 is absent entirely, verification fails.
func Verify(header string, body []byte) bool {
	got, ok := extractSHA256(header)
	if !ok {
		return false
	}
	want, _ := extractSHA256(Compute(body))
	return got == want
}

// extractSHA256 pulls the sha-256 member's base64 payload out of a
// Content-Digest structured-field dictionary value, tolerating the other
// members RFC 9530 allows alongside it.
func extractSHA256(header string) (string, bool) {
	for _, member := range strings.Split(header, ",") {
		member = strings.TrimSpace(member)
		rest, ok := strings.CutPrefix(member, algorithmLabel+"=:")
		if !ok {
			continue
		}
		value, ok := strings.CutSuffix(rest, ":")
		if !ok {
			continue
		}
		return value, true
	}
	return "", false
}

// ParseHeader validates that header decodes as well-formed base64 for its
// sha-256 member, returning Encoding-kind errors for callers that need to
// distinguish "absent" (operrors.ErrContentDigestMalformed) from "malformed"
// (operrors.ErrBase64Decode).
func ParseHeader(header string) ([]byte, error) {
	value, ok := extractSHA256(header)
	if !ok {
		return nil, operrors.ErrContentDigestMalformed
	}
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, operrors.Wrap(operrors.ErrBase64Decode, err)
	}
	return decoded, nil
}
