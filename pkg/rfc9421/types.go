// Package rfc9421 implements RFC 9421 HTTP Message Signatures: building the
// canonical signature base, signing it with an Ed25519 KeyMaterial, and
// verifying a signed request or response.
//
// Grounded on the teacher's pkg/agent/core/rfc9421/canonicalizer.go
// (component canonicalization), core/rfc9421/parser.go (Signature-Input
// parsing), and core/rfc9421/verifier_http.go (sign/verify wire format),
// narrowed to the single EdDSA algorithm spec.md requires and generalized
// to cover response signing, which the teacher never does.
package rfc9421

import "github.com/openpayments-go/client/pkg/operrors"

// Algorithm identifies the signature algorithm named in SignatureParameters.
type Algorithm string

// AlgorithmEdDSA is the only algorithm this core signs or verifies with;
// spec.md §4.1 names only Ed25519 key material.
const AlgorithmEdDSA Algorithm = "ed25519"

// IsSupported reports whether alg is an algorithm this core can verify.
func IsSupported(alg string) bool {
	return Algorithm(alg) == AlgorithmEdDSA
}

// CoveredComponent names one line of the signature base: either a derived
// component (e.g. "@method", "@target-uri", "@status") or a lowercase HTTP
// header name (e.g. "content-digest", "authorization").
type CoveredComponent struct {
	Name string
}

// Component is a convenience constructor for CoveredComponent.
func Component(name string) CoveredComponent { return CoveredComponent{Name: name} }

// Default request-signing components: the minimum spec.md's resource-access
// flow needs to bind a signature to a specific request and body.
var DefaultRequestComponents = []CoveredComponent{
	Component("@method"),
	Component("@target-uri"),
	Component("content-digest"),
}

// Default response-signing components, for callers that verify a signed
// resource-server response.
var DefaultResponseComponents = []CoveredComponent{
	Component("@status"),
	Component("content-digest"),
}

// SignatureParameters is the parsed or to-be-serialized content of a
// Signature-Input member: which components are covered, which key signed
// it, and under what algorithm, freshness window, and nonce.
type SignatureParameters struct {
	Label             string
	CoveredComponents []string
	KeyID             string
	Algorithm         string
	Created           int64
	Expires           int64
	Nonce             string
}

// validate checks only KeyID and Algorithm; an empty CoveredComponents is
// legal and yields a signature base consisting of just the
// "@signature-params" line, covering nothing.
func (p SignatureParameters) validate() error {
	if p.KeyID == "" {
		return operrors.ErrMalformedSignatureInput
	}
	if !IsSupported(p.Algorithm) {
		return operrors.ErrUnknownAlgorithm
	}
	return nil
}
