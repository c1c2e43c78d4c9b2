// Package operrors defines the typed failure taxonomy shared across the
// authentication, signature, and grant-negotiation core. Every error carries
// its partition (Crypto, Signature, Transport, Protocol, Token, Encoding) as
// a Kind, read through the Kind() accessor, so callers can branch on kind
// instead of string matching, and errors.Is matches a wrapped or detailed
// error against its sentinel by kind and code.
package operrors

import "fmt"

// Kind identifies which taxonomy partition an error belongs to.
type Kind string

const (
	KindCrypto    Kind = "crypto"
	KindSignature Kind = "signature"
	KindTransport Kind = "transport"
	KindProtocol  Kind = "protocol"
	KindToken     Kind = "token"
	KindEncoding  Kind = "encoding"
)

// taggedError is the common shape for every partition: a stable code, a
// human-readable message, and optional structured detail. It never carries
// raw key material — callers that attach Details are responsible for
// redacting secrets before doing so.
type taggedError struct {
	kind    Kind
	code    string
	message string
	details map[string]any
	wrapped error
}

func (e *taggedError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("%s: %s", e.kind, e.code)
	}
	return fmt.Sprintf("%s: %s: %s", e.kind, e.code, e.message)
}

func (e *taggedError) Unwrap() error { return e.wrapped }

// Is reports whether target is a tagged error with the same kind and code,
// so errors.Is matches copies made by Wrap and WithDetails to their sentinel.
func (e *taggedError) Is(target error) bool {
	t, ok := target.(*taggedError)
	return ok && t.kind == e.kind && t.code == e.code
}

// Kind returns the taxonomy partition this error belongs to.
func (e *taggedError) Kind() Kind { return e.kind }

// Code returns the stable, machine-comparable identifier for this failure.
func (e *taggedError) Code() string { return e.code }

// Details returns any structured diagnostic data attached to the error.
func (e *taggedError) Details() map[string]any { return e.details }

func newKind(kind Kind, code, message string) *taggedError {
	return &taggedError{kind: kind, code: code, message: message}
}

// WithDetails returns a copy of the error carrying the given structured
// detail fields, for diagnostics on encoding failures that need to carry
// truncated offending bytes.
func WithDetails(err error, details map[string]any) error {
	te, ok := err.(*taggedError)
	if !ok {
		return err
	}
	cp := *te
	cp.details = details
	return &cp
}

// Wrap attaches an underlying cause to a sentinel error while preserving
// its kind and code, so errors.As still matches the sentinel's type and
// errors.Is/Unwrap reach the original cause.
func Wrap(sentinel error, cause error) error {
	te, ok := sentinel.(*taggedError)
	if !ok {
		return fmt.Errorf("%w: %v", sentinel, cause)
	}
	cp := *te
	cp.wrapped = cause
	return &cp
}

// Crypto-kind sentinels.
var (
	ErrKeyGeneration        = newKind(KindCrypto, "KEY_GENERATION", "failed to generate key material")
	ErrInvalidSeed          = newKind(KindCrypto, "INVALID_SEED", "seed must be exactly 32 bytes")
	ErrSignatureGeneration  = newKind(KindCrypto, "SIGNATURE_GENERATION", "failed to produce signature")
	ErrSignatureVerifyFail  = newKind(KindCrypto, "SIGNATURE_VERIFY_FAILED", "signature does not verify under the given key")
)

// Signature-kind sentinels.
var (
	ErrBaseMismatch          = newKind(KindSignature, "BASE_MISMATCH", "reconstructed signature base does not match")
	ErrMissingCoveredHeader  = newKind(KindSignature, "MISSING_COVERED_HEADER", "a covered header is absent from the request")
	ErrMalformedSignatureInput = newKind(KindSignature, "MALFORMED_SIGNATURE_INPUT", "Signature-Input header is malformed")
	ErrUnknownAlgorithm      = newKind(KindSignature, "UNKNOWN_ALGORITHM", "signature algorithm is not supported")
	ErrSignatureExpired      = newKind(KindSignature, "SIGNATURE_EXPIRED", "signature exceeds the verifier's age policy")
)

// Transport-kind sentinels.
var (
	ErrConnectionFailed     = newKind(KindTransport, "CONNECTION_FAILED", "transport could not reach the remote host")
	ErrTimeout              = newKind(KindTransport, "TIMEOUT", "transport call timed out")
	ErrMalformedResponse    = newKind(KindTransport, "MALFORMED_RESPONSE", "transport returned a malformed HTTP response")
)

// Protocol-kind sentinels.
var (
	ErrGrantRejected           = newKind(KindProtocol, "GRANT_REJECTED", "authorization server rejected the grant request")
	ErrMalformedGrantResponse  = newKind(KindProtocol, "MALFORMED_GRANT_RESPONSE", "grant response body could not be interpreted")
	ErrUnexpectedStateTransition = newKind(KindProtocol, "UNEXPECTED_STATE_TRANSITION", "grant response implies a transition the state machine does not allow")
	ErrFinishNonceMismatch     = newKind(KindProtocol, "FINISH_NONCE_MISMATCH", "interaction finish nonce does not match the one this client generated")
)

// Token-kind sentinels.
var (
	ErrUnrotatable = newKind(KindToken, "UNROTATABLE", "token rotation rejected with 401; grant must be re-acquired")
	ErrNotFound    = newKind(KindToken, "NOT_FOUND", "token manage endpoint returned 404")
	ErrExpiredOnUse = newKind(KindToken, "EXPIRED_ON_USE", "token is past its local expiry and was not used")
)

// Encoding-kind sentinels.
var (
	ErrJSONParse       = newKind(KindEncoding, "JSON_PARSE", "failed to parse JSON body")
	ErrJWKField        = newKind(KindEncoding, "JWK_FIELD", "JWK is missing a required field or has the wrong type")
	ErrBase64Decode    = newKind(KindEncoding, "BASE64_DECODE", "failed to base64/base64url decode a value")
	ErrContentDigestMalformed = newKind(KindEncoding, "CONTENT_DIGEST_MALFORMED", "Content-Digest header is missing its sha-256 member")
)
