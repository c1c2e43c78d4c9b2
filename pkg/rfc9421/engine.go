package rfc9421

import (
	"crypto/ed25519"
	"time"

	"github.com/openpayments-go/client/internal/metrics"
	"github.com/openpayments-go/client/pkg/digest"
	"github.com/openpayments-go/client/pkg/httpmsg"
	"github.com/openpayments-go/client/pkg/keymaterial"
	"github.com/openpayments-go/client/pkg/operrors"
)

const signingAlgorithm = "ed25519"

// SignOptions controls what a SignRequest/SignResponse call covers and how
// long the resulting signature is valid for.
type SignOptions struct {
	Components []CoveredComponent
	Created    time.Time
	ExpiresIn  time.Duration
	Nonce      string
	Label      string
}

// VerifyOptions bounds how old a signature's "created" parameter may be
// before VerifyRequest/VerifyResponse rejects it, mirroring the teacher's
// HTTPVerificationOptions.MaxAge policy.
type VerifyOptions struct {
	MaxAge time.Duration
}

// DefaultVerifyOptions matches the teacher's DefaultHTTPVerificationOptions.
var DefaultVerifyOptions = VerifyOptions{MaxAge: 5 * time.Minute}

// Engine signs and verifies RFC 9421 signatures over httpmsg Requests and
// Responses using a single Ed25519 key.
type Engine struct{}

// NewEngine constructs a signing/verification Engine.
func NewEngine() *Engine { return &Engine{} }

func (e *Engine) buildParams(km *keymaterial.KeyMaterial, opts SignOptions) SignatureParameters {
	components := opts.Components
	if len(components) == 0 {
		components = DefaultRequestComponents
	}
	names := make([]string, len(components))
	for i, c := range components {
		names[i] = c.Name
	}
	created := opts.Created
	if created.IsZero() {
		created = time.Now()
	}
	params := SignatureParameters{
		Label:             opts.Label,
		CoveredComponents: names,
		KeyID:             km.KeyID(),
		Algorithm:         string(AlgorithmEdDSA),
		Created:           created.Unix(),
		Nonce:             opts.Nonce,
	}
	if opts.ExpiresIn > 0 {
		params.Expires = created.Add(opts.ExpiresIn).Unix()
	}
	return params
}

// SignRequest returns a copy of req with Signature-Input and Signature
// headers added over the covered components in opts (defaulting to
// DefaultRequestComponents), signed by km.
func (e *Engine) SignRequest(req *httpmsg.Request, km *keymaterial.KeyMaterial, opts SignOptions) (*httpmsg.Request, error) {
	start := time.Now()
	params := e.buildParams(km, opts)
	base, err := BuildSignatureBase(ForRequest(req), params)
	if err != nil {
		metrics.SigningErrors.WithLabelValues("sign").Inc()
		return nil, err
	}
	sig, err := km.Sign([]byte(base))
	if err != nil {
		metrics.SigningErrors.WithLabelValues("sign").Inc()
		return nil, operrors.Wrap(operrors.ErrSignatureGeneration, err)
	}
	label := params.Label
	if label == "" {
		label = "sig"
	}
	signed := req.WithHeader("Signature-Input", FormatSignatureInput(params))
	signed = signed.WithHeader("Signature", FormatSignature(label, sig))
	metrics.SigningOperations.WithLabelValues("sign", signingAlgorithm).Inc()
	metrics.SigningOperationDuration.WithLabelValues("sign", signingAlgorithm).Observe(time.Since(start).Seconds())
	return signed, nil
}

// SignResponse returns a copy of resp with Signature-Input and Signature
// headers added, for servers or test doubles signing a response in the
// teacher's style (the teacher itself never signs responses; spec.md §3
// still models AccessToken.value/Response signing symmetrically).
func (e *Engine) SignResponse(resp *httpmsg.Response, km *keymaterial.KeyMaterial, opts SignOptions) (*httpmsg.Response, error) {
	start := time.Now()
	components := opts.Components
	if len(components) == 0 {
		components = DefaultResponseComponents
	}
	opts.Components = components
	params := e.buildParams(km, opts)
	base, err := BuildSignatureBase(ForResponse(resp), params)
	if err != nil {
		metrics.SigningErrors.WithLabelValues("sign").Inc()
		return nil, err
	}
	sig, err := km.Sign([]byte(base))
	if err != nil {
		metrics.SigningErrors.WithLabelValues("sign").Inc()
		return nil, operrors.Wrap(operrors.ErrSignatureGeneration, err)
	}
	label := params.Label
	if label == "" {
		label = "sig"
	}
	signed := resp.WithHeader("Signature-Input", FormatSignatureInput(params))
	signed = signed.WithHeader("Signature", FormatSignature(label, sig))
	metrics.SigningOperations.WithLabelValues("sign", signingAlgorithm).Inc()
	metrics.SigningOperationDuration.WithLabelValues("sign", signingAlgorithm).Observe(time.Since(start).Seconds())
	return signed, nil
}

// DefaultCoveredComponentsForRequest derives spec.md's default covered set
// for an outgoing signed request: "@method", "@target-uri", "content-digest"
// (present iff the request carries one) and "authorization" (present iff
// the request carries one). Overridable per request via SignOptions.Components.
func DefaultCoveredComponentsForRequest(req *httpmsg.Request) []CoveredComponent {
	components := []CoveredComponent{Component("@method"), Component("@target-uri")}
	if req.Header("content-digest") != "" {
		components = append(components, Component("content-digest"))
	}
	if req.Header("authorization") != "" {
		components = append(components, Component("authorization"))
	}
	return components
}

// KeyResolver looks up the Ed25519 public key published under keyID,
// typically by fetching the counterparty's JWK set.
type KeyResolver func(keyID string) (ed25519.PublicKey, error)

// VerifyRequest parses req's Signature-Input and Signature headers,
// rebuilds the signature base, and checks it against the key resolver's
// public key. It fails closed on a missing header, an unsupported
// algorithm, a signature older than opts.MaxAge, a cryptographic mismatch,
// or a Content-Digest header that does not match the request body.
func (e *Engine) VerifyRequest(req *httpmsg.Request, resolve KeyResolver, opts VerifyOptions) error {
	if err := verify(ForRequest(req), req.Header("Signature-Input"), req.Header("Signature"), resolve, opts); err != nil {
		return err
	}
	if cd := req.Header("Content-Digest"); cd != "" && !digest.Verify(cd, req.Body()) {
		return operrors.WithDetails(operrors.ErrBaseMismatch, map[string]any{"component": "content-digest"})
	}
	return nil
}

// VerifyResponse is VerifyRequest's response-side counterpart. It does not
// compare a Content-Digest header with the response body.
func (e *Engine) VerifyResponse(resp *httpmsg.Response, resolve KeyResolver, opts VerifyOptions) error {
	return verify(ForResponse(resp), resp.Header("Signature-Input"), resp.Header("Signature"), resolve, opts)
}

func verify(msg message, signatureInputHeader, signatureHeader string, resolve KeyResolver, opts VerifyOptions) (err error) {
	start := time.Now()
	defer func() {
		metrics.SigningOperationDuration.WithLabelValues("verify", signingAlgorithm).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.SigningErrors.WithLabelValues("verify").Inc()
			metrics.SignatureVerificationFailures.Inc()
			return
		}
		metrics.SigningOperations.WithLabelValues("verify", signingAlgorithm).Inc()
	}()

	if signatureInputHeader == "" || signatureHeader == "" {
		return operrors.ErrMissingCoveredHeader
	}
	if opts.MaxAge == 0 {
		opts = DefaultVerifyOptions
	}

	inputMembers := SplitMembers(signatureInputHeader)
	sigMembers := SplitMembers(signatureHeader)
	sigByLabel := make(map[string][]byte, len(sigMembers))
	for _, m := range sigMembers {
		label, sig, err := ParseSignature(m)
		if err != nil {
			return err
		}
		sigByLabel[label] = sig
	}

	for _, im := range inputMembers {
		label, params, err := ParseSignatureInput(im)
		if err != nil {
			return err
		}
		sig, ok := sigByLabel[label]
		if !ok {
			return operrors.ErrMalformedSignatureInput
		}
		if params.Created != 0 && opts.MaxAge > 0 {
			age := time.Since(time.Unix(params.Created, 0))
			if age > opts.MaxAge {
				return operrors.ErrSignatureExpired
			}
		}
		if params.Expires != 0 && time.Now().Unix() > params.Expires {
			return operrors.ErrSignatureExpired
		}
		base, err := BuildSignatureBase(msg, params)
		if err != nil {
			return err
		}
		pub, err := resolve(params.KeyID)
		if err != nil {
			return err
		}
		if !ed25519.Verify(pub, []byte(base), sig) {
			return operrors.ErrSignatureVerifyFail
		}
	}
	return nil
}
