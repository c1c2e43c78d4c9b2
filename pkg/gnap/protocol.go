package gnap

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/openpayments-go/client/internal/logger"
	"github.com/openpayments-go/client/internal/metrics"
	"github.com/openpayments-go/client/pkg/digest"
	"github.com/openpayments-go/client/pkg/httpmsg"
	"github.com/openpayments-go/client/pkg/keymaterial"
	"github.com/openpayments-go/client/pkg/operrors"
	"github.com/openpayments-go/client/pkg/rfc9421"
)

// ClientKey identifies the requesting client to the authorization server,
// either as a published JWK or as a URI the server dereferences itself.
type ClientKey struct {
	JWK *keymaterial.JWK
	URI string
}

type clientWire struct {
	Key json.RawMessage `json:"key"`
}

func (k ClientKey) marshalJSON() (json.RawMessage, error) {
	var keyJSON json.RawMessage
	var err error
	if k.URI != "" {
		keyJSON, err = json.Marshal(k.URI)
	} else {
		keyJSON, err = json.Marshal(k.JWK)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(clientWire{Key: keyJSON})
}

// Finish describes how the authorization server should notify the client
// that interaction has completed.
type Finish struct {
	Method string
	URI    string
	Nonce  string
}

// Protocol drives grant request/continue/cancel calls for a single client
// identity over an injected transport.
type Protocol struct {
	km        *keymaterial.KeyMaterial
	engine    *rfc9421.Engine
	transport httpmsg.Transport
	now       func() time.Time
	log       logger.Logger
}

// Option configures a Protocol at construction time.
type Option func(*Protocol)

// WithClock overrides the protocol's notion of "now", for deterministic
// expiry-derivation tests.
func WithClock(now func() time.Time) Option {
	return func(p *Protocol) { p.now = now }
}

// WithLogger attaches a logger that receives a correlation id for each
// continue_grant call.
func WithLogger(l logger.Logger) Option {
	return func(p *Protocol) { p.log = l }
}

// NewProtocol constructs a Protocol signing outbound calls with km and
// executing them through transport.
func NewProtocol(km *keymaterial.KeyMaterial, transport httpmsg.Transport, opts ...Option) *Protocol {
	p := &Protocol{
		km:        km,
		engine:    rfc9421.NewEngine(),
		transport: transport,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type grantRequestWire struct {
	AccessToken struct {
		Access []AccessRequest `json:"access"`
	} `json:"access_token"`
	Client  json.RawMessage `json:"client"`
	Interact *interactRequestWire `json:"interact,omitempty"`
}

type interactRequestWire struct {
	Start  []string           `json:"start"`
	Finish *finishRequestWire `json:"finish,omitempty"`
}

type finishRequestWire struct {
	Method string `json:"method"`
	URI    string `json:"uri"`
	Nonce  string `json:"nonce"`
}

type continuationWire struct {
	ContinueToken string `json:"access_token"`
	ContinueURI   string `json:"uri"`
	WaitSeconds   int    `json:"wait,omitempty"`
}

type interactionWire struct {
	Redirect string `json:"redirect"`
	FinishNonce string `json:"finish,omitempty"`
}

type grantResponseWire struct {
	Continue         *continuationWire `json:"continue"`
	Interact         *interactionWire  `json:"interact"`
	AccessToken      *tokenResponse    `json:"access_token"`
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description"`
}

// NewFinishNonce generates a cryptographically random, base64url-unpadded
// nonce with at least 128 bits of entropy, per spec.md's interact.finish
// requirement.
func NewFinishNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", operrors.Wrap(operrors.ErrKeyGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// RequestGrant builds and signs a grant request against the authorization
// server's grant endpoint, and returns the resulting Grant.
func (p *Protocol) RequestGrant(ctx context.Context, grantEndpoint string, accessRequests []AccessRequest, clientKey ClientKey, finish *Finish) (*Grant, error) {
	start := time.Now()
	defer func() {
		metrics.GrantOperationDuration.WithLabelValues("request").Observe(time.Since(start).Seconds())
	}()
	accessType := ""
	if len(accessRequests) > 0 {
		accessType = accessRequests[0].Type
	}
	metrics.GrantsRequested.WithLabelValues(accessType).Inc()

	wire := grantRequestWire{}
	wire.AccessToken.Access = accessRequests
	clientJSON, err := clientKey.marshalJSON()
	if err != nil {
		return nil, operrors.Wrap(operrors.ErrJSONParse, err)
	}
	wire.Client = clientJSON

	clientNonce := ""
	if finish != nil {
		clientNonce = finish.Nonce
		wire.Interact = &interactRequestWire{
			Start:  []string{"redirect"},
			Finish: &finishRequestWire{Method: finish.Method, URI: finish.URI, Nonce: finish.Nonce},
		}
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, operrors.Wrap(operrors.ErrJSONParse, err)
	}

	resp, err := p.signAndSend(ctx, "POST", grantEndpoint, body, "")
	if err != nil {
		return nil, err
	}
	grant, err := p.parseGrantResponse(resp)
	if err != nil {
		return nil, err
	}
	grant.ClientNonce = clientNonce
	metrics.GrantStateTransitions.WithLabelValues(string(grant.State)).Inc()
	return grant, nil
}

// ContinueGrant advances a PENDING or INTERACTION_REQUIRED grant by POSTing
// to its continuation URI, carrying interactRef when the caller has one.
func (p *Protocol) ContinueGrant(ctx context.Context, grant *Grant, interactRef string) (*Grant, error) {
	start := time.Now()
	defer func() {
		metrics.GrantOperationDuration.WithLabelValues("continue").Observe(time.Since(start).Seconds())
	}()
	if grant.Continuation == nil {
		return nil, operrors.ErrUnexpectedStateTransition
	}
	correlationID := uuid.NewString()
	if p.log != nil {
		p.log.Info("continue_grant",
			logger.String("correlation_id", correlationID),
			logger.String("continue_uri", grant.Continuation.ContinueURI))
	}
	body := []byte("{}")
	if interactRef != "" {
		b, err := json.Marshal(map[string]string{"interact_ref": interactRef})
		if err != nil {
			return nil, operrors.Wrap(operrors.ErrJSONParse, err)
		}
		body = b
	}

	resp, err := p.signAndSend(ctx, "POST", grant.Continuation.ContinueURI, body, grant.Continuation.ContinueToken)
	if err != nil {
		return nil, err
	}
	next, err := p.parseGrantResponse(resp)
	if err != nil {
		return nil, err
	}
	next.ClientNonce = grant.ClientNonce
	metrics.GrantStateTransitions.WithLabelValues(string(next.State)).Inc()
	return next, nil
}

// CancelGrant DELETEs a non-terminal grant's continuation URI, transitioning
// it to TERMINAL_CANCELLED on success.
func (p *Protocol) CancelGrant(ctx context.Context, grant *Grant) (*Grant, error) {
	start := time.Now()
	defer func() {
		metrics.GrantOperationDuration.WithLabelValues("cancel").Observe(time.Since(start).Seconds())
	}()
	if grant.Continuation == nil {
		return nil, operrors.ErrUnexpectedStateTransition
	}
	resp, err := p.signAndSend(ctx, "DELETE", grant.Continuation.ContinueURI, nil, grant.Continuation.ContinueToken)
	if err != nil {
		return nil, err
	}
	if resp.Status() < 200 || resp.Status() >= 300 {
		return nil, p.rejectionError(resp)
	}
	metrics.GrantStateTransitions.WithLabelValues(string(StateTerminalCancelled)).Inc()
	return &Grant{
		AccessRequests: grant.AccessRequests,
		State:          StateTerminalCancelled,
		ClientNonce:    grant.ClientNonce,
	}, nil
}

func (p *Protocol) signAndSend(ctx context.Context, method, uri string, body []byte, continueToken string) (*httpmsg.Response, error) {
	headers := map[string]string{"Content-Type": "application/json"}
	components := []rfc9421.CoveredComponent{rfc9421.Component("@method"), rfc9421.Component("@target-uri")}
	if continueToken != "" {
		headers["Authorization"] = "GNAP " + continueToken
		components = append(components, rfc9421.Component("authorization"))
	}
	if len(body) > 0 {
		headers["Content-Digest"] = digest.Compute(body)
		components = append(components, rfc9421.Component("content-digest"))
	}

	req, err := httpmsg.NewRequest(method, uri, headers, body)
	if err != nil {
		return nil, operrors.Wrap(operrors.ErrMalformedResponse, err)
	}
	signed, err := p.engine.SignRequest(req, p.km, rfc9421.SignOptions{Components: components, Created: p.now()})
	if err != nil {
		return nil, err
	}
	resp, err := p.transport(ctx, signed)
	if err != nil {
		return nil, operrors.Wrap(operrors.ErrConnectionFailed, err)
	}
	return resp, nil
}

func (p *Protocol) parseGrantResponse(resp *httpmsg.Response) (*Grant, error) {
	if resp.Status() < 200 || resp.Status() >= 300 {
		return nil, p.rejectionError(resp)
	}

	var wire grantResponseWire
	if err := json.Unmarshal(resp.Body(), &wire); err != nil {
		return nil, operrors.Wrap(operrors.ErrMalformedGrantResponse, err)
	}

	grant := &Grant{}
	switch {
	case wire.Continue != nil && wire.Interact != nil:
		grant.Continuation = &Continuation{
			ContinueToken: wire.Continue.ContinueToken,
			ContinueURI:   wire.Continue.ContinueURI,
			WaitSeconds:   wire.Continue.WaitSeconds,
		}
		grant.Interaction = &Interaction{
			RedirectURI: wire.Interact.Redirect,
			FinishNonce: wire.Interact.FinishNonce,
		}
	case wire.AccessToken != nil:
		metrics.TokensIssued.WithLabelValues("success").Inc()
		grant.AccessToken = &AccessToken{
			Value:         wire.AccessToken.Value,
			ManageURI:     wire.AccessToken.ManageURI,
			ExpiresAt:     p.expiryInstant(wire.AccessToken.ExpiresIn),
			GrantedAccess: wire.AccessToken.GrantedAccess,
			Label:         "sig",
		}
	case wire.Continue != nil:
		grant.Continuation = &Continuation{
			ContinueToken: wire.Continue.ContinueToken,
			ContinueURI:   wire.Continue.ContinueURI,
			WaitSeconds:   wire.Continue.WaitSeconds,
		}
	default:
		return nil, operrors.ErrMalformedGrantResponse
	}
	grant.State = deriveState(grant)
	return grant, nil
}

func (p *Protocol) expiryInstant(expiresIn int) time.Time {
	if expiresIn <= 0 {
		return time.Time{}
	}
	return p.now().Add(time.Duration(expiresIn) * time.Second)
}

func (p *Protocol) rejectionError(resp *httpmsg.Response) error {
	var wire grantResponseWire
	_ = json.Unmarshal(resp.Body(), &wire)
	errorType := wire.Error
	if errorType == "" {
		errorType = "rejected"
	}
	metrics.GrantsFailed.WithLabelValues(errorType).Inc()
	return operrors.WithDetails(operrors.ErrGrantRejected, map[string]any{
		"status":            resp.Status(),
		"error":             wire.Error,
		"error_description": wire.ErrorDescription,
	})
}

// ValidateFinishHash checks the server-provided interaction finish hash
// against the client's own nonce per RFC 9635 §4.2.3:
// BASE64URL(SHA256(client_nonce "\n" as_nonce "\n" interact_ref "\n" continue_uri)).
// Callers invoke this when their redirect handler receives the finish
// callback, not as part of ContinueGrant itself.
func ValidateFinishHash(grant *Grant, asNonce, interactRef, continueURI, providedHash string) error {
	if grant.ClientNonce == "" {
		metrics.NonceValidations.WithLabelValues("invalid").Inc()
		return operrors.ErrFinishNonceMismatch
	}
	want := computeFinishHash(grant.ClientNonce, asNonce, interactRef, continueURI)
	if want != providedHash {
		metrics.NonceValidations.WithLabelValues("invalid").Inc()
		return operrors.ErrFinishNonceMismatch
	}
	metrics.NonceValidations.WithLabelValues("valid").Inc()
	return nil
}

func computeFinishHash(clientNonce, asNonce, interactRef, continueURI string) string {
	base := clientNonce + "\n" + asNonce + "\n" + interactRef + "\n" + continueURI
	sum := sha256.Sum256([]byte(base))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
