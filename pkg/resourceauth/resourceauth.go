// Package resourceauth composes signature generation with GNAP bearer-token
// authentication for a single outbound resource call, per spec.md §4.10.
// It is the thin glue between a caller's logical "call this resource
// endpoint" request and the lower-level rfc9421/gnap/interceptor machinery.
package resourceauth

import (
	"context"
	"time"

	"github.com/openpayments-go/client/internal/metrics"
	"github.com/openpayments-go/client/pkg/digest"
	"github.com/openpayments-go/client/pkg/gnap"
	"github.com/openpayments-go/client/pkg/httpmsg"
	"github.com/openpayments-go/client/pkg/interceptor"
	"github.com/openpayments-go/client/pkg/keymaterial"
	"github.com/openpayments-go/client/pkg/operrors"
	"github.com/openpayments-go/client/pkg/rfc9421"
)

// Binding glues signing and the GNAP bearer-token header onto outbound
// resource calls, pushing the assembled request through an interceptor
// pipeline before handing it to the transport, and the transport's response
// back through the pipeline's response side.
type Binding struct {
	km        *keymaterial.KeyMaterial
	engine    *rfc9421.Engine
	pipeline  *interceptor.Pipeline
	transport httpmsg.Transport
}

// NewBinding constructs a Binding. pipeline supplies any interceptors the
// caller wants run around the call (logging, error extraction); it must not
// include its own signing step, since Binding signs internally using
// spec.md's default covered-component set.
func NewBinding(km *keymaterial.KeyMaterial, pipeline *interceptor.Pipeline, transport httpmsg.Transport) *Binding {
	return &Binding{
		km:        km,
		engine:    rfc9421.NewEngine(),
		pipeline:  pipeline,
		transport: transport,
	}
}

// Call performs one signed, optionally token-authenticated resource request.
//
//  1. Fails fast with operrors.ErrExpiredOnUse if token is already expired,
//     before spending a round trip on a call the server would reject anyway.
//  2. Computes Content-Digest if body is non-empty, attaching it as a header.
//  3. Attaches "Authorization: GNAP <token.Value>" if token is non-nil.
//  4. Signs the request over "@method", "@target-uri", "content-digest"
//     (if present), "authorization" (if present).
//  5. Runs the request through the pipeline's request side, executes it
//     against the transport, and runs the response through the pipeline's
//     response side.
func (b *Binding) Call(ctx context.Context, method, targetURI string, body []byte, token *gnap.AccessToken) (*httpmsg.Response, error) {
	start := time.Now()
	status := "failure"
	defer func() {
		metrics.RequestsProcessed.WithLabelValues(method, status).Inc()
		metrics.RequestProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	if token != nil && gnap.IsExpiredOnUse(token, time.Now()) {
		return nil, operrors.ErrExpiredOnUse
	}

	headers := map[string]string{}
	if len(body) > 0 {
		metrics.RequestBodySize.Observe(float64(len(body)))
		headers["Content-Digest"] = digest.Compute(body)
	}
	if token != nil {
		headers["Authorization"] = "GNAP " + token.Value
	}

	req, err := httpmsg.NewRequest(method, targetURI, headers, body)
	if err != nil {
		return nil, err
	}

	signed, err := b.engine.SignRequest(req, b.km, rfc9421.SignOptions{
		Components: rfc9421.DefaultCoveredComponentsForRequest(req),
	})
	if err != nil {
		return nil, err
	}

	if b.pipeline != nil {
		signed, err = b.pipeline.ExecuteRequest(signed)
		if err != nil {
			return nil, err
		}
	}

	resp, err := b.transport(ctx, signed)
	if err != nil {
		return nil, operrors.Wrap(operrors.ErrConnectionFailed, err)
	}

	if b.pipeline != nil {
		resp, err = b.pipeline.ExecuteResponse(resp)
		if err != nil {
			return nil, err
		}
	}
	status = "success"
	return resp, nil
}
