package interceptor

import (
	"time"

	"github.com/openpayments-go/client/pkg/httpmsg"
	"github.com/openpayments-go/client/pkg/keymaterial"
	"github.com/openpayments-go/client/pkg/rfc9421"
)

// SigningOptions controls a signing interceptor's freshness window; the
// covered-component set is fixed as rfc9421.DefaultCoveredComponentsForRequest
// unless Components is set explicitly.
type SigningOptions struct {
	Components []rfc9421.CoveredComponent
	ExpiresIn  time.Duration
	Nonce      string
	// Now overrides the signing clock; nil means time.Now, used by tests
	// that need a deterministic "created" value.
	Now func() time.Time
}

// NewSigningInterceptor returns a request interceptor that attaches
// Signature-Input and Signature headers over the request as it stands when
// the interceptor runs. Order it after any interceptor (such as the
// authentication interceptor) that attaches headers the signature should
// cover.
func NewSigningInterceptor(engine *rfc9421.Engine, km *keymaterial.KeyMaterial, opts SigningOptions) RequestInterceptor {
	return func(req *httpmsg.Request) (*httpmsg.Request, error) {
		components := opts.Components
		if len(components) == 0 {
			components = rfc9421.DefaultCoveredComponentsForRequest(req)
		}
		now := opts.Now
		if now == nil {
			now = time.Now
		}
		return engine.SignRequest(req, km, rfc9421.SignOptions{
			Components: components,
			Created:    now(),
			ExpiresIn:  opts.ExpiresIn,
			Nonce:      opts.Nonce,
		})
	}
}
