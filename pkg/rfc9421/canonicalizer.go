package rfc9421

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openpayments-go/client/pkg/httpmsg"
	"github.com/openpayments-go/client/pkg/operrors"
)

// message is satisfied by both an outbound request and an inbound response,
// letting BuildSignatureBase canonicalize either without a type switch at
// every call site.
type message interface {
	componentValue(name string) (string, bool)
}

type requestMessage struct{ req *httpmsg.Request }

func (m requestMessage) componentValue(name string) (string, bool) {
	if strings.HasPrefix(name, "@") {
		return canonicalizeRequestDerived(m.req, name)
	}
	return canonicalizeHeader(m.req.Header(name))
}

type responseMessage struct{ resp *httpmsg.Response }

func (m responseMessage) componentValue(name string) (string, bool) {
	if name == "@status" {
		return strconv.Itoa(m.resp.Status()), true
	}
	if strings.HasPrefix(name, "@") {
		return "", false
	}
	return canonicalizeHeader(m.resp.Header(name))
}

// ForRequest wraps req so BuildSignatureBase can canonicalize it.
func ForRequest(req *httpmsg.Request) message { return requestMessage{req: req} }

// ForResponse wraps resp so BuildSignatureBase can canonicalize it.
func ForResponse(resp *httpmsg.Response) message { return responseMessage{resp: resp} }

func canonicalizeRequestDerived(req *httpmsg.Request, name string) (string, bool) {
	u := req.URL()
	switch name {
	case "@method":
		return req.Method(), true
	case "@target-uri":
		return u.String(), true
	case "@authority":
		return strings.ToLower(u.Host), true
	case "@scheme":
		if u.Scheme == "" {
			return "https", true
		}
		return strings.ToLower(u.Scheme), true
	case "@request-target":
		return req.Method() + " " + u.RequestURI(), true
	case "@path":
		if u.Path == "" {
			return "/", true
		}
		return u.Path, true
	case "@query":
		if u.RawQuery == "" {
			return "", true
		}
		return "?" + u.RawQuery, true
	default:
		return "", false
	}
}

// canonicalizeHeader trims surrounding whitespace and collapses internal
// run of whitespace the way RFC 9421 §2.1 requires for a field value; this
// core's Header type already holds a single joined value per name, so there
// is no repeated-header list to re-join here.
func canonicalizeHeader(value string) (string, bool) {
	if value == "" {
		return "", false
	}
	return strings.Join(strings.Fields(value), " "), true
}

// BuildSignatureBase renders the canonical signature base string for params
// over msg, in the exact line order RFC 9421 §2.5 specifies: one
// `"<component>": <value>` line per covered component, in the order given,
// followed by the `"@signature-params": (...)...` line.
func BuildSignatureBase(msg message, params SignatureParameters) (string, error) {
	if err := params.validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, name := range params.CoveredComponents {
		value, ok := msg.componentValue(name)
		if !ok {
			return "", operrors.WithDetails(operrors.ErrMissingCoveredHeader, map[string]any{"component": name})
		}
		fmt.Fprintf(&b, "%q: %s\n", strings.ToLower(name), value)
	}
	b.WriteString(buildSignatureParamsLine(params))
	return b.String(), nil
}

// buildSignatureParamsLine renders the final `"@signature-params": ...`
// line: the component list itself, then the parameters in the fixed order
// created, keyid, alg, nonce?, expires?.
func buildSignatureParamsLine(params SignatureParameters) string {
	var b strings.Builder
	b.WriteString(`"@signature-params": (`)
	for i, name := range params.CoveredComponents {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%q", strings.ToLower(name))
	}
	b.WriteByte(')')
	if params.Created != 0 {
		fmt.Fprintf(&b, ";created=%d", params.Created)
	}
	fmt.Fprintf(&b, ";keyid=%q", params.KeyID)
	fmt.Fprintf(&b, ";alg=%q", params.Algorithm)
	if params.Nonce != "" {
		fmt.Fprintf(&b, ";nonce=%q", params.Nonce)
	}
	if params.Expires != 0 {
		fmt.Fprintf(&b, ";expires=%d", params.Expires)
	}
	return b.String()
}
