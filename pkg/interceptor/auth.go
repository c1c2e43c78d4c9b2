package interceptor

import "github.com/openpayments-go/client/pkg/httpmsg"

// AuthScheme names the authentication scheme the authentication interceptor
// writes into the authorization header.
type AuthScheme string

const (
	SchemeBearer AuthScheme = "Bearer"
	SchemeGNAP   AuthScheme = "GNAP"
	SchemeBasic  AuthScheme = "Basic"
)

// CustomScheme builds an AuthScheme for a caller-named scheme, for servers
// using an authorization scheme outside the three named above.
func CustomScheme(name string) AuthScheme {
	return AuthScheme(name)
}

// NewAuthenticationInterceptor returns a request interceptor that adds or
// replaces the authorization header with "<scheme> <credential>", leaving
// every other header, the method, the URI, and the body untouched. It must
// run before the signing interceptor whenever authorization is a covered
// component, so the signature base is built from the header it produces.
func NewAuthenticationInterceptor(scheme AuthScheme, credential string) RequestInterceptor {
	return func(req *httpmsg.Request) (*httpmsg.Request, error) {
		return req.WithHeader("Authorization", string(scheme)+" "+credential), nil
	}
}
