// Package metrics exposes this module's Prometheus series: signing and
// verification counters from pkg/rfc9421, grant-state-transition counters
// from pkg/gnap, and token-lifecycle counters from pkg/gnap's token
// rotation, revocation and expiry checks.
// Callers that want metrics exposed over HTTP can mount Handler(); callers
// embedding the client in an existing process can register Registry's
// collectors into their own registry instead.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "openpayments_client"

// Registry is the collector registry every series in this package is
// registered against. It is not prometheus.DefaultRegisterer so that
// embedding this module never collides with a host process's own metrics.
var Registry = prometheus.NewRegistry()
