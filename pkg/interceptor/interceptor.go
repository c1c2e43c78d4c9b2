// Package interceptor implements the ordered request/response transformation
// chains that sit between a caller's logical operation and the injected
// transport: authentication-header attachment, signing, logging, and error
// extraction.
//
// Grounded on the teacher's preference for small, single-purpose,
// composable units (pkg/agent/core/rfc9421's BodyIntegrityValidator is
// exactly this shape: one pure step taking a request and returning an
// error) combined with the teacher's internal/logger for the logging
// interceptors.
package interceptor

import (
	"sync"

	"github.com/openpayments-go/client/pkg/httpmsg"
)

// RequestInterceptor transforms an outbound request before it reaches the
// transport, or returns an error that short-circuits the pipeline.
type RequestInterceptor func(req *httpmsg.Request) (*httpmsg.Request, error)

// ResponseInterceptor transforms an inbound response before it reaches the
// caller, or returns an error that short-circuits the pipeline.
type ResponseInterceptor func(resp *httpmsg.Response) (*httpmsg.Response, error)

// Pipeline is an immutable, ordered pair of request/response interceptor
// chains. Build one with a Builder; a built Pipeline is safe for concurrent
// use by multiple in-flight calls, since running it never mutates the
// Pipeline itself.
type Pipeline struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// ExecuteRequest runs req through every request interceptor in insertion
// order, stopping at the first error.
func (p *Pipeline) ExecuteRequest(req *httpmsg.Request) (*httpmsg.Request, error) {
	current := req
	for _, step := range p.requestInterceptors {
		next, err := step(current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// ExecuteResponse runs resp through every response interceptor in insertion
// order, stopping at the first error.
func (p *Pipeline) ExecuteResponse(resp *httpmsg.Response) (*httpmsg.Response, error) {
	current := resp
	for _, step := range p.responseInterceptors {
		next, err := step(current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// Builder accumulates interceptors before a single Build call freezes them
// into a Pipeline. A Builder is not safe for concurrent use; build it once
// on the goroutine that constructs the client, then share the resulting
// Pipeline.
type Builder struct {
	once                 sync.Once
	built                bool
	pipeline             *Pipeline
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddRequest appends a request interceptor, to run after every interceptor
// already added. Panics if the Builder has already been built.
func (b *Builder) AddRequest(step RequestInterceptor) *Builder {
	if b.built {
		panic("interceptor: AddRequest called after Build")
	}
	b.requestInterceptors = append(b.requestInterceptors, step)
	return b
}

// AddResponse appends a response interceptor, to run after every
// interceptor already added. Panics if the Builder has already been built.
func (b *Builder) AddResponse(step ResponseInterceptor) *Builder {
	if b.built {
		panic("interceptor: AddResponse called after Build")
	}
	b.responseInterceptors = append(b.responseInterceptors, step)
	return b
}

// Build freezes the accumulated interceptors into a Pipeline. Calling Build
// more than once returns the same Pipeline every time; the slices captured
// on the first call are never mutated afterward, and further AddRequest/
// AddResponse calls panic.
func (b *Builder) Build() *Pipeline {
	b.once.Do(func() {
		b.built = true
		b.pipeline = &Pipeline{
			requestInterceptors:  append([]RequestInterceptor(nil), b.requestInterceptors...),
			responseInterceptors: append([]ResponseInterceptor(nil), b.responseInterceptors...),
		}
	})
	return b.pipeline
}
