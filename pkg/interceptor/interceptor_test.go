package interceptor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpayments-go/client/pkg/httpmsg"
	"github.com/openpayments-go/client/pkg/interceptor"
)

func TestPipelineRunsRequestInterceptorsInOrder(t *testing.T) {
	var order []string
	b := interceptor.NewBuilder()
	b.AddRequest(func(req *httpmsg.Request) (*httpmsg.Request, error) {
		order = append(order, "first")
		return req.WithHeader("X-First", "1"), nil
	})
	b.AddRequest(func(req *httpmsg.Request) (*httpmsg.Request, error) {
		order = append(order, "second")
		return req.WithHeader("X-Second", "2"), nil
	})
	pipeline := b.Build()

	req, err := httpmsg.NewRequest("GET", "https://example.com/", nil, nil)
	require.NoError(t, err)

	out, err := pipeline.ExecuteRequest(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, "1", out.Header("x-first"))
	assert.Equal(t, "2", out.Header("x-second"))
}

func TestPipelineShortCircuitsOnError(t *testing.T) {
	b := interceptor.NewBuilder()
	wantErr := errors.New("boom")
	ran := false
	b.AddRequest(func(req *httpmsg.Request) (*httpmsg.Request, error) {
		return nil, wantErr
	})
	b.AddRequest(func(req *httpmsg.Request) (*httpmsg.Request, error) {
		ran = true
		return req, nil
	})
	pipeline := b.Build()

	req, err := httpmsg.NewRequest("GET", "https://example.com/", nil, nil)
	require.NoError(t, err)

	_, err = pipeline.ExecuteRequest(req)
	assert.Equal(t, wantErr, err)
	assert.False(t, ran)
}

func TestBuildIsIdempotent(t *testing.T) {
	b := interceptor.NewBuilder()
	b.AddRequest(func(req *httpmsg.Request) (*httpmsg.Request, error) { return req, nil })
	p1 := b.Build()
	p2 := b.Build()
	assert.Same(t, p1, p2)
}

func TestAddAfterBuildPanics(t *testing.T) {
	b := interceptor.NewBuilder()
	b.Build()
	assert.Panics(t, func() {
		b.AddRequest(func(req *httpmsg.Request) (*httpmsg.Request, error) { return req, nil })
	})
}

func TestResponsePipelineRunsInOrder(t *testing.T) {
	b := interceptor.NewBuilder()
	b.AddResponse(func(resp *httpmsg.Response) (*httpmsg.Response, error) {
		return resp.WithHeader("X-Seen", "1"), nil
	})
	pipeline := b.Build()

	resp := httpmsg.NewResponse(200, nil, nil)
	out, err := pipeline.ExecuteResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "1", out.Header("x-seen"))
}
