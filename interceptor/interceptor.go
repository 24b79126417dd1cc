// Package interceptor provides ordered request and response transformation
// hooks.
package interceptor

import (
	"context"

	"github.com/jonnyholland/ComposableArchitecturePattern/api"
)

// RequestInterceptor transforms an outgoing request. It must return a new
// value rather than modifying its input.
type RequestInterceptor interface {
	InterceptRequest(ctx context.Context, req api.Request) (api.Request, error)
}

// ResponseInterceptor transforms a response body. req is the request that
// produced it.
type ResponseInterceptor interface {
	InterceptResponse(ctx context.Context, body []byte, req api.Request) ([]byte, error)
}

// RequestFunc adapts a function to RequestInterceptor.
type RequestFunc func(ctx context.Context, req api.Request) (api.Request, error)

// InterceptRequest implements RequestInterceptor.
func (f RequestFunc) InterceptRequest(ctx context.Context, req api.Request) (api.Request, error) {
	return f(ctx, req)
}

// ResponseFunc adapts a function to ResponseInterceptor.
type ResponseFunc func(ctx context.Context, body []byte, req api.Request) ([]byte, error)

// InterceptResponse implements ResponseInterceptor.
func (f ResponseFunc) InterceptResponse(ctx context.Context, body []byte, req api.Request) ([]byte, error) {
	return f(ctx, body, req)
}

// Chain applies interceptors strictly in registration order. The first
// failure stops the chain and is returned unchanged.
type Chain struct {
	requests  []RequestInterceptor
	responses []ResponseInterceptor
}

// NewChain creates a chain. The slices are copied.
func NewChain(requests []RequestInterceptor, responses []ResponseInterceptor) *Chain {
	return &Chain{
		requests:  append([]RequestInterceptor(nil), requests...),
		responses: append([]ResponseInterceptor(nil), responses...),
	}
}

// ApplyRequest runs the request interceptors. Each receives a private copy
// of the previous output.
func (c *Chain) ApplyRequest(ctx context.Context, req api.Request) (api.Request, error) {
	if c == nil {
		return req, nil
	}
	out := req
	for _, ic := range c.requests {
		next, err := ic.InterceptRequest(ctx, out.Clone())
		if err != nil {
			return api.Request{}, err
		}
		out = next
	}
	return out, nil
}

// ApplyResponse runs the response interceptors.
func (c *Chain) ApplyResponse(ctx context.Context, body []byte, req api.Request) ([]byte, error) {
	if c == nil {
		return body, nil
	}
	out := body
	for _, ic := range c.responses {
		next, err := ic.InterceptResponse(ctx, out, req)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// Len returns the number of request and response interceptors.
func (c *Chain) Len() (requests, responses int) {
	if c == nil {
		return 0, 0
	}
	return len(c.requests), len(c.responses)
}
