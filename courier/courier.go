// Package courier defines the transport contract of the pipeline and a
// deterministic file-backed implementation.
package courier

import (
	"context"

	"github.com/jonnyholland/ComposableArchitecturePattern/api"
)

// Courier sends one concrete request and returns the raw response body.
// Failures are *errors.Error values classified as network, server,
// unauthorized or unknown. Implementations honor req.Timeout.
type Courier interface {
	Send(ctx context.Context, req api.Request, correlationID string) ([]byte, error)
}

// Func adapts a function to Courier.
type Func func(ctx context.Context, req api.Request, correlationID string) ([]byte, error)

// Send implements Courier.
func (f Func) Send(ctx context.Context, req api.Request, correlationID string) ([]byte, error) {
	return f(ctx, req, correlationID)
}
