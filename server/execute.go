package server

import (
	"context"

	"github.com/jonnyholland/ComposableArchitecturePattern/api"
)

// Execute calls desc with method and decodes the response into a T. The
// descriptor must declare api.KindFor[T]().
func Execute[T any](ctx context.Context, s Server, desc *api.Descriptor, method api.Method, opts ...CallOption) (T, error) {
	var out T
	opts = append(opts[:len(opts):len(opts)], WithResponseKind(api.KindFor[T]()))
	if err := s.Call(ctx, desc, method, &out, opts...); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// ExecuteBool calls desc with method for its side effect. Any successful
// transport outcome is true, including an empty body.
func ExecuteBool(ctx context.Context, s Server, desc *api.Descriptor, method api.Method, opts ...CallOption) (bool, error) {
	if _, err := s.Send(ctx, desc, method, opts...); err != nil {
		return false, err
	}
	return true, nil
}
