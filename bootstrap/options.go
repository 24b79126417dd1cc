package bootstrap

import (
	"github.com/jonnyholland/ComposableArchitecturePattern/auth"
	"github.com/jonnyholland/ComposableArchitecturePattern/courier"
	"github.com/jonnyholland/ComposableArchitecturePattern/logger"
	"github.com/jonnyholland/ComposableArchitecturePattern/server"
)

// Option configures Build.
type Option func(*appOptions)

type appOptions struct {
	logger        *logger.Logger
	courier       courier.Courier
	refresh       auth.RefreshFunc
	authenticator auth.Authenticator
	serverOpts    []server.Option
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger. If not set, the logger is built from
// the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithCourier replaces the courier built from configuration.
func WithCourier(c courier.Courier) Option {
	return func(o *appOptions) { o.courier = c }
}

// WithRefreshFunc sets the refresh function of the token store
// authenticator.
func WithRefreshFunc(fn auth.RefreshFunc) Option {
	return func(o *appOptions) { o.refresh = fn }
}

// WithAuthenticator replaces the token store authenticator.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(o *appOptions) { o.authenticator = a }
}

// WithServerOptions passes options to server.New after the ones Build
// derives, so they take precedence.
func WithServerOptions(opts ...server.Option) Option {
	return func(o *appOptions) { o.serverOpts = append(o.serverOpts, opts...) }
}
