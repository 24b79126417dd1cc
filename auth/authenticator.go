package auth

import (
	"context"
	"encoding/base64"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/singleflight"

	"github.com/jonnyholland/ComposableArchitecturePattern/api"
	"github.com/jonnyholland/ComposableArchitecturePattern/errors"
)

// Authenticator attaches credentials to requests and refreshes them.
// Authenticate returns a copy and never modifies its input.
type Authenticator interface {
	// Authenticate attaches a credential. It fails with an Unauthenticated
	// error when no valid credential is available.
	Authenticate(ctx context.Context, req api.Request) (api.Request, error)
	// RefreshCredentials exchanges the refresh credential for a new pair.
	RefreshCredentials(ctx context.Context) error
	// IsAuthenticated reports whether a valid credential is present.
	IsAuthenticated(ctx context.Context) bool
}

const authorizationHeader = "Authorization"

// None is an Authenticator that attaches nothing.
type None struct{}

// Authenticate implements Authenticator.
func (None) Authenticate(_ context.Context, req api.Request) (api.Request, error) {
	return req.Clone(), nil
}

// RefreshCredentials implements Authenticator. There is never anything to
// refresh.
func (None) RefreshCredentials(context.Context) error {
	return errors.Unauthenticated("no credentials to refresh")
}

// IsAuthenticated implements Authenticator.
func (None) IsAuthenticated(context.Context) bool { return true }

// Static attaches a fixed header value.
type Static struct {
	// Header is the header name. Defaults to Authorization.
	Header string
	// Value is the full header value.
	Value string
}

// Bearer attaches "Authorization: Bearer <token>".
func Bearer(token string) *Static {
	if token == "" {
		return &Static{}
	}
	return &Static{Header: authorizationHeader, Value: "Bearer " + token}
}

// Basic attaches HTTP basic credentials.
func Basic(username, password string) *Static {
	creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return &Static{Header: authorizationHeader, Value: "Basic " + creds}
}

// APIKey attaches key under header, X-API-Key by default.
func APIKey(key, header string) *Static {
	if header == "" {
		header = "X-API-Key"
	}
	return &Static{Header: header, Value: key}
}

// Authenticate implements Authenticator.
func (s *Static) Authenticate(_ context.Context, req api.Request) (api.Request, error) {
	if s.Value == "" {
		return api.Request{}, errors.Unauthenticated("static credential is empty")
	}
	return req.WithHeader(s.header(), s.Value), nil
}

// RefreshCredentials implements Authenticator. Static credentials cannot be
// refreshed.
func (s *Static) RefreshCredentials(context.Context) error {
	return errors.Unauthenticated("static credential cannot be refreshed")
}

// IsAuthenticated implements Authenticator.
func (s *Static) IsAuthenticated(context.Context) bool { return s.Value != "" }

func (s *Static) header() string {
	if s.Header == "" {
		return authorizationHeader
	}
	return s.Header
}

// RefreshFunc exchanges a refresh token for a new pair.
type RefreshFunc func(ctx context.Context, refresh Token) (TokenPair, error)

// StoreAuthenticator attaches the access token from a TokenStore and
// refreshes it through a RefreshFunc. Concurrent refreshes are collapsed
// into one call.
type StoreAuthenticator struct {
	store   TokenStore
	refresh RefreshFunc
	clock   clock.Clock
	header  string
	scheme  string
	group   singleflight.Group
}

// StoreOption configures a StoreAuthenticator.
type StoreOption func(*StoreAuthenticator)

// WithClock sets the time source used for expiry checks.
func WithClock(c clock.Clock) StoreOption {
	return func(a *StoreAuthenticator) { a.clock = c }
}

// WithHeader changes the header and scheme ("Bearer") of the credential.
// An empty scheme sends the bare token.
func WithHeader(header, scheme string) StoreOption {
	return func(a *StoreAuthenticator) {
		a.header = header
		a.scheme = scheme
	}
}

// NewStoreAuthenticator creates an authenticator over store. A nil refresh
// function makes every refresh fail.
func NewStoreAuthenticator(store TokenStore, refresh RefreshFunc, opts ...StoreOption) *StoreAuthenticator {
	a := &StoreAuthenticator{
		store:   store,
		refresh: refresh,
		clock:   clock.New(),
		header:  authorizationHeader,
		scheme:  "Bearer",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate implements Authenticator.
func (a *StoreAuthenticator) Authenticate(ctx context.Context, req api.Request) (api.Request, error) {
	pair, err := a.store.Retrieve(ctx)
	if err != nil {
		return api.Request{}, errors.Unauthenticated("token store unavailable").WithCause(err)
	}
	if pair == nil || !pair.Access.IsValidAt(a.clock.Now()) {
		return api.Request{}, errors.Unauthenticated("access token missing or expired")
	}

	value := pair.Access.Value
	if a.scheme != "" {
		value = a.scheme + " " + value
	}
	return req.WithHeader(a.header, value), nil
}

// RefreshCredentials implements Authenticator. The refresh function's own
// error is returned unchanged. The shared refresh is detached from any one
// caller's cancellation; a caller whose ctx ends stops waiting with a
// Cancelled error while the refresh finishes for the others.
func (a *StoreAuthenticator) RefreshCredentials(ctx context.Context) error {
	flight := context.WithoutCancel(ctx)
	ch := a.group.DoChan("refresh", func() (interface{}, error) {
		return nil, a.doRefresh(flight)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return errors.Cancelled(ctx.Err())
	}
}

func (a *StoreAuthenticator) doRefresh(ctx context.Context) error {
	if a.refresh == nil {
		return errors.Unauthenticated("no refresh function configured")
	}
	pair, err := a.store.Retrieve(ctx)
	if err != nil {
		return errors.Unauthenticated("token store unavailable").WithCause(err)
	}
	if pair == nil || !pair.Refresh.IsValidAt(a.clock.Now()) {
		return errors.Unauthenticated("no refreshable credential")
	}

	next, err := a.refresh(ctx, pair.Refresh)
	if err != nil {
		return err
	}
	return a.store.Store(ctx, next)
}

// IsAuthenticated implements Authenticator.
func (a *StoreAuthenticator) IsAuthenticated(ctx context.Context) bool {
	pair, err := a.store.Retrieve(ctx)
	if err != nil || pair == nil {
		return false
	}
	return pair.Access.IsValidAt(a.clock.Now())
}

// Custom delegates to functions. A nil AuthenticateFunc passes requests
// through, a nil RefreshFunc fails with Unauthenticated and a nil
// IsAuthenticatedFunc reports true.
type Custom struct {
	AuthenticateFunc    func(ctx context.Context, req api.Request) (api.Request, error)
	RefreshFunc         func(ctx context.Context) error
	IsAuthenticatedFunc func(ctx context.Context) bool
}

// Authenticate implements Authenticator. The input is cloned before the
// function sees it.
func (c *Custom) Authenticate(ctx context.Context, req api.Request) (api.Request, error) {
	if c.AuthenticateFunc == nil {
		return req.Clone(), nil
	}
	return c.AuthenticateFunc(ctx, req.Clone())
}

// RefreshCredentials implements Authenticator.
func (c *Custom) RefreshCredentials(ctx context.Context) error {
	if c.RefreshFunc == nil {
		return errors.Unauthenticated("no refresh function configured")
	}
	return c.RefreshFunc(ctx)
}

// IsAuthenticated implements Authenticator.
func (c *Custom) IsAuthenticated(ctx context.Context) bool {
	if c.IsAuthenticatedFunc == nil {
		return true
	}
	return c.IsAuthenticatedFunc(ctx)
}

var (
	_ Authenticator = None{}
	_ Authenticator = (*Static)(nil)
	_ Authenticator = (*StoreAuthenticator)(nil)
	_ Authenticator = (*Custom)(nil)
)
