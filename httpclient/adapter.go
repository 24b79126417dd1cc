package httpclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"

	"github.com/jonnyholland/ComposableArchitecturePattern/api"
	"github.com/jonnyholland/ComposableArchitecturePattern/errors"
	"github.com/jonnyholland/ComposableArchitecturePattern/logger"
	"github.com/jonnyholland/ComposableArchitecturePattern/version"
)

// CorrelationHeader carries the pipeline's per-call id upstream.
const CorrelationHeader = "X-Correlation-Id"

// Adapter sends requests through an *http.Client.
type Adapter struct {
	httpClient *http.Client
	config     Config
	userAgent  string
	log        *logger.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter's logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) { a.log = l.WithComponent("httpclient") }
}

// WithHTTPClient replaces the configured client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.httpClient = c }
}

// New creates a new HTTP adapter with the given configuration.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}

	if cfg.HTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, fmt.Errorf("httpclient: configure http2: %w", err)
		}
	}

	var rt http.RoundTripper = transport
	if cfg.Tracing {
		rt = otelhttp.NewTransport(rt,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return cfg.Name + " " + r.Method
			}),
		)
	}

	a := &Adapter{
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   cfg.Timeout,
		},
		config:    cfg,
		userAgent: version.UserAgent(cfg.Name),
		log:       logger.Nop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Send implements courier.Courier.
func (a *Adapter) Send(ctx context.Context, req api.Request, correlationID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Cancelled(err)
	}

	callCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := req.HTTPRequest(callCtx)
	if err != nil {
		return nil, errors.BadRequest(errors.ErrCodeEncodeFailed, fmt.Sprintf("create request: %v", err)).WithCause(err)
	}
	for k, v := range a.config.Headers {
		if httpReq.Header.Get(k) == "" {
			httpReq.Header.Set(k, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", a.userAgent)
	}
	if correlationID != "" {
		httpReq.Header.Set(CorrelationHeader, correlationID)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, a.transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, a.transportError(ctx, fmt.Errorf("read response body: %w", err))
	}

	a.log.WithContext(ctx).Debug("round trip", logger.Fields(
		logger.FieldMethod, string(req.Method),
		logger.FieldURL, httpReq.URL.Redacted(),
		logger.FieldStatus, resp.StatusCode,
	))

	if classErr := errors.ClassifyStatusCode(resp.StatusCode, body); classErr != nil {
		return nil, classErr
	}
	return body, nil
}

// transportError maps a failed round trip. A cancelled caller context is a
// cancellation; a request timeout is a transient network failure.
func (a *Adapter) transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return errors.Cancelled(err)
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.Cancelled(err)
	}
	return errors.Network(err)
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (a *Adapter) Unwrap() *http.Client {
	return a.httpClient
}

// Config returns the adapter's configuration.
func (a *Adapter) Config() Config {
	return a.config
}

// Close releases idle connections.
func (a *Adapter) Close(_ context.Context) error {
	a.httpClient.CloseIdleConnections()
	return nil
}
