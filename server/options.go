package server

import (
	"time"

	"github.com/jonnyholland/ComposableArchitecturePattern/api"
	"github.com/jonnyholland/ComposableArchitecturePattern/auth"
	"github.com/jonnyholland/ComposableArchitecturePattern/cache"
	"github.com/jonnyholland/ComposableArchitecturePattern/courier"
	"github.com/jonnyholland/ComposableArchitecturePattern/environment"
	"github.com/jonnyholland/ComposableArchitecturePattern/interceptor"
	"github.com/jonnyholland/ComposableArchitecturePattern/logger"
	"github.com/jonnyholland/ComposableArchitecturePattern/observability"
	"github.com/jonnyholland/ComposableArchitecturePattern/resilience"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCourier sets the transport. It is required.
func WithCourier(c courier.Courier) Option {
	return func(p *Pipeline) { p.courier = c }
}

// WithAPIs registers descriptors. With Config.RestrictAPIs only these are
// accepted.
func WithAPIs(descs ...*api.Descriptor) Option {
	return func(p *Pipeline) { p.apis = append(p.apis, descs...) }
}

// WithAuthenticator sets the authenticator.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(p *Pipeline) { p.auth = a }
}

// WithRetryPolicy replaces the policy built from Config.Retry. A nil
// policy disables retry.
func WithRetryPolicy(policy *resilience.RetryPolicy) Option {
	return func(p *Pipeline) {
		p.retry = policy
		p.retrySet = true
	}
}

// WithRequestInterceptors appends request interceptors in order.
func WithRequestInterceptors(is ...interceptor.RequestInterceptor) Option {
	return func(p *Pipeline) { p.requestInterceptors = append(p.requestInterceptors, is...) }
}

// WithResponseInterceptors appends response interceptors in order.
func WithResponseInterceptors(is ...interceptor.ResponseInterceptor) Option {
	return func(p *Pipeline) { p.responseInterceptors = append(p.responseInterceptors, is...) }
}

// WithCache sets the response cache.
func WithCache(c cache.ResponseCache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithMetrics records pipeline metrics.
func WithMetrics(m *observability.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithDecoder replaces the JSON decoder.
func WithDecoder(d Decoder) Option {
	return func(p *Pipeline) { p.decoder = d }
}

// WithEncoder replaces the JSON body encoder.
func WithEncoder(e api.Encoder) Option {
	return func(p *Pipeline) { p.builder.Encoder = e }
}

// WithCallerEnvironment replaces the environment from Config.
func WithCallerEnvironment(env environment.Environment) Option {
	return func(p *Pipeline) { p.callerEnv = &env }
}

// CallOption adjusts a single call.
type CallOption func(*callOptions)

type callOptions struct {
	overrides api.Overrides
	decode    *DecodeOptions
	kind      *api.ResponseKind
}

// WithEndpoint appends endpoint to the descriptor path.
func WithEndpoint(endpoint string) CallOption {
	return func(o *callOptions) { o.overrides.Endpoint = endpoint }
}

// WithPathParams expands a templated descriptor path.
func WithPathParams(params map[string]any) CallOption {
	return func(o *callOptions) { o.overrides.PathParams = params }
}

// WithHeaders adds headers to the call, overriding descriptor headers.
func WithHeaders(headers map[string]string) CallOption {
	return func(o *callOptions) { o.overrides.Headers = headers }
}

// WithQueries adds query items that precede the descriptor's.
func WithQueries(items ...api.QueryItem) CallOption {
	return func(o *callOptions) { o.overrides.Queries = append(o.overrides.Queries, items...) }
}

// WithBody replaces the descriptor body.
func WithBody(body any) CallOption {
	return func(o *callOptions) { o.overrides.Body = body }
}

// WithTimeout replaces the descriptor timeout.
func WithTimeout(timeout time.Duration) CallOption {
	return func(o *callOptions) { o.overrides.Timeout = timeout }
}

// WithEnvironment sets the caller environment for this call.
func WithEnvironment(env environment.Environment) CallOption {
	return func(o *callOptions) { o.overrides.Environment = &env }
}

// WithDecodeOptions replaces Config.Decode for this call.
func WithDecodeOptions(opts DecodeOptions) CallOption {
	return func(o *callOptions) { o.decode = &opts }
}

// WithResponseKind makes the call fail with UnsupportedType unless the
// descriptor declares kind. Execute sets it from the result type.
func WithResponseKind(kind api.ResponseKind) CallOption {
	return func(o *callOptions) { o.kind = &kind }
}
