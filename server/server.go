package server

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonnyholland/ComposableArchitecturePattern/api"
	"github.com/jonnyholland/ComposableArchitecturePattern/auth"
	"github.com/jonnyholland/ComposableArchitecturePattern/cache"
	"github.com/jonnyholland/ComposableArchitecturePattern/courier"
	"github.com/jonnyholland/ComposableArchitecturePattern/environment"
	"github.com/jonnyholland/ComposableArchitecturePattern/errors"
	"github.com/jonnyholland/ComposableArchitecturePattern/interceptor"
	"github.com/jonnyholland/ComposableArchitecturePattern/logger"
	"github.com/jonnyholland/ComposableArchitecturePattern/observability"
	"github.com/jonnyholland/ComposableArchitecturePattern/resilience"
)

// Server executes descriptors.
type Server interface {
	// Send runs the pipeline and returns the raw response body.
	Send(ctx context.Context, desc *api.Descriptor, method api.Method, opts ...CallOption) ([]byte, error)
	// Call runs the pipeline and decodes the body into out, a non-nil pointer.
	Call(ctx context.Context, desc *api.Descriptor, method api.Method, out any, opts ...CallOption) error
	// Validate checks that desc may be called and, when kind is non-nil,
	// that it can be decoded into kind.
	Validate(desc *api.Descriptor, kind *api.ResponseKind) error
	// Decoder returns the body decoder.
	Decoder() Decoder
	// InFlight returns the ids of the calls currently executing.
	InFlight() []string
}

// Pipeline is the Server implementation.
type Pipeline struct {
	cfg       Config
	courier   courier.Courier
	auth      auth.Authenticator
	retry     *resilience.RetryPolicy
	retrySet  bool
	cache     cache.ResponseCache
	cacheable map[api.Method]bool
	callerEnv *environment.Environment
	builder   api.Builder
	decoder   Decoder
	log       *logger.Logger
	metrics   *observability.PipelineMetrics

	requestInterceptors  []interceptor.RequestInterceptor
	responseInterceptors []interceptor.ResponseInterceptor
	chain                *interceptor.Chain

	mu       sync.Mutex
	apis     []*api.Descriptor
	inFlight map[string]struct{}
}

var _ Server = (*Pipeline)(nil)

// New creates a pipeline. A courier is required.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:       cfg,
		cacheable: cfg.cacheable(),
		builder:   api.Builder{Encoder: api.JSONEncoder{}},
		decoder:   JSONDecoder{},
		inFlight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.courier == nil {
		return nil, errors.BadRequest(errors.ErrCodeInvalidConfig, "a courier is required")
	}
	if p.log == nil {
		p.log = logger.Nop()
	}
	p.log = p.log.WithComponent("server").WithFields(logger.Fields("pipeline", cfg.Name))
	if !p.retrySet {
		policy, err := cfg.Retry.Policy()
		if err != nil {
			return nil, errors.BadRequest(errors.ErrCodeInvalidConfig, "invalid retry configuration").WithCause(err)
		}
		p.retry = policy
	}
	if p.callerEnv == nil {
		env, err := cfg.CallerEnvironment()
		if err != nil {
			return nil, errors.BadRequest(errors.ErrCodeInvalidConfig, err.Error())
		}
		p.callerEnv = env
	}
	p.chain = interceptor.NewChain(p.requestInterceptors, p.responseInterceptors)
	return p, nil
}

// Config returns the configuration with defaults applied.
func (p *Pipeline) Config() Config { return p.cfg }

// Decoder implements Server.
func (p *Pipeline) Decoder() Decoder { return p.decoder }

// RegisterAPIs adds descriptors to the registered set.
func (p *Pipeline) RegisterAPIs(descs ...*api.Descriptor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.apis = append(p.apis, descs...)
}

// InFlight implements Server. The ids are sorted.
func (p *Pipeline) InFlight() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Sorted(maps.Keys(p.inFlight))
}

// Validate implements Server.
func (p *Pipeline) Validate(desc *api.Descriptor, kind *api.ResponseKind) error {
	if desc == nil {
		return errors.UnsupportedAPI("<nil>")
	}
	if p.cfg.RestrictAPIs && !p.isRegistered(desc) {
		return errors.UnsupportedAPI(desc.Path())
	}
	if kind != nil && !desc.Supports(*kind) {
		return errors.UnsupportedType(string(*kind))
	}
	return nil
}

func (p *Pipeline) isRegistered(desc *api.Descriptor) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.ContainsFunc(p.apis, func(d *api.Descriptor) bool {
		return d.Equal(desc) || d.IsEqual(desc)
	})
}

func (p *Pipeline) begin() string {
	id := uuid.NewString()
	p.mu.Lock()
	p.inFlight[id] = struct{}{}
	p.mu.Unlock()
	return id
}

func (p *Pipeline) end(id string) {
	p.mu.Lock()
	delete(p.inFlight, id)
	p.mu.Unlock()
}

// Send implements Server.
func (p *Pipeline) Send(ctx context.Context, desc *api.Descriptor, method api.Method, opts ...CallOption) ([]byte, error) {
	var body []byte
	err := p.execute(ctx, desc, method, opts, func([]byte, DecodeOptions) error { return nil }, &body)
	return body, err
}

// Call implements Server. An empty body fails with EmptyResponse.
func (p *Pipeline) Call(ctx context.Context, desc *api.Descriptor, method api.Method, out any, opts ...CallOption) error {
	return p.execute(ctx, desc, method, opts, func(body []byte, dopts DecodeOptions) error {
		if len(body) == 0 {
			return errors.EmptyResponse()
		}
		if err := p.decoder.Decode(body, out, dopts); err != nil {
			return errors.Decode(err)
		}
		return nil
	}, nil)
}

// call carries the state of one execution.
type call struct {
	id       string
	desc     *api.Descriptor
	method   api.Method
	attempts int
	cacheHit bool
	log      *logger.Logger
}

func (p *Pipeline) execute(ctx context.Context, desc *api.Descriptor, method api.Method, opts []CallOption,
	decode func([]byte, DecodeOptions) error, raw *[]byte) (err error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	dopts := p.cfg.Decode
	if o.decode != nil {
		dopts = *o.decode
	}

	c := &call{id: p.begin(), desc: desc, method: method}
	defer p.end(c.id)

	apiID := ""
	if desc != nil {
		apiID = desc.ID()
	}
	if logger.CorrelationID(ctx) == "" {
		ctx = logger.ContextWithCorrelationID(ctx, c.id)
	}
	c.log = p.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldAPIID, apiID,
		logger.FieldMethod, string(method),
	))

	start := time.Now()
	ctx, span := observability.StartCall(ctx, apiID, string(method))
	p.metrics.InFlight(ctx, 1)
	defer func() {
		p.metrics.InFlight(ctx, -1)
		kind := ""
		outcome := observability.OutcomeSuccess
		if c.cacheHit {
			outcome = observability.OutcomeCached
		}
		if err != nil {
			kind = errors.KindOf(err).String()
			outcome = observability.OutcomeFailure
			c.log.Warn("call failed", logger.Fields(
				logger.FieldErrorKind, kind,
				logger.FieldAttempt, c.attempts,
				"error", err.Error(),
			))
		} else {
			c.log.Debug("call completed", logger.DurationFields("execute", time.Since(start)))
		}
		p.metrics.RecordCall(ctx, apiID, string(method), outcome, kind, time.Since(start))
		observability.EndCall(span, c.attempts, kind, err)
	}()

	if err := p.Validate(desc, o.kind); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Cancelled(err)
	}

	if o.overrides.Environment == nil {
		o.overrides.Environment = p.callerEnv
	}
	req, err := p.builder.Build(method, desc, o.overrides)
	if err != nil {
		return err
	}
	if len(p.cfg.Headers) > 0 {
		req = req.WithHeaders(p.cfg.Headers)
	}
	key := req.URL.String()
	c.log = c.log.WithFields(logger.Fields(logger.FieldURL, req.URL.Redacted()))

	cacheable := p.cache != nil && p.cacheable[method]
	if cacheable {
		body, hit, err := p.cache.Lookup(ctx, key)
		if err != nil {
			return err
		}
		p.metrics.RecordCache(ctx, hit)
		if hit {
			c.cacheHit = true
			c.log.Debug("served from cache", logger.Fields(logger.FieldCache, "hit"))
			if raw != nil {
				*raw = body
			}
			return decode(body, dopts)
		}
	}

	body, err := p.dispatch(ctx, c, req)
	if err != nil {
		return err
	}

	body, err = p.chain.ApplyResponse(ctx, body, req)
	if err != nil {
		return err
	}

	if cacheable && len(body) > 0 {
		if err := p.cache.Store(ctx, key, body, p.cfg.CacheTTL); err != nil {
			return err
		}
	}
	if raw != nil {
		*raw = body
	}
	return decode(body, dopts)
}

// dispatch authenticates, intercepts and sends req until it succeeds or
// fails terminally. One unauthorized failure per call triggers a
// credential refresh that does not count as an attempt.
func (p *Pipeline) dispatch(ctx context.Context, c *call, base api.Request) ([]byte, error) {
	refreshed := false
	authed, err := p.authenticate(ctx, base, &refreshed)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; {
		req, err := p.chain.ApplyRequest(ctx, authed)
		if err != nil {
			return nil, err
		}

		c.attempts++
		p.metrics.RecordAttempt(ctx, c.desc.ID())
		body, sendErr := p.courier.Send(ctx, req, c.id)
		if err := ctx.Err(); err != nil {
			return nil, errors.Cancelled(err)
		}
		if sendErr == nil {
			return body, nil
		}

		if errors.IsUnauthorized(sendErr) && p.auth != nil && !refreshed {
			refreshed = true
			rerr := p.auth.RefreshCredentials(ctx)
			p.metrics.RecordRefresh(ctx, rerr == nil)
			if rerr != nil {
				c.log.Warn("credential refresh failed", logger.ErrorFields("refresh", rerr))
				return nil, sendErr
			}
			if authed, err = p.auth.Authenticate(ctx, base); err != nil {
				return nil, err
			}
			c.log.Debug("credentials refreshed, resending")
			continue
		}

		if !p.retry.ShouldAttemptAgain(sendErr, attempt) {
			return nil, sendErr
		}
		delay := p.retry.DelayAfter(attempt)
		kind := errors.KindOf(sendErr).String()
		p.metrics.RecordRetry(ctx, c.desc.ID(), kind)
		c.log.Warn("retrying after failure", logger.Fields(
			logger.FieldAttempt, attempt,
			logger.FieldDelay, delay.Milliseconds(),
			logger.FieldErrorKind, kind,
		))
		if p.retry.OnRetry != nil {
			p.retry.OnRetry(attempt, sendErr, delay)
		}
		if err := resilience.Wait(ctx, delay); err != nil {
			return nil, errors.Cancelled(err)
		}
		attempt++
	}
}

// authenticate applies the authenticator. When it fails and a retry policy
// is configured, one refresh is attempted before giving up; that refresh
// is the call's only one.
func (p *Pipeline) authenticate(ctx context.Context, req api.Request, refreshed *bool) (api.Request, error) {
	if p.auth == nil {
		return req, nil
	}
	authed, err := p.auth.Authenticate(ctx, req)
	if err == nil {
		return authed, nil
	}
	if p.retry == nil {
		return api.Request{}, err
	}

	*refreshed = true
	rerr := p.auth.RefreshCredentials(ctx)
	p.metrics.RecordRefresh(ctx, rerr == nil)
	if rerr != nil {
		return api.Request{}, err
	}
	return p.auth.Authenticate(ctx, req)
}
