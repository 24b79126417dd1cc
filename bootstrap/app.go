package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonnyholland/ComposableArchitecturePattern/auth"
	"github.com/jonnyholland/ComposableArchitecturePattern/cache"
	"github.com/jonnyholland/ComposableArchitecturePattern/courier"
	"github.com/jonnyholland/ComposableArchitecturePattern/httpclient"
	"github.com/jonnyholland/ComposableArchitecturePattern/interceptor"
	"github.com/jonnyholland/ComposableArchitecturePattern/logger"
	"github.com/jonnyholland/ComposableArchitecturePattern/observability"
	"github.com/jonnyholland/ComposableArchitecturePattern/redis"
	"github.com/jonnyholland/ComposableArchitecturePattern/server"
)

// App holds everything Build assembled.
type App struct {
	Name     string
	Version  string
	Cfg      *Config
	Logger   *logger.Logger
	Loggers  *logger.Registry
	Pipeline *server.Pipeline
	Courier  courier.Courier
	Cache    cache.ResponseCache
	Tokens   auth.TokenStore
	Summary  *Summary

	redis   *redis.Client
	mu      sync.Mutex
	onClose []namedHook
	closed  bool
}

// Build applies defaults to cfg, validates it and assembles the App. On
// failure everything created so far is closed.
func Build(ctx context.Context, cfg *Config, opts ...Option) (_ *App, err error) {
	start := time.Now()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	app := &App{
		Name:    cfg.Name,
		Version: cfg.Version,
		Cfg:     cfg,
		Summary: NewSummary(cfg.Name, cfg.Version),
	}
	defer func() {
		if err != nil {
			_ = app.Close(context.WithoutCancel(ctx))
		}
	}()

	app.Logger = o.logger
	if app.Logger == nil {
		app.Logger = logger.New(&cfg.Logging, cfg.Name)
	}
	app.Loggers = logger.NewRegistry(app.Logger)
	log := app.Loggers.Get("bootstrap")

	serverOpts := []server.Option{server.WithLogger(app.Loggers.Get("server"))}
	if cfg.LogTraffic {
		traffic := interceptor.NewLogging(app.Loggers.Get("interceptor"))
		serverOpts = append(serverOpts,
			server.WithRequestInterceptors(traffic),
			server.WithResponseInterceptors(traffic),
		)
	}

	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Tracing)
		if err != nil {
			return nil, fmt.Errorf("tracing: %w", err)
		}
		app.OnClose("tracing", tp.Shutdown)
		app.Summary.Track("tracing", "telemetry", cfg.Tracing.Endpoint)
	}
	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		app.OnClose("metrics", mp.Shutdown)
		metrics, err := observability.NewPipelineMetrics(mp.Meter(cfg.Name))
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		serverOpts = append(serverOpts, server.WithMetrics(metrics))
		app.Summary.Track("metrics", "telemetry", cfg.Metrics.Endpoint)
	}

	if err := app.buildCourier(o); err != nil {
		return nil, err
	}
	serverOpts = append(serverOpts, server.WithCourier(app.Courier))

	if err := app.buildCache(ctx); err != nil {
		return nil, err
	}
	if app.Cache != nil {
		serverOpts = append(serverOpts, server.WithCache(app.Cache))
	}

	authenticator, err := app.buildAuth(o)
	if err != nil {
		return nil, err
	}
	if authenticator != nil {
		serverOpts = append(serverOpts, server.WithAuthenticator(authenticator))
	}

	pipeline, err := server.New(cfg.Server, append(serverOpts, o.serverOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	app.Pipeline = pipeline
	app.Summary.Track(cfg.Server.Name, "pipeline", cfg.Server.Describe())

	app.Summary.SetStartupDuration(time.Since(start))
	app.Summary.Log(log)
	return app, nil
}

func (a *App) buildCourier(o *appOptions) error {
	switch {
	case o.courier != nil:
		a.Courier = o.courier
		a.Summary.Track("courier", "courier", "custom")
	case a.Cfg.Fixtures != "":
		a.Courier = courier.NewFile(a.Cfg.Fixtures)
		a.Summary.Track("courier", "courier", "fixtures "+a.Cfg.Fixtures)
	default:
		adapter, err := httpclient.New(a.Cfg.HTTP, httpclient.WithLogger(a.Loggers.Get("httpclient")))
		if err != nil {
			return fmt.Errorf("http client: %w", err)
		}
		a.Courier = adapter
		a.OnClose("http", adapter.Close)
		a.Summary.Track("courier", "courier", a.Cfg.HTTP.Describe())
	}
	return nil
}

func (a *App) buildCache(ctx context.Context) error {
	switch {
	case a.Cfg.Redis.Enabled:
		client, err := redis.New(a.Cfg.Redis, a.Loggers.Get("redis"))
		if err != nil {
			return err
		}
		a.redis = client
		a.OnClose("redis", func(context.Context) error { return client.Close() })
		if err := client.Ping(ctx); err != nil {
			return err
		}
		a.Cache = redis.NewCache(client, redis.WithDefaultTTL(a.Cfg.Server.CacheTTL))
		a.Summary.Track("cache", "cache", "redis "+a.Cfg.Redis.Describe())
	case a.Cfg.Server.CacheMaxEntries > 0:
		a.Cache = cache.NewMemory(a.Cfg.Server.CacheTTL, a.Cfg.Server.CacheMaxEntries)
		a.Summary.Track("cache", "cache", fmt.Sprintf("memory max=%d ttl=%s", a.Cfg.Server.CacheMaxEntries, a.Cfg.Server.CacheTTL))
	}
	return nil
}

func (a *App) buildAuth(o *appOptions) (auth.Authenticator, error) {
	if a.Cfg.Keyring.Enabled {
		store, err := auth.OpenKeyringStore(a.Cfg.Keyring)
		if err != nil {
			return nil, fmt.Errorf("keyring: %w", err)
		}
		a.Tokens = store
		a.Summary.Track("tokens", "auth", a.Cfg.Keyring.Describe())
	}
	if o.authenticator != nil {
		a.Summary.Track("authenticator", "auth", "custom")
		return o.authenticator, nil
	}
	if o.refresh == nil && a.Tokens == nil {
		return nil, nil
	}
	if a.Tokens == nil {
		a.Tokens = auth.NewMemoryStore()
		a.Summary.Track("tokens", "auth", "memory")
	}
	return auth.NewStoreAuthenticator(a.Tokens, o.refresh), nil
}

// Health checks the App's external dependencies.
func (a *App) Health(ctx context.Context) *observability.ServiceHealth {
	var checks []observability.HealthCheck
	if a.redis != nil {
		checks = append(checks, observability.HealthCheck{Name: "redis", Ping: a.redis.Ping})
	}
	return observability.CheckHealth(ctx, a.Name, checks...)
}

// Close runs the registered shutdown hooks, most recent first. It is safe
// to call more than once.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	hooks := a.onClose
	a.onClose = nil
	a.mu.Unlock()

	if a.Loggers != nil {
		a.Loggers.Get("bootstrap").Info("shutting down", logger.Fields("hooks", len(hooks)))
	}
	return runHooks(ctx, hooks)
}
