package server

import (
	"fmt"
	"time"

	"github.com/jonnyholland/ComposableArchitecturePattern/api"
	"github.com/jonnyholland/ComposableArchitecturePattern/cache"
	"github.com/jonnyholland/ComposableArchitecturePattern/environment"
	"github.com/jonnyholland/ComposableArchitecturePattern/resilience"
	"github.com/jonnyholland/ComposableArchitecturePattern/validation"
)

// Config holds pipeline configuration.
type Config struct {
	// Name identifies the pipeline in logs and metrics.
	Name string `yaml:"name" mapstructure:"name"`

	// Environment is the caller environment kind ("production", "test", ...)
	// used for descriptors that pin none.
	Environment string `yaml:"environment" mapstructure:"environment" validate:"required_with=BaseURL"`

	// BaseURL is the caller environment's URL.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Headers are added to every built request, overriding descriptor and
	// call headers.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// RestrictAPIs rejects descriptors that are not registered.
	RestrictAPIs bool `yaml:"restrict_apis" mapstructure:"restrict_apis"`

	// CacheTTL is the lifetime of stored responses. Empty bodies are never
	// stored, so an empty read is always fetched again.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl" validate:"gte=0"`

	// CacheMaxEntries bounds the in-memory cache built from configuration.
	// Zero disables it.
	CacheMaxEntries int `yaml:"cache_max_entries" mapstructure:"cache_max_entries" validate:"gte=0"`

	// CacheableMethods are the methods served from and stored into the
	// cache. Defaults to GET.
	CacheableMethods []string `yaml:"cacheable_methods" mapstructure:"cacheable_methods"`

	// Retry configures the retry policy. MaxAttempts of zero disables retry.
	Retry resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`

	// Decode sets the default decode options of every call.
	Decode DecodeOptions `yaml:"decode" mapstructure:"decode"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "cap"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = cache.DefaultTTL
	}
	if len(c.CacheableMethods) == 0 {
		c.CacheableMethods = []string{string(api.MethodGet)}
	}
	c.Retry.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("", validation.Validate(c))
	for _, m := range c.CacheableMethods {
		if _, ok := api.ParseMethod(m); !ok {
			v.AddError("cacheable_methods", fmt.Sprintf("unknown method %q", m))
		}
	}
	if c.Environment != "" {
		env, err := c.CallerEnvironment()
		switch {
		case err != nil:
			v.AddError("environment", err.Error())
		case c.BaseURL != "":
			if _, ok := env.BaseURL(); !ok {
				v.AddError("base_url", "must be an absolute URL")
			}
		}
	}
	v.Merge("retry", c.Retry.Validate())
	return v.Validate()
}

// CallerEnvironment returns the configured caller environment, or nil when
// none is set.
func (c *Config) CallerEnvironment() (*environment.Environment, error) {
	if c.Environment == "" {
		return nil, nil
	}
	kind, err := environment.ParseKind(c.Environment)
	if err != nil {
		return nil, err
	}
	env := environment.New(kind, c.BaseURL)
	return &env, nil
}

func (c *Config) cacheable() map[api.Method]bool {
	set := make(map[api.Method]bool, len(c.CacheableMethods))
	for _, s := range c.CacheableMethods {
		if m, ok := api.ParseMethod(s); ok {
			set[m] = true
		}
	}
	return set
}

// Describe returns a human-readable one-liner for the startup summary.
func (c *Config) Describe() string {
	env := c.Environment
	if env == "" {
		env = "per-api"
	}
	return fmt.Sprintf("%s env=%s retry=%d cache_ttl=%s restrict=%t",
		c.Name, env, c.Retry.MaxAttempts, c.CacheTTL, c.RestrictAPIs)
}
