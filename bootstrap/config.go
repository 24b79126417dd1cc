package bootstrap

import (
	"github.com/jonnyholland/ComposableArchitecturePattern/auth"
	"github.com/jonnyholland/ComposableArchitecturePattern/config"
	"github.com/jonnyholland/ComposableArchitecturePattern/httpclient"
	"github.com/jonnyholland/ComposableArchitecturePattern/observability"
	"github.com/jonnyholland/ComposableArchitecturePattern/redis"
	"github.com/jonnyholland/ComposableArchitecturePattern/server"
	"github.com/jonnyholland/ComposableArchitecturePattern/validation"
	"github.com/jonnyholland/ComposableArchitecturePattern/version"
)

// Config is the complete configuration of an App.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server  server.Config              `yaml:"server" mapstructure:"server"`
	HTTP    httpclient.Config          `yaml:"http" mapstructure:"http"`
	Redis   redis.Config               `yaml:"redis" mapstructure:"redis"`
	Keyring auth.KeyringConfig         `yaml:"keyring" mapstructure:"keyring"`
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`

	// LogTraffic logs every request and response at debug level.
	LogTraffic bool `yaml:"log_traffic" mapstructure:"log_traffic"`

	// Fixtures serves responses from files under this directory instead of
	// the network.
	Fixtures string `yaml:"fixtures" mapstructure:"fixtures"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = version.Get().String()
	}
	c.ServiceConfig.ApplyDefaults()
	if c.Server.Name == "" {
		c.Server.Name = c.Name
	}
	c.Server.ApplyDefaults()
	if c.HTTP.Name == "" {
		c.HTTP.Name = c.Name
	}
	c.HTTP.ApplyDefaults()
	c.Redis.ApplyDefaults()
	if c.Keyring.ServiceName == "" {
		c.Keyring.ServiceName = c.Name
	}
	c.Keyring.ApplyDefaults()
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = c.Version
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
	c.Tracing.ApplyDefaults(c.Name)
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.Name
	}
	if c.Metrics.ServiceVersion == "" {
		c.Metrics.ServiceVersion = c.Version
	}
	if c.Metrics.Environment == "" {
		c.Metrics.Environment = c.Environment
	}
}

// Validate validates every section and reports all failures together.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("config", c.ServiceConfig.Validate())
	v.Merge("server", c.Server.Validate())
	if c.Fixtures == "" {
		v.Merge("http", c.HTTP.Validate())
	}
	v.Merge("redis", c.Redis.Validate())
	v.Merge("keyring", c.Keyring.Validate())
	v.Custom(c.Tracing.SampleRate >= 0 && c.Tracing.SampleRate <= 1, "tracing.sample_rate", "must be between 0 and 1")
	return v.Validate()
}

// Load reads configuration for serviceName, applies defaults and
// validates it.
func Load(serviceName string, opts ...config.LoaderOption) (*Config, error) {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
