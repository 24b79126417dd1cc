package httpclient

import (
	"fmt"
	"time"
)

const (
	defaultTimeout             = 60 * time.Second
	defaultMaxIdleConnsPerHost = 16
)

// Config configures the HTTP courier.
type Config struct {
	// Name identifies the courier in logs and spans.
	Name string `yaml:"name" mapstructure:"name"`

	// Timeout caps every round trip, including reading the body. Request
	// timeouts shorter than this still apply. Defaults to 60s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are applied to every request unless the request sets them.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// TLS configures TLS settings for the HTTP transport.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// HTTP2 enables HTTP/2 on the transport.
	HTTP2 bool `yaml:"http2" mapstructure:"http2"`

	// Tracing wraps the transport with OpenTelemetry instrumentation.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`

	// MaxIdleConnsPerHost bounds the idle connection pool per host.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host" mapstructure:"max_idle_conns_per_host" validate:"gte=0"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "http"
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxIdleConnsPerHost <= 0 {
		c.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Describe returns a human-readable one-liner for the startup summary.
func (c *Config) Describe() string {
	s := fmt.Sprintf("%s timeout=%s", c.Name, c.Timeout)
	if c.HTTP2 {
		s += " h2"
	}
	if c.Tracing {
		s += " traced"
	}
	if c.TLS.IsEnabled() {
		s += " tls"
	}
	return s
}
