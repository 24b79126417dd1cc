package resilience

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Strategy names a backoff variant.
type Strategy string

const (
	StrategyNone        Strategy = "none"
	StrategyFixed       Strategy = "fixed"
	StrategyExponential Strategy = "exponential"
)

// Backoff computes the delay before a retry. The zero value never waits.
type Backoff struct {
	strategy Strategy
	delay    time.Duration
	maxDelay time.Duration
}

// NoBackoff retries immediately.
func NoBackoff() Backoff {
	return Backoff{strategy: StrategyNone}
}

// Fixed waits d before every retry.
func Fixed(d time.Duration) Backoff {
	return Backoff{strategy: StrategyFixed, delay: d}
}

// Exponential waits min(base * 2^attempt, maxDelay). A non-positive
// maxDelay leaves the delay uncapped.
func Exponential(base, maxDelay time.Duration) Backoff {
	return Backoff{strategy: StrategyExponential, delay: base, maxDelay: maxDelay}
}

// Strategy returns the backoff variant.
func (b Backoff) Strategy() Strategy {
	if b.strategy == "" {
		return StrategyNone
	}
	return b.strategy
}

// Delay returns the wait before retry number attempt (0-indexed).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	switch b.strategy {
	case StrategyFixed:
		return max(b.delay, 0)
	case StrategyExponential:
		return exponential(b.delay, b.maxDelay, attempt)
	default:
		return 0
	}
}

func exponential(base, limit time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if limit <= 0 {
		limit = math.MaxInt64
	}
	// base << attempt would overflow or pass the cap.
	if attempt >= 63 || base > limit>>uint(attempt) {
		return limit
	}
	return min(base<<uint(attempt), limit)
}

// String implements fmt.Stringer.
func (b Backoff) String() string {
	switch b.strategy {
	case StrategyFixed:
		return fmt.Sprintf("fixed(%s)", b.delay)
	case StrategyExponential:
		return fmt.Sprintf("exponential(%s, %s)", b.delay, b.maxDelay)
	default:
		return string(StrategyNone)
	}
}

// BackoffConfig is the configuration form of a Backoff.
type BackoffConfig struct {
	// Strategy is none, fixed or exponential. Defaults to exponential.
	Strategy string `yaml:"strategy" mapstructure:"strategy" validate:"omitempty,oneof=none fixed exponential"`
	// Delay is the fixed delay.
	Delay time.Duration `yaml:"delay" mapstructure:"delay"`
	// Base is the first exponential delay.
	Base time.Duration `yaml:"base" mapstructure:"base"`
	// MaxDelay caps exponential delays.
	MaxDelay time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *BackoffConfig) ApplyDefaults() {
	if c.Strategy == "" {
		c.Strategy = string(StrategyExponential)
	}
	if c.Base <= 0 {
		c.Base = defaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
}

// Backoff converts the configuration.
func (c BackoffConfig) Backoff() (Backoff, error) {
	switch Strategy(strings.ToLower(c.Strategy)) {
	case StrategyNone, "":
		return NoBackoff(), nil
	case StrategyFixed:
		if c.Delay < 0 {
			return Backoff{}, fmt.Errorf("resilience: fixed delay must not be negative")
		}
		return Fixed(c.Delay), nil
	case StrategyExponential:
		if c.Base <= 0 {
			return Backoff{}, fmt.Errorf("resilience: exponential base must be positive")
		}
		return Exponential(c.Base, c.MaxDelay), nil
	default:
		return Backoff{}, fmt.Errorf("resilience: unknown backoff strategy %q", c.Strategy)
	}
}
