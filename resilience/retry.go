package resilience

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jonnyholland/ComposableArchitecturePattern/errors"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 100 * time.Millisecond
	defaultMaxDelay    = 10 * time.Second
)

// RetryPolicy decides whether a failed attempt is retried and how long to
// wait first.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int
	// Backoff computes the delay before each retry.
	Backoff Backoff
	// ShouldRetry determines if an error should be retried. Nil uses
	// DefaultShouldRetry.
	ShouldRetry func(error) bool
	// OnRetry is called before each retry wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryPolicy returns 3 attempts with exponential backoff from
// 100ms capped at 10s.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: defaultMaxAttempts,
		Backoff:     Exponential(defaultBaseDelay, defaultMaxDelay),
		ShouldRetry: DefaultShouldRetry,
	}
}

// DefaultShouldRetry retries network and unclassified failures only.
// Server errors are not retried because the request may not be idempotent.
func DefaultShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch errors.KindOf(err) {
	case errors.KindNetwork, errors.KindUnknown:
		return true
	default:
		return false
	}
}

// ShouldAttemptAgain reports whether a failure on attempt (1-indexed) is
// followed by another attempt.
func (p *RetryPolicy) ShouldAttemptAgain(err error, attempt int) bool {
	if p == nil || attempt >= p.MaxAttempts {
		return false
	}
	should := p.ShouldRetry
	if should == nil {
		should = DefaultShouldRetry
	}
	return should(err)
}

// DelayAfter returns the wait after failed attempt (1-indexed).
func (p *RetryPolicy) DelayAfter(attempt int) time.Duration {
	if p == nil {
		return 0
	}
	return p.Backoff.Delay(attempt - 1)
}

// Wait blocks for d or until ctx is done, returning ctx.Err() in the latter
// case.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry executes fn under policy and returns its result or the last error.
// A nil policy runs fn once.
func Retry[T any](ctx context.Context, policy *RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !policy.ShouldAttemptAgain(err, attempt) {
			return zero, err
		}

		delay := policy.DelayAfter(attempt)
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, err, delay)
		}
		if werr := Wait(ctx, delay); werr != nil {
			return zero, werr
		}
	}
}

// RetryConfig is the configuration form of a RetryPolicy.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts. Zero disables retry.
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=0"`
	Backoff     BackoffConfig `yaml:"backoff" mapstructure:"backoff"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *RetryConfig) ApplyDefaults() {
	c.Backoff.ApplyDefaults()
}

// Validate checks that the configuration is valid.
func (c *RetryConfig) Validate() error {
	if c.MaxAttempts < 0 {
		return fmt.Errorf("resilience: max_attempts must not be negative")
	}
	_, err := c.Backoff.Backoff()
	return err
}

// Policy builds the retry policy, or nil when retry is disabled.
func (c RetryConfig) Policy() (*RetryPolicy, error) {
	if c.MaxAttempts <= 0 {
		return nil, nil
	}
	b, err := c.Backoff.Backoff()
	if err != nil {
		return nil, err
	}
	return &RetryPolicy{MaxAttempts: c.MaxAttempts, Backoff: b, ShouldRetry: DefaultShouldRetry}, nil
}
