// Package resilience decides whether, how often and after what delay a
// failed call is retried.
//
// A RetryPolicy combines an attempt budget, a Backoff and a retry
// predicate:
//
//	policy := &resilience.RetryPolicy{
//	    MaxAttempts: 5,
//	    Backoff:     resilience.Exponential(100*time.Millisecond, 5*time.Second),
//	    ShouldRetry: resilience.DefaultShouldRetry,
//	}
//
// Backoff attempts are 0-indexed relative to the retry count: the first
// retry waits Delay(0).
package resilience
