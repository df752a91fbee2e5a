package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/siteaudit"
)

// AttemptFunc is a single attempt at processing a URL.
type AttemptFunc func(ctx context.Context) error

// RetryPolicy runs an attempt up to MaxAttempts times, waiting Backoff
// between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration

	// Retryable reports whether a failed attempt may be retried.
	// If nil, every error is retryable.
	Retryable func(err error) bool

	// OnRetry, if set, is called before waiting out the backoff.
	// attempt is the number of the attempt that just failed.
	OnRetry func(url string, attempt int, err error)
}

// DefaultRetryPolicy returns the policy used for page audits: two attempts
// two seconds apart, with protocol errors failing immediately.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		Backoff:     2 * time.Second,
		Retryable:   IsRetryable,
	}
}

// IsRetryable reports whether err is worth another attempt.
// Protocol negotiation failures are not.
func IsRetryable(err error) bool {
	return siteaudit.ErrorCode(err) != siteaudit.EPROTOCOL
}

// Do calls fn until it succeeds, fails with a non-retryable error, or the
// attempts are exhausted, and returns the last error.
// If ctx is canceled between attempts, Do returns ctx.Err() instead.
func (p RetryPolicy) Do(ctx context.Context, url string, fn AttemptFunc) error {
	maxAttempts := max(p.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == maxAttempts || (p.Retryable != nil && !p.Retryable(err)) {
			break
		}

		// Check context before sleeping
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if p.OnRetry != nil {
			p.OnRetry(url, attempt, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff):
		}
	}

	return lastErr
}
