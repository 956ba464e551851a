package httputil

import (
	"context"
	"time"

	errs "github.com/matzehuels/versionsync/pkg/errors"
)

// Default retry settings used when the configuration leaves them unset.
const (
	DefaultAttempts = 3
	DefaultDelay    = 500 * time.Millisecond
)

// Upper bounds of [Backoff]. A run never makes more than MaxAttempts tries
// per call and never waits longer than MaxWait between two of them.
const (
	MaxAttempts = 5
	MaxWait     = 30 * time.Second
)

// Policy decides, from an error and the number of attempts already made,
// whether to try again and how long to wait first. Policies are pure so that
// retry behavior can be tested without a network or a clock.
type Policy func(err error, attempt int) (retry bool, wait time.Duration)

// Backoff returns a Policy that retries [errs.ErrCodeTransient] errors up to
// attempts total tries, waiting delay before the second try and doubling the
// wait for each one after that. Every other error is final, including
// rate limiting. attempts is clamped to [1, MaxAttempts] and each wait to
// MaxWait.
func Backoff(attempts int, delay time.Duration) Policy {
	attempts = min(max(attempts, 1), MaxAttempts)
	return func(err error, attempt int) (bool, time.Duration) {
		if attempt >= attempts || !IsRetryable(err) {
			return false, 0
		}
		return true, backoffWait(delay, attempt)
	}
}

// backoffWait doubles delay attempt-1 times, saturating at MaxWait.
func backoffWait(delay time.Duration, attempt int) time.Duration {
	wait := min(max(delay, 0), MaxWait)
	for i := 1; i < attempt && wait < MaxWait; i++ {
		wait *= 2
	}
	return min(wait, MaxWait)
}

// NoRetry is a Policy that never retries.
func NoRetry(error, int) (bool, time.Duration) { return false, 0 }

// IsRetryable reports whether err is classified as transient.
func IsRetryable(err error) bool {
	return errs.Is(err, errs.ErrCodeTransient)
}

// Do executes fn until it succeeds or policy declines another attempt.
// Returns the last error if all attempts fail, or ctx.Err() if the context
// ends while waiting.
func Do(ctx context.Context, policy Policy, fn func(context.Context) error) error {
	if policy == nil {
		policy = NoRetry
	}
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		retry, wait := policy(err, attempt)
		if !retry {
			return err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Retry is a convenience wrapper around [Do] with a [Backoff] policy.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(context.Context) error) error {
	return Do(ctx, Backoff(attempts, delay), fn)
}

// RetryWithBackoff runs fn with [DefaultAttempts] and [DefaultDelay].
func RetryWithBackoff(ctx context.Context, fn func(context.Context) error) error {
	return Retry(ctx, DefaultAttempts, DefaultDelay, fn)
}
