// Package httputil provides the retry machinery shared by the resolution
// pipeline.
//
// # Retry
//
// Retry behavior is split in two parts so that it can be tested without a
// network:
//
//   - [Policy]: a pure function of (error, attempt) to (retry, wait)
//   - [Do]: the executor that calls a function and sleeps between attempts
//
// Only errors classified as TRANSIENT (network failures, 5xx responses) are
// retried by [Backoff]. Rate limiting is a terminal outcome: the upstream has
// told us to stop, so the run reports it instead of hammering the API.
//
//	err := httputil.Do(ctx, httputil.Backoff(3, 500*time.Millisecond), func(ctx context.Context) error {
//	    release, err = provider.LatestRelease(ctx, src)
//	    return err
//	})
//
// # Configuration
//
// Default settings:
//
//   - Attempts: 3
//   - Base backoff: 500ms, doubling after each failure
//   - Limits: at most [MaxAttempts] tries, no wait longer than [MaxWait]
package httputil
