package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	errs "github.com/matzehuels/versionsync/pkg/errors"
)

// maxErrorBody bounds how much of an error response is read when looking for
// rate-limit hints.
const maxErrorBody = 4 << 10

// Client provides shared HTTP functionality for all upstream API clients.
// It applies default headers, a request timeout and the status classification
// every provider and the registry client rely on.
//
// Client does not retry; retries are decided by the pipeline.
type Client struct {
	http     *http.Client
	headers  map[string]string
	upstream string
}

// NewClient creates a Client for the named upstream (used in error messages,
// e.g. "GitHub API") with the given default headers.
// Pass nil for headers if no default headers are needed. A timeout of zero
// selects [DefaultTimeout].
func NewClient(upstream string, headers map[string]string, timeout time.Duration) *Client {
	return &Client{
		http:     NewHTTPClient(timeout),
		headers:  headers,
		upstream: upstream,
	}
}

// Upstream returns the name used for this client in error messages.
func (c *Client) Upstream() string { return c.upstream }

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, endpoint string, v any) error {
	return c.GetWithHeaders(ctx, endpoint, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
// A body that does not decode into v is reported as [errs.ErrCodeMalformed].
func (c *Client) GetWithHeaders(ctx context.Context, endpoint string, headers map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "build request")
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := CheckStatus(resp, c.upstream); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeMalformed, err, "%s: decode response", c.upstream)
	}
	return nil
}

// Do sends req with the client's default headers applied (request headers
// win). The response status is not checked; callers use [CheckStatus] or
// inspect it themselves. Transport failures go through [TransportError].
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	for k, v := range c.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, TransportError(req.Context(), c.upstream, req, err)
	}
	return resp, nil
}

// TransportError classifies a failed round trip. If ctx has ended its error
// is returned unclassified, so cancellation is never mistaken for a
// retryable failure; everything else is [errs.ErrCodeTransient].
func TransportError(ctx context.Context, upstream string, req *http.Request, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return errs.Wrap(errs.ErrCodeTransient, unwrapURLError(err), "%s: %s %s", upstream, req.Method, req.URL.Host)
}

// CheckStatus classifies an HTTP response status:
//
//   - 2xx: nil
//   - 404: [errs.ErrCodeNotFound]
//   - 429: [*errs.RateLimitedError]
//   - 403 with an exhausted quota or a rate-limit message: [*errs.RateLimitedError]
//   - 403 otherwise: [errs.ErrCodeForbidden]
//   - 401: [errs.ErrCodeUnauthorized]
//   - 5xx: [errs.ErrCodeTransient]
//   - anything else: [errs.ErrCodeMalformed]
//
// The body is consumed only for 403 responses.
func CheckStatus(resp *http.Response, upstream string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errs.New(errs.ErrCodeNotFound, "%s: not found", upstream)
	case code == http.StatusTooManyRequests:
		return &errs.RateLimitedError{Message: upstream, RetryAfter: RetryAfter(resp.Header, time.Now())}
	case code == http.StatusForbidden:
		if isRateLimited(resp) {
			return &errs.RateLimitedError{Message: upstream, RetryAfter: RetryAfter(resp.Header, time.Now())}
		}
		return errs.New(errs.ErrCodeForbidden, "%s: access denied (status 403)", upstream)
	case code == http.StatusUnauthorized:
		return errs.New(errs.ErrCodeUnauthorized, "%s: credentials rejected (status 401)", upstream)
	case code >= 500:
		return errs.New(errs.ErrCodeTransient, "%s: status %d", upstream, code)
	default:
		return errs.New(errs.ErrCodeMalformed, "%s: unexpected status %d", upstream, code)
	}
}

func isRateLimited(resp *http.Response) bool {
	if resp.Header.Get("X-RateLimit-Remaining") == "0" {
		return true
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return strings.Contains(strings.ToLower(string(body)), "rate limit")
}

// RetryAfter extracts a wait hint from response headers. It understands
// Retry-After in both delay-seconds and HTTP-date form, then falls back to
// the epoch-seconds reset headers used by GitHub (X-RateLimit-Reset) and
// GitLab (RateLimit-Reset). Returns 0 if no usable hint is present.
func RetryAfter(h http.Header, now time.Time) time.Duration {
	if v := strings.TrimSpace(h.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		if t, err := http.ParseTime(v); err == nil && t.After(now) {
			return t.Sub(now).Round(time.Second)
		}
	}
	for _, key := range []string{"X-RateLimit-Reset", "RateLimit-Reset"} {
		v := strings.TrimSpace(h.Get(key))
		if v == "" {
			continue
		}
		epoch, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		if reset := time.Unix(epoch, 0); reset.After(now) {
			return reset.Sub(now).Round(time.Second)
		}
	}
	return 0
}

// unwrapURLError strips the *url.Error wrapper, whose message repeats the
// full request URL.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}
