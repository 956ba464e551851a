package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/distribution/reference"
	ociImageSpecV1 "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/errcode"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	"github.com/matzehuels/versionsync/pkg/integrations"
)

const upstream = "registry"

// Docker media types that predate the OCI image spec.
const (
	mediaTypeDockerManifest     = "application/vnd.docker.distribution.manifest.v2+json"
	mediaTypeDockerManifestList = "application/vnd.docker.distribution.manifest.list.v2+json"
)

var manifestAccept = strings.Join([]string{
	ociImageSpecV1.MediaTypeImageIndex,
	ociImageSpecV1.MediaTypeImageManifest,
	mediaTypeDockerManifestList,
	mediaTypeDockerManifest,
}, ", ")

// Client checks whether image tags exist in OCI distribution registries.
//
// The Bearer and Basic challenge flows are handled by an oras [auth.Client];
// tokens are cached for the lifetime of the Client only.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http  *http.Client
	cache auth.Cache

	// PlainHTTP probes registries over http instead of https.
	PlainHTTP bool
}

// NewClient creates a registry client. A timeout of zero selects the
// integrations default.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http:  integrations.NewHTTPClient(timeout),
		cache: auth.NewCache(),
	}
}

// Name returns the client name.
func (c *Client) Name() string { return upstream }

// TagExists reports whether image:tag resolves to a manifest.
//
// A missing repository or tag is (false, nil). cred may be
// [auth.EmptyCredential] for anonymous access. Errors carry the codes of
// [errs]: RATE_LIMITED for 429 (probe or token endpoint), UNAUTHORIZED when
// credentials are rejected after the challenge, TRANSIENT for 5xx and
// network failures, MALFORMED for anything else unexpected.
func (c *Client) TagExists(ctx context.Context, image, tag string, cred auth.Credential) (bool, error) {
	ref, err := ParseImage(image)
	if err != nil {
		return false, err
	}
	if _, err := reference.WithTag(ref.named, tag); err != nil {
		return false, errs.Wrap(errs.ErrCodeNotFound, err, "tag %q is not a valid image tag", tag)
	}

	client := &auth.Client{
		Client:     c.http,
		Cache:      c.cache,
		Credential: auth.StaticCredential(ref.Host, cred),
	}
	ctx = auth.AppendScopes(ctx, auth.ScopeRepository(ref.Path, auth.ActionPull))

	resp, err := c.probe(ctx, client, http.MethodHead, ref, tag)
	if err != nil {
		return false, err
	}
	if resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		if resp, err = c.probe(ctx, client, http.MethodGet, ref, tag); err != nil {
			return false, err
		}
	}
	defer resp.Body.Close()

	return classify(resp, ref)
}

func (c *Client) probe(ctx context.Context, client *auth.Client, method string, ref Reference, tag string) (*http.Response, error) {
	scheme := "https"
	if c.PlainHTTP {
		scheme = "http"
	}
	endpoint := fmt.Sprintf("%s://%s/v2/%s/manifests/%s", scheme, ref.Host, ref.Path, tag)

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Accept", manifestAccept)

	resp, err := client.Do(req)
	if err != nil {
		return nil, authError(ctx, req, ref, err)
	}
	return resp, nil
}

func classify(resp *http.Response, ref Reference) (bool, error) {
	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		return true, nil
	case code == http.StatusNotFound:
		return false, nil
	case code == http.StatusTooManyRequests:
		return false, &errs.RateLimitedError{Message: ref.Host, RetryAfter: integrations.RetryAfter(resp.Header, time.Now())}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return false, errs.New(errs.ErrCodeUnauthorized, "%s: access to %s denied (status %d)", ref.Host, ref.Path, code)
	case code >= 500:
		return false, errs.New(errs.ErrCodeTransient, "%s: status %d", ref.Host, code)
	default:
		return false, errs.New(errs.ErrCodeMalformed, "%s: unexpected status %d", ref.Host, code)
	}
}

// authError classifies failures of the round trip, including the token
// exchange performed by the auth client.
func authError(ctx context.Context, req *http.Request, ref Reference, err error) error {
	var resp *errcode.ErrorResponse
	if errors.As(err, &resp) {
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			// errcode.ErrorResponse keeps no response headers, so the token
			// service's Retry-After cannot be reported.
			return &errs.RateLimitedError{Message: ref.Host + " token service"}
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return errs.New(errs.ErrCodeUnauthorized, "%s: token request for %s denied (status %d)", ref.Host, ref.Path, resp.StatusCode)
		case resp.StatusCode >= 500:
			return errs.New(errs.ErrCodeTransient, "%s: token service status %d", ref.Host, resp.StatusCode)
		default:
			return errs.New(errs.ErrCodeMalformed, "%s: token service status %d", ref.Host, resp.StatusCode)
		}
	}
	if errors.Is(err, auth.ErrBasicCredentialNotFound) {
		return errs.New(errs.ErrCodeUnauthorized, "%s: registry requires credentials", ref.Host)
	}
	return integrations.TransportError(ctx, ref.Host, req, err)
}
