package integrations

import (
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every request made through a [Client].
const DefaultTimeout = 10 * time.Second

// Release is the latest release reported by a Git hosting provider.
type Release struct {
	Tag string // Release tag name, e.g. "v1.2.3"
	Ref string // Commit SHA or ref the tag points at, when the provider reports it
}

// NewHTTPClient creates an HTTP client with the given timeout, or
// [DefaultTimeout] when timeout is zero. Requests are reported to the
// registered [observability.HTTPHooks].
//
// [observability.HTTPHooks]: github.com/matzehuels/versionsync/pkg/observability.HTTPHooks
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &hookTransport{base: http.DefaultTransport},
	}
}

// BaseURL returns host as an API base URL without a trailing slash, or def
// when host is empty. A host without a scheme is assumed to be HTTPS.
func BaseURL(host, def string) string {
	if host == "" {
		return def
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return strings.TrimRight(host, "/")
}

// Source identifies the repository whose latest release is requested.
type Source struct {
	Repo         string // "owner/repo" (GitHub, Codeberg) or project path (GitLab)
	ProjectID    string // GitLab numeric id or "group/project"; takes precedence over Repo
	Host         string // API base URL override for self-hosted instances
	Private      bool   // Repository requires authentication
	Authenticate bool   // Send credentials even for public repositories
}
