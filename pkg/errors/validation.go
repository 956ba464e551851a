package errors

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// ValidateServiceName validates a configured service name.
// Service names are map keys in the output, so they must be non-empty,
// printable and reasonably short.
func ValidateServiceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeConfiguration, "service name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeConfiguration, "service name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeConfiguration, "service name %q contains control characters", name)
		}
	}

	return nil
}

// repoPathRegex matches owner/repo (and GitLab group/subgroup/project) paths.
var repoPathRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+(/[A-Za-z0-9_.-]+)+$`)

// ValidateRepoPath validates an owner/repo path for use in API URLs.
//
// Validation rules:
//   - Path cannot be empty
//   - At least two segments separated by /
//   - No path traversal sequences (..)
//   - Only letters, digits, dot, dash and underscore inside segments
func ValidateRepoPath(path string) error {
	if path == "" {
		return New(ErrCodeConfiguration, "repository path cannot be empty")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeConfiguration, "repository path cannot contain path traversal sequences (..)")
	}

	if !repoPathRegex.MatchString(path) {
		return New(ErrCodeConfiguration, "invalid repository path %q (want owner/repo)", path)
	}

	return nil
}

// ValidateURL validates a base URL string for safety.
// It ensures the URL has an http or https scheme and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeConfiguration, "URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeConfiguration, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeConfiguration, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeConfiguration, "URL %q has no host", rawURL)
	}

	return nil
}

const redacted = "[REDACTED]"

var (
	authHeaderRegex = regexp.MustCompile(`(?i)\b(bearer|basic|token)\s+[A-Za-z0-9._~+/=-]{8,}`)
	tokenParamRegex = regexp.MustCompile(`(?i)((?:access_)?token|password|private_token)=[^&\s"]+`)
	userinfoRegex   = regexp.MustCompile(`://[^/@\s:]+:[^/@\s]+@`)
)

// Redact removes credential material from msg.
//
// Every non-empty secret is replaced verbatim, longest first so that a
// secret containing another is not partially exposed. Authorization header
// values, token query parameters and URL userinfo are masked even when the
// secret itself is unknown to the caller.
func Redact(msg string, secrets ...string) string {
	sorted := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if s != "" {
			sorted = append(sorted, s)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	for _, s := range sorted {
		msg = strings.ReplaceAll(msg, s, redacted)
	}
	msg = authHeaderRegex.ReplaceAllString(msg, "$1 "+redacted)
	msg = tokenParamRegex.ReplaceAllString(msg, "$1="+redacted)
	msg = userinfoRegex.ReplaceAllString(msg, "://"+redacted+"@")
	return msg
}
