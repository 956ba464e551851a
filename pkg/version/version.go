// Package version derives image tags from provider release names.
//
// A release name such as "v1.2.3" or "api-2024.05.1" is reduced to a version
// string with an optional filter pattern holding exactly one capture group,
// optionally checked against a semantic version constraint, and substituted
// into an image tag template:
//
//	re, _ := version.Compile(`v(.*)`)
//	v, err := version.Extract("v1.2.3", re)   // "1.2.3"
//	tag := version.RenderTag("${RELEASE_VERSION}-alpine", v) // "1.2.3-alpine"
//
// A configured pattern that does not match is an explicit NO_MATCH error.
// The raw tag is never used as a fallback.
package version

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	errs "github.com/matzehuels/versionsync/pkg/errors"
)

// Placeholder is substituted by the extracted version in image tag templates.
const Placeholder = "${RELEASE_VERSION}"

// Compile compiles a version filter pattern.
// An empty filter yields a nil pattern, which makes [Extract] return the raw
// tag unchanged. A pattern that does not compile or that does not have
// exactly one capture group is a configuration error.
func Compile(filter string) (*regexp.Regexp, error) {
	if filter == "" {
		return nil, nil
	}
	re, err := regexp.Compile(filter)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "invalid version filter %q", filter)
	}
	if n := re.NumSubexp(); n != 1 {
		return nil, errs.New(errs.ErrCodeConfiguration, "version filter %q must have exactly one capture group, has %d", filter, n)
	}
	return re, nil
}

// Extract applies pattern to raw and returns the captured version.
//
//   - nil pattern: raw is returned unchanged
//   - pattern without exactly one capture group: NO_MATCH
//   - no match, or an empty capture: NO_MATCH
func Extract(raw string, pattern *regexp.Regexp) (string, error) {
	if pattern == nil {
		return raw, nil
	}
	if pattern.NumSubexp() != 1 {
		return "", errs.New(errs.ErrCodeNoMatch, "version filter %q has no single capture group", pattern.String())
	}
	m := pattern.FindStringSubmatch(raw)
	if m == nil || m[1] == "" {
		return "", errs.New(errs.ErrCodeNoMatch, "no matching version in tag %q for filter %q", raw, pattern.String())
	}
	return m[1], nil
}

// Constraint restricts extracted versions to a semantic version range.
// A nil Constraint accepts every version.
type Constraint struct {
	raw string
	c   *semver.Constraints
}

// ParseConstraint parses a constraint such as ">= 1.2, < 2".
// An empty string yields a nil Constraint.
func ParseConstraint(s string) (*Constraint, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	c, err := semver.NewConstraint(s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "invalid version constraint %q", s)
	}
	return &Constraint{raw: s, c: c}, nil
}

// Check returns a NO_MATCH error unless v is a semantic version satisfying c.
func (c *Constraint) Check(v string) error {
	if c == nil {
		return nil
	}
	sv, err := semver.NewVersion(v)
	if err != nil {
		return errs.Wrap(errs.ErrCodeNoMatch, err, "version %q is not a semantic version", v)
	}
	if !c.c.Check(sv) {
		return errs.New(errs.ErrCodeNoMatch, "version %q does not satisfy %q", v, c.raw)
	}
	return nil
}

// String returns the constraint as configured.
func (c *Constraint) String() string {
	if c == nil {
		return ""
	}
	return c.raw
}

// RenderTag substitutes every occurrence of [Placeholder] in template.
func RenderTag(template, version string) string {
	return strings.ReplaceAll(template, Placeholder, version)
}

// HasPlaceholder reports whether template references the release version.
func HasPlaceholder(template string) bool {
	return strings.Contains(template, Placeholder)
}
