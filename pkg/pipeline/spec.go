package pipeline

import (
	"strings"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	"github.com/matzehuels/versionsync/pkg/integrations/registry"
	"github.com/matzehuels/versionsync/pkg/version"
)

// Validate checks a ServiceSpec for configuration errors. Every returned
// error carries [errs.ErrCodeConfiguration].
func (s ServiceSpec) Validate() error {
	if err := errs.ValidateServiceName(s.Name); err != nil {
		return err
	}
	fail := func(format string, args ...any) error {
		return errs.New(errs.ErrCodeConfiguration, "service %q: "+format, append([]any{s.Name}, args...)...)
	}

	g := s.Git
	if !ValidProviders[g.Provider] {
		return fail("unknown git provider %q (must be one of: github, gitlab, codeberg, none)", g.Provider)
	}
	switch g.Provider {
	case ProviderGitHub, ProviderCodeberg:
		if err := errs.ValidateRepoPath(g.Repo); err != nil {
			return fail("%s", errs.UserMessage(err))
		}
	case ProviderGitLab:
		if g.ProjectID == "" && g.Repo == "" {
			return fail("gitlab source needs project_id or repo")
		}
	}
	if g.Host != "" {
		if err := errs.ValidateURL(g.Host); err != nil {
			return fail("host: %s", errs.UserMessage(err))
		}
	}
	if g.Filter != nil && g.Filter.NumSubexp() != 1 {
		return fail("version filter %q must have exactly one capture group", g.Filter.String())
	}

	if strings.TrimSpace(s.Image.Name) == "" {
		return fail("image name is required")
	}
	if _, err := registry.ParseImage(s.Image.Name); err != nil {
		return fail("%s", errs.UserMessage(err))
	}
	if s.Image.Tag == "" {
		return fail("image tag is required")
	}
	hasPlaceholder := version.HasPlaceholder(s.Image.Tag)
	if g.Provider == ProviderNone && hasPlaceholder {
		return fail("tag %q uses %s but git type is none", s.Image.Tag, version.Placeholder)
	}
	if g.Provider != ProviderNone && !hasPlaceholder {
		return fail("tag %q must contain %s", s.Image.Tag, version.Placeholder)
	}
	return nil
}

// ValidateSpecs validates every spec and rejects duplicate names.
func ValidateSpecs(specs []ServiceSpec) error {
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.Name] {
			return errs.New(errs.ErrCodeConfiguration, "service %q is defined more than once", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
