package pipeline

import (
	"context"
	"time"

	"oras.land/oras-go/v2/registry/remote/auth"

	"github.com/matzehuels/versionsync/pkg/credentials"
	"github.com/matzehuels/versionsync/pkg/integrations"
	"github.com/matzehuels/versionsync/pkg/integrations/codeberg"
	"github.com/matzehuels/versionsync/pkg/integrations/github"
	"github.com/matzehuels/versionsync/pkg/integrations/gitlab"
)

// Provider fetches the latest release of a repository from a Git host.
type Provider interface {
	Name() string
	LatestRelease(ctx context.Context, src integrations.Source) (integrations.Release, error)
}

// Registry checks whether an image tag exists.
type Registry interface {
	TagExists(ctx context.Context, image, tag string, cred auth.Credential) (bool, error)
}

// Credentials supplies registry logins and the secrets to scrub from
// error messages. [*credentials.Set] implements it.
type Credentials interface {
	Registry(ctx context.Context, host string) (auth.Credential, error)
	Secrets() []string
}

// NewProviders creates a client for every supported Git provider, using the
// tokens held by creds.
func NewProviders(creds *credentials.Set, timeout time.Duration) map[ProviderKind]Provider {
	token := func(kind ProviderKind) string {
		t, _ := creds.Token(string(kind))
		return t
	}
	return map[ProviderKind]Provider{
		ProviderGitHub:   github.NewClient(token(ProviderGitHub), timeout),
		ProviderGitLab:   gitlab.NewClient(token(ProviderGitLab), timeout),
		ProviderCodeberg: codeberg.NewClient(token(ProviderCodeberg), timeout),
	}
}

// Requirements lists the provider tokens specs need. A token is mandatory
// for private repositories and for authenticated GitHub access.
func Requirements(specs []ServiceSpec) []credentials.Requirement {
	var reqs []credentials.Requirement
	for _, s := range specs {
		if s.Git.Provider == ProviderNone {
			continue
		}
		reqs = append(reqs, credentials.Requirement{
			Service:  s.Name,
			Provider: string(s.Git.Provider),
			Required: s.Git.Private || (s.Git.Provider == ProviderGitHub && s.Git.Authenticate),
		})
	}
	return reqs
}
