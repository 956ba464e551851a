package pipeline

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"

	"oras.land/oras-go/v2/registry/remote/auth"

	"github.com/matzehuels/versionsync/pkg/credentials"
	"github.com/matzehuels/versionsync/pkg/integrations"
	"github.com/matzehuels/versionsync/pkg/version"
)

// fakeProvider answers LatestRelease from a per-repo function.
type fakeProvider struct {
	calls   atomic.Int32
	release func(ctx context.Context, src integrations.Source) (integrations.Release, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) LatestRelease(ctx context.Context, src integrations.Source) (integrations.Release, error) {
	f.calls.Add(1)
	return f.release(ctx, src)
}

// tagsProvider returns a fixed tag per repo.
func tagsProvider(tags map[string]string) *fakeProvider {
	return &fakeProvider{release: func(_ context.Context, src integrations.Source) (integrations.Release, error) {
		return integrations.Release{Tag: tags[src.Repo]}, nil
	}}
}

// fakeRegistry knows a fixed set of image:tag pairs.
type fakeRegistry struct {
	mu     sync.Mutex
	tags   map[string]bool
	calls  int
	onCall func(ctx context.Context, image, tag string) (bool, error)
}

func (f *fakeRegistry) TagExists(ctx context.Context, image, tag string, _ auth.Credential) (bool, error) {
	f.mu.Lock()
	f.calls++
	onCall := f.onCall
	ok := f.tags[image+":"+tag]
	f.mu.Unlock()
	if onCall != nil {
		return onCall(ctx, image, tag)
	}
	return ok, nil
}

func newTestPipeline(p Provider, reg Registry) *ServicePipeline {
	return NewServicePipeline(
		map[ProviderKind]Provider{ProviderGitHub: p, ProviderGitLab: p, ProviderCodeberg: p},
		reg,
		credentials.Static(map[string]string{"github": "ghp_supersecret"}),
	)
}

func githubSpec(name, repo, image string) ServiceSpec {
	return ServiceSpec{
		Name:  name,
		Git:   GitSource{Provider: ProviderGitHub, Repo: repo, Filter: regexp.MustCompile(`v(.*)`)},
		Image: ImageSpec{Name: image, Tag: version.Placeholder},
	}
}
