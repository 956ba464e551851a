package github

import (
	"context"
	"fmt"
	"time"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	"github.com/matzehuels/versionsync/pkg/integrations"
)

const defaultBaseURL = "https://api.github.com"

// Client provides access to the GitHub releases API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	token   string
}

// NewClient creates a GitHub API client. The token is only sent for sources
// that are private or explicitly authenticated; pass an empty string when no
// token is configured.
func NewClient(token string, timeout time.Duration) *Client {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	return &Client{
		Client:  integrations.NewClient("GitHub API", headers, timeout),
		baseURL: defaultBaseURL,
		token:   token,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return "github" }

// LatestRelease returns the release GitHub marks as latest for src.Repo.
// GitHub decides what "latest" means (most recent non-draft, non-prerelease
// by publish date); no version sorting happens here.
func (c *Client) LatestRelease(ctx context.Context, src integrations.Source) (integrations.Release, error) {
	if err := errs.ValidateRepoPath(src.Repo); err != nil {
		return integrations.Release{}, err
	}

	var headers map[string]string
	if src.Private || src.Authenticate {
		if c.token == "" {
			return integrations.Release{}, errs.New(errs.ErrCodeConfiguration, "GitHub token required for %s", src.Repo)
		}
		headers = map[string]string{"Authorization": "Bearer " + c.token}
	}

	url := fmt.Sprintf("%s/repos/%s/releases/latest", integrations.BaseURL(src.Host, c.baseURL), src.Repo)

	var data releaseResponse
	if err := c.GetWithHeaders(ctx, url, headers, &data); err != nil {
		if errs.Is(err, errs.ErrCodeNotFound) {
			return integrations.Release{}, errs.Wrap(errs.ErrCodeNotFound, err, "no release for github repo %s", src.Repo)
		}
		return integrations.Release{}, err
	}
	if data.TagName == "" {
		return integrations.Release{}, errs.New(errs.ErrCodeMalformed, "GitHub API: release of %s has no tag_name", src.Repo)
	}
	return integrations.Release{Tag: data.TagName, Ref: data.TargetCommitish}, nil
}

type releaseResponse struct {
	TagName         string    `json:"tag_name"`
	TargetCommitish string    `json:"target_commitish"`
	Name            string    `json:"name"`
	PublishedAt     time.Time `json:"published_at"`
}
