package codeberg

import (
	"context"
	"fmt"
	"time"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	"github.com/matzehuels/versionsync/pkg/integrations"
)

const defaultBaseURL = "https://codeberg.org"

// Client provides access to the releases API of Codeberg and other
// Gitea/Forgejo instances.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	token   string
}

// NewClient creates a Codeberg API client. The token is only sent for
// private sources.
func NewClient(token string, timeout time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient("Codeberg API", map[string]string{"Accept": "application/json"}, timeout),
		baseURL: defaultBaseURL,
		token:   token,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return "codeberg" }

// LatestRelease returns the latest non-draft, non-prerelease release of src.Repo.
func (c *Client) LatestRelease(ctx context.Context, src integrations.Source) (integrations.Release, error) {
	if err := errs.ValidateRepoPath(src.Repo); err != nil {
		return integrations.Release{}, err
	}

	var headers map[string]string
	if src.Private || src.Authenticate {
		if c.token == "" {
			return integrations.Release{}, errs.New(errs.ErrCodeConfiguration, "Codeberg token required for %s", src.Repo)
		}
		headers = map[string]string{"Authorization": "token " + c.token}
	}

	url := fmt.Sprintf("%s/api/v1/repos/%s/releases/latest", integrations.BaseURL(src.Host, c.baseURL), src.Repo)

	var data releaseResponse
	if err := c.GetWithHeaders(ctx, url, headers, &data); err != nil {
		if errs.Is(err, errs.ErrCodeNotFound) {
			return integrations.Release{}, errs.Wrap(errs.ErrCodeNotFound, err, "no release for codeberg repo %s", src.Repo)
		}
		return integrations.Release{}, err
	}
	if data.TagName == "" {
		return integrations.Release{}, errs.New(errs.ErrCodeMalformed, "Codeberg API: release of %s has no tag_name", src.Repo)
	}
	return integrations.Release{Tag: data.TagName, Ref: data.TargetCommitish}, nil
}

type releaseResponse struct {
	TagName         string `json:"tag_name"`
	TargetCommitish string `json:"target_commitish"`
}
