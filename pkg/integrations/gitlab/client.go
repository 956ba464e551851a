package gitlab

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	"github.com/matzehuels/versionsync/pkg/integrations"
)

const defaultBaseURL = "https://gitlab.com"

var numericID = regexp.MustCompile(`^[0-9]+$`)

// Client provides access to the GitLab releases API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitLab API client with optional authentication.
//
// Parameters:
//   - token: GitLab personal access token (empty string for unauthenticated)
//   - timeout: per-request timeout (zero selects the integrations default)
//
// When a token is given it is sent as PRIVATE-TOKEN on every request.
func NewClient(token string, timeout time.Duration) *Client {
	var headers map[string]string
	if token != "" {
		headers = map[string]string{"PRIVATE-TOKEN": token}
	}
	return &Client{
		Client:  integrations.NewClient("GitLab API", headers, timeout),
		baseURL: defaultBaseURL,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return "gitlab" }

// LatestRelease returns the release GitLab's "latest" permalink points at.
//
// The project is identified by src.ProjectID, falling back to src.Repo.
// Either a numeric id or a "group/project" path is accepted; paths are
// URL-encoded as the API requires.
func (c *Client) LatestRelease(ctx context.Context, src integrations.Source) (integrations.Release, error) {
	id, err := projectID(src)
	if err != nil {
		return integrations.Release{}, err
	}

	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/releases/permalink/latest",
		integrations.BaseURL(src.Host, c.baseURL), url.PathEscape(id))

	var data releaseResponse
	if err := c.Get(ctx, endpoint, &data); err != nil {
		if errs.Is(err, errs.ErrCodeNotFound) {
			return integrations.Release{}, errs.Wrap(errs.ErrCodeNotFound, err, "no release for gitlab project %s", id)
		}
		return integrations.Release{}, err
	}
	if data.TagName == "" {
		return integrations.Release{}, errs.New(errs.ErrCodeMalformed, "GitLab API: release of %s has no tag_name", id)
	}
	return integrations.Release{Tag: data.TagName, Ref: data.Commit.ID}, nil
}

func projectID(src integrations.Source) (string, error) {
	id := src.ProjectID
	if id == "" {
		id = src.Repo
	}
	if numericID.MatchString(id) {
		return id, nil
	}
	if err := errs.ValidateRepoPath(id); err != nil {
		return "", errs.Wrap(errs.ErrCodeConfiguration, err, "invalid gitlab project id")
	}
	return id, nil
}

type releaseResponse struct {
	TagName    string    `json:"tag_name"`
	Name       string    `json:"name"`
	ReleasedAt time.Time `json:"released_at"`
	Commit     struct {
		ID string `json:"id"`
	} `json:"commit"`
}
