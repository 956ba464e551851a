// Package github provides an HTTP client for the GitHub releases API.
//
// # Overview
//
// This package asks GitHub (https://api.github.com, or a GitHub Enterprise
// base URL) for the latest release of a repository:
//
//	GET /repos/{owner}/{repo}/releases/latest
//
// # Usage
//
//	client := github.NewClient(os.Getenv("GITHUB_TOKEN"), 10*time.Second)
//
//	rel, err := client.LatestRelease(ctx, integrations.Source{Repo: "cli/cli"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Tag:", rel.Tag)
//
// # Authentication
//
// The token is attached as a Bearer token only when the source is private or
// has Authenticate set. Unauthenticated clients are limited to 60
// requests/hour; GitHub reports an exhausted quota as 403 or 429, which both
// surface as [errors.RateLimitedError].
//
// [errors.RateLimitedError]: github.com/matzehuels/versionsync/pkg/errors.RateLimitedError
package github
