// Package gitlab provides an HTTP client for the GitLab releases API.
//
// The latest release is read from the permalink endpoint:
//
//	GET /api/v4/projects/{id}/releases/permalink/latest
//
// where id is a numeric project id or a URL-encoded "group/project" path.
// Self-hosted instances are addressed through [integrations.Source.Host].
//
// A personal access token, when configured, is sent as PRIVATE-TOKEN.
//
// [integrations.Source.Host]: github.com/matzehuels/versionsync/pkg/integrations.Source
package gitlab
