// Package codeberg provides an HTTP client for the Gitea/Forgejo releases
// API, defaulting to https://codeberg.org.
//
//	GET /api/v1/repos/{owner}/{repo}/releases/latest
//
// Tokens are sent as "Authorization: token <value>" for private sources only.
package codeberg
