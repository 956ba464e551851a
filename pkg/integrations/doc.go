// Package integrations provides HTTP clients for the upstream APIs queried
// while resolving service versions.
//
// # Overview
//
// Each upstream has its own subpackage:
//
//   - [github]: GitHub releases API
//   - [gitlab]: GitLab releases API
//   - [codeberg]: Codeberg (and any Gitea/Forgejo instance) releases API
//   - [registry]: OCI distribution registries, for tag existence checks
//
// # Client Pattern
//
// Git provider clients follow a consistent pattern:
//
//	client := github.NewClient(token, 10*time.Second)
//	rel, err := client.LatestRelease(ctx, github.Source{Repo: "cli/cli"})
//
// # Shared Infrastructure
//
// The [Client] type provides the HTTP plumbing shared by every subpackage:
// default headers, a per-request timeout, HTTP hooks from [observability],
// and [CheckStatus], which maps responses onto the error codes of
// [errors]. Clients never retry on their own.
//
// # Adding a New Provider
//
//  1. Create a subpackage: pkg/integrations/<provider>/
//  2. Define response structs matching the API schema
//  3. Implement a Client with a LatestRelease method
//  4. Use [NewClient] for HTTP
//  5. Wire it into [pipeline] as a new provider kind
//
// [github]: github.com/matzehuels/versionsync/pkg/integrations/github
// [gitlab]: github.com/matzehuels/versionsync/pkg/integrations/gitlab
// [codeberg]: github.com/matzehuels/versionsync/pkg/integrations/codeberg
// [registry]: github.com/matzehuels/versionsync/pkg/integrations/registry
// [observability]: github.com/matzehuels/versionsync/pkg/observability
// [errors]: github.com/matzehuels/versionsync/pkg/errors
// [pipeline]: github.com/matzehuels/versionsync/pkg/pipeline
package integrations
