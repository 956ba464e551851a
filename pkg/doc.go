// Package pkg provides the libraries behind versionsync.
//
// # Overview
//
// versionsync answers one question for every configured service: which
// container image tag corresponds to the latest release, and has it been
// published? The pkg directory is organized as follows:
//
//  1. [pipeline] - Orchestration (release → version → tag → registry check)
//  2. [integrations] - Git hosting and container registry clients
//  3. [version] - Version extraction, tag templating and constraints
//  4. [config], [credentials] - Configuration file and secret handling
//  5. [io], [publish] - Result serialization and sinks
//
// # Architecture
//
// The data flow for one service:
//
//	Git provider (GitHub, GitLab, Codeberg)
//	         ↓
//	    latest release tag, e.g. "v1.4.2"
//	         ↓
//	    [version] (filter "v(.*)" → "1.4.2", template "${RELEASE_VERSION}-alpine")
//	         ↓
//	    [integrations/registry] (HEAD /v2/<repo>/manifests/1.4.2-alpine)
//	         ↓
//	    {image, tag} | "<NOT_FOUND>" | "<RATE_LIMITED>" | {error}
//
// The [pipeline.Runner] runs this for all services concurrently and
// assembles a [pipeline.ResultMap] in configuration order.
//
// # Quick Start
//
//	cfg, err := config.Load("versionsync.yaml")
//	if err != nil {
//	    return err
//	}
//	specs, err := cfg.Specs()
//	if err != nil {
//	    return err
//	}
//	creds, err := credentials.Resolve(ctx, credentials.Options{}, pipeline.Requirements(specs))
//	if err != nil {
//	    return err
//	}
//
//	timeout := cfg.Global.HTTPTimeout()
//	svc := pipeline.NewServicePipeline(pipeline.NewProviders(creds, timeout), registry.NewClient(timeout), creds)
//	results, err := pipeline.NewRunner(svc, cfg.Global.RunnerOptions()).Run(ctx, specs)
//	if err != nil {
//	    return err
//	}
//	return io.Write(results, os.Stdout, io.FormatJSON)
//
// # Support Packages
//
//   - [errors]: error codes shared by every package, secret redaction
//   - [httputil]: retry policies
//   - [observability]: progress and HTTP hooks
//   - [buildinfo]: version information
//
// [pipeline]: github.com/matzehuels/versionsync/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/versionsync/pkg/pipeline#Runner
// [pipeline.ResultMap]: github.com/matzehuels/versionsync/pkg/pipeline#ResultMap
// [integrations]: github.com/matzehuels/versionsync/pkg/integrations
// [integrations/registry]: github.com/matzehuels/versionsync/pkg/integrations/registry
// [version]: github.com/matzehuels/versionsync/pkg/version
// [config]: github.com/matzehuels/versionsync/pkg/config
// [credentials]: github.com/matzehuels/versionsync/pkg/credentials
// [io]: github.com/matzehuels/versionsync/pkg/io
// [publish]: github.com/matzehuels/versionsync/pkg/publish
// [errors]: github.com/matzehuels/versionsync/pkg/errors
// [httputil]: github.com/matzehuels/versionsync/pkg/httputil
// [observability]: github.com/matzehuels/versionsync/pkg/observability
// [buildinfo]: github.com/matzehuels/versionsync/pkg/buildinfo
package pkg
