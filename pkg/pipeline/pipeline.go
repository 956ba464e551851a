// Package pipeline resolves the deployable image tag of every configured
// service.
//
// For each service the pipeline asks a Git hosting provider for its latest
// release, extracts a version from the release tag, renders the image tag
// template and confirms the tag exists in a container registry:
//
//	Init → GitResolving → VersionExtracting → RegistryValidating → Done
//
// Any failure short-circuits to Done with a classified [ServiceResult].
// A [Runner] fans the per-service pipelines out with bounded concurrency and
// assembles a [ResultMap] in input order.
//
// # Usage
//
//	svc := pipeline.NewServicePipeline(pipeline.NewProviders(creds, timeout), registry.NewClient(timeout), creds)
//	runner := pipeline.NewRunner(svc, pipeline.Options{Concurrency: 4, Logger: logger})
//	results, err := runner.Run(ctx, specs)
//	if err != nil {
//	    // configuration error: nothing was resolved
//	}
//	for _, e := range results.Entries() {
//	    fmt.Println(e.Name, e.Result)
//	}
//
// # Failure Isolation
//
// Services never affect each other: a rate-limited, missing or failing
// service gets its own result while the rest of the run proceeds.
// Configuration problems are the exception; they are detected before any
// network call and abort the whole run.
package pipeline

import (
	"io"
	"regexp"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/versionsync/pkg/httputil"
	"github.com/matzehuels/versionsync/pkg/version"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultConcurrency is the number of services resolved in parallel.
	DefaultConcurrency = 4

	// DefaultTimeout bounds every HTTP request.
	DefaultTimeout = 10 * time.Second
)

// =============================================================================
// Service Specification
// =============================================================================

// ProviderKind names a Git hosting provider.
type ProviderKind string

// Supported providers. ProviderNone pins a static tag with no Git lookup.
const (
	ProviderGitHub   ProviderKind = "github"
	ProviderGitLab   ProviderKind = "gitlab"
	ProviderCodeberg ProviderKind = "codeberg"
	ProviderNone     ProviderKind = "none"
)

// ValidProviders is the set of supported provider kinds.
var ValidProviders = map[ProviderKind]bool{
	ProviderGitHub:   true,
	ProviderGitLab:   true,
	ProviderCodeberg: true,
	ProviderNone:     true,
}

// GitSource describes where a service's releases are published.
type GitSource struct {
	Provider  ProviderKind
	Repo      string // owner/repo
	ProjectID string // GitLab numeric id or group/project path
	Host      string // API base URL override for self-hosted instances

	// Filter extracts the version from the release tag. It must have exactly
	// one capture group; nil uses the tag verbatim.
	Filter *regexp.Regexp

	// Constraint optionally restricts the extracted version to a semver range.
	Constraint *version.Constraint

	Private      bool // repository requires a token
	Authenticate bool // send the token even though the repository is public
}

// ImageSpec names the container image and its tag template.
type ImageSpec struct {
	Name string // e.g. "ghcr.io/org/api" or "nginx"
	Tag  string // template containing ${RELEASE_VERSION}, or a static tag
}

// ServiceSpec is the configuration of one logical service.
type ServiceSpec struct {
	Name  string
	Git   GitSource
	Image ImageSpec
}

// =============================================================================
// Stages
// =============================================================================

// Stage is a step of the per-service state machine.
type Stage string

// Pipeline stages in execution order.
const (
	StageInit               Stage = "init"
	StageGitResolving       Stage = "git"
	StageVersionExtracting  Stage = "extract"
	StageRegistryValidating Stage = "registry"
	StageDone               Stage = "done"
)

// =============================================================================
// Options
// =============================================================================

// Options configures a [Runner].
type Options struct {
	// Concurrency caps the number of services resolved at once.
	Concurrency int

	// Deadline bounds the whole run. Services still unresolved when it
	// expires are reported as errors. Zero means no deadline.
	Deadline time.Duration

	// Retry decides whether transient Git and registry failures are retried.
	Retry httputil.Policy

	Logger *log.Logger
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Retry == nil {
		o.Retry = httputil.Backoff(httputil.DefaultAttempts, httputil.DefaultDelay)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}
