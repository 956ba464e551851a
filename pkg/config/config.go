// Package config loads the versionsync configuration file.
//
// The file lists global settings and the services to resolve. YAML and TOML
// are supported; the format is chosen by file extension. Service order in
// the file is preserved and becomes the order of the results.
//
//	global:
//	  git:
//	    github:
//	      authenticate: true
//	  concurrency: 4
//	  timeout: 10s
//	services:
//	  api:
//	    git: { type: github, repo: org/api, version_filter: "v(.*)" }
//	    image: { name: ghcr.io/org/api, tag: "${RELEASE_VERSION}" }
//
// Every problem found while loading or validating is an error with code
// CONFIGURATION; the run aborts before any network call.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	"github.com/matzehuels/versionsync/pkg/httputil"
	"github.com/matzehuels/versionsync/pkg/pipeline"
	"github.com/matzehuels/versionsync/pkg/version"
)

// Format is a configuration file format.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Config is the parsed configuration file.
type Config struct {
	Global   Global
	Services []Service // in file order
}

// Global holds settings shared by all services.
type Global struct {
	Git          GlobalGit `yaml:"git" toml:"git"`
	Concurrency  int       `yaml:"concurrency" toml:"concurrency"`
	Timeout      Duration  `yaml:"timeout" toml:"timeout"`
	Deadline     Duration  `yaml:"deadline" toml:"deadline"`
	Retry        Retry     `yaml:"retry" toml:"retry"`
	DockerConfig string    `yaml:"docker_config" toml:"docker_config"`
}

// GlobalGit holds provider-wide settings.
type GlobalGit struct {
	GitHub struct {
		// Authenticate sends GITHUB_TOKEN for every GitHub service, public or
		// not, to get the higher authenticated rate limit.
		Authenticate bool `yaml:"authenticate" toml:"authenticate"`
	} `yaml:"github" toml:"github"`
}

// Retry configures retries of transient failures.
type Retry struct {
	Attempts int      `yaml:"attempts" toml:"attempts"`
	Delay    Duration `yaml:"delay" toml:"delay"`
}

// Service is one entry of the services table.
type Service struct {
	Name  string      `yaml:"-" toml:"-"`
	Git   GitConfig   `yaml:"git" toml:"git"`
	Image ImageConfig `yaml:"image" toml:"image"`
}

// GitConfig describes where a service's releases come from.
type GitConfig struct {
	Type          string    `yaml:"type" toml:"type"`
	Repo          string    `yaml:"repo" toml:"repo"`
	ProjectID     ProjectID `yaml:"project_id" toml:"project_id"`
	Host          string    `yaml:"host" toml:"host"`
	VersionFilter string    `yaml:"version_filter" toml:"version_filter"`
	Constraint    string    `yaml:"constraint" toml:"constraint"`
	Private       bool      `yaml:"private" toml:"private"`
}

// ImageConfig names the image and its tag template.
type ImageConfig struct {
	Name string `yaml:"name" toml:"name"`
	Tag  string `yaml:"tag" toml:"tag"`
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "read config")
	}
	return Parse(data, format)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errs.New(errs.ErrCodeConfiguration, "unsupported config file %q (want .yaml, .yml or .toml)", path)
	}
}

// Parse decodes a configuration document.
func Parse(data []byte, format Format) (*Config, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatTOML:
		return parseTOML(data)
	default:
		return nil, errs.New(errs.ErrCodeConfiguration, "unsupported config format %q", format)
	}
}

// Specs converts the configuration into validated service specs.
func (c *Config) Specs() ([]pipeline.ServiceSpec, error) {
	if len(c.Services) == 0 {
		return nil, errs.New(errs.ErrCodeConfiguration, "no services configured")
	}
	if err := c.Global.Retry.validate(); err != nil {
		return nil, err
	}
	specs := make([]pipeline.ServiceSpec, 0, len(c.Services))
	for _, svc := range c.Services {
		spec, err := svc.spec(c.Global.Git.GitHub.Authenticate)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if err := pipeline.ValidateSpecs(specs); err != nil {
		return nil, err
	}
	return specs, nil
}

func (s Service) spec(githubAuth bool) (pipeline.ServiceSpec, error) {
	kind := pipeline.ProviderKind(strings.ToLower(strings.TrimSpace(s.Git.Type)))
	if kind == "" {
		return pipeline.ServiceSpec{}, errs.New(errs.ErrCodeConfiguration, "service %q: git.type is required", s.Name)
	}

	filter, err := version.Compile(s.Git.VersionFilter)
	if err != nil {
		return pipeline.ServiceSpec{}, errs.Wrap(errs.ErrCodeConfiguration, err, "service %q", s.Name)
	}
	constraint, err := version.ParseConstraint(s.Git.Constraint)
	if err != nil {
		return pipeline.ServiceSpec{}, errs.Wrap(errs.ErrCodeConfiguration, err, "service %q", s.Name)
	}

	return pipeline.ServiceSpec{
		Name: s.Name,
		Git: pipeline.GitSource{
			Provider:     kind,
			Repo:         s.Git.Repo,
			ProjectID:    string(s.Git.ProjectID),
			Host:         s.Git.Host,
			Filter:       filter,
			Constraint:   constraint,
			Private:      s.Git.Private,
			Authenticate: kind == pipeline.ProviderGitHub && githubAuth,
		},
		Image: pipeline.ImageSpec{Name: s.Image.Name, Tag: s.Image.Tag},
	}, nil
}

func (r Retry) validate() error {
	if r.Attempts < 0 || r.Attempts > httputil.MaxAttempts {
		return errs.New(errs.ErrCodeConfiguration, "retry.attempts must be between 1 and %d, got %d", httputil.MaxAttempts, r.Attempts)
	}
	if r.Delay < 0 {
		return errs.New(errs.ErrCodeConfiguration, "retry.delay must not be negative")
	}
	return nil
}

// RunnerOptions converts the global settings into runner options. Zero
// values fall back to the pipeline defaults.
func (g Global) RunnerOptions() pipeline.Options {
	opts := pipeline.Options{
		Concurrency: g.Concurrency,
		Deadline:    time.Duration(g.Deadline),
	}
	if g.Retry.Attempts > 0 || g.Retry.Delay > 0 {
		attempts, delay := g.Retry.Attempts, time.Duration(g.Retry.Delay)
		if attempts <= 0 {
			attempts = httputil.DefaultAttempts
		}
		if delay <= 0 {
			delay = httputil.DefaultDelay
		}
		opts.Retry = httputil.Backoff(attempts, delay)
	}
	return opts.WithDefaults()
}

// HTTPTimeout returns the per-request timeout.
func (g Global) HTTPTimeout() time.Duration {
	if g.Timeout <= 0 {
		return pipeline.DefaultTimeout
	}
	return time.Duration(g.Timeout)
}

// Duration is a time.Duration written as a Go duration string ("10s") or
// as a number of seconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errs.Wrap(errs.ErrCodeConfiguration, err, "invalid duration %q", s)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ProjectID is a GitLab project id, written as a number or a
// "group/project" path.
type ProjectID string

// UnmarshalTOML accepts integer and string ids.
func (p *ProjectID) UnmarshalTOML(v any) error {
	switch id := v.(type) {
	case int64:
		*p = ProjectID(strconv.FormatInt(id, 10))
	case string:
		*p = ProjectID(id)
	default:
		return errs.New(errs.ErrCodeConfiguration, "project_id must be a number or a path, got %T", v)
	}
	return nil
}
