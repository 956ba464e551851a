// Package cli implements the versionsync command-line interface.
//
// versionsync reads a configuration file listing services, finds the latest
// Git release of each, derives the image tag it should deploy and checks the
// tag exists in its container registry.
//
// # Commands
//
//   - resolve: run the pipeline and write the result map as JSON or YAML
//   - validate: check the configuration and credentials without network calls
//   - serve: expose the result map over HTTP
//   - completion: generate shell completion scripts
//
// Every flag can also be set through a VERSIONSYNC_* environment variable,
// e.g. VERSIONSYNC_CONCURRENCY=8. Explicit flags take precedence.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every upstream HTTP request. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/versionsync/pkg/buildinfo"
	"github.com/matzehuels/versionsync/pkg/config"
	"github.com/matzehuels/versionsync/pkg/credentials"
	"github.com/matzehuels/versionsync/pkg/integrations/registry"
	"github.com/matzehuels/versionsync/pkg/observability"
	"github.com/matzehuels/versionsync/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "versionsync"

	// envPrefix prefixes the environment variables bound to flags.
	envPrefix = "VERSIONSYNC"

	// defaultConfig is the configuration file read when -c is not given.
	defaultConfig = "versionsync.yaml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Stdout receives results; everything else goes to stderr.
	Stdout io.Writer

	// plainHTTPRegistries probes registries over http. Tests only.
	plainHTTPRegistries bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Stdout: os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "versionsync resolves the deployable image tag of every service",
		Long:         `versionsync finds the latest Git release of each configured service, turns it into a container image tag and confirms the tag has been published.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.Logger.GetLevel() <= log.DebugLevel {
				observability.SetHTTPHooks(httpLogHooks{logger: c.Logger})
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Flags and Environment
// =============================================================================

// flagEnv returns a viper instance resolving the flags of cmd from, in
// order: flags given on the command line, VERSIONSYNC_* environment
// variables, flag defaults.
func flagEnv(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return v, nil
}

// addConfigFlag registers -c/--config.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", defaultConfig, "configuration file (.yaml, .yml or .toml)")
}

// addRunFlags registers the flags overriding the run settings of the
// configuration file.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("concurrency", 0, "services resolved in parallel (default: global.concurrency, else 4)")
	cmd.Flags().Duration("deadline", 0, "bound the whole run; services still pending are reported as errors")
}

// =============================================================================
// Run Setup
// =============================================================================

// setup is everything a run needs, loaded before any network call.
type setup struct {
	cfg   *config.Config
	specs []pipeline.ServiceSpec
	creds *credentials.Set
}

// loadSetup reads the configuration and resolves credentials. Every error
// is a configuration error.
func loadSetup(ctx context.Context, path string) (*setup, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	specs, err := cfg.Specs()
	if err != nil {
		return nil, err
	}
	creds, err := credentials.Resolve(ctx, credentials.Options{
		DockerConfig: cfg.Global.DockerConfig,
	}, pipeline.Requirements(specs))
	if err != nil {
		return nil, err
	}
	return &setup{cfg: cfg, specs: specs, creds: creds}, nil
}

// runner builds a Runner from the configuration, with non-zero flag values
// taking precedence.
func (c *CLI) runner(s *setup, logger *log.Logger, concurrency int, deadline time.Duration) *pipeline.Runner {
	opts := s.cfg.Global.RunnerOptions()
	if concurrency > 0 {
		opts.Concurrency = concurrency
	}
	if deadline > 0 {
		opts.Deadline = deadline
	}
	opts.Logger = logger

	timeout := s.cfg.Global.HTTPTimeout()
	reg := registry.NewClient(timeout)
	reg.PlainHTTP = c.plainHTTPRegistries
	svc := pipeline.NewServicePipeline(pipeline.NewProviders(s.creds, timeout), reg, s.creds)
	return pipeline.NewRunner(svc, opts)
}
