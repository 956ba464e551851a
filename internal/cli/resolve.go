package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/versionsync/pkg/httputil"
	pkgio "github.com/matzehuels/versionsync/pkg/io"
	"github.com/matzehuels/versionsync/pkg/observability"
	"github.com/matzehuels/versionsync/pkg/pipeline"
	"github.com/matzehuels/versionsync/pkg/publish"
)

type resolveOptions struct {
	config      string
	format      pkgio.Format
	output      string
	publish     string
	concurrency int
	deadline    time.Duration
	progress    bool
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the latest image tag of every configured service",
		Long: `Resolve finds the latest release of every configured service, renders its
image tag and checks the tag exists in the registry.

The result maps each service to {image, tag}, "<NOT_FOUND>", "<RATE_LIMITED>"
or {error}. One failing service never affects the others; configuration
errors abort before any network call.`,
		Example: `  # Print results as JSON
  versionsync resolve -c versionsync.yaml

  # Write YAML to a file and publish the report to Redis
  versionsync resolve -o versions.yaml --publish redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := flagEnv(cmd)
			if err != nil {
				return err
			}
			opts := resolveOptions{
				config:      env.GetString("config"),
				output:      env.GetString("output"),
				publish:     env.GetString("publish"),
				concurrency: env.GetInt("concurrency"),
				deadline:    env.GetDuration("deadline"),
				progress:    env.GetBool("progress"),
			}
			if env.IsSet("format") || opts.output == "-" {
				if opts.format, err = pkgio.ParseFormat(env.GetString("format")); err != nil {
					return err
				}
			} else {
				opts.format = pkgio.FormatFromPath(opts.output)
			}
			return c.runResolve(cmd.Context(), opts)
		},
	}

	addConfigFlag(cmd)
	cmd.Flags().StringP("format", "f", "json", "output format: json or yaml (default: from the output file extension)")
	cmd.Flags().StringP("output", "o", "-", "output file, - for stdout")
	cmd.Flags().String("publish", "", "publish the run report to a file path, redis:// or mongodb:// URL")
	cmd.Flags().Bool("progress", false, "show a live progress view")
	addRunFlags(cmd)

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, opts resolveOptions) error {
	logger := loggerFromContext(ctx)

	s, err := loadSetup(ctx, opts.config)
	if err != nil {
		return err
	}
	pub, err := publish.Open(ctx, opts.publish)
	if err != nil {
		return err
	}
	defer pub.Close()

	prog := newProgress(logger)
	var results *pipeline.ResultMap
	if opts.progress {
		// The live view owns the terminal; only errors are logged.
		quiet := newLogger(os.Stderr, log.ErrorLevel)
		results, err = runWithProgress(ctx, c.runner(s, quiet, opts.concurrency, opts.deadline), s.specs)
	} else {
		results, err = c.runner(s, logger, opts.concurrency, opts.deadline).Run(ctx, s.specs)
	}
	if err != nil {
		return err
	}

	if err := c.writeResults(results, opts.output, opts.format); err != nil {
		return err
	}
	printSummary(results)

	if !results.Complete() {
		printWarning("interrupted: %d of %d services resolved", results.Len(), len(s.specs))
		return context.Canceled
	}
	prog.done(fmt.Sprintf("Resolved %d services", results.Len()))

	report := publish.NewReport(results)
	return httputil.RetryWithBackoff(ctx, func(ctx context.Context) error {
		return pub.Publish(ctx, report)
	})
}

// writeResults writes results to stdout when output is "-" or empty, and
// to a file otherwise.
func (c *CLI) writeResults(results *pipeline.ResultMap, output string, format pkgio.Format) error {
	if output == "" || output == "-" {
		return pkgio.Write(results, c.Stdout, format)
	}
	if err := pkgio.ExportFile(results, output, format); err != nil {
		return err
	}
	printFile(output)
	return nil
}

// runWithProgress runs the pipeline while a bubbletea program renders its
// progress. Quitting the view cancels the run.
func runWithProgress(ctx context.Context, runner *pipeline.Runner, specs []pipeline.ServiceSpec) (*pipeline.ResultMap, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	p := tea.NewProgram(newProgressModel(names, cancel), tea.WithOutput(os.Stderr))

	observability.SetPipelineHooks(progressHooks{send: p.Send})
	defer observability.SetPipelineHooks(observability.NoopPipelineHooks{})

	var (
		results *pipeline.ResultMap
		runErr  error
		done    = make(chan struct{})
	)
	go func() {
		defer close(done)
		results, runErr = runner.Run(ctx, specs)
		p.Send(runDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}
	<-done
	return results, runErr
}
