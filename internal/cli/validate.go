package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	pkgio "github.com/matzehuels/versionsync/pkg/io"
	"github.com/matzehuels/versionsync/pkg/pipeline"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and credentials without calling any API",
		Long: `Validate loads the configuration and resolves credentials without making
any network call.

With --against, a previously written result file is also read back and must
hold an entry for every configured service.`,
		Example: `  versionsync validate -c versionsync.yaml
  versionsync validate -c versionsync.yaml --against versions.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := flagEnv(cmd)
			if err != nil {
				return err
			}
			s, err := loadSetup(cmd.Context(), env.GetString("config"))
			if err != nil {
				return err
			}
			for _, spec := range s.specs {
				printSuccess("%s %s", StyleValue.Render(spec.Name), StyleDim.Render(describeSpec(spec)))
			}
			printSuccess("%d services configured", len(s.specs))

			if path := env.GetString("against"); path != "" {
				return checkResults(path, s.specs)
			}
			return nil
		},
	}
	addConfigFlag(cmd)
	cmd.Flags().String("against", "", "result file (json or yaml) that must cover every configured service")
	return cmd
}

// checkResults reads a result file and fails unless it has an entry for
// every spec. Entries for services no longer configured only warn.
func checkResults(path string, specs []pipeline.ServiceSpec) error {
	results, err := pkgio.ImportFile(path, "")
	if err != nil {
		return err
	}

	configured := make(map[string]bool, len(specs))
	var missing []string
	for _, spec := range specs {
		configured[spec.Name] = true
		if _, ok := results.Get(spec.Name); !ok {
			missing = append(missing, spec.Name)
		}
	}
	for _, e := range results.Entries() {
		if !configured[e.Name] {
			printWarning("%s has an entry for unconfigured service %s", path, e.Name)
		}
	}
	if len(missing) > 0 {
		return errs.New(errs.ErrCodeNotFound, "%s has no result for: %s", path, strings.Join(missing, ", "))
	}

	printSummary(results)
	printSuccess("%s covers every configured service", path)
	return nil
}

// describeSpec summarizes where a service's tag comes from, e.g.
// "github org/api → ghcr.io/org/api:${RELEASE_VERSION}".
func describeSpec(s pipeline.ServiceSpec) string {
	var src string
	switch s.Git.Provider {
	case pipeline.ProviderNone:
		src = "static"
	case pipeline.ProviderGitLab:
		src = "gitlab " + firstNonEmpty(s.Git.ProjectID, s.Git.Repo)
	default:
		src = fmt.Sprintf("%s %s", s.Git.Provider, s.Git.Repo)
	}
	var flags []string
	if s.Git.Private {
		flags = append(flags, "private")
	}
	if s.Git.Filter != nil {
		flags = append(flags, "filter "+s.Git.Filter.String())
	}
	if c := s.Git.Constraint.String(); c != "" {
		flags = append(flags, "constraint "+c)
	}
	if len(flags) > 0 {
		src += " (" + strings.Join(flags, ", ") + ")"
	}
	return fmt.Sprintf("%s %s %s:%s", src, iconArrow, s.Image.Name, s.Image.Tag)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
