package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/versionsync/pkg/pipeline"
)

func TestSummaryTable(t *testing.T) {
	found := pipeline.Found("ghcr.io/org/api", "1.0.0")
	found.Release = "v1.0.0"
	results := pipeline.NewResultMap("run",
		pipeline.Entry{Name: "api", Result: found},
		pipeline.Entry{Name: "web", Result: pipeline.RateLimited(30 * time.Second)},
		pipeline.Entry{Name: "db", Result: pipeline.NotFound("tag 2.0 not in registry")},
		pipeline.Entry{Name: "batch", Result: pipeline.Failed("GitLab API returned status 502")},
	)

	out := summaryTable(results)
	for _, want := range []string{
		"api", "v1.0.0", "ghcr.io/org/api:1.0.0",
		"rate limited (retry after 30s)",
		"not found: tag 2.0 not in registry",
		"GitLab API returned status 502",
		"1 found", "1 not found", "1 rate limited", "1 failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestOutcomeIcon(t *testing.T) {
	if outcomeIcon("found") == outcomeIcon("error") {
		t.Error("found and error should render differently")
	}
}
