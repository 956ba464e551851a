package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	"github.com/matzehuels/versionsync/pkg/pipeline"
)

func serviceNames(cfg *Config) []string {
	var names []string
	for _, s := range cfg.Services {
		names = append(names, s.Name)
	}
	return names
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load("testdata/config.yaml")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := serviceNames(cfg); len(got) != 3 || got[0] != "web" || got[1] != "api" || got[2] != "proxy" {
		t.Errorf("service order = %v, want [web api proxy]", got)
	}
	if cfg.Global.Concurrency != 8 {
		t.Errorf("Concurrency = %d", cfg.Global.Concurrency)
	}
	if cfg.Global.HTTPTimeout() != 5*time.Second {
		t.Errorf("HTTPTimeout() = %v", cfg.Global.HTTPTimeout())
	}
	if !cfg.Global.Git.GitHub.Authenticate {
		t.Error("github.authenticate should be true")
	}

	specs, err := cfg.Specs()
	if err != nil {
		t.Fatalf("Specs() error: %v", err)
	}
	web := specs[0]
	if web.Git.Provider != pipeline.ProviderGitHub || !web.Git.Authenticate {
		t.Errorf("web git = %+v", web.Git)
	}
	if web.Git.Filter == nil || web.Git.Filter.String() != "v(.*)" {
		t.Errorf("web filter = %v", web.Git.Filter)
	}
	api := specs[1]
	if api.Git.ProjectID != "12345" || !api.Git.Private || api.Git.Authenticate {
		t.Errorf("api git = %+v", api.Git)
	}
	if api.Git.Filter != nil {
		t.Error("missing version_filter should mean no filter")
	}
	if specs[2].Git.Provider != pipeline.ProviderNone || specs[2].Image.Tag != "1.25" {
		t.Errorf("proxy = %+v", specs[2])
	}
}

func TestLoadTOML(t *testing.T) {
	cfg, err := Load("testdata/config.toml")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := serviceNames(cfg); len(got) != 2 || got[0] != "zeta" || got[1] != "alpha" {
		t.Errorf("service order = %v, want [zeta alpha]", got)
	}
	if time.Duration(cfg.Global.Deadline) != 2*time.Minute {
		t.Errorf("Deadline = %v", time.Duration(cfg.Global.Deadline))
	}

	specs, err := cfg.Specs()
	if err != nil {
		t.Fatalf("Specs() error: %v", err)
	}
	if specs[0].Git.Constraint.String() != ">= 7" {
		t.Errorf("constraint = %q", specs[0].Git.Constraint.String())
	}
	if specs[1].Git.ProjectID != "278964" {
		t.Errorf("ProjectID = %q", specs[1].Git.ProjectID)
	}
}

func TestRunnerOptions(t *testing.T) {
	cfg, err := Load("testdata/config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	opts := cfg.Global.RunnerOptions()
	if opts.Concurrency != 8 {
		t.Errorf("Concurrency = %d", opts.Concurrency)
	}
	if opts.Retry == nil {
		t.Fatal("Retry policy not set")
	}

	defaults := Global{}.RunnerOptions()
	if defaults.Concurrency != pipeline.DefaultConcurrency {
		t.Errorf("default Concurrency = %d", defaults.Concurrency)
	}
	if (Global{}).HTTPTimeout() != pipeline.DefaultTimeout {
		t.Error("default timeout mismatch")
	}
}

func TestSpecsErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no services", "global: {}\n"},
		{"missing type", "services:\n  a:\n    git: { repo: org/a }\n    image: { name: nginx, tag: \"${RELEASE_VERSION}\" }\n"},
		{"unknown type", "services:\n  a:\n    git: { type: svn, repo: org/a }\n    image: { name: nginx, tag: \"${RELEASE_VERSION}\" }\n"},
		{"bad regex", "services:\n  a:\n    git: { type: github, repo: org/a, version_filter: \"v(\" }\n    image: { name: nginx, tag: \"${RELEASE_VERSION}\" }\n"},
		{"no capture group", "services:\n  a:\n    git: { type: github, repo: org/a, version_filter: \"v.*\" }\n    image: { name: nginx, tag: \"${RELEASE_VERSION}\" }\n"},
		{"bad constraint", "services:\n  a:\n    git: { type: github, repo: org/a, constraint: \"banana\" }\n    image: { name: nginx, tag: \"${RELEASE_VERSION}\" }\n"},
		{"gitlab without id", "services:\n  a:\n    git: { type: gitlab }\n    image: { name: nginx, tag: \"${RELEASE_VERSION}\" }\n"},
		{"no placeholder", "services:\n  a:\n    git: { type: github, repo: org/a }\n    image: { name: nginx, tag: latest }\n"},
		{"empty image", "services:\n  a:\n    git: { type: github, repo: org/a }\n    image: { tag: \"${RELEASE_VERSION}\" }\n"},
		{"too many retry attempts", "global:\n  retry: { attempts: 40 }\nservices:\n  a:\n    git: { type: github, repo: org/a }\n    image: { name: nginx, tag: \"${RELEASE_VERSION}\" }\n"},
		{"negative retry attempts", "global:\n  retry: { attempts: -1 }\nservices:\n  a:\n    git: { type: github, repo: org/a }\n    image: { name: nginx, tag: \"${RELEASE_VERSION}\" }\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml), FormatYAML)
			if err == nil {
				_, err = cfg.Specs()
			}
			if !errs.Is(err, errs.ErrCodeConfiguration) {
				t.Errorf("error = %v, want CONFIGURATION", err)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte("services: [a, b]\n"), FormatYAML); !errs.Is(err, errs.ErrCodeConfiguration) {
		t.Errorf("services list: error = %v", err)
	}
	if _, err := Parse([]byte("global: [\n"), FormatYAML); !errs.Is(err, errs.ErrCodeConfiguration) {
		t.Errorf("broken yaml: error = %v", err)
	}
	if _, err := Parse([]byte("[global]\nconcurency = 3\n"), FormatTOML); !errs.Is(err, errs.ErrCodeConfiguration) {
		t.Errorf("unknown toml key: error = %v", err)
	}
	if _, err := Parse([]byte("global:\n  timeout: soon\n"), FormatYAML); err == nil {
		t.Error("invalid duration should fail")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("config.json"); !errs.Is(err, errs.ErrCodeConfiguration) {
		t.Errorf("unsupported extension: error = %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errs.Is(err, errs.ErrCodeConfiguration) {
		t.Errorf("missing file: error = %v", err)
	}
}

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"10s", 10 * time.Second},
		{"1m30s", 90 * time.Second},
		{"15", 15 * time.Second},
		{"0.5", 500 * time.Millisecond},
		{"", 0},
	}
	for _, tt := range tests {
		var d Duration
		if err := d.UnmarshalText([]byte(tt.in)); err != nil {
			t.Errorf("UnmarshalText(%q) error: %v", tt.in, err)
			continue
		}
		if time.Duration(d) != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.in, time.Duration(d), tt.want)
		}
	}
}

func TestFormatFromPathCaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CONFIG.YML")
	if err := os.WriteFile(path, []byte("services: {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if f, err := FormatFromPath(path); err != nil || f != FormatYAML {
		t.Errorf("FormatFromPath() = %q, %v", f, err)
	}
}

func TestLoadExamples(t *testing.T) {
	for path, want := range map[string]int{
		"../../examples/versionsync.yaml": 4,
		"../../examples/versionsync.toml": 3,
	} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) error: %v", path, err)
		}
		specs, err := cfg.Specs()
		if err != nil {
			t.Fatalf("%s: Specs() error: %v", path, err)
		}
		if len(specs) != want {
			t.Errorf("%s: %d services, want %d", path, len(specs), want)
		}
		if specs[0].Name != "gh-cli" {
			t.Errorf("%s: first service = %q", path, specs[0].Name)
		}
	}
}
