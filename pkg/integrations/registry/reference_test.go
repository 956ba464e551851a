package registry

import (
	"testing"

	errs "github.com/matzehuels/versionsync/pkg/errors"
)

func TestParseImage(t *testing.T) {
	tests := []struct {
		image    string
		wantHost string
		wantPath string
	}{
		{"nginx", "registry-1.docker.io", "library/nginx"},
		{"docker.io/nginx", "registry-1.docker.io", "library/nginx"},
		{"bitnami/redis", "registry-1.docker.io", "bitnami/redis"},
		{"ghcr.io/org/app", "ghcr.io", "org/app"},
		{"registry.gitlab.com/group/sub/app", "registry.gitlab.com", "group/sub/app"},
		{"localhost:5000/app", "localhost:5000", "app"},
	}

	for _, tt := range tests {
		t.Run(tt.image, func(t *testing.T) {
			ref, err := ParseImage(tt.image)
			if err != nil {
				t.Fatalf("ParseImage() error: %v", err)
			}
			if ref.Host != tt.wantHost {
				t.Errorf("Host = %q, want %q", ref.Host, tt.wantHost)
			}
			if ref.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", ref.Path, tt.wantPath)
			}
		})
	}
}

func TestParseImageRejects(t *testing.T) {
	for _, image := range []string{"", "UPPER/case", "ghcr.io/org/app:1.0", "nginx@sha256:" + sixtyFourHex} {
		if _, err := ParseImage(image); !errs.Is(err, errs.ErrCodeConfiguration) {
			t.Errorf("ParseImage(%q) code = %q, want CONFIGURATION", image, errs.GetCode(err))
		}
	}
}

func TestReferenceString(t *testing.T) {
	ref, err := ParseImage("docker.io/library/nginx")
	if err != nil {
		t.Fatal(err)
	}
	if got := ref.String(); got != "nginx" {
		t.Errorf("String() = %q, want nginx", got)
	}
}

const sixtyFourHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
