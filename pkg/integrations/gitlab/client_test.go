package gitlab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	"github.com/matzehuels/versionsync/pkg/integrations"
)

func testClient(baseURL, token string) *Client {
	c := NewClient(token, 0)
	c.baseURL = baseURL
	return c
}

func TestClient_LatestRelease(t *testing.T) {
	tests := []struct {
		name    string
		src     integrations.Source
		rawPath string
	}{
		{"numeric id", integrations.Source{ProjectID: "278964"}, "/api/v4/projects/278964/releases/permalink/latest"},
		{"path id", integrations.Source{ProjectID: "group/sub/project"}, "/api/v4/projects/group%2Fsub%2Fproject/releases/permalink/latest"},
		{"repo fallback", integrations.Source{Repo: "group/project"}, "/api/v4/projects/group%2Fproject/releases/permalink/latest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.EscapedPath()
				w.Write([]byte(`{"tag_name":"v16.0.1","commit":{"id":"abc123"}}`))
			}))
			defer server.Close()

			rel, err := testClient(server.URL, "").LatestRelease(context.Background(), tt.src)
			if err != nil {
				t.Fatalf("LatestRelease() error: %v", err)
			}
			if gotPath != tt.rawPath {
				t.Errorf("path = %q, want %q", gotPath, tt.rawPath)
			}
			if rel.Tag != "v16.0.1" || rel.Ref != "abc123" {
				t.Errorf("release = %+v", rel)
			}
		})
	}
}

func TestClient_LatestReleaseSendsPrivateToken(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("PRIVATE-TOKEN")
		w.Write([]byte(`{"tag_name":"1.0"}`))
	}))
	defer server.Close()

	if _, err := testClient(server.URL, "glpat-secret").LatestRelease(context.Background(), integrations.Source{ProjectID: "1"}); err != nil {
		t.Fatalf("LatestRelease() error: %v", err)
	}
	if got != "glpat-secret" {
		t.Errorf("PRIVATE-TOKEN = %q", got)
	}
}

func TestClient_LatestReleaseErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    errs.Code
	}{
		{"no release", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }, errs.ErrCodeNotFound},
		{"throttled", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("RateLimit-Reset", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		}, errs.ErrCodeRateLimited},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) }, errs.ErrCodeUnauthorized},
		{"unavailable", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }, errs.ErrCodeTransient},
		{"no tag", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{}`)) }, errs.ErrCodeMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := testClient(server.URL, "").LatestRelease(context.Background(), integrations.Source{ProjectID: "42"})
			if got := errs.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestClient_LatestReleaseInvalidProject(t *testing.T) {
	for _, id := range []string{"", "../etc", "project"} {
		_, err := testClient("http://127.0.0.1:1", "").LatestRelease(context.Background(), integrations.Source{ProjectID: id})
		if !errs.Is(err, errs.ErrCodeConfiguration) {
			t.Errorf("ProjectID %q: code = %q, want CONFIGURATION", id, errs.GetCode(err))
		}
	}
}
