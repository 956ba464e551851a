package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	errs "github.com/matzehuels/versionsync/pkg/errors"
)

func TestNewClient(t *testing.T) {
	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient("Test API", headers, 0)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Fatal("NewClient() http client is nil")
	}
	if client.http.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", client.http.Timeout, DefaultTimeout)
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
	if client.Upstream() != "Test API" {
		t.Errorf("Upstream() = %q", client.Upstream())
	}
}

func TestNewClientCustomTimeout(t *testing.T) {
	client := NewClient("Test API", nil, 3*time.Second)
	if client.http.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", client.http.Timeout)
	}
	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient("Test API", nil, 0)

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var gotOverride, gotDefault string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOverride = r.Header.Get("X-Override")
		gotDefault = r.Header.Get("X-Default")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient("Test API", map[string]string{"X-Override": "default", "X-Default": "kept"}, 0)

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if gotOverride != "overridden" {
		t.Errorf("X-Override = %q, want %q", gotOverride, "overridden")
	}
	if gotDefault != "kept" {
		t.Errorf("X-Default = %q, want %q", gotDefault, "kept")
	}
}

func TestClientGetClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		headers map[string]string
		body    string
		want    errs.Code
	}{
		{name: "not found", status: 404, want: errs.ErrCodeNotFound},
		{name: "too many requests", status: 429, headers: map[string]string{"Retry-After": "30"}, want: errs.ErrCodeRateLimited},
		{name: "403 quota exhausted", status: 403, headers: map[string]string{"X-RateLimit-Remaining": "0"}, want: errs.ErrCodeRateLimited},
		{name: "403 rate limit message", status: 403, body: `{"message":"API rate limit exceeded for 1.2.3.4"}`, want: errs.ErrCodeRateLimited},
		{name: "403 plain", status: 403, body: `{"message":"Resource not accessible"}`, want: errs.ErrCodeForbidden},
		{name: "unauthorized", status: 401, want: errs.ErrCodeUnauthorized},
		{name: "server error", status: 500, want: errs.ErrCodeTransient},
		{name: "bad gateway", status: 502, want: errs.ErrCodeTransient},
		{name: "teapot", status: 418, want: errs.ErrCodeMalformed},
		{name: "undecodable body", status: 200, body: "<html>", want: errs.ErrCodeMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient("Test API", nil, 0)
			var resp map[string]any
			err := client.Get(context.Background(), server.URL, &resp)
			if got := errs.GetCode(err); got != tt.want {
				t.Errorf("Get() code = %q, want %q (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestClientGetRateLimitedCarriesHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("Test API", nil, 0)
	var resp map[string]any
	err := client.Get(context.Background(), server.URL, &resp)

	var rl *errs.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("Get() error = %T, want *RateLimitedError", err)
	}
	if rl.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", rl.RetryAfter)
	}
	if rl.Message != "Test API" {
		t.Errorf("Message = %q, want upstream name", rl.Message)
	}
}

func TestClientNetworkErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient("Test API", nil, time.Second)
	var resp map[string]any
	err := client.Get(context.Background(), url, &resp)
	if !errs.Is(err, errs.ErrCodeTransient) {
		t.Errorf("Get() code = %q, want TRANSIENT (err: %v)", errs.GetCode(err), err)
	}
}

func TestClientCancelledContextNotTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("Test API", nil, 0)
	var resp map[string]any
	err := client.Get(ctx, server.URL, &resp)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
	if errs.Is(err, errs.ErrCodeTransient) {
		t.Error("cancellation must not be classified as transient")
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		headers map[string]string
		want    time.Duration
	}{
		{"none", nil, 0},
		{"seconds", map[string]string{"Retry-After": "120"}, 2 * time.Minute},
		{"http date", map[string]string{"Retry-After": now.Add(90 * time.Second).Format(http.TimeFormat)}, 90 * time.Second},
		{"date in past", map[string]string{"Retry-After": now.Add(-time.Minute).Format(http.TimeFormat)}, 0},
		{"github reset", map[string]string{"X-RateLimit-Reset": "1714565100"}, 5 * time.Minute},
		{"gitlab reset", map[string]string{"RateLimit-Reset": "1714564860"}, time.Minute},
		{"garbage", map[string]string{"Retry-After": "soon", "X-RateLimit-Reset": "later"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			if got := RetryAfter(h, now); got != tt.want {
				t.Errorf("RetryAfter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		host, def, want string
	}{
		{"", "https://api.github.com", "https://api.github.com"},
		{"gitlab.example.com", "https://gitlab.com", "https://gitlab.example.com"},
		{"http://127.0.0.1:8080/", "https://gitlab.com", "http://127.0.0.1:8080"},
	}

	for _, tt := range tests {
		if got := BaseURL(tt.host, tt.def); got != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
