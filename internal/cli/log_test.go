package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Resolved 3 services")

	if !strings.Contains(buf.String(), "Resolved 3 services (") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext should fall back to the default logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestHTTPLogHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := httpLogHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	hooks.OnRequest(ctx, "GET", "api.github.com", "/repos/cli/cli/releases/latest")
	hooks.OnResponse(ctx, "GET", "api.github.com", "/repos/cli/cli/releases/latest", 200, 120*time.Millisecond)
	hooks.OnError(ctx, "HEAD", "ghcr.io", "/v2/org/app/manifests/1.0", errors.New("timeout"))

	out := buf.String()
	for _, want := range []string{"http request", "status=200", "http error", "host=ghcr.io"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	quiet := httpLogHooks{logger: newLogger(&buf, log.InfoLevel)}
	quiet.OnRequest(ctx, "GET", "gitlab.com", "/api/v4/projects/1/releases/permalink/latest")
	if buf.Len() != 0 {
		t.Error("http hooks should only log at debug level")
	}
}
