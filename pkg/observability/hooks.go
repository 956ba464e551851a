// Package observability provides hooks for progress reporting and HTTP
// instrumentation.
//
// Libraries emit events through globally registered hooks; the CLI decides
// what to do with them (drive a progress view, log requests at debug level).
// The defaults are no-ops, so library code never needs to check whether
// anybody is listening.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(progress)
//	    observability.SetHTTPHooks(httpLogger)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnServiceStart(ctx, "api")
//	// ... resolve ...
//	observability.Pipeline().OnServiceComplete(ctx, "api", "found", elapsed, nil)
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the resolution pipeline.
// Implementations must be safe for concurrent use: services run in parallel.
type PipelineHooks interface {
	// Run events
	OnRunStart(ctx context.Context, runID string, services int)
	OnRunComplete(ctx context.Context, runID string, completed int, duration time.Duration)

	// Per-service events
	OnServiceStart(ctx context.Context, service string)
	OnStage(ctx context.Context, service, stage string)
	OnServiceComplete(ctx context.Context, service, outcome string, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRunStart(context.Context, string, int)                  {}
func (NoopPipelineHooks) OnRunComplete(context.Context, string, int, time.Duration) {}
func (NoopPipelineHooks) OnServiceStart(context.Context, string)                   {}
func (NoopPipelineHooks) OnStage(context.Context, string, string)                  {}
func (NoopPipelineHooks) OnServiceComplete(context.Context, string, string, time.Duration, error) {
}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// hookSet is an immutable snapshot of the registered hooks. Hooks are read
// on every HTTP call, so readers load a pointer instead of taking a lock.
type hookSet struct {
	pipeline PipelineHooks
	http     HTTPHooks
}

var (
	registered atomic.Pointer[hookSet]
	registerMu sync.Mutex // serializes writers
)

func init() {
	Reset()
}

func update(fn func(*hookSet)) {
	registerMu.Lock()
	defer registerMu.Unlock()
	next := *registered.Load()
	fn(&next)
	registered.Store(&next)
}

// SetPipelineHooks registers pipeline hooks, replacing the previous ones.
// A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetHTTPHooks registers HTTP hooks, replacing the previous ones.
// A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	return registered.Load().pipeline
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	return registered.Load().http
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	registered.Store(&hookSet{pipeline: NoopPipelineHooks{}, http: NoopHTTPHooks{}})
}
