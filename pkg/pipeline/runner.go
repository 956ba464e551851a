package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/versionsync/pkg/observability"
)

// DeadlineExceededMessage is the error reported for services still running
// when the run deadline expires.
const DeadlineExceededMessage = "run deadline exceeded"

// Runner resolves many services concurrently.
//
// The Runner is stateless apart from its configuration; it doesn't keep
// results between runs. Multiple goroutines can safely call Run.
type Runner struct {
	pipeline *ServicePipeline
	opts     Options
}

// NewRunner creates a runner around a ServicePipeline.
func NewRunner(p *ServicePipeline, opts Options) *Runner {
	return &Runner{pipeline: p, opts: opts.WithDefaults()}
}

// Run validates specs and resolves them.
//
// A configuration error in any spec aborts the run before any network call
// and returns a nil map. Otherwise every service gets exactly one result,
// except when ctx is cancelled: services unfinished at that point are
// omitted and the map reports Complete() == false.
func (r *Runner) Run(ctx context.Context, specs []ServiceSpec) (*ResultMap, error) {
	if err := ValidateSpecs(specs); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := r.opts.Logger.With("run_id", runID)
	hooks := observability.Pipeline()

	runCtx := ctx
	if r.opts.Deadline > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.opts.Deadline)
		defer cancel()
	}

	start := time.Now()
	hooks.OnRunStart(ctx, runID, len(specs))
	logger.Info("starting run", "services", len(specs), "concurrency", r.opts.Concurrency)

	slots := make([]*ServiceResult, len(specs))

	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, spec := range specs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			slots[i] = r.resolveOne(ctx, runCtx, spec, logger)
			return nil
		})
	}
	_ = g.Wait()

	results := newResultMap(runID, len(specs))
	results.startedAt = start
	for i, spec := range specs {
		if slots[i] != nil {
			results.add(spec.Name, *slots[i])
		}
	}
	results.finishedAt = time.Now()

	elapsed := results.finishedAt.Sub(start)
	hooks.OnRunComplete(ctx, runID, results.Len(), elapsed)
	if !results.Complete() {
		logger.Warn("run interrupted", "resolved", results.Len(), "services", len(specs))
	} else {
		logger.Info("run complete", "services", results.Len(), "duration", elapsed.Round(time.Millisecond))
	}
	return results, nil
}

// resolveOne returns nil when the caller cancelled ctx before the service
// finished. A run deadline expiry becomes an error result instead.
func (r *Runner) resolveOne(ctx, runCtx context.Context, spec ServiceSpec, runLogger *log.Logger) *ServiceResult {
	logger := runLogger.With("service", spec.Name)
	observability.Pipeline().OnServiceStart(ctx, spec.Name)
	start := time.Now()

	res, err := r.pipeline.Resolve(runCtx, spec, r.opts.Retry, logger)
	if err != nil {
		if ctx.Err() != nil || !errors.Is(err, context.DeadlineExceeded) {
			logger.Debug("cancelled")
			observability.Pipeline().OnServiceComplete(ctx, spec.Name, "cancelled", time.Since(start), err)
			return nil
		}
		res = Failed(DeadlineExceededMessage)
	}
	outcome(ctx, logger, spec.Name, res, time.Since(start))
	return &res
}
