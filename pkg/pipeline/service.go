package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/versionsync/pkg/errors"
	"github.com/matzehuels/versionsync/pkg/httputil"
	"github.com/matzehuels/versionsync/pkg/integrations"
	"github.com/matzehuels/versionsync/pkg/integrations/registry"
	"github.com/matzehuels/versionsync/pkg/observability"
	"github.com/matzehuels/versionsync/pkg/version"
)

// ServicePipeline resolves a single service. It holds no per-service state
// and is safe for concurrent use.
type ServicePipeline struct {
	providers map[ProviderKind]Provider
	registry  Registry
	creds     Credentials
}

// NewServicePipeline creates a ServicePipeline from its collaborators.
func NewServicePipeline(providers map[ProviderKind]Provider, reg Registry, creds Credentials) *ServicePipeline {
	return &ServicePipeline{providers: providers, registry: reg, creds: creds}
}

// Resolve runs the pipeline for spec, retrying transient failures according
// to policy.
//
// The returned error is non-nil only when ctx ended before the service
// finished; it is ctx's error and the result must be discarded.
func (p *ServicePipeline) Resolve(ctx context.Context, spec ServiceSpec, policy httputil.Policy, logger *log.Logger) (ServiceResult, error) {
	hooks := observability.Pipeline()
	stage := func(s Stage) {
		hooks.OnStage(ctx, spec.Name, string(s))
		logger.Debug("stage", "stage", s)
	}

	res, err := p.resolve(ctx, spec, policy, stage)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ServiceResult{}, ctxErr
		}
		res = p.classify(err)
	}
	stage(StageDone)
	return res, nil
}

func (p *ServicePipeline) resolve(ctx context.Context, spec ServiceSpec, policy httputil.Policy, stage func(Stage)) (ServiceResult, error) {
	stage(StageInit)
	if err := ctx.Err(); err != nil {
		return ServiceResult{}, err
	}

	var (
		rel integrations.Release
		ver string
		tag = spec.Image.Tag
	)

	if spec.Git.Provider != ProviderNone {
		stage(StageGitResolving)
		provider, ok := p.providers[spec.Git.Provider]
		if !ok {
			return ServiceResult{}, errs.New(errs.ErrCodeInternal, "no client for provider %q", spec.Git.Provider)
		}
		src := integrations.Source{
			Repo:         spec.Git.Repo,
			ProjectID:    spec.Git.ProjectID,
			Host:         spec.Git.Host,
			Private:      spec.Git.Private,
			Authenticate: spec.Git.Authenticate,
		}
		err := httputil.Do(ctx, policy, func(ctx context.Context) error {
			var err error
			rel, err = provider.LatestRelease(ctx, src)
			return err
		})
		if err != nil {
			return ServiceResult{}, stageError("release lookup", err)
		}

		stage(StageVersionExtracting)
		if ver, err = version.Extract(rel.Tag, spec.Git.Filter); err != nil {
			return ServiceResult{}, err
		}
		if err = spec.Git.Constraint.Check(ver); err != nil {
			return ServiceResult{}, err
		}
		tag = version.RenderTag(spec.Image.Tag, ver)
	}

	stage(StageRegistryValidating)
	ref, err := registry.ParseImage(spec.Image.Name)
	if err != nil {
		return ServiceResult{}, err
	}
	cred, err := p.creds.Registry(ctx, ref.Host)
	if err != nil {
		return ServiceResult{}, err
	}
	var exists bool
	err = httputil.Do(ctx, policy, func(ctx context.Context) error {
		var err error
		exists, err = p.registry.TagExists(ctx, spec.Image.Name, tag, cred)
		return err
	})
	if err != nil {
		return ServiceResult{}, stageError("registry check", err)
	}
	if !exists {
		res := NotFound(fmt.Sprintf("tag %s not found in %s", tag, ref))
		res.Release, res.Version = rel.Tag, ver
		return res, nil
	}

	res := Found(spec.Image.Name, tag)
	res.Release, res.Version = rel.Tag, ver
	return res, nil
}

// stageError prefixes err's message with the stage that failed while
// keeping its code.
func stageError(stage string, err error) error {
	if code := errs.GetCode(err); code != "" && code != errs.ErrCodeRateLimited {
		return errs.Wrap(code, err, "%s", stage)
	}
	return err
}

func (p *ServicePipeline) classify(err error) ServiceResult {
	msg := errs.Redact(errs.UserMessage(err), p.creds.Secrets()...)
	switch errs.GetCode(err) {
	case errs.ErrCodeNotFound, errs.ErrCodeNoMatch:
		return NotFound(msg)
	case errs.ErrCodeRateLimited:
		return RateLimited(errs.RetryAfter(err))
	default:
		return Failed(msg)
	}
}

// outcome reports a finished service to hooks and logs.
func outcome(ctx context.Context, logger *log.Logger, name string, res ServiceResult, elapsed time.Duration) {
	var err error
	switch res.Kind {
	case KindFound:
		logger.Info("resolved", "image", res.Image, "tag", res.Tag, "release", res.Release, "duration", elapsed.Round(time.Millisecond))
	case KindNotFound:
		logger.Warn("not found", "reason", res.Message)
	case KindRateLimited:
		err = errors.New("rate limited")
		if res.RetryAfter > 0 {
			logger.Warn("rate limited", "retry_after", res.RetryAfter)
		} else {
			logger.Warn("rate limited")
		}
	default:
		err = errors.New(res.Message)
		logger.Error("failed", "error", res.Message)
	}
	observability.Pipeline().OnServiceComplete(ctx, name, res.Kind.String(), elapsed, err)
}
