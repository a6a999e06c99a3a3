// Package pipeline provides run orchestration for cicd-local.
//
// The Engine sequences stage executors in data-dependency order, folds
// their results into the persistent run record, and threads each stage's
// produced context artifact into its downstream consumers. Every status
// change goes through the stage state machine and is persisted before
// the next stage starts, so an interrupted run leaves an accurate
// record behind.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jpbarto/cicd-local/internal/artifact"
	"github.com/jpbarto/cicd-local/internal/clock"
	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/credential"
	"github.com/jpbarto/cicd-local/internal/ctxutil"
	"github.com/jpbarto/cicd-local/internal/domain"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
	"github.com/jpbarto/cicd-local/internal/stages"
	"github.com/jpbarto/cicd-local/internal/telemetry"
)

// createRetries bounds run ID collision handling when two runs start
// within the same second.
const createRetries = 3

// Engine orchestrates pipeline runs.
type Engine struct {
	runs     RunStore
	registry *stages.Registry
	history  *artifact.History
	clock    clock.Clock
	tracer   trace.Tracer
}

// EngineOptions carries the optional collaborators of an Engine.
type EngineOptions struct {
	// History receives run and artifact records for `cicd history`.
	// Optional; recording failures are logged, never fatal.
	History *artifact.History

	// Clock stamps run and transition times. Defaults to the real clock.
	Clock clock.Clock

	// Tracer emits one span per executed stage. Defaults to a no-op.
	Tracer trace.Tracer
}

// NewEngine creates an Engine over the given run store and executor
// registry.
func NewEngine(runs RunStore, registry *stages.Registry, opts EngineOptions) *Engine {
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer, _ = telemetry.Noop()
	}
	return &Engine{
		runs:     runs,
		registry: registry,
		history:  opts.History,
		clock:    clk,
		tracer:   tracer,
	}
}

// RunRequest carries the parameters of one pipeline run.
type RunRequest struct {
	// SourceDir is the project directory holding the service source tree.
	SourceDir string

	// ReleaseCandidate marks the run's outputs as pre-release.
	ReleaseCandidate bool

	// ContainerRepository is the destination registry for image pushes.
	ContainerRepository string

	// HelmRepository is the destination registry for chart pushes.
	HelmRepository string

	// ReleaseName is the deployment release identity.
	ReleaseName string

	// Namespace is the deployment namespace.
	Namespace string

	// BuildImage is the base image stage commands run in.
	BuildImage string

	// UnknownStatusPolicy decides branch behavior for an absent upstream
	// status field.
	UnknownStatusPolicy constants.UnknownStatusPolicy

	// Stages is the ordered execution plan, normally built with
	// SelectStages. Empty means every stage. Stages before the plan's
	// first entry never run; their downstream consumers read the
	// matching handle below, or degrade to defaults when it is nil.
	Stages []domain.StageKind

	// BuildArtifact, DeliveryContext, DeploymentContext and
	// ValidationContext seed the run with context artifacts from a
	// prior run when the plan starts partway through the pipeline.
	// A stage produced during this run replaces the seeded handle for
	// its downstream consumers. All optional.
	BuildArtifact     artifact.Handle
	DeliveryContext   artifact.Handle
	DeploymentContext artifact.Handle
	ValidationContext artifact.Handle

	// StageTimeout bounds each stage's execution. Zero means no limit.
	StageTimeout time.Duration

	// Kubeconfig grants cluster access for the deploy stage.
	Kubeconfig *credential.Handle

	// AWSConfig holds AWS configuration for clusters fronted by AWS auth.
	AWSConfig *credential.Handle
}

// Run executes the requested stages in order and returns the final run
// record. The record is persisted after every stage transition. A failed
// stage aborts the run with ErrStageFailed; a skipped stage does not.
// The returned run is non-nil whenever a record was created, including
// on failure.
func (e *Engine) Run(ctx context.Context, req *RunRequest) (*domain.PipelineRun, error) {
	if req == nil {
		return nil, fmt.Errorf("cannot run pipeline: request %w", cicderrors.ErrEmptyValue)
	}

	plan := req.Stages
	if len(plan) == 0 {
		plan = domain.StageOrder
	}

	run, err := e.createRun(ctx, req, plan)
	if err != nil {
		return nil, err
	}

	store, err := artifact.NewFileStore(e.runs.RunDir(run.ID))
	if err != nil {
		return run, err
	}

	logger := zerolog.Ctx(ctx).With().Str("run_id", run.ID).Logger()
	logger.Info().
		Strs("stages", stageNames(plan)).
		Bool("release_candidate", req.ReleaseCandidate).
		Msg("pipeline run started")

	handles := upstreamHandles{
		buildArtifact:     req.BuildArtifact,
		deliveryContext:   req.DeliveryContext,
		deploymentContext: req.DeploymentContext,
		validationContext: req.ValidationContext,
	}
	for _, kind := range plan {
		if err := ctxutil.Canceled(ctx); err != nil {
			e.finishRun(ctx, run, logger)
			logger.Warn().Msg("pipeline run interrupted")
			return run, err
		}

		result, err := e.runStage(ctx, run, req, store, kind, &handles, logger)
		if err != nil {
			e.finishRun(ctx, run, logger)
			return run, err
		}
		if result.Failed() {
			e.finishRun(ctx, run, logger)
			if result.Error != "" {
				return run, fmt.Errorf("%w: %s: %s", cicderrors.ErrStageFailed, kind, result.Error)
			}
			return run, fmt.Errorf("%w: %s", cicderrors.ErrStageFailed, kind)
		}
	}

	e.finishRun(ctx, run, logger)
	logger.Info().Msg("pipeline run finished")
	return run, nil
}

// upstreamHandles collects the context artifacts produced so far, keyed
// by what downstream stages consume.
type upstreamHandles struct {
	buildArtifact     artifact.Handle
	deliveryContext   artifact.Handle
	deploymentContext artifact.Handle
	validationContext artifact.Handle
}

// runStage executes one stage inside its own span, advancing the run
// record through running and into a terminal status. The returned error
// covers orchestration failures (unknown executor, persistence); stage
// outcomes are reported through the result.
func (e *Engine) runStage(
	ctx context.Context,
	run *domain.PipelineRun,
	req *RunRequest,
	store artifact.Store,
	kind domain.StageKind,
	handles *upstreamHandles,
	logger zerolog.Logger,
) (*domain.StageResult, error) {
	record := run.Stage(kind)
	if record == nil {
		return nil, fmt.Errorf("%w: run has no record for stage %s", cicderrors.ErrInvalidTransition, kind)
	}

	executor, err := e.registry.Get(kind)
	if err != nil {
		return nil, err
	}

	if err := Advance(record, domain.StageStatusRunning, "", e.clock); err != nil {
		return nil, err
	}
	e.persist(ctx, run, logger)

	stageCtx, span := e.tracer.Start(ctx, "stage."+kind.String(),
		trace.WithAttributes(attribute.String("stage.kind", kind.String())))
	defer span.End()

	if req.StageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(stageCtx, req.StageTimeout)
		defer cancel()
	}

	result, execErr := executor.Execute(stageCtx, e.stageRequest(req, store, handles))
	if result == nil {
		// Executors return a failed result alongside their error; a nil
		// result means the executor itself misbehaved or the context died.
		result = &domain.StageResult{
			Stage:  kind,
			Status: domain.StageStatusFailed,
		}
		if execErr != nil {
			result.Error = execErr.Error()
		}
	}

	record.ArtifactName = result.ArtifactName
	record.Error = result.Error
	if err := Advance(record, result.Status, result.SkipReason, e.clock); err != nil {
		return nil, err
	}
	record.SkipReason = result.SkipReason
	e.persist(ctx, run, logger)

	span.SetAttributes(attribute.String("stage.status", result.Status.String()))
	switch {
	case result.Failed():
		if execErr != nil {
			span.RecordError(execErr)
		}
		span.SetStatus(codes.Error, result.Error)
	case result.Skipped():
		span.SetAttributes(attribute.String("stage.skip_reason", result.SkipReason))
	}

	if result.Completed() && result.ArtifactName != "" {
		e.threadArtifact(ctx, run, store, result.ArtifactName, kind, handles, logger)
	}

	logger.Info().
		Str("stage", kind.String()).
		Str("status", result.Status.String()).
		Int64("duration_ms", result.DurationMs).
		Msg("stage finished")

	return result, nil
}

// stageRequest assembles the executor request for the next stage from
// the run parameters and the handles produced so far.
func (e *Engine) stageRequest(req *RunRequest, store artifact.Store, handles *upstreamHandles) *stages.Request {
	return &stages.Request{
		Store:               store,
		Clock:               e.clock,
		SourceDir:           req.SourceDir,
		ReleaseCandidate:    req.ReleaseCandidate,
		ContainerRepository: req.ContainerRepository,
		HelmRepository:      req.HelmRepository,
		ReleaseName:         req.ReleaseName,
		Namespace:           req.Namespace,
		BuildImage:          req.BuildImage,
		UnknownStatusPolicy: req.UnknownStatusPolicy,
		BuildArtifact:       handles.buildArtifact,
		DeliveryContext:     handles.deliveryContext,
		DeploymentContext:   handles.deploymentContext,
		ValidationContext:   handles.validationContext,
		Kubeconfig:          req.Kubeconfig,
		AWSConfig:           req.AWSConfig,
	}
}

// threadArtifact opens the stage's produced artifact and slots the handle
// into the position its downstream consumers read from.
func (e *Engine) threadArtifact(
	ctx context.Context,
	run *domain.PipelineRun,
	store artifact.Store,
	name string,
	kind domain.StageKind,
	handles *upstreamHandles,
	logger zerolog.Logger,
) {
	handle, err := store.Open(ctx, name)
	if err != nil {
		logger.Warn().Err(err).Str("artifact", name).Msg("produced artifact not readable")
		return
	}

	switch kind {
	case domain.StageKindBuild:
		handles.buildArtifact = handle
	case domain.StageKindDeliver:
		handles.deliveryContext = handle
	case domain.StageKindDeploy:
		handles.deploymentContext = handle
	case domain.StageKindValidate:
		handles.validationContext = handle
	}

	if e.history != nil {
		size := 0
		if data, err := handle.Read(ctx); err == nil {
			size = len(data)
		}
		if err := e.history.RecordArtifact(ctx, run.ID, name, size); err != nil {
			logger.Warn().Err(err).Str("artifact", name).Msg("failed to record artifact in history")
		}
	}
}

// createRun builds and persists the initial run record, retrying with a
// uniquified ID when two runs start within the same second.
func (e *Engine) createRun(ctx context.Context, req *RunRequest, plan []domain.StageKind) (*domain.PipelineRun, error) {
	now := e.clock.Now().UTC()

	records := make([]domain.StageRecord, 0, len(plan))
	for _, kind := range plan {
		records = append(records, domain.StageRecord{
			Kind:   kind,
			Status: domain.StageStatusNotStarted,
		})
	}

	run := &domain.PipelineRun{
		ID:               NewRunID(now),
		ReleaseName:      req.ReleaseName,
		Namespace:        req.Namespace,
		ReleaseCandidate: req.ReleaseCandidate,
		SourceDir:        req.SourceDir,
		Stages:           records,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var err error
	for attempt := 0; attempt < createRetries; attempt++ {
		err = e.runs.Create(ctx, run)
		if err == nil {
			return run, nil
		}
		if !errors.Is(err, cicderrors.ErrRunExists) {
			return nil, err
		}
		run.ID = UniquifyRunID(NewRunID(now))
	}
	return nil, err
}

// persist saves the run record and mirrors it into history. Persistence
// problems are logged rather than aborting the run mid-stage.
func (e *Engine) persist(ctx context.Context, run *domain.PipelineRun, logger zerolog.Logger) {
	run.UpdatedAt = e.clock.Now().UTC()
	if err := e.runs.Update(ctx, run); err != nil {
		logger.Warn().Err(err).Msg("failed to persist run record")
	}
	if e.history != nil {
		if err := e.history.RecordRun(ctx, run); err != nil {
			logger.Warn().Err(err).Msg("failed to record run in history")
		}
	}
}

// finishRun stamps the run's completion time and persists the final
// record. The write runs on a detached context so an interrupted run
// still leaves a finished record behind.
func (e *Engine) finishRun(ctx context.Context, run *domain.PipelineRun, logger zerolog.Logger) {
	now := e.clock.Now().UTC()
	run.CompletedAt = &now
	e.persist(context.WithoutCancel(ctx), run, logger)
}

func stageNames(kinds []domain.StageKind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}
