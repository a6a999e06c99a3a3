package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/ctxutil"
	"github.com/jpbarto/cicd-local/internal/domain"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// BuildExecutor runs the build stage. The stage is a template
// placeholder: it runs a trivial container command where a real
// multi-architecture image build belongs, and stores the captured output
// as the run's build artifact so downstream stages have a handle to
// consume.
type BuildExecutor struct {
	runner ContainerRunner
}

// NewBuildExecutor creates a build stage executor.
func NewBuildExecutor(runner ContainerRunner) *BuildExecutor {
	return &BuildExecutor{runner: runner}
}

// Kind returns the stage kind this executor handles.
func (e *BuildExecutor) Kind() domain.StageKind {
	return constants.StageKindBuild
}

// Execute runs the placeholder build command and stores its output as
// the build artifact.
func (e *BuildExecutor) Execute(ctx context.Context, req *Request) (*domain.StageResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	clk := req.clk()
	startTime := clk.Now().UTC()
	logger := zerolog.Ctx(ctx).With().Str("stage", string(e.Kind())).Logger()
	logger.Info().
		Str("source_dir", req.SourceDir).
		Bool("release_candidate", req.ReleaseCandidate).
		Msg("build stage starting")

	// ... real image build logic goes here ...
	output, err := e.runner.Run(ctx, RunSpec{
		Image: req.BuildImage,
		Cmd:   []string{"echo", "this is the build stage"},
	})
	if err != nil {
		wrapped := fmt.Errorf("build command: %w: %w", cicderrors.ErrDelegatedOperationFailed, err)
		logger.Error().Err(wrapped).Msg("build stage failed")
		return newFailedResult(e.Kind(), clk, startTime, wrapped), wrapped
	}

	handle, err := req.Store.Put(ctx, constants.BuildOutputFileName, []byte(output))
	if err != nil {
		logger.Error().Err(err).Msg("failed to store build artifact")
		return newFailedResult(e.Kind(), clk, startTime, err), err
	}

	result := newCompletedResult(e.Kind(), clk, startTime, strings.TrimSpace(output))
	result.ArtifactName = handle.Name()

	logger.Info().
		Str("artifact", handle.Name()).
		Int64("duration_ms", result.DurationMs).
		Msg("build stage completed")

	return result, nil
}
