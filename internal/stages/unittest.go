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

// UnitTestExecutor runs the unit-test stage against the source tree,
// optionally reusing the build stage's artifact. A missing build
// artifact is not an error - the stage proceeds as if testing from
// source, per the protocol's missing-optional-input rule.
type UnitTestExecutor struct {
	runner ContainerRunner
}

// NewUnitTestExecutor creates a unit-test stage executor.
func NewUnitTestExecutor(runner ContainerRunner) *UnitTestExecutor {
	return &UnitTestExecutor{runner: runner}
}

// Kind returns the stage kind this executor handles.
func (e *UnitTestExecutor) Kind() domain.StageKind {
	return constants.StageKindUnitTest
}

// Execute runs the placeholder unit-test command and returns its output.
// The stage emits a result string only, no context artifact.
func (e *UnitTestExecutor) Execute(ctx context.Context, req *Request) (*domain.StageResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	clk := req.clk()
	startTime := clk.Now().UTC()
	logger := zerolog.Ctx(ctx).With().Str("stage", string(e.Kind())).Logger()

	fromArtifact := req.BuildArtifact != nil
	logger.Info().
		Str("source_dir", req.SourceDir).
		Bool("from_build_artifact", fromArtifact).
		Msg("unit-test stage starting")

	// ... real unit test logic goes here ...
	output, err := e.runner.Run(ctx, RunSpec{
		Image: req.BuildImage,
		Cmd:   []string{"echo", "running unit tests"},
	})
	if err != nil {
		wrapped := fmt.Errorf("unit-test command: %w: %w", cicderrors.ErrDelegatedOperationFailed, err)
		logger.Error().Err(wrapped).Msg("unit-test stage failed")
		return newFailedResult(e.Kind(), clk, startTime, wrapped), wrapped
	}

	result := newCompletedResult(e.Kind(), clk, startTime, strings.TrimSpace(output))

	logger.Info().Int64("duration_ms", result.DurationMs).Msg("unit-test stage completed")

	return result, nil
}
