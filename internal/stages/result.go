package stages

import (
	"time"

	"github.com/jpbarto/cicd-local/internal/clock"
	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/domain"
)

// newStageResult creates a StageResult with the common fields populated.
// Callers customize the returned result by setting Output, Error,
// SkipReason, and ArtifactName.
func newStageResult(kind domain.StageKind, clk clock.Clock, startTime time.Time, status constants.StageStatus) *domain.StageResult {
	completedAt := clk.Now().UTC()
	return &domain.StageResult{
		Stage:       kind,
		Status:      status,
		StartedAt:   startTime,
		CompletedAt: completedAt,
		DurationMs:  completedAt.Sub(startTime).Milliseconds(),
	}
}

// newCompletedResult creates a completed StageResult with the stage's output.
func newCompletedResult(kind domain.StageKind, clk clock.Clock, startTime time.Time, output string) *domain.StageResult {
	result := newStageResult(kind, clk, startTime, constants.StageStatusCompleted)
	result.Output = output
	return result
}

// newSkippedResult creates a skipped StageResult with the reason the
// stage declined to run. Skipped is not failure.
func newSkippedResult(kind domain.StageKind, clk clock.Clock, startTime time.Time, reason string) *domain.StageResult {
	result := newStageResult(kind, clk, startTime, constants.StageStatusSkipped)
	result.SkipReason = reason
	return result
}

// newFailedResult creates a failed StageResult carrying the error message.
func newFailedResult(kind domain.StageKind, clk clock.Clock, startTime time.Time, err error) *domain.StageResult {
	result := newStageResult(kind, clk, startTime, constants.StageStatusFailed)
	if err != nil {
		result.Error = err.Error()
	}
	return result
}
