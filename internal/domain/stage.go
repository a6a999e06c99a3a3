package domain

import (
	"time"

	"github.com/jpbarto/cicd-local/internal/constants"
)

// StageResult captures the outcome of executing a single stage.
// Executors return results; the pipeline engine folds them into the
// run's StageRecord and decides whether the run continues.
//
// Example JSON representation:
//
//	{
//	    "stage": "validate",
//	    "status": "completed",
//	    "output": "4/4 checks passed",
//	    "artifact_name": "validation-context.json",
//	    "duration_ms": 1200
//	}
type StageResult struct {
	// Stage identifies which stage produced this result.
	Stage constants.StageKind `json:"stage"`

	// Status is the terminal status the stage reached
	// (completed, skipped, or failed).
	Status constants.StageStatus `json:"status"`

	// Output contains any text output from the stage execution.
	Output string `json:"output,omitempty"`

	// SkipReason explains why the stage declined to run.
	// Set only when Status is skipped.
	SkipReason string `json:"skip_reason,omitempty"`

	// Error contains the error message if Status is failed.
	Error string `json:"error,omitempty"`

	// ArtifactName names the context artifact the stage produced, if any.
	ArtifactName string `json:"artifact_name,omitempty"`

	// StartedAt is when stage execution began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when stage execution finished.
	CompletedAt time.Time `json:"completed_at"`

	// DurationMs is how long the stage took, in milliseconds.
	DurationMs int64 `json:"duration_ms"`
}

// Completed reports whether the stage finished and emitted its result.
func (r *StageResult) Completed() bool {
	return r.Status == constants.StageStatusCompleted
}

// Skipped reports whether the stage declined to run. Skipped is not
// failure: the pipeline continues and the process exits zero.
func (r *StageResult) Skipped() bool {
	return r.Status == constants.StageStatusSkipped
}

// Failed reports whether the stage aborted on malformed input or a
// delegated operation error.
func (r *StageResult) Failed() bool {
	return r.Status == constants.StageStatusFailed
}
