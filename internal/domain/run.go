// Package domain provides shared domain types for the cicd-local pipeline.
// These types are used across all internal packages to ensure consistent
// data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case per architecture requirements.
package domain

import (
	"time"

	"github.com/jpbarto/cicd-local/internal/constants"
)

// PipelineRun represents a single invocation of the pipeline, from the
// build stage through integration tests. It records per-stage outcomes
// and the audit trail of status transitions, and is persisted as
// run.json inside the run's artifact directory.
//
// Example JSON representation:
//
//	{
//	    "id": "run-20260825-100000",
//	    "release_name": "goserv",
//	    "namespace": "default",
//	    "release_candidate": true,
//	    "stages": [...],
//	    "created_at": "2026-08-25T10:00:00Z",
//	    "updated_at": "2026-08-25T10:05:00Z",
//	    "schema_version": "1.0"
//	}
type PipelineRun struct {
	// ID is the unique identifier for the run.
	// Format: run-YYYYMMDD-HHMMSS
	ID string `json:"id"`

	// ReleaseName identifies the Helm release this run delivers.
	ReleaseName string `json:"release_name"`

	// Namespace is the cluster namespace the run deploys into.
	Namespace string `json:"namespace"`

	// ReleaseCandidate marks the run as producing pre-release artifacts.
	// Release-candidate image tags carry an "-rc" suffix.
	ReleaseCandidate bool `json:"release_candidate"`

	// SourceDir is the project directory the run was started from.
	SourceDir string `json:"source_dir,omitempty"`

	// Stages is the ordered list of per-stage records, one per pipeline
	// stage in execution order.
	Stages []StageRecord `json:"stages"`

	// CreatedAt is when the run was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the run record was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// CompletedAt is when the run finished (nil if still in progress).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Metadata stores arbitrary key-value data associated with the run.
	Metadata map[string]any `json:"metadata,omitempty"`

	// SchemaVersion indicates the version of the PipelineRun schema.
	// This enables forward-compatible schema migrations.
	SchemaVersion string `json:"schema_version"`
}

// StageRecord tracks one stage's lifecycle within a run. Records are
// mutated in place by the state machine as the stage progresses; the
// run store persists the whole run after every transition.
//
// Example JSON representation:
//
//	{
//	    "kind": "deploy",
//	    "status": "completed",
//	    "artifact_name": "deployment-context.json",
//	    "started_at": "2026-08-25T10:01:00Z",
//	    "completed_at": "2026-08-25T10:02:30Z",
//	    "duration_ms": 90000
//	}
type StageRecord struct {
	// Kind identifies which pipeline stage this record tracks.
	Kind constants.StageKind `json:"kind"`

	// Status is the current state in the stage lifecycle.
	// Uses constants.StageStatus values (not_started, running, etc.).
	Status constants.StageStatus `json:"status"`

	// SkipReason explains why the stage was skipped (set only for skipped).
	SkipReason string `json:"skip_reason,omitempty"`

	// Error contains the error message if the stage failed.
	Error string `json:"error,omitempty"`

	// ArtifactName is the name of the context artifact the stage produced,
	// if any. Names are store keys, never filesystem paths.
	ArtifactName string `json:"artifact_name,omitempty"`

	// StartedAt is when stage execution began (nil if not yet started).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when stage execution finished (nil if not yet complete).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// DurationMs is how long the stage ran, in milliseconds.
	DurationMs int64 `json:"duration_ms,omitempty"`

	// Transitions is the audit trail of status changes for this stage.
	Transitions []Transition `json:"transitions,omitempty"`
}

// Transition records a single status change in a stage's audit trail.
type Transition struct {
	// FromStatus is the status before the transition.
	FromStatus constants.StageStatus `json:"from_status"`

	// ToStatus is the status after the transition.
	ToStatus constants.StageStatus `json:"to_status"`

	// Timestamp is when the transition occurred (UTC).
	Timestamp time.Time `json:"timestamp"`

	// Reason is an optional explanation for the transition.
	Reason string `json:"reason,omitempty"`
}

// Stage returns a pointer to the record for the given stage kind, or nil
// if the run has no record for it. The pointer addresses the run's own
// slice element so the state machine can update it in place.
func (r *PipelineRun) Stage(kind constants.StageKind) *StageRecord {
	for i := range r.Stages {
		if r.Stages[i].Kind == kind {
			return &r.Stages[i]
		}
	}
	return nil
}

// Failed reports whether any stage in the run failed.
func (r *PipelineRun) Failed() bool {
	for i := range r.Stages {
		if r.Stages[i].Status == constants.StageStatusFailed {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the run.
// Value types are copied via struct assignment, while slices and maps
// are explicitly deep copied to prevent shared references.
func (r *PipelineRun) Clone() *PipelineRun {
	if r == nil {
		return nil
	}

	// Shallow copy handles all value types (strings, bool, time.Time)
	clone := *r

	// Deep copy CompletedAt pointer
	if r.CompletedAt != nil {
		completedAt := *r.CompletedAt
		clone.CompletedAt = &completedAt
	}

	// Deep copy Stages slice with nested Transitions
	if r.Stages != nil {
		clone.Stages = make([]StageRecord, len(r.Stages))
		for i, s := range r.Stages {
			clone.Stages[i] = s.Clone()
		}
	}

	// Deep copy Metadata map
	if r.Metadata != nil {
		clone.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			clone.Metadata[k] = v
		}
	}

	return &clone
}

// Clone creates a deep copy of the stage record.
func (s StageRecord) Clone() StageRecord {
	clone := s
	if s.StartedAt != nil {
		startedAt := *s.StartedAt
		clone.StartedAt = &startedAt
	}
	if s.CompletedAt != nil {
		completedAt := *s.CompletedAt
		clone.CompletedAt = &completedAt
	}
	if s.Transitions != nil {
		clone.Transitions = make([]Transition, len(s.Transitions))
		copy(clone.Transitions, s.Transitions)
	}
	return clone
}
