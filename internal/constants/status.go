package constants

// StageStatus represents the state of a pipeline stage in the stage state machine.
// Status values use snake_case for JSON serialization compatibility.
type StageStatus string

// Stage status constants define the valid states a stage can be in.
// These follow the stage state machine:
//
//	NotStarted → Running
//	Running → Completed, Skipped, Failed
//
// Skipped is reached only when an upstream context's status check fails;
// Failed is reached on malformed input or a delegated operation error;
// Completed always carries the stage's emitted result.
const (
	// StageStatusNotStarted indicates the stage has not begun execution.
	StageStatusNotStarted StageStatus = "not_started"

	// StageStatusRunning indicates the stage is actively executing.
	StageStatusRunning StageStatus = "running"

	// StageStatusCompleted indicates the stage finished and emitted its result.
	StageStatusCompleted StageStatus = "completed"

	// StageStatusSkipped indicates the stage declined to run because an
	// upstream context's status check failed. Skipped is not failure.
	StageStatusSkipped StageStatus = "skipped"

	// StageStatusFailed indicates the stage aborted on malformed input or a
	// delegated operation error.
	StageStatusFailed StageStatus = "failed"
)

// String returns the string representation of the StageStatus.
// This implements fmt.Stringer for convenient logging and debugging.
func (s StageStatus) String() string {
	return string(s)
}

// StageKind identifies one discrete unit of pipeline work.
// Kind values use kebab-case for CLI and JSON compatibility.
type StageKind string

// Stage kind constants, in data-dependency order.
const (
	// StageKindBuild compiles and packages the service into a build artifact.
	StageKindBuild StageKind = "build"

	// StageKindUnitTest runs the service's unit test suite.
	StageKindUnitTest StageKind = "unit-test"

	// StageKindDeliver publishes the image and chart and emits the delivery context.
	StageKindDeliver StageKind = "deliver"

	// StageKindDeploy installs the chart and emits the deployment context.
	StageKindDeploy StageKind = "deploy"

	// StageKindValidate probes the deployment and emits the validation context.
	StageKindValidate StageKind = "validate"

	// StageKindIntegrationTest exercises the deployed service end to end.
	StageKindIntegrationTest StageKind = "integration-test"
)

// String returns the string representation of the StageKind.
// This implements fmt.Stringer for convenient logging and debugging.
func (k StageKind) String() string {
	return string(k)
}

// Deployment health statuses carried in the `status` field of validation
// contexts. Anything other than StatusHealthy blocks health-dependent stages.
const (
	// StatusHealthy is the only status value that permits dependent stages to run.
	StatusHealthy = "healthy"

	// StatusUnhealthy is emitted when one or more checks fail.
	StatusUnhealthy = "unhealthy"
)

// UnknownStatusPolicy decides what a health-dependent stage does when the
// upstream context carries no status field at all. A present non-"healthy"
// value always blocks regardless of policy.
type UnknownStatusPolicy string

// Unknown status policy constants.
const (
	// UnknownStatusSkip treats a missing status as not healthy (conservative default).
	UnknownStatusSkip UnknownStatusPolicy = "skip"

	// UnknownStatusProceed treats a missing status as permission to continue.
	UnknownStatusProceed UnknownStatusPolicy = "proceed"
)

// String returns the string representation of the UnknownStatusPolicy.
func (p UnknownStatusPolicy) String() string {
	return string(p)
}

// Valid reports whether the policy is one of the recognized values.
func (p UnknownStatusPolicy) Valid() bool {
	return p == UnknownStatusSkip || p == UnknownStatusProceed
}
