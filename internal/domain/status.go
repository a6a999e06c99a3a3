// Package domain provides shared domain types for the cicd-local pipeline.
package domain

import "github.com/jpbarto/cicd-local/internal/constants"

// Re-export StageStatus, StageKind, and UnknownStatusPolicy from the
// constants package. This allows consumers to import domain types and
// status types together, providing a unified API for working with
// pipeline domain objects.
//
// Example usage:
//
//	import "github.com/jpbarto/cicd-local/internal/domain"
//
//	record := domain.StageRecord{
//	    Kind:   domain.StageKindDeploy,
//	    Status: domain.StageStatusNotStarted,
//	}
type (
	// StageStatus represents the state of a stage in the stage state machine.
	StageStatus = constants.StageStatus

	// StageKind identifies one of the fixed pipeline stages.
	StageKind = constants.StageKind

	// UnknownStatusPolicy selects branch behavior for a missing status field.
	UnknownStatusPolicy = constants.UnknownStatusPolicy
)

// Re-export StageStatus constants for convenience.
// These mirror the values in internal/constants/status.go.
const (
	// StageStatusNotStarted indicates the stage has not begun execution.
	StageStatusNotStarted = constants.StageStatusNotStarted

	// StageStatusRunning indicates the stage is actively executing.
	StageStatusRunning = constants.StageStatusRunning

	// StageStatusCompleted indicates the stage finished and emitted its result.
	StageStatusCompleted = constants.StageStatusCompleted

	// StageStatusSkipped indicates the stage declined to run because an
	// upstream context's status check failed.
	StageStatusSkipped = constants.StageStatusSkipped

	// StageStatusFailed indicates the stage aborted on malformed input or a
	// delegated operation error.
	StageStatusFailed = constants.StageStatusFailed
)

// Re-export StageKind constants for convenience.
// These mirror the values in internal/constants/status.go.
const (
	// StageKindBuild compiles and packages the service into a build artifact.
	StageKindBuild = constants.StageKindBuild

	// StageKindUnitTest runs the service's unit test suite.
	StageKindUnitTest = constants.StageKindUnitTest

	// StageKindDeliver publishes the image and chart and emits the delivery context.
	StageKindDeliver = constants.StageKindDeliver

	// StageKindDeploy installs the chart and emits the deployment context.
	StageKindDeploy = constants.StageKindDeploy

	// StageKindValidate probes the deployment and emits the validation context.
	StageKindValidate = constants.StageKindValidate

	// StageKindIntegrationTest exercises the deployed service end to end.
	StageKindIntegrationTest = constants.StageKindIntegrationTest
)

// Re-export UnknownStatusPolicy constants for convenience.
const (
	// UnknownStatusSkip treats a missing status as not healthy.
	UnknownStatusSkip = constants.UnknownStatusSkip

	// UnknownStatusProceed treats a missing status as permission to continue.
	UnknownStatusProceed = constants.UnknownStatusProceed
)

// StageOrder lists every pipeline stage in data-dependency order. The
// engine executes stages in exactly this order; each stage may consume
// only context artifacts produced by stages earlier in the list.
//
//nolint:gochecknoglobals // Read-only ordering table shared by engine and CLI
var StageOrder = []StageKind{
	StageKindBuild,
	StageKindUnitTest,
	StageKindDeliver,
	StageKindDeploy,
	StageKindValidate,
	StageKindIntegrationTest,
}
