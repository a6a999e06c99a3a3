// Package errors provides centralized error handling for cicd-local.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrMalformedContext indicates an upstream context artifact whose
	// contents are not a parseable JSON object. Stages fail rather than
	// proceed when they receive one.
	ErrMalformedContext = errors.New("malformed context artifact")

	// ErrMissingCredential indicates a required credential (kubeconfig,
	// awsconfig) was not supplied or could not be read.
	ErrMissingCredential = errors.New("missing credential")

	// ErrDelegatedOperationFailed indicates an external operation (container
	// run, image push, chart install, health probe) failed. The underlying
	// cause is wrapped verbatim; no retry is attempted.
	ErrDelegatedOperationFailed = errors.New("delegated operation failed")

	// ErrStageFailed indicates a pipeline stage completed with a failure.
	// The engine aborts the run at the failing stage.
	ErrStageFailed = errors.New("stage failed")

	// ErrArtifactExists indicates an attempt to write an artifact name that
	// has already been produced. Context artifacts are write-once.
	ErrArtifactExists = errors.New("artifact already exists")

	// ErrArtifactNotFound indicates the requested artifact does not exist.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrInvalidArtifactName indicates an artifact name containing characters
	// outside the allowed set.
	ErrInvalidArtifactName = errors.New("invalid artifact name")

	// ErrPathTraversal indicates an attempt to use path traversal in a filename.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrInvalidTransition indicates an attempt to make an invalid stage
	// status transition.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrExecutorNotFound indicates no executor is registered for the given
	// stage kind.
	ErrExecutorNotFound = errors.New("executor not found for stage kind")

	// ErrRunExists indicates an attempt to create a pipeline run record that
	// already exists.
	ErrRunExists = errors.New("pipeline run already exists")

	// ErrRunNotFound indicates the requested pipeline run does not exist.
	ErrRunNotFound = errors.New("pipeline run not found")

	// ErrRunCorrupted indicates the pipeline run record is corrupted or unreadable.
	ErrRunCorrupted = errors.New("pipeline run record corrupted")

	// ErrLockTimeout indicates a file lock could not be acquired within the
	// timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigNotFound indicates that the configuration file was not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidConfig indicates a configuration value failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSupersededParameter indicates a configuration key from a retired
	// revision of the stage contract. The error message names the
	// replacement.
	ErrSupersededParameter = errors.New("superseded parameter")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrOperationCanceled indicates the user canceled an operation.
	ErrOperationCanceled = errors.New("operation canceled by user")

	// ErrNonInteractiveMode indicates that an operation requiring confirmation
	// was attempted in non-interactive mode without the --yes flag.
	ErrNonInteractiveMode = errors.New("use --yes in non-interactive mode")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// This ensures a non-zero exit code while preventing duplicate error messages.
	// Commands should silence cobra's error printing when this is returned.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
