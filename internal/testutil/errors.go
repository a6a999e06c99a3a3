// Package testutil provides testing utilities for cicd-local.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockDelegated simulates a failed delegated operation (used in tests).
	ErrMockDelegated = errors.New("delegated operation exploded")

	// ErrMockDaemonUnavailable simulates an unreachable container daemon (used in tests).
	ErrMockDaemonUnavailable = errors.New("container daemon unavailable")

	// ErrMockStoreUnavailable simulates an unavailable artifact store (used in tests).
	ErrMockStoreUnavailable = errors.New("artifact store unavailable")

	// ErrMockProbeTimeout simulates a health check that timed out (used in tests).
	ErrMockProbeTimeout = errors.New("probe timed out")

	// ErrMockNotFound simulates a missing resource (used in tests).
	ErrMockNotFound = errors.New("not found")
)
