// Package stages provides the stage executors for the cicd-local pipeline.
//
// This package contains the StageExecutor interface and one implementation
// per pipeline stage (build, unit-test, deliver, deploy, validate,
// integration-test). The Registry maps stage kinds to their executors.
// The real work each stage stands for (image builds, chart pushes, cluster
// installs, probing) sits behind the collaborator interfaces in
// collaborators.go; the executors own the context exchange around it.
//
// Import rules:
//   - CAN import: internal/artifact, internal/clock, internal/constants,
//     internal/contract, internal/credential, internal/domain,
//     internal/errors, internal/version
//   - MUST NOT import: internal/pipeline, internal/cli, internal/docker
package stages

import (
	"context"
	"fmt"
	"sync"

	"github.com/jpbarto/cicd-local/internal/domain"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// StageExecutor defines the interface for executing a single pipeline stage.
// Implementations handle one stage kind each and return structured results.
//
// All Execute implementations must:
//   - Check ctx.Done() at the start and before delegated operations
//   - Log execution start/end with stage context
//   - Return a StageResult with status, output, and timing
//   - Return Skipped (not Failed) when an upstream status check blocks them
type StageExecutor interface {
	// Execute runs the stage and returns its result.
	// The context controls timeout and cancellation.
	// req carries the stage's parameters and optional upstream handles.
	Execute(ctx context.Context, req *Request) (*domain.StageResult, error)

	// Kind returns the StageKind this executor handles.
	Kind() domain.StageKind
}

// Registry maps stage kinds to their executors.
// It is safe for concurrent read access after initialization.
// Use NewRegistry() to create and Register() to add executors.
type Registry struct {
	mu        sync.RWMutex
	executors map[domain.StageKind]StageExecutor
}

// NewRegistry creates a new empty executor registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[domain.StageKind]StageExecutor),
	}
}

// Register adds an executor to the registry.
// If an executor for the same kind already exists, it is replaced.
func (r *Registry) Register(e StageExecutor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[e.Kind()] = e
}

// Get retrieves the executor for a stage kind.
// Returns ErrExecutorNotFound if no executor is registered for the kind.
func (r *Registry) Get(kind domain.StageKind) (StageExecutor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.executors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", cicderrors.ErrExecutorNotFound, kind)
	}
	return e, nil
}

// Has checks if an executor is registered for the given stage kind.
func (r *Registry) Has(kind domain.StageKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.executors[kind]
	return ok
}

// Kinds returns all registered stage kinds.
func (r *Registry) Kinds() []domain.StageKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]domain.StageKind, 0, len(r.executors))
	for k := range r.executors {
		kinds = append(kinds, k)
	}
	return kinds
}
