package stages

import (
	"github.com/jpbarto/cicd-local/internal/artifact"
	"github.com/jpbarto/cicd-local/internal/clock"
	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/credential"
)

// Request carries everything a stage executor needs for one invocation:
// the run's parameters, the artifact store for produced contexts, and the
// optional upstream handles it may consume. Upstream handles are nil when
// the producing stage did not run; executors degrade to defaults in that
// case rather than failing. Credentials are explicit handles injected by
// the caller - no stage reads ambient environment state.
type Request struct {
	// Store receives the context artifacts the stage produces.
	Store artifact.Store

	// Clock stamps produced contexts and stage timings.
	Clock clock.Clock

	// SourceDir is the project directory holding the service source tree.
	SourceDir string

	// ReleaseCandidate marks the run's outputs as pre-release; the deliver
	// stage appends the -rc suffix to emitted image tags.
	ReleaseCandidate bool

	// ContainerRepository is the destination registry for image pushes.
	ContainerRepository string

	// HelmRepository is the destination registry for chart pushes.
	HelmRepository string

	// ReleaseName is the deployment release identity.
	ReleaseName string

	// Namespace is the deployment namespace.
	Namespace string

	// BuildImage is the base image the placeholder stage commands run in.
	BuildImage string

	// UnknownStatusPolicy decides what health-dependent stages do when the
	// upstream context carries no status field at all. A present
	// non-"healthy" value always blocks regardless of policy.
	UnknownStatusPolicy constants.UnknownStatusPolicy

	// BuildArtifact is the build stage's output, consumed by unit-test and
	// deliver. Optional.
	BuildArtifact artifact.Handle

	// DeliveryContext is the deliver stage's context, consumed by deploy.
	// Optional.
	DeliveryContext artifact.Handle

	// DeploymentContext is the deploy stage's context, consumed by validate
	// and integration-test. Optional.
	DeploymentContext artifact.Handle

	// ValidationContext is the validate stage's context, consumed by
	// integration-test for its health gate. Optional.
	ValidationContext artifact.Handle

	// Kubeconfig grants cluster access. Required by the deploy stage.
	Kubeconfig *credential.Handle

	// AWSConfig holds AWS configuration for clusters fronted by AWS auth.
	// Optional.
	AWSConfig *credential.Handle
}

// clk returns the request's clock, defaulting to the real clock so a
// hand-built Request in tests or tooling never panics on timestamps.
func (r *Request) clk() clock.Clock {
	if r.Clock != nil {
		return r.Clock
	}
	return clock.RealClock{}
}
