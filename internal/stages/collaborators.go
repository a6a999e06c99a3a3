// This file defines the collaborator interfaces the stage executors
// delegate to. The interfaces are consumer-side: they describe exactly
// what the stages need, and nothing more. The default implementations in
// placeholder.go run trivial container commands; a real adopter replaces
// them with actual build, publish, deploy, and probe logic.
package stages

import (
	"context"

	"github.com/jpbarto/cicd-local/internal/credential"
)

// RunSpec describes one container command execution.
type RunSpec struct {
	// Image is the container image to run (pulled if absent).
	Image string

	// Cmd is the command and its arguments.
	Cmd []string

	// Env holds environment variables in KEY=value form.
	Env []string
}

// ContainerRunner executes a command in a container and returns its
// captured output. The pipeline's placeholder stages route every
// delegated operation through a runner.
type ContainerRunner interface {
	Run(ctx context.Context, spec RunSpec) (string, error)
}

// ImagePush describes a container image publish operation.
type ImagePush struct {
	// Repository is the destination registry (e.g. "ttl.sh").
	Repository string

	// Name is the image name within the repository.
	Name string

	// Tag is the version tag, with the -rc suffix already applied for
	// release candidates.
	Tag string
}

// ChartPush describes a Helm chart publish operation.
type ChartPush struct {
	// Repository is the destination chart registry (e.g. "oci://ttl.sh").
	Repository string

	// Name is the chart name.
	Name string

	// Version is the chart version.
	Version string
}

// Publisher pushes build outputs to their destination registries and
// returns the fully qualified reference of each published artifact.
type Publisher interface {
	PushImage(ctx context.Context, push ImagePush) (string, error)
	PushChart(ctx context.Context, push ChartPush) (string, error)
}

// InstallSpec describes a chart installation on a cluster.
type InstallSpec struct {
	// ChartReference is the fully qualified chart coordinate to install.
	ChartReference string

	// ImageReference is the fully qualified image the release should run.
	ImageReference string

	// ReleaseName is the release identity to install or upgrade.
	ReleaseName string

	// Namespace is the target namespace.
	Namespace string

	// Kubeconfig grants cluster access. Never nil; the deploy stage
	// verifies presence before delegating.
	Kubeconfig *credential.Handle

	// AWSConfig holds AWS configuration for clusters fronted by AWS auth.
	// May be nil.
	AWSConfig *credential.Handle
}

// Deployer installs or upgrades a release on a cluster and returns the
// reachable endpoint of the deployed instance.
type Deployer interface {
	Install(ctx context.Context, spec InstallSpec) (string, error)
}

// CheckResult is the outcome of one named health or readiness check.
type CheckResult struct {
	// Name identifies the check (e.g. "pod-ready").
	Name string

	// Passed reports whether the check succeeded.
	Passed bool

	// Detail carries the probe's output for the check.
	Detail string
}

// Prober evaluates named checks against a deployed instance's endpoint.
// Results are returned in the same order as the requested checks.
type Prober interface {
	Probe(ctx context.Context, endpoint string, checks []string) ([]CheckResult, error)
}
