// Package constants provides centralized constant values used throughout cicd-local.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// File names used by cicd-local for state persistence.
const (
	// DeliveryContextFileName is the context artifact produced by the deliver stage.
	DeliveryContextFileName = "delivery-context.json"

	// DeploymentContextFileName is the context artifact produced by the deploy stage.
	DeploymentContextFileName = "deployment-context.json"

	// ValidationContextFileName is the context artifact produced by the validate stage.
	ValidationContextFileName = "validation-context.json"

	// BuildOutputFileName is the artifact holding the build stage's captured output.
	BuildOutputFileName = "build-output.txt"

	// RunRecordFileName is the name of the JSON file that stores pipeline run state.
	RunRecordFileName = "run.json"

	// HistoryDBFileName is the SQLite database holding run and artifact history.
	HistoryDBFileName = "history.db"
)

// Directory names and paths used by cicd-local for organizing data.
const (
	// CicdHome is the hidden directory name where cicd-local stores all its data.
	// This directory is created in the user's home directory.
	CicdHome = ".cicd-local"

	// RunsDir is the directory name where per-run artifacts and records are stored.
	RunsDir = "runs"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// SecretsDir is the directory name where credential files live, outside
	// any project directory.
	SecretsDir = "secrets"
)

// Credential names resolved from the secrets directory. Stages receive
// credentials as explicit handles; nothing reads ambient kubeconfig or
// AWS environment state.
const (
	// KubeconfigCredential is the credential granting cluster access,
	// captured from `kubectl config view --minify --raw`.
	KubeconfigCredential = "kubeconfig"

	// AWSConfigCredential is the credential holding AWS configuration for
	// clusters fronted by AWS auth.
	AWSConfigCredential = "awsconfig"
)

// Context document field names shared by producing and consuming stages.
// The JSON keys use camelCase, matching the artifacts the stages emit.
const (
	FieldTimestamp           = "timestamp"
	FieldReleaseCandidate    = "releaseCandidate"
	FieldImageReference      = "imageReference"
	FieldChartReference      = "chartReference"
	FieldContainerRepository = "containerRepository"
	FieldHelmRepository      = "helmRepository"
	FieldEndpoint            = "endpoint"
	FieldReleaseName         = "releaseName"
	FieldNamespace           = "namespace"
	FieldChartVersion        = "chartVersion"
	FieldStatus              = "status"
	FieldHealthChecks        = "healthChecks"
	FieldReadinessChecks     = "readinessChecks"
)

// Default publish and deployment coordinates. The registries point at a
// public scratch registry so the template works without any account setup.
const (
	// DefaultContainerRepository is the default destination for image pushes.
	DefaultContainerRepository = "ttl.sh"

	// DefaultHelmRepository is the default destination for chart pushes.
	DefaultHelmRepository = "oci://ttl.sh"

	// DefaultReleaseName is the default deployment release identity.
	DefaultReleaseName = "goserv"

	// DefaultNamespace is the default deployment namespace.
	DefaultNamespace = "default"

	// DefaultEndpoint is the cluster-local address assumed for the default
	// release when no deployment context supplies one.
	DefaultEndpoint = "http://goserv.default.svc.cluster.local:8080"

	// DefaultBuildImage is the base image used by the placeholder container
	// commands the template stages run.
	DefaultBuildImage = "alpine:latest"
)

// Version resolution defaults and markers.
const (
	// VersionFileName is the file holding the service version at the source root.
	VersionFileName = "VERSION"

	// ChartFileName is the Helm chart manifest holding the chart version.
	ChartFileName = "Chart.yaml"

	// DefaultImageVersion is used when the source tree carries no VERSION file.
	DefaultImageVersion = "1.0.0"

	// DefaultChartVersion is used when no Chart.yaml can be located.
	DefaultChartVersion = "0.1.0"

	// ReleaseCandidateSuffix is appended to image tags of pre-release runs.
	ReleaseCandidateSuffix = "-rc"
)

// Names of the checks the validate stage evaluates against a deployment.
const (
	HealthCheckPodReady         = "pod-ready"
	HealthCheckServiceAvailable = "service-available"
	ReadinessCheckHTTP          = "http-200"
	ReadinessCheckMetrics       = "metrics-available"
)

// Timeout configurations for various operations.
const (
	// DefaultStageTimeout is the default maximum duration for a single stage,
	// covering the delegated container/publish/deploy operation it wraps.
	DefaultStageTimeout = 15 * time.Minute

	// DefaultProbeTimeout is the default maximum duration for one health or
	// readiness check evaluated by the validate stage.
	DefaultProbeTimeout = 30 * time.Second
)

// Schema version constants for data migration support.
const (
	// RunSchemaVersion is the current version of the pipeline run JSON schema.
	// This enables forward-compatible schema migrations.
	RunSchemaVersion = "1.0"
)
