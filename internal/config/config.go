// Package config provides configuration management for cicd-local with
// layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence
// first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (CICD_* prefix)
//  3. Project config (.cicd.yaml in the project root)
//  4. Global config (~/.cicd-local/config.yaml)
//  5. Built-in defaults
//
// An optional project dotenv file (local_cicd.env) is loaded into the process
// environment before the env layer binds, so it participates at env
// precedence without overriding variables the shell already set.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import (
	"time"

	"github.com/jpbarto/cicd-local/internal/constants"
)

// Config is the root configuration structure for cicd-local.
type Config struct {
	// ReleaseCandidate appends the -rc suffix to emitted image tags,
	// marking the run's outputs as pre-release.
	// Default: false
	ReleaseCandidate bool `yaml:"release_candidate" mapstructure:"release_candidate"`

	// ContainerRepository is the destination registry for image pushes.
	// Default: "ttl.sh" (public scratch registry, no account required)
	ContainerRepository string `yaml:"container_repository" mapstructure:"container_repository"`

	// HelmRepository is the destination registry for chart pushes.
	// Default: "oci://ttl.sh"
	HelmRepository string `yaml:"helm_repository" mapstructure:"helm_repository"`

	// ReleaseName is the deployment release identity.
	// Default: "goserv"
	ReleaseName string `yaml:"release_name" mapstructure:"release_name"`

	// Namespace is the deployment namespace.
	// Default: "default"
	Namespace string `yaml:"namespace" mapstructure:"namespace"`

	// Kubeconfig is the path to the kubeconfig file handed to the deploy
	// stage as an explicit credential handle. Empty means the conventional
	// ~/.kube/config location (resolved at the CLI boundary). The value is
	// a location, never material; material is redacted from all log output.
	Kubeconfig string `yaml:"kubeconfig,omitempty" mapstructure:"kubeconfig"`

	// AWSConfig is the path to AWS shared credentials for clusters fronted
	// by AWS auth. Empty means ~/.aws/credentials. Optional.
	AWSConfig string `yaml:"awsconfig,omitempty" mapstructure:"awsconfig"`

	// SourceDir is the directory holding the service source tree.
	// Default: "."
	SourceDir string `yaml:"source_dir" mapstructure:"source_dir"`

	// ArtifactsDir overrides where run artifacts are stored. Empty means
	// ~/.cicd-local/runs/<run-id>.
	ArtifactsDir string `yaml:"artifacts_dir,omitempty" mapstructure:"artifacts_dir"`

	// UnknownStatusPolicy decides what health-dependent stages do when the
	// upstream context carries no status field at all: "skip" treats the
	// deployment as unverified, "proceed" continues anyway. A present
	// non-healthy status always blocks regardless of policy.
	// Default: "skip"
	UnknownStatusPolicy string `yaml:"unknown_status_policy" mapstructure:"unknown_status_policy"`

	// BuildArtifact is an optional path to an upstream build artifact,
	// opened into a handle at the CLI boundary for single-stage invocations.
	BuildArtifact string `yaml:"build_artifact,omitempty" mapstructure:"build_artifact"`

	// DeliveryContext is an optional path to an upstream delivery context.
	DeliveryContext string `yaml:"delivery_context,omitempty" mapstructure:"delivery_context"`

	// DeploymentContext is an optional path to an upstream deployment context.
	DeploymentContext string `yaml:"deployment_context,omitempty" mapstructure:"deployment_context"`

	// ValidationContext is an optional path to an upstream validation context.
	ValidationContext string `yaml:"validation_context,omitempty" mapstructure:"validation_context"`

	// Build contains settings for the build stage.
	Build BuildConfig `yaml:"build" mapstructure:"build"`

	// Timeouts contains duration budgets for stage and probe execution.
	Timeouts TimeoutConfig `yaml:"timeouts" mapstructure:"timeouts"`

	// Telemetry contains settings for trace emission.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`

	// Log contains settings for log output.
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// BuildConfig contains settings for the build stage.
type BuildConfig struct {
	// Image is the container image the placeholder stage commands run in.
	// Default: "alpine:latest"
	Image string `yaml:"image" mapstructure:"image"`
}

// TimeoutConfig contains duration budgets for pipeline execution.
type TimeoutConfig struct {
	// Stage is the maximum duration for a single stage, covering the
	// delegated container/publish/deploy operation it wraps.
	// Default: 15 minutes
	Stage time.Duration `yaml:"stage" mapstructure:"stage"`

	// Probe is the maximum duration for one health or readiness check
	// evaluated by the validate stage.
	// Default: 30 seconds
	Probe time.Duration `yaml:"probe" mapstructure:"probe"`
}

// TelemetryConfig contains settings for trace emission.
type TelemetryConfig struct {
	// Enabled turns on span emission for pipeline runs and stages.
	// Default: false
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// LogConfig contains settings for log output.
type LogConfig struct {
	// Level overrides the log level derived from --verbose/--quiet.
	// Valid values: "debug", "info", "warn", "error". Empty means derived.
	Level string `yaml:"level,omitempty" mapstructure:"level"`

	// File overrides the CLI log file location. Empty means
	// ~/.cicd-local/logs/cicd.log.
	File string `yaml:"file,omitempty" mapstructure:"file"`
}

// Policy returns the typed unknown-status policy. Any value other than
// "proceed" resolves to the conservative skip policy; Validate guarantees
// loaded configurations only carry the two recognized strings.
func (c *Config) Policy() constants.UnknownStatusPolicy {
	if constants.UnknownStatusPolicy(c.UnknownStatusPolicy) == constants.UnknownStatusProceed {
		return constants.UnknownStatusProceed
	}
	return constants.UnknownStatusSkip
}
