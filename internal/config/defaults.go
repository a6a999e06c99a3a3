package config

import (
	"github.com/jpbarto/cicd-local/internal/constants"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
//
// The publish defaults point at a public scratch registry so the pipeline
// works without any account setup.
func DefaultConfig() *Config {
	return &Config{
		// ReleaseCandidate: false emits final tags; runs opt in to -rc
		// suffixing explicitly.
		ReleaseCandidate: false,

		// ContainerRepository / HelmRepository: ttl.sh accepts anonymous
		// pushes and expires images automatically.
		ContainerRepository: constants.DefaultContainerRepository,
		HelmRepository:      constants.DefaultHelmRepository,

		// ReleaseName / Namespace: the template service's deployment identity.
		ReleaseName: constants.DefaultReleaseName,
		Namespace:   constants.DefaultNamespace,

		// Kubeconfig / AWSConfig: empty means the conventional home-relative
		// locations, resolved at the CLI boundary when handles are built.
		Kubeconfig: "",
		AWSConfig:  "",

		// SourceDir: the current directory is the project being shipped.
		SourceDir: ".",

		// ArtifactsDir: empty means per-run directories under the
		// cicd-local home.
		ArtifactsDir: "",

		// UnknownStatusPolicy: skip is the conservative default; an
		// unverified deployment is not treated as healthy.
		UnknownStatusPolicy: string(constants.UnknownStatusSkip),

		Build: BuildConfig{
			// Image: alpine keeps the placeholder stage commands small.
			Image: constants.DefaultBuildImage,
		},

		Timeouts: TimeoutConfig{
			Stage: constants.DefaultStageTimeout,
			Probe: constants.DefaultProbeTimeout,
		},

		Telemetry: TelemetryConfig{
			// Enabled: spans are opt-in; most local runs don't need them.
			Enabled: false,
		},

		Log: LogConfig{
			// Level / File: empty means derived from flags and the
			// default log location.
			Level: "",
			File:  "",
		},
	}
}
