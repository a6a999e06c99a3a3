package config

import (
	"net/url"
	"strings"

	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - publish repositories must not be empty
//   - release name and namespace must not be empty
//   - unknown_status_policy must be "skip" or "proceed"
//   - stage and probe timeouts must be positive
//   - build image must not be empty
//   - log level, when set, must be a recognized level name
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateCoordinates(cfg); err != nil {
		return err
	}

	if err := validatePolicy(cfg); err != nil {
		return err
	}

	if err := validateTimeouts(&cfg.Timeouts); err != nil {
		return err
	}

	if cfg.Build.Image == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "build.image must not be empty")
	}

	return validateLog(&cfg.Log)
}

// validateCoordinates checks publish destinations and deployment identity.
func validateCoordinates(cfg *Config) error {
	if strings.TrimSpace(cfg.ContainerRepository) == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "container_repository must not be empty")
	}

	if strings.TrimSpace(cfg.HelmRepository) == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "helm_repository must not be empty")
	}
	// Chart pushes go to an OCI registry; catch the common mistake of
	// configuring a bare host for the helm side.
	if u, err := url.Parse(cfg.HelmRepository); err != nil || u.Scheme == "" {
		return errors.Wrapf(errors.ErrInvalidConfig,
			"helm_repository %q must include a scheme (e.g. oci://)", cfg.HelmRepository)
	}

	if strings.TrimSpace(cfg.ReleaseName) == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "release_name must not be empty")
	}

	if strings.TrimSpace(cfg.Namespace) == "" {
		return errors.Wrap(errors.ErrInvalidConfig, "namespace must not be empty")
	}

	return nil
}

// validatePolicy checks the unknown-status policy value.
func validatePolicy(cfg *Config) error {
	policy := constants.UnknownStatusPolicy(cfg.UnknownStatusPolicy)
	if !policy.Valid() {
		return errors.Wrapf(errors.ErrInvalidConfig,
			"unknown_status_policy must be %q or %q, got %q",
			constants.UnknownStatusSkip, constants.UnknownStatusProceed, cfg.UnknownStatusPolicy)
	}
	return nil
}

// validateTimeouts checks duration budgets.
func validateTimeouts(cfg *TimeoutConfig) error {
	if cfg.Stage <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig,
			"timeouts.stage must be positive, got %s", cfg.Stage)
	}

	if cfg.Probe <= 0 {
		return errors.Wrapf(errors.ErrInvalidConfig,
			"timeouts.probe must be positive, got %s", cfg.Probe)
	}

	return nil
}

// validateLog checks log settings.
func validateLog(cfg *LogConfig) error {
	if cfg.Level == "" {
		return nil
	}

	switch cfg.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return errors.Wrapf(errors.ErrInvalidConfig,
			"log.level must be one of debug, info, warn, error; got %q", cfg.Level)
	}
}
