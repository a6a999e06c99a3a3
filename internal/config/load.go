package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/errors"
)

// newViperInstance creates a new Viper instance with standard cicd-local
// configuration. This includes environment variable prefix (CICD_), key
// replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("CICD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence,
// treating the current directory as the project root. Configuration is loaded
// in the following order (highest precedence first):
//  1. Environment variables (CICD_* prefix, including local_cicd.env values)
//  2. Project config (.cicd.yaml)
//  3. Global config (~/.cicd-local/config.yaml)
//  4. Built-in defaults
//
// For CLI flag overrides, use LoadWithOverrides instead.
//
// The function returns an error only for actual configuration problems,
// not for missing config files (which are expected in many scenarios).
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, ".")
}

// LoadFrom reads configuration treating projectDir as the project root.
// The optional local_cicd.env dotenv file in projectDir is loaded into the
// process environment first; variables the shell already set win over file
// values.
func LoadFrom(ctx context.Context, projectDir string) (*Config, error) {
	if err := loadEnvFile(projectDir); err != nil {
		return nil, err
	}

	v := newViperInstance()

	// Load global config first (lower precedence)
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	// Load project config (higher precedence, merges over global)
	if err := loadProjectConfig(v, projectDir); err != nil {
		return nil, err
	}

	// Keys retired by contract revisions fail loudly rather than being
	// silently ignored.
	if err := rejectSupersededKeys(v); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("container_repository", cfg.ContainerRepository).
		Str("helm_repository", cfg.HelmRepository).
		Str("release_name", cfg.ReleaseName).
		Str("namespace", cfg.Namespace).
		Str("unknown_status_policy", cfg.UnknownStatusPolicy).
		Msg("configuration loaded")

	return cfg, nil
}

// loadEnvFile loads the optional project dotenv file (local_cicd.env) into
// the process environment before viper's env binding runs. The dotenv loader
// never overrides variables that are already set.
func loadEnvFile(projectDir string) error {
	path := filepath.Join(projectDir, constants.EnvFileName)
	if !fileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load env file %s", path)
	}
	return nil
}

// loadGlobalConfig attempts to load the global config file
// (~/.cicd-local/config.yaml). Returns nil if the file doesn't exist or the
// home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, ok := getGlobalConfigPathIfExists()
	if !ok {
		// Global config doesn't exist or home dir unavailable, skip silently
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// getGlobalConfigPathIfExists returns the global config path if it exists.
// Returns empty string and false if the home directory cannot be determined
// or the config file does not exist.
func getGlobalConfigPathIfExists() (string, bool) {
	globalConfigPath, err := GlobalConfigPath()
	if err != nil {
		return "", false
	}
	if !fileExists(globalConfigPath) {
		return "", false
	}
	return globalConfigPath, true
}

// loadProjectConfig attempts to load the project config file (.cicd.yaml).
// Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper, projectDir string) error {
	projectConfigPath := ProjectConfigPath(projectDir)
	if !fileExists(projectConfigPath) {
		// Project config doesn't exist, skip silently
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// rejectSupersededKeys fails when a configuration key from a retired contract
// revision is present in any source (file or environment). The integration
// test target is derived from the deployment context's endpoint, so the old
// target coordinates are rejected with an error naming the replacement.
func rejectSupersededKeys(v *viper.Viper) error {
	for _, key := range constants.SupersededConfigKeys {
		if v.IsSet(key) {
			return errors.Wrapf(errors.ErrSupersededParameter,
				"config key '%s' is no longer supported: the integration-test target is derived from the deployment context's endpoint", key)
		}
	}
	return nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// The overrides parameter contains values from CLI flags which have the
// highest precedence in the configuration hierarchy.
//
// Only non-zero values in overrides are applied. Zero values are ignored
// to allow partial overrides.
func LoadWithOverrides(ctx context.Context, projectDir string, overrides *Config) (*Config, error) {
	cfg, err := LoadFrom(ctx, projectDir)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	// Re-validate after applying overrides
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// Overlay merges non-zero override values into cfg (CLI flag precedence)
// and re-validates the result. Boolean fields follow the applyOverrides
// caveat: the caller assigns them directly when the flag was set.
func Overlay(cfg, overrides *Config) error {
	if overrides != nil {
		applyOverrides(cfg, overrides)
	}
	if err := Validate(cfg); err != nil {
		return errors.Wrap(err, "invalid configuration after overrides")
	}
	return nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// This function allows precise control over which config files are loaded.
//
// projectConfigPath is the path to project-level config (higher priority).
// globalConfigPath is the path to global config (lower priority).
// Either path can be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	// Load global config first (lower precedence)
	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	// Load project config (higher precedence, merges over global)
	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	if err := rejectSupersededKeys(v); err != nil {
		return nil, err
	}

	return unmarshalAndValidate(v)
}

// setDefaults configures all default values on the Viper instance.
// These defaults match the values from DefaultConfig().
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping,
// and every recognized key needs a default so environment-only values bind
// during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Publish coordinates
	v.SetDefault("release_candidate", false)
	v.SetDefault("container_repository", constants.DefaultContainerRepository)
	v.SetDefault("helm_repository", constants.DefaultHelmRepository)

	// Deployment identity
	v.SetDefault("release_name", constants.DefaultReleaseName)
	v.SetDefault("namespace", constants.DefaultNamespace)

	// Credential handle locations (empty means conventional home-relative paths)
	v.SetDefault("kubeconfig", "")
	v.SetDefault("awsconfig", "")

	// Directories
	v.SetDefault("source_dir", ".")
	v.SetDefault("artifacts_dir", "")

	// Health-dependency policy
	v.SetDefault("unknown_status_policy", string(constants.UnknownStatusSkip))

	// Upstream artifact handles for single-stage invocations
	v.SetDefault("build_artifact", "")
	v.SetDefault("delivery_context", "")
	v.SetDefault("deployment_context", "")
	v.SetDefault("validation_context", "")

	// Build defaults
	v.SetDefault("build.image", constants.DefaultBuildImage)

	// Timeout defaults
	v.SetDefault("timeouts.stage", constants.DefaultStageTimeout)
	v.SetDefault("timeouts.probe", constants.DefaultProbeTimeout)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)

	// Log defaults
	v.SetDefault("log.level", "")
	v.SetDefault("log.file", "")
}

// applyOverrides merges non-zero override values into the config.
// Only non-zero values are applied to allow partial overrides.
//
// IMPORTANT: Boolean fields (ReleaseCandidate, Telemetry.Enabled) cannot be
// overridden to false using this function because Go's zero value for bool
// is false, making it impossible to distinguish "explicitly set to false"
// from "not set". The CLI handles boolean flags separately:
//
//	if cmd.Flags().Changed("release-candidate") {
//	    cfg.ReleaseCandidate = rcFlag // Use flag value directly
//	}
func applyOverrides(cfg, overrides *Config) {
	applyCoordinateOverrides(cfg, overrides)
	applyHandleOverrides(cfg, overrides)

	if overrides.SourceDir != "" {
		cfg.SourceDir = overrides.SourceDir
	}
	if overrides.ArtifactsDir != "" {
		cfg.ArtifactsDir = overrides.ArtifactsDir
	}
	if overrides.UnknownStatusPolicy != "" {
		cfg.UnknownStatusPolicy = overrides.UnknownStatusPolicy
	}
	if overrides.Build.Image != "" {
		cfg.Build.Image = overrides.Build.Image
	}
	if overrides.Timeouts.Stage != 0 {
		cfg.Timeouts.Stage = overrides.Timeouts.Stage
	}
	if overrides.Timeouts.Probe != 0 {
		cfg.Timeouts.Probe = overrides.Timeouts.Probe
	}
	if overrides.Log.Level != "" {
		cfg.Log.Level = overrides.Log.Level
	}
	if overrides.Log.File != "" {
		cfg.Log.File = overrides.Log.File
	}
}

// applyCoordinateOverrides applies publish and deployment coordinate
// overrides. Extracted from applyOverrides to reduce cognitive complexity.
func applyCoordinateOverrides(cfg, overrides *Config) {
	if overrides.ContainerRepository != "" {
		cfg.ContainerRepository = overrides.ContainerRepository
	}
	if overrides.HelmRepository != "" {
		cfg.HelmRepository = overrides.HelmRepository
	}
	if overrides.ReleaseName != "" {
		cfg.ReleaseName = overrides.ReleaseName
	}
	if overrides.Namespace != "" {
		cfg.Namespace = overrides.Namespace
	}
}

// applyHandleOverrides applies credential and upstream artifact handle path
// overrides. Extracted from applyOverrides to reduce cognitive complexity.
func applyHandleOverrides(cfg, overrides *Config) {
	if overrides.Kubeconfig != "" {
		cfg.Kubeconfig = overrides.Kubeconfig
	}
	if overrides.AWSConfig != "" {
		cfg.AWSConfig = overrides.AWSConfig
	}
	if overrides.BuildArtifact != "" {
		cfg.BuildArtifact = overrides.BuildArtifact
	}
	if overrides.DeliveryContext != "" {
		cfg.DeliveryContext = overrides.DeliveryContext
	}
	if overrides.DeploymentContext != "" {
		cfg.DeploymentContext = overrides.DeploymentContext
	}
	if overrides.ValidationContext != "" {
		cfg.ValidationContext = overrides.ValidationContext
	}
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// This configures mapstructure to handle time.Duration conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
