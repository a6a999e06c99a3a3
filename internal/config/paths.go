package config

import (
	"os"
	"path/filepath"

	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/errors"
)

// GlobalConfigDir returns the path to the cicd-local home directory.
// This is typically ~/.cicd-local on Unix systems. The CICD_HOME environment
// variable overrides the location, which also keeps tests hermetic.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	if custom := os.Getenv("CICD_HOME"); custom != "" {
		return custom, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.CicdHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
// This is typically ~/.cicd-local/config.yaml on Unix systems.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "get global config path")
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the path to the project configuration file
// inside dir. This is .cicd.yaml at the project root.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, constants.ProjectConfigName)
}

// SecretsPath returns the directory holding credential files,
// ~/.cicd-local/secrets.
//
// Returns an error if the home directory cannot be determined.
func SecretsPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "get secrets path")
	}
	return filepath.Join(dir, constants.SecretsDir), nil
}

// RunsPath returns the directory holding per-run records and artifacts,
// ~/.cicd-local/runs.
//
// Returns an error if the home directory cannot be determined.
func RunsPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "get runs path")
	}
	return filepath.Join(dir, constants.RunsDir), nil
}

// DefaultKubeconfigPath returns the conventional kubeconfig location,
// ~/.kube/config. Used when no kubeconfig path is configured explicitly.
func DefaultKubeconfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".kube", "config"), nil
}

// DefaultAWSConfigPath returns the conventional AWS shared credentials
// location, ~/.aws/credentials. Used when no awsconfig path is configured
// explicitly.
func DefaultAWSConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".aws", "credentials"), nil
}
