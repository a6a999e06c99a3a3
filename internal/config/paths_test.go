package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpbarto/cicd-local/internal/constants"
)

func TestGlobalConfigDir_HomeOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CICD_HOME", home)

	dir, err := GlobalConfigDir()
	require.NoError(t, err)
	assert.Equal(t, home, dir)
}

func TestDerivedPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CICD_HOME", home)

	configPath, err := GlobalConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, constants.GlobalConfigName), configPath)

	secrets, err := SecretsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, constants.SecretsDir), secrets)

	runs, err := RunsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, constants.RunsDir), runs)
}

func TestProjectConfigPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("/src/app", constants.ProjectConfigName),
		ProjectConfigPath("/src/app"))
}
