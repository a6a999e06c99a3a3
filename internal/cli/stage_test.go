package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpbarto/cicd-local/internal/config"
	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/domain"
	"github.com/jpbarto/cicd-local/internal/errors"
	"github.com/jpbarto/cicd-local/internal/tui"
)

// newStageTestCmd builds a command carrying the stage flag set with the
// given args parsed, so flag-changed detection behaves as in a real
// invocation.
func newStageTestCmd(t *testing.T, sf *stageFlags, args []string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "stage-test"}
	addStageFlags(cmd, sf)
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func writeProjectConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, constants.ProjectConfigName), []byte(content), 0o600))
}

func TestLoadStageConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CICD_HOME", t.TempDir())

	sf := &stageFlags{}
	cmd := newStageTestCmd(t, sf, []string{"--source-dir", dir})

	cfg, err := loadStageConfig(cmd, &GlobalFlags{}, sf)
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultContainerRepository, cfg.ContainerRepository)
	assert.Equal(t, constants.DefaultHelmRepository, cfg.HelmRepository)
	assert.Equal(t, constants.DefaultReleaseName, cfg.ReleaseName)
	assert.Equal(t, constants.DefaultNamespace, cfg.Namespace)
	assert.False(t, cfg.ReleaseCandidate)
	assert.Equal(t, dir, cfg.SourceDir)
}

func TestLoadStageConfig_FlagOverridesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CICD_HOME", t.TempDir())
	writeProjectConfig(t, dir, "namespace: staging\nrelease_name: webapp\n")

	sf := &stageFlags{}
	cmd := newStageTestCmd(t, sf, []string{
		"--source-dir", dir,
		"--namespace", "production",
	})

	cfg, err := loadStageConfig(cmd, &GlobalFlags{}, sf)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Namespace, "flag wins over project config")
	assert.Equal(t, "webapp", cfg.ReleaseName, "project config wins over default")
}

func TestLoadStageConfig_ReleaseCandidateFromConfigSurvivesUnsetFlag(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CICD_HOME", t.TempDir())
	writeProjectConfig(t, dir, "release_candidate: true\n")

	sf := &stageFlags{}
	cmd := newStageTestCmd(t, sf, []string{"--source-dir", dir})

	cfg, err := loadStageConfig(cmd, &GlobalFlags{}, sf)
	require.NoError(t, err)
	assert.True(t, cfg.ReleaseCandidate, "unset flag must not clobber config value")
}

func TestLoadStageConfig_ReleaseCandidateExplicitFalseWins(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CICD_HOME", t.TempDir())
	writeProjectConfig(t, dir, "release_candidate: true\n")

	sf := &stageFlags{}
	cmd := newStageTestCmd(t, sf, []string{
		"--source-dir", dir,
		"--release-candidate=false",
	})

	cfg, err := loadStageConfig(cmd, &GlobalFlags{}, sf)
	require.NoError(t, err)
	assert.False(t, cfg.ReleaseCandidate)
}

func TestLoadStageConfig_SupersededKeyRejected(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CICD_HOME", t.TempDir())
	writeProjectConfig(t, dir, "target_host: localhost\n")

	sf := &stageFlags{}
	cmd := newStageTestCmd(t, sf, []string{"--source-dir", dir})

	_, err := loadStageConfig(cmd, &GlobalFlags{}, sf)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSupersededParameter)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestLoadStageConfig_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CICD_HOME", t.TempDir())
	configPath := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("namespace: qa\n"), 0o600))

	sf := &stageFlags{}
	cmd := newStageTestCmd(t, sf, nil)

	cfg, err := loadStageConfig(cmd, &GlobalFlags{Config: configPath}, sf)
	require.NoError(t, err)
	assert.Equal(t, "qa", cfg.Namespace)
}

func TestStageArtifactsDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg := &config.Config{SourceDir: dir}
	assert.Equal(t, dir, stageArtifactsDir(cfg), "empty artifacts dir falls back to source dir")

	cfg.ArtifactsDir = "/tmp/artifacts"
	assert.Equal(t, "/tmp/artifacts", stageArtifactsDir(cfg))
}

func TestOpenUpstream(t *testing.T) {
	t.Parallel()

	t.Run("empty path yields nil handle", func(t *testing.T) {
		t.Parallel()
		h, err := openUpstream("")
		require.NoError(t, err)
		assert.Nil(t, h)
	})

	t.Run("existing file yields handle", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "delivery-context.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"image":"ttl.sh/webapp:1.0.0"}`), 0o600))

		h, err := openUpstream(path)
		require.NoError(t, err)
		require.NotNil(t, h)
		assert.Equal(t, "delivery-context.json", h.Name())
	})

	t.Run("missing file errors", func(t *testing.T) {
		t.Parallel()
		_, err := openUpstream(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})
}

func TestOpenUpstreamContexts(t *testing.T) {
	t.Parallel()

	t.Run("unset paths yield nil handles", func(t *testing.T) {
		t.Parallel()
		upstream, err := openUpstreamContexts(&config.Config{})
		require.NoError(t, err)
		assert.Nil(t, upstream.buildArtifact)
		assert.Nil(t, upstream.deliveryContext)
		assert.Nil(t, upstream.deploymentContext)
		assert.Nil(t, upstream.validationContext)
	})

	t.Run("configured paths resolve to handles", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, constants.ValidationContextFileName)
		require.NoError(t, os.WriteFile(path, []byte(`{"status":"unhealthy"}`), 0o600))

		upstream, err := openUpstreamContexts(&config.Config{ValidationContext: path})
		require.NoError(t, err)
		require.NotNil(t, upstream.validationContext)
		assert.Equal(t, constants.ValidationContextFileName, upstream.validationContext.Name())
		assert.Nil(t, upstream.deliveryContext)
	})

	t.Run("missing file errors", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{DeliveryContext: filepath.Join(t.TempDir(), "absent.json")}
		_, err := openUpstreamContexts(cfg)
		require.Error(t, err)
	})
}

func TestResolveCredential(t *testing.T) {
	t.Parallel()

	t.Run("explicit path", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "kubeconfig")
		require.NoError(t, os.WriteFile(path, []byte("apiVersion: v1"), 0o600))

		h, err := resolveCredential(path, func() (string, error) { return "", nil })
		require.NoError(t, err)
		require.NotNil(t, h)
		assert.Equal(t, path, h.Path())
	})

	t.Run("absent fallback yields nil", func(t *testing.T) {
		t.Parallel()
		missing := filepath.Join(t.TempDir(), "kubeconfig")
		h, err := resolveCredential("", func() (string, error) { return missing, nil })
		require.NoError(t, err)
		assert.Nil(t, h)
	})

	t.Run("present fallback yields handle", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "credentials")
		require.NoError(t, os.WriteFile(path, []byte("[default]"), 0o600))

		h, err := resolveCredential("", func() (string, error) { return path, nil })
		require.NoError(t, err)
		require.NotNil(t, h)
	})
}

func TestRenderStageResult(t *testing.T) {
	t.Parallel()

	t.Run("completed prints artifact", func(t *testing.T) {
		t.Parallel()
		buf := new(bytes.Buffer)
		out := tui.NewOutput(buf, OutputText)

		result := &domain.StageResult{
			Stage:        constants.StageKindDeliver,
			Status:       constants.StageStatusCompleted,
			ArtifactName: constants.DeliveryContextFileName,
			DurationMs:   3200,
		}
		require.NoError(t, renderStageResult(out, OutputText, result))
		assert.Contains(t, buf.String(), "Deliver completed")
		assert.Contains(t, buf.String(), constants.DeliveryContextFileName)
	})

	t.Run("skipped is not failure", func(t *testing.T) {
		t.Parallel()
		buf := new(bytes.Buffer)
		out := tui.NewOutput(buf, OutputText)

		result := &domain.StageResult{
			Stage:      constants.StageKindIntegrationTest,
			Status:     constants.StageStatusSkipped,
			SkipReason: "deployment status unknown, policy is skip",
		}
		require.NoError(t, renderStageResult(out, OutputText, result))
		assert.Contains(t, buf.String(), "deployment status unknown")
	})

	t.Run("failed returns stage failure", func(t *testing.T) {
		t.Parallel()
		buf := new(bytes.Buffer)
		out := tui.NewOutput(buf, OutputText)

		result := &domain.StageResult{
			Stage:  constants.StageKindBuild,
			Status: constants.StageStatusFailed,
			Error:  "image pull failed",
		}
		err := renderStageResult(out, OutputText, result)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrStageFailed)
	})

	t.Run("json emits the result document", func(t *testing.T) {
		t.Parallel()
		buf := new(bytes.Buffer)
		out := tui.NewOutput(buf, OutputJSON)

		result := &domain.StageResult{
			Stage:  constants.StageKindValidate,
			Status: constants.StageStatusCompleted,
		}
		require.NoError(t, renderStageResult(out, OutputJSON, result))
		assert.Contains(t, buf.String(), `"validate"`)
		assert.Contains(t, buf.String(), `"completed"`)
	})
}
