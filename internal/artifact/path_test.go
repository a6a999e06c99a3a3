package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

func TestOpenPath_ReadsExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "deployment-context.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"endpoint":"http://svc:8080"}`), 0o600))

	handle, err := OpenPath(path)
	require.NoError(t, err)

	assert.Equal(t, "deployment-context.json", handle.Name())

	data, err := handle.Read(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"endpoint":"http://svc:8080"}`, string(data))
}

func TestOpenPath_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := OpenPath(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cicderrors.ErrArtifactNotFound)
}

func TestOpenPath_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := OpenPath("")
	require.Error(t, err)
	assert.ErrorIs(t, err, cicderrors.ErrEmptyValue)
}

func TestOpenPath_Directory(t *testing.T) {
	t.Parallel()

	_, err := OpenPath(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, cicderrors.ErrInvalidArtifactName)
}

func TestPathHandle_ReadCanceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "ctx.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	handle, err := OpenPath(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = handle.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
