package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpbarto/cicd-local/internal/errors"
)

func writeContextFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func executeContextShow(t *testing.T, args ...string) (string, error) {
	t.Helper()

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"context", "show"}, args...))

	err := cmd.Execute()
	return buf.String(), err
}

func TestContextShow_Text(t *testing.T) {
	t.Setenv("CICD_HOME", t.TempDir())
	path := writeContextFile(t, "delivery-context.json",
		`{"image":"ttl.sh/webapp:1.0.0-rc","chart":"oci://ttl.sh/webapp","status":"healthy"}`)

	output, err := executeContextShow(t, path)
	require.NoError(t, err)

	assert.Contains(t, output, "delivery-context.json")
	assert.Contains(t, output, "image")
	assert.Contains(t, output, "ttl.sh/webapp:1.0.0-rc")
	assert.Contains(t, output, "status")
}

func TestContextShow_JSON(t *testing.T) {
	t.Setenv("CICD_HOME", t.TempDir())
	path := writeContextFile(t, "deployment-context.json",
		`{"release":"goserv","namespace":"default","endpoint":"http://localhost:8080"}`)

	output, err := executeContextShow(t, "--output", "json", path)
	require.NoError(t, err)

	assert.Contains(t, output, `"release": "goserv"`)
	assert.Contains(t, output, `"endpoint": "http://localhost:8080"`)
}

func TestContextShow_MalformedIsFatal(t *testing.T) {
	t.Setenv("CICD_HOME", t.TempDir())
	path := writeContextFile(t, "delivery-context.json", `{"image": not json`)

	_, err := executeContextShow(t, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMalformedContext)
}

func TestContextShow_MissingFile(t *testing.T) {
	t.Setenv("CICD_HOME", t.TempDir())

	_, err := executeContextShow(t, filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestContextShow_RequiresFileArgument(t *testing.T) {
	t.Setenv("CICD_HOME", t.TempDir())

	_, err := executeContextShow(t)
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}
