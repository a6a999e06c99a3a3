package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpbarto/cicd-local/internal/errors"
)

func TestConfirmDeploy_YesSkipsPrompt(t *testing.T) {
	t.Setenv("CICD_HOME", t.TempDir())

	sf := &stageFlags{}
	cmd := newStageTestCmd(t, sf, []string{"--source-dir", t.TempDir()})

	err := confirmDeploy(cmd, &GlobalFlags{}, sf, true)
	require.NoError(t, err)
}

func TestConfirmDeploy_NonInteractiveWithoutYes(t *testing.T) {
	t.Setenv("CICD_HOME", t.TempDir())

	original := deployTerminalCheck
	deployTerminalCheck = func() bool { return false }
	t.Cleanup(func() { deployTerminalCheck = original })

	sf := &stageFlags{}
	cmd := newStageTestCmd(t, sf, []string{"--source-dir", t.TempDir()})

	err := confirmDeploy(cmd, &GlobalFlags{}, sf, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNonInteractiveMode)
}
