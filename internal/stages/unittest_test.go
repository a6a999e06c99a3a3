package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpbarto/cicd-local/internal/constants"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

func TestUnitTestExecutor_ReturnsOutput(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{output: "running unit tests\n"}
	executor := NewUnitTestExecutor(runner)

	result, err := executor.Execute(context.Background(), newTestRequest())
	require.NoError(t, err)

	assert.True(t, result.Completed())
	assert.Equal(t, constants.StageKindUnitTest, result.Stage)
	assert.Equal(t, "running unit tests", result.Output)
	// The stage emits a result string only, no context artifact.
	assert.Empty(t, result.ArtifactName)
}

func TestUnitTestExecutor_MissingBuildArtifactProceeds(t *testing.T) {
	t.Parallel()

	executor := NewUnitTestExecutor(&mockRunner{})
	req := newTestRequest()
	req.BuildArtifact = nil

	result, err := executor.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Completed())
}

func TestUnitTestExecutor_RunnerFailure(t *testing.T) {
	t.Parallel()

	executor := NewUnitTestExecutor(&mockRunner{err: errCollaborator})

	result, err := executor.Execute(context.Background(), newTestRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, cicderrors.ErrDelegatedOperationFailed)
	assert.True(t, result.Failed())
}
