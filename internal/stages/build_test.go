package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpbarto/cicd-local/internal/constants"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

func TestBuildExecutor_StoresBuildArtifact(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{output: "this is the build stage\n"}
	executor := NewBuildExecutor(runner)
	req := newTestRequest()

	result, err := executor.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, result.Completed())
	assert.Equal(t, constants.StageKindBuild, result.Stage)
	assert.Equal(t, "this is the build stage", result.Output)
	assert.Equal(t, constants.BuildOutputFileName, result.ArtifactName)

	handle, err := req.Store.Open(context.Background(), constants.BuildOutputFileName)
	require.NoError(t, err)
	data, err := handle.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "this is the build stage\n", string(data))

	calls := runner.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, constants.DefaultBuildImage, calls[0].Image)
}

func TestBuildExecutor_RunnerFailure(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{err: errCollaborator}
	executor := NewBuildExecutor(runner)

	result, err := executor.Execute(context.Background(), newTestRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, cicderrors.ErrDelegatedOperationFailed)
	assert.ErrorIs(t, err, errCollaborator)

	require.NotNil(t, result)
	assert.True(t, result.Failed())
	assert.Contains(t, result.Error, "delegated operation")
}

func TestBuildExecutor_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executor := NewBuildExecutor(&mockRunner{})
	result, err := executor.Execute(ctx, newTestRequest())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestBuildExecutor_StageTiming(t *testing.T) {
	t.Parallel()

	executor := NewBuildExecutor(&mockRunner{})
	req := newTestRequest()

	result, err := executor.Execute(context.Background(), req)
	require.NoError(t, err)

	// The fixed clock advances one second per reading.
	assert.False(t, result.StartedAt.IsZero())
	assert.False(t, result.CompletedAt.Before(result.StartedAt))
	assert.Equal(t, result.CompletedAt.Sub(result.StartedAt).Milliseconds(), result.DurationMs)
}
