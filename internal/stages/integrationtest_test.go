package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpbarto/cicd-local/internal/constants"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

func TestIntegrationTestExecutor_SkipsOnUnhealthyValidation(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	executor := NewIntegrationTestExecutor(runner)
	req := newTestRequest()
	req.ValidationContext = produceContext(t, req.Store, constants.ValidationContextFileName, map[string]any{
		constants.FieldStatus: "unhealthy",
	})

	result, err := executor.Execute(context.Background(), req)
	require.NoError(t, err, "skip is not failure")

	assert.True(t, result.Skipped())
	assert.Equal(t, "skipping integration tests: deployment validation is unhealthy", result.SkipReason)
	// The health gate fires before any container execution side effect.
	assert.Empty(t, runner.calls())
}

func TestIntegrationTestExecutor_SkipsOnNonStringStatus(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	executor := NewIntegrationTestExecutor(runner)
	req := newTestRequest()
	req.ValidationContext = produceContext(t, req.Store, constants.ValidationContextFileName, map[string]any{
		constants.FieldStatus: 42,
	})

	result, err := executor.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Skipped())
	assert.Empty(t, runner.calls())
}

func TestIntegrationTestExecutor_RunsWhenHealthy(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	executor := NewIntegrationTestExecutor(runner)
	req := newTestRequest()
	req.ValidationContext = produceContext(t, req.Store, constants.ValidationContextFileName, map[string]any{
		constants.FieldStatus: constants.StatusHealthy,
	})
	req.DeploymentContext = produceContext(t, req.Store, constants.DeploymentContextFileName, map[string]any{
		constants.FieldEndpoint: "http://svc:8080",
	})

	result, err := executor.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Completed())

	calls := runner.calls()
	require.Len(t, calls, 1)
	// The target is derived from the deployment context, never from
	// explicit target parameters.
	assert.Contains(t, calls[0].Cmd, "http://svc:8080")
}

func TestIntegrationTestExecutor_UnknownStatusPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		policy     constants.UnknownStatusPolicy
		wantSkip   bool
		wantReason string
	}{
		{
			name:       "skip policy blocks on missing status",
			policy:     constants.UnknownStatusSkip,
			wantSkip:   true,
			wantReason: SkipUnknownStatusMessage,
		},
		{
			name:     "proceed policy continues on missing status",
			policy:   constants.UnknownStatusProceed,
			wantSkip: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := &mockRunner{}
			executor := NewIntegrationTestExecutor(runner)
			req := newTestRequest()
			req.UnknownStatusPolicy = tt.policy
			req.ValidationContext = produceContext(t, req.Store, constants.ValidationContextFileName, map[string]any{
				constants.FieldEndpoint: "http://svc:8080",
			})

			result, err := executor.Execute(context.Background(), req)
			require.NoError(t, err)

			if tt.wantSkip {
				assert.True(t, result.Skipped())
				assert.Equal(t, tt.wantReason, result.SkipReason)
				assert.Empty(t, runner.calls())
			} else {
				assert.True(t, result.Completed())
				assert.Len(t, runner.calls(), 1)
			}
		})
	}
}

func TestIntegrationTestExecutor_MissingValidationContextProceeds(t *testing.T) {
	t.Parallel()

	runner := &mockRunner{}
	executor := NewIntegrationTestExecutor(runner)
	req := newTestRequest()

	result, err := executor.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Completed())

	calls := runner.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Cmd, constants.DefaultEndpoint)
}

func TestIntegrationTestExecutor_MalformedValidationContextFatal(t *testing.T) {
	t.Parallel()

	executor := NewIntegrationTestExecutor(&mockRunner{})
	req := newTestRequest()

	raw, err := req.Store.Put(context.Background(), "validation-context.json", []byte(`"healthy"`))
	require.NoError(t, err)
	req.ValidationContext = raw

	result, err := executor.Execute(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, cicderrors.ErrMalformedContext)
	assert.True(t, result.Failed())
}

func TestIntegrationTestExecutor_RunnerFailure(t *testing.T) {
	t.Parallel()

	executor := NewIntegrationTestExecutor(&mockRunner{err: errCollaborator})

	result, err := executor.Execute(context.Background(), newTestRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, cicderrors.ErrDelegatedOperationFailed)
	assert.True(t, result.Failed())
}
