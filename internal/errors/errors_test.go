package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// testError is a custom error type used to test default branches
// in UserMessage and Actionable without matching any sentinel.
type testError struct {
	msg string
}

func (e testError) Error() string {
	return e.msg
}

func TestSentinelErrors_Messages(t *testing.T) {
	// Verify sentinel errors have lowercase messages per Go conventions
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrMalformedContext", cicderrors.ErrMalformedContext, "malformed context artifact"},
		{"ErrMissingCredential", cicderrors.ErrMissingCredential, "missing credential"},
		{"ErrDelegatedOperationFailed", cicderrors.ErrDelegatedOperationFailed, "delegated operation failed"},
		{"ErrStageFailed", cicderrors.ErrStageFailed, "stage failed"},
		{"ErrArtifactExists", cicderrors.ErrArtifactExists, "artifact already exists"},
		{"ErrArtifactNotFound", cicderrors.ErrArtifactNotFound, "artifact not found"},
		{"ErrInvalidTransition", cicderrors.ErrInvalidTransition, "invalid state transition"},
		{"ErrSupersededParameter", cicderrors.ErrSupersededParameter, "superseded parameter"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	// Ensure each sentinel error is unique and errors.Is() distinguishes them
	allErrors := []error{
		cicderrors.ErrMalformedContext,
		cicderrors.ErrMissingCredential,
		cicderrors.ErrDelegatedOperationFailed,
		cicderrors.ErrStageFailed,
		cicderrors.ErrArtifactExists,
		cicderrors.ErrArtifactNotFound,
		cicderrors.ErrInvalidArtifactName,
		cicderrors.ErrRunExists,
		cicderrors.ErrRunNotFound,
		cicderrors.ErrInvalidTransition,
		cicderrors.ErrSupersededParameter,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i == j {
				assert.ErrorIs(t, err1, err2, "error should match itself")
			} else {
				assert.NotErrorIs(t, err1, err2, "different errors should not match")
			}
		}
	}
}

func TestWrap_PreservesErrorChain(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
	}{
		{"ErrMalformedContext", cicderrors.ErrMalformedContext},
		{"ErrMissingCredential", cicderrors.ErrMissingCredential},
		{"ErrDelegatedOperationFailed", cicderrors.ErrDelegatedOperationFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := cicderrors.Wrap(tc.sentinel, "additional context")
			require.Error(t, wrapped)
			assert.ErrorIs(t, wrapped, tc.sentinel)
			assert.Contains(t, wrapped.Error(), "additional context")
		})
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.NoError(t, cicderrors.Wrap(nil, "context"))
	assert.NoError(t, cicderrors.Wrapf(nil, "context %s", "formatted"))
}

func TestWrapf_FormatsMessage(t *testing.T) {
	err := cicderrors.Wrapf(cicderrors.ErrStageFailed, "executing stage %s", "deploy")
	require.Error(t, err)
	assert.ErrorIs(t, err, cicderrors.ErrStageFailed)
	assert.Equal(t, "executing stage deploy: stage failed", err.Error())
}

func TestWrap_DoubleWrapStillMatches(t *testing.T) {
	inner := fmt.Errorf("probe returned 503: %w", cicderrors.ErrDelegatedOperationFailed)
	outer := cicderrors.Wrap(inner, "validate stage")
	assert.ErrorIs(t, outer, cicderrors.ErrDelegatedOperationFailed)
}

func TestExitCode2Error(t *testing.T) {
	base := cicderrors.ErrInvalidOutputFormat
	wrapped := cicderrors.NewExitCode2Error(base)

	assert.Equal(t, base.Error(), wrapped.Error())
	assert.ErrorIs(t, wrapped, base)
	assert.True(t, cicderrors.IsExitCode2Error(wrapped))
	assert.False(t, cicderrors.IsExitCode2Error(base))
	assert.False(t, cicderrors.IsExitCode2Error(nil))
}

func TestUserMessage(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, cicderrors.UserMessage(nil))
	})

	t.Run("known sentinel", func(t *testing.T) {
		msg := cicderrors.UserMessage(cicderrors.ErrMalformedContext)
		assert.Contains(t, msg, "valid JSON object")
	})

	t.Run("wrapped sentinel", func(t *testing.T) {
		err := cicderrors.Wrap(cicderrors.ErrMissingCredential, "deploy stage")
		msg := cicderrors.UserMessage(err)
		assert.Contains(t, msg, "credential")
	})

	t.Run("unknown error returns original message", func(t *testing.T) {
		err := testError{msg: "something unusual"}
		assert.Equal(t, "something unusual", cicderrors.UserMessage(err))
	})
}

func TestActionable(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		msg, action := cicderrors.Actionable(nil)
		assert.Empty(t, msg)
		assert.Empty(t, action)
	})

	t.Run("sentinel with action", func(t *testing.T) {
		msg, action := cicderrors.Actionable(cicderrors.ErrMissingCredential)
		assert.NotEmpty(t, msg)
		assert.Contains(t, action, "kubeconfig")
	})

	t.Run("write-once collision names the remedy", func(t *testing.T) {
		msg, action := cicderrors.Actionable(cicderrors.ErrArtifactExists)
		assert.Contains(t, msg, "write-once")
		assert.Contains(t, action, "--artifacts-dir")
	})

	t.Run("sentinel without action", func(t *testing.T) {
		_, action := cicderrors.Actionable(cicderrors.ErrOperationCanceled)
		assert.Empty(t, action)
	})

	t.Run("unknown error", func(t *testing.T) {
		err := testError{msg: "mystery"}
		msg, action := cicderrors.Actionable(err)
		assert.Equal(t, "mystery", msg)
		assert.Empty(t, action)
	})
}
