package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpbarto/cicd-local/internal/domain"
)

func TestParseStageKind(t *testing.T) {
	t.Parallel()

	kind, err := ParseStageKind("integration-test")
	require.NoError(t, err)
	assert.Equal(t, domain.StageKindIntegrationTest, kind)

	_, err = ParseStageKind("package")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown stage 'package'")
}

func TestSelectStages(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the full pipeline", func(t *testing.T) {
		t.Parallel()

		plan, err := SelectStages("", "")
		require.NoError(t, err)
		assert.Equal(t, domain.StageOrder, plan)
	})

	t.Run("from selects the suffix", func(t *testing.T) {
		t.Parallel()

		plan, err := SelectStages("deploy", "")
		require.NoError(t, err)
		assert.Equal(t, []domain.StageKind{
			domain.StageKindDeploy,
			domain.StageKindValidate,
			domain.StageKindIntegrationTest,
		}, plan)
	})

	t.Run("only selects a single stage", func(t *testing.T) {
		t.Parallel()

		plan, err := SelectStages("", "validate")
		require.NoError(t, err)
		assert.Equal(t, []domain.StageKind{domain.StageKindValidate}, plan)
	})

	t.Run("from and only are mutually exclusive", func(t *testing.T) {
		t.Parallel()

		_, err := SelectStages("deploy", "validate")
		require.Error(t, err)
	})

	t.Run("unknown stage names are rejected", func(t *testing.T) {
		t.Parallel()

		_, err := SelectStages("release", "")
		require.Error(t, err)
		_, err = SelectStages("", "release")
		require.Error(t, err)
	})

	t.Run("plan is a copy", func(t *testing.T) {
		t.Parallel()

		plan, err := SelectStages("", "")
		require.NoError(t, err)
		plan[0] = domain.StageKindDeploy
		assert.Equal(t, domain.StageKindBuild, domain.StageOrder[0])
	})
}
