package tui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jpbarto/cicd-local/internal/artifact"
	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/domain"
)

func TestStageDisplayName(t *testing.T) {
	tests := []struct {
		kind     domain.StageKind
		expected string
	}{
		{domain.StageKindBuild, "Build"},
		{domain.StageKindUnitTest, "Unit Test"},
		{domain.StageKindDeliver, "Deliver"},
		{domain.StageKindDeploy, "Deploy"},
		{domain.StageKindValidate, "Validate"},
		{domain.StageKindIntegrationTest, "Integration Test"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, StageDisplayName(tt.kind))
		})
	}
}

func TestRenderRunSummary(t *testing.T) {
	started := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	run := &domain.PipelineRun{
		ID:               "run-20260825-100000",
		ReleaseCandidate: true,
		Stages: []domain.StageRecord{
			{
				Kind:         domain.StageKindBuild,
				Status:       domain.StageStatusCompleted,
				ArtifactName: constants.BuildOutputFileName,
				DurationMs:   1200,
			},
			{
				Kind:       domain.StageKindIntegrationTest,
				Status:     domain.StageStatusSkipped,
				SkipReason: "skipping integration tests: deployment validation is unhealthy",
			},
		},
		CreatedAt: started,
	}

	var buf bytes.Buffer
	RenderRunSummary(&buf, run)

	text := buf.String()
	assert.Contains(t, text, "run-20260825-100000")
	assert.Contains(t, text, "(release candidate)")
	assert.Contains(t, text, "Build")
	assert.Contains(t, text, constants.BuildOutputFileName)
	assert.Contains(t, text, "Integration Test")
	assert.Contains(t, text, "skipping integration tests")
	assert.Contains(t, text, "1.2s")
}

func TestRenderRunSummaryNilRun(t *testing.T) {
	var buf bytes.Buffer
	RenderRunSummary(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestRenderHistory(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		var buf bytes.Buffer
		RenderHistory(&buf, nil)
		assert.Contains(t, buf.String(), "No pipeline runs recorded yet.")
	})

	t.Run("lists runs", func(t *testing.T) {
		var buf bytes.Buffer
		RenderHistory(&buf, []artifact.RunSummary{
			{
				ID:               "run-20260825-100000",
				ReleaseName:      "goserv",
				Namespace:        "default",
				ReleaseCandidate: true,
				Status:           "completed",
				CreatedAt:        time.Now().Add(-2 * time.Minute),
			},
		})

		text := buf.String()
		assert.Contains(t, text, "run-20260825-100000")
		assert.Contains(t, text, "goserv")
		assert.Contains(t, text, "yes")
		assert.Contains(t, text, "completed")
		assert.Contains(t, text, "minutes ago")
	})
}
