package artifact

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpbarto/cicd-local/internal/domain"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// setupTestHistory opens a history database in a temp directory.
func setupTestHistory(t *testing.T) *History {
	t.Helper()

	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	return h
}

// testRun builds a minimal run record for history tests.
func testRun(id string, created time.Time) *domain.PipelineRun {
	return &domain.PipelineRun{
		ID:               id,
		ReleaseName:      "goserv",
		Namespace:        "default",
		ReleaseCandidate: true,
		Stages: []domain.StageRecord{
			{Kind: domain.StageKindBuild, Status: domain.StageStatusCompleted},
		},
		CreatedAt:     created,
		UpdatedAt:     created,
		SchemaVersion: "1.0",
	}
}

func TestHistory_RecordAndGetRun(t *testing.T) {
	h := setupTestHistory(t)
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	run := testRun("run-20260825-100000", now)
	require.NoError(t, h.RecordRun(context.Background(), run))

	loaded, err := h.GetRun(context.Background(), "run-20260825-100000")
	require.NoError(t, err)
	assert.Equal(t, run.ID, loaded.ID)
	assert.Equal(t, run.ReleaseName, loaded.ReleaseName)
	assert.True(t, loaded.ReleaseCandidate)
	require.Len(t, loaded.Stages, 1)
	assert.Equal(t, domain.StageStatusCompleted, loaded.Stages[0].Status)
}

func TestHistory_RecordRunUpserts(t *testing.T) {
	h := setupTestHistory(t)
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	run := testRun("run-20260825-100000", now)
	require.NoError(t, h.RecordRun(context.Background(), run))

	// Re-record with a failed stage; row must be refreshed, not duplicated
	run.Stages = append(run.Stages, domain.StageRecord{
		Kind:   domain.StageKindDeploy,
		Status: domain.StageStatusFailed,
		Error:  "install failed",
	})
	run.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, h.RecordRun(context.Background(), run))

	summaries, err := h.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "failed", summaries[0].Status)
}

func TestHistory_GetRunMissing(t *testing.T) {
	h := setupTestHistory(t)

	_, err := h.GetRun(context.Background(), "run-20990101-000000")
	require.Error(t, err)
	assert.ErrorIs(t, err, cicderrors.ErrRunNotFound)
}

func TestHistory_ListRunsNewestFirst(t *testing.T) {
	h := setupTestHistory(t)
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	require.NoError(t, h.RecordRun(context.Background(), testRun("run-20260825-100000", base)))
	require.NoError(t, h.RecordRun(context.Background(), testRun("run-20260825-110000", base.Add(time.Hour))))
	require.NoError(t, h.RecordRun(context.Background(), testRun("run-20260825-120000", base.Add(2*time.Hour))))

	summaries, err := h.ListRuns(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "run-20260825-120000", summaries[0].ID)
	assert.Equal(t, "run-20260825-110000", summaries[1].ID)
}

func TestHistory_StatusSummarization(t *testing.T) {
	h := setupTestHistory(t)
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	// In-flight run: no CompletedAt, no failed stage
	inflight := testRun("run-20260825-100000", now)
	require.NoError(t, h.RecordRun(context.Background(), inflight))

	// Finished run
	finished := testRun("run-20260825-110000", now.Add(time.Hour))
	completedAt := now.Add(2 * time.Hour)
	finished.CompletedAt = &completedAt
	require.NoError(t, h.RecordRun(context.Background(), finished))

	summaries, err := h.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byID := make(map[string]RunSummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}
	assert.Equal(t, "running", byID["run-20260825-100000"].Status)
	assert.Equal(t, "completed", byID["run-20260825-110000"].Status)
}

func TestHistory_RecordAndListArtifacts(t *testing.T) {
	h := setupTestHistory(t)
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	run := testRun("run-20260825-100000", now)
	require.NoError(t, h.RecordRun(context.Background(), run))

	require.NoError(t, h.RecordArtifact(context.Background(), run.ID, "delivery-context.json", 120))
	require.NoError(t, h.RecordArtifact(context.Background(), run.ID, "deployment-context.json", 200))

	// Re-recording the same artifact is a no-op, not an error
	require.NoError(t, h.RecordArtifact(context.Background(), run.ID, "delivery-context.json", 120))

	names, err := h.ListArtifacts(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"delivery-context.json", "deployment-context.json"}, names)
}

func TestHistory_RecordArtifactValidation(t *testing.T) {
	h := setupTestHistory(t)

	err := h.RecordArtifact(context.Background(), "", "x.json", 1)
	assert.ErrorIs(t, err, cicderrors.ErrEmptyValue)

	err = h.RecordArtifact(context.Background(), "run-20260825-100000", "../escape", 1)
	assert.ErrorIs(t, err, cicderrors.ErrPathTraversal)
}

func TestHistory_RecordNilRun(t *testing.T) {
	h := setupTestHistory(t)

	err := h.RecordRun(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cicderrors.ErrEmptyValue)
}
