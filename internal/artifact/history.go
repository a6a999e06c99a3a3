package artifact

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/domain"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// History is a SQLite-backed index of past pipeline runs and the
// artifacts they produced. It powers `cicd history`; the authoritative
// per-run state stays in run.json, the database is a queryable mirror.
type History struct {
	db *sql.DB
}

// RunSummary is one row of `cicd history` output.
type RunSummary struct {
	ID               string    `json:"id"`
	ReleaseName      string    `json:"release_name"`
	Namespace        string    `json:"namespace"`
	ReleaseCandidate bool      `json:"release_candidate"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// OpenHistory opens (or creates) the history database at dbPath and
// ensures the schema exists. The database uses WAL journal mode so a
// reader (`cicd history`) never blocks a writer (a running pipeline).
func OpenHistory(dbPath string) (*History, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	h := &History{db: db}

	if err := h.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return h, nil
}

func (h *History) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			release_name TEXT NOT NULL,
			namespace TEXT NOT NULL,
			release_candidate INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			record TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			run_id TEXT NOT NULL,
			name TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, name),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := h.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// RecordRun inserts or refreshes the run's row. Called once when the run
// is created and again after every stage transition, so the history view
// tracks in-flight runs too.
func (h *History) RecordRun(ctx context.Context, run *domain.PipelineRun) error {
	if run == nil {
		return fmt.Errorf("failed to record run: run %w", cicderrors.ErrEmptyValue)
	}

	record, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	query := `INSERT INTO runs (id, release_name, namespace, release_candidate, status, record, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET
	              status=excluded.status,
	              record=excluded.record,
	              updated_at=excluded.updated_at`

	_, err = h.db.ExecContext(ctx, query,
		run.ID, run.ReleaseName, run.Namespace, run.ReleaseCandidate,
		summarizeStatus(run), string(record), run.CreatedAt, run.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to record run '%s': %w", run.ID, err)
	}

	return nil
}

// RecordArtifact notes that a run produced a named artifact.
func (h *History) RecordArtifact(ctx context.Context, runID, name string, sizeBytes int) error {
	if runID == "" {
		return fmt.Errorf("failed to record artifact: run ID %w", cicderrors.ErrEmptyValue)
	}
	if err := validateName(name); err != nil {
		return fmt.Errorf("failed to record artifact: %w", err)
	}

	query := `INSERT INTO artifacts (run_id, name, size_bytes, created_at)
	          VALUES (?, ?, ?, ?)
	          ON CONFLICT(run_id, name) DO NOTHING`

	_, err := h.db.ExecContext(ctx, query, runID, name, sizeBytes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record artifact '%s': %w", name, err)
	}

	return nil
}

// GetRun retrieves the full run record by ID.
func (h *History) GetRun(ctx context.Context, runID string) (*domain.PipelineRun, error) {
	if runID == "" {
		return nil, fmt.Errorf("failed to get run: run ID %w", cicderrors.ErrEmptyValue)
	}

	var record string
	err := h.db.QueryRowContext(ctx, `SELECT record FROM runs WHERE id = ?`, runID).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run '%s': %w", runID, cicderrors.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run '%s': %w", runID, err)
	}

	var run domain.PipelineRun
	if err := json.Unmarshal([]byte(record), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run '%s': %w", runID, cicderrors.ErrRunCorrupted)
	}

	return &run, nil
}

// ListRuns returns summaries of the most recent runs, newest first.
// A limit of 0 applies the default of 20.
func (h *History) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, release_name, namespace, release_candidate, status, created_at, updated_at
	          FROM runs
	          ORDER BY created_at DESC
	          LIMIT ?`

	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]RunSummary, 0, limit)
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.ID, &s.ReleaseName, &s.Namespace, &s.ReleaseCandidate,
			&s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// ListArtifacts returns the artifact names recorded for a run, sorted by
// insertion order.
func (h *History) ListArtifacts(ctx context.Context, runID string) ([]string, error) {
	if runID == "" {
		return nil, fmt.Errorf("failed to list artifacts: run ID %w", cicderrors.ErrEmptyValue)
	}

	query := `SELECT name FROM artifacts WHERE run_id = ? ORDER BY created_at ASC, name ASC`

	rows, err := h.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}

// summarizeStatus folds per-stage statuses into one history row status:
// failed if any stage failed, completed once the run has finished,
// running otherwise.
func summarizeStatus(run *domain.PipelineRun) string {
	if run.Failed() {
		return constants.StageStatusFailed.String()
	}
	if run.CompletedAt != nil {
		return constants.StageStatusCompleted.String()
	}
	return constants.StageStatusRunning.String()
}
