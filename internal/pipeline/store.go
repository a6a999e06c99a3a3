package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/ctxutil"
	"github.com/jpbarto/cicd-local/internal/domain"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
	"github.com/jpbarto/cicd-local/internal/flock"
)

// LockTimeout is the maximum duration to wait for the run record lock.
const LockTimeout = 5 * time.Second

// lockRetryInterval is the pause between lock acquisition attempts.
const lockRetryInterval = 50 * time.Millisecond

// Directory and file permission constants.
const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// RunStore defines persistence for pipeline run records.
type RunStore interface {
	// Create creates a new run record.
	// Returns ErrRunExists if the run ID is already taken.
	Create(ctx context.Context, run *domain.PipelineRun) error

	// Get retrieves a run record by ID.
	// Returns ErrRunNotFound if the run doesn't exist.
	Get(ctx context.Context, runID string) (*domain.PipelineRun, error)

	// Update saves the current run state (atomic write).
	// Returns ErrRunNotFound if the run doesn't exist.
	Update(ctx context.Context, run *domain.PipelineRun) error

	// List returns all runs, sorted by creation time (newest first).
	List(ctx context.Context) ([]*domain.PipelineRun, error)

	// RunDir returns the directory holding the run's record and artifacts.
	RunDir(runID string) string
}

// FileRunStore implements RunStore on the local filesystem. Each run owns
// a directory under the runs root; the record lives in run.json next to
// the run's context artifacts, guarded by a lock file during writes.
type FileRunStore struct {
	root string // Usually ~/.cicd-local/runs
}

// NewFileRunStore creates a FileRunStore rooted at root, creating the
// directory if needed.
func NewFileRunStore(root string) (*FileRunStore, error) {
	if root == "" {
		return nil, fmt.Errorf("failed to create run store: root directory %w", cicderrors.ErrEmptyValue)
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create runs directory: %w", err)
	}
	return &FileRunStore{root: root}, nil
}

// RunDir returns the directory holding the run's record and artifacts.
func (s *FileRunStore) RunDir(runID string) string {
	return filepath.Join(s.root, runID)
}

func (s *FileRunStore) recordPath(runID string) string {
	return filepath.Join(s.RunDir(runID), constants.RunRecordFileName)
}

func (s *FileRunStore) lockPath(runID string) string {
	return s.recordPath(runID) + ".lock"
}

// Create creates a new run record.
func (s *FileRunStore) Create(ctx context.Context, run *domain.PipelineRun) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if run == nil {
		return fmt.Errorf("failed to create run: run %w", cicderrors.ErrEmptyValue)
	}
	if !ValidRunID(run.ID) {
		return fmt.Errorf("failed to create run: invalid run ID '%s'", run.ID)
	}

	runDir := s.RunDir(run.ID)
	if _, err := os.Stat(s.recordPath(run.ID)); err == nil {
		return fmt.Errorf("failed to create run '%s': %w", run.ID, cicderrors.ErrRunExists)
	}
	if err := os.MkdirAll(runDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	run.SchemaVersion = constants.RunSchemaVersion

	lockFile, err := s.acquireLock(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to create run '%s': %w", run.ID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	if err := s.writeRecord(run); err != nil {
		return fmt.Errorf("failed to create run '%s': %w", run.ID, err)
	}
	return nil
}

// Get retrieves a run record by ID.
func (s *FileRunStore) Get(ctx context.Context, runID string) (*domain.PipelineRun, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if runID == "" {
		return nil, fmt.Errorf("failed to get run: run ID %w", cicderrors.ErrEmptyValue)
	}

	data, err := os.ReadFile(s.recordPath(runID)) //#nosec G304 -- path is constructed from the store root
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run '%s': %w", runID, cicderrors.ErrRunNotFound)
		}
		return nil, fmt.Errorf("failed to read run '%s': %w", runID, err)
	}

	var run domain.PipelineRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("run '%s': %w", runID, cicderrors.ErrRunCorrupted)
	}
	return &run, nil
}

// Update saves the current run state with an atomic write under the
// record lock.
func (s *FileRunStore) Update(ctx context.Context, run *domain.PipelineRun) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if run == nil {
		return fmt.Errorf("failed to update run: run %w", cicderrors.ErrEmptyValue)
	}
	if _, err := os.Stat(s.recordPath(run.ID)); os.IsNotExist(err) {
		return fmt.Errorf("run '%s': %w", run.ID, cicderrors.ErrRunNotFound)
	}

	lockFile, err := s.acquireLock(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run '%s': %w", run.ID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	if err := s.writeRecord(run); err != nil {
		return fmt.Errorf("failed to update run '%s': %w", run.ID, err)
	}
	return nil
}

// List returns all runs, sorted by creation time (newest first).
// Directories without a readable record are skipped rather than failing
// the whole listing.
func (s *FileRunStore) List(ctx context.Context) ([]*domain.PipelineRun, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []*domain.PipelineRun{}, nil
		}
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*domain.PipelineRun, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !ValidRunID(entry.Name()) {
			continue
		}
		run, err := s.Get(ctx, entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// writeRecord marshals the run and writes it atomically via
// write-then-rename.
func (s *FileRunStore) writeRecord(run *domain.PipelineRun) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	path := s.recordPath(run.ID)
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed from the store root
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write run record: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync run record: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close run record: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename run record: %w", err)
	}
	return nil
}

// acquireLock takes an exclusive lock on the run's lock file, retrying
// until LockTimeout elapses or the context is canceled.
func (s *FileRunStore) acquireLock(ctx context.Context, runID string) (*os.File, error) {
	if err := os.MkdirAll(s.RunDir(runID), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(runID), os.O_CREATE|os.O_RDWR, filePerm) //#nosec G304 -- path is constructed from the store root
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(LockTimeout)
	for {
		if err := ctxutil.Canceled(ctx); err != nil {
			_ = f.Close()
			return nil, err
		}

		if err := flock.Exclusive(f.Fd()); err == nil {
			return f, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock: %w", cicderrors.ErrLockTimeout)
		}

		time.Sleep(lockRetryInterval)
	}
}

// releaseLock releases the lock and closes the lock file.
func (s *FileRunStore) releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}
	unlockErr := flock.Unlock(f.Fd())
	closeErr := f.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}

// Ensure FileRunStore implements RunStore.
var _ RunStore = (*FileRunStore)(nil)
