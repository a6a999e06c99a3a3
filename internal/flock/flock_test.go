//go:build unix

package flock_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jpbarto/cicd-local/internal/flock"
)

func TestExclusiveLock(t *testing.T) {
	t.Parallel()

	t.Run("acquires and releases lock on new file", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		lockFile := filepath.Join(tmpDir, "run.json.lock")

		f, err := os.OpenFile(lockFile, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- test code using safe temp dir
		if err != nil {
			t.Fatalf("failed to create lock file: %v", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				t.Errorf("failed to close file: %v", closeErr)
			}
		}()

		if err = flock.Exclusive(f.Fd()); err != nil {
			t.Errorf("expected to acquire lock, got error: %v", err)
		}
		if err = flock.Unlock(f.Fd()); err != nil {
			t.Errorf("expected to release lock, got error: %v", err)
		}
	})

	t.Run("fails to acquire lock held by another descriptor", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		lockFile := filepath.Join(tmpDir, "run.json.lock")

		f1, err := os.OpenFile(lockFile, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- test code using safe temp dir
		if err != nil {
			t.Fatalf("failed to create lock file: %v", err)
		}
		defer func() { _ = f1.Close() }()

		if err = flock.Exclusive(f1.Fd()); err != nil {
			t.Fatalf("first lock should succeed: %v", err)
		}
		defer func() { _ = flock.Unlock(f1.Fd()) }()

		f2, err := os.OpenFile(lockFile, os.O_RDWR, 0o600) // #nosec G304 -- test code using safe temp dir
		if err != nil {
			t.Fatalf("failed to open lock file: %v", err)
		}
		defer func() { _ = f2.Close() }()

		if err = flock.Exclusive(f2.Fd()); err == nil {
			_ = flock.Unlock(f2.Fd())
			t.Error("second lock should fail while the first is held")
		}
	})

	t.Run("lock is reacquirable after release", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		lockFile := filepath.Join(tmpDir, "run.json.lock")

		f, err := os.OpenFile(lockFile, os.O_RDWR|os.O_CREATE, 0o600) // #nosec G304 -- test code using safe temp dir
		if err != nil {
			t.Fatalf("failed to create lock file: %v", err)
		}
		defer func() { _ = f.Close() }()

		for i := 0; i < 3; i++ {
			if err = flock.Exclusive(f.Fd()); err != nil {
				t.Fatalf("iteration %d: acquire failed: %v", i, err)
			}
			if err = flock.Unlock(f.Fd()); err != nil {
				t.Fatalf("iteration %d: release failed: %v", i, err)
			}
		}
	})
}
