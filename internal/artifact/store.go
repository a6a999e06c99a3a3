// This file implements the filesystem-backed artifact store, with atomic
// writes and write-once semantics for data integrity.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jpbarto/cicd-local/internal/ctxutil"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// validNameRegex matches valid artifact names: a leading alphanumeric
// followed by alphanumerics, underscores, dots, or hyphens.
var validNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// Store defines the interface for artifact persistence operations.
// Artifacts are write-once: Put fails if the name is already taken, so a
// produced context can never be mutated after the fact.
type Store interface {
	// Put stores data under the given name and returns a handle to it.
	// Returns ErrArtifactExists if the name is already taken.
	Put(ctx context.Context, name string, data []byte) (Handle, error)

	// Open returns a handle to an existing artifact.
	// Returns ErrArtifactNotFound if no artifact has that name.
	Open(ctx context.Context, name string) (Handle, error)

	// List returns the names of all stored artifacts, sorted.
	List(ctx context.Context) ([]string, error)
}

// FileStore implements Store on a single directory, typically the
// per-run directory under ~/.cicd-local/runs/<run-id>/.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating the directory
// if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("failed to create artifact store: directory %w", cicderrors.ErrEmptyValue)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *FileStore) Dir() string {
	return s.dir
}

// Put stores data under the given name using an atomic write-then-rename.
func (s *FileStore) Put(ctx context.Context, name string, data []byte) (Handle, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := validateName(name); err != nil {
		return nil, fmt.Errorf("failed to put artifact: %w", err)
	}

	path := filepath.Join(s.dir, name)

	// Enforce write-once semantics
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("failed to put artifact '%s': %w", name, cicderrors.ErrArtifactExists)
	}

	// Write atomically to prevent partial writes on crash
	if err := atomicWrite(path, data); err != nil {
		return nil, fmt.Errorf("failed to put artifact '%s': %w", name, err)
	}

	return &fileHandle{name: name, path: path}, nil
}

// Open returns a handle to an existing artifact.
func (s *FileStore) Open(ctx context.Context, name string) (Handle, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := validateName(name); err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}

	path := filepath.Join(s.dir, name)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("artifact '%s': %w", name, cicderrors.ErrArtifactNotFound)
	}

	return &fileHandle{name: name, path: path}, nil
}

// List returns the names of all stored artifacts, sorted.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Skip anything that isn't a valid artifact name (lock files,
		// leftover temp files from interrupted writes).
		if !validNameRegex.MatchString(entry.Name()) || strings.HasSuffix(entry.Name(), ".tmp") {
			continue
		}
		names = append(names, entry.Name())
	}

	// Sort for consistent ordering
	sort.Strings(names)

	return names, nil
}

// fileHandle is a Handle backed by a file inside a FileStore directory.
type fileHandle struct {
	name string
	path string
}

// Name returns the artifact's store key.
func (h *fileHandle) Name() string {
	return h.name
}

// Read returns the artifact's full contents.
func (h *fileHandle) Read(ctx context.Context) ([]byte, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(h.path) //#nosec G304 -- path is validated and constructed from trusted base
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact '%s': %w", h.name, cicderrors.ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("failed to read artifact '%s': %w", h.name, err)
	}

	return data, nil
}

// validateName rejects empty, traversal-prone, and malformed artifact names.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("artifact name %w", cicderrors.ErrEmptyValue)
	}

	// Prevent path traversal
	if strings.Contains(name, "..") || strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf("artifact name '%s': %w", name, cicderrors.ErrPathTraversal)
	}

	if !validNameRegex.MatchString(name) {
		return fmt.Errorf("artifact name '%s': %w", name, cicderrors.ErrInvalidArtifactName)
	}

	return nil
}

// atomicWrite writes data to a file atomically using write-then-rename.
// Uses filePerm (0o600) for secure file permissions.
func atomicWrite(path string, data []byte) error {
	// Write to temp file
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	// Write data
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Sync to disk (ensure data is persisted before rename)
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	// Close file before rename
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
