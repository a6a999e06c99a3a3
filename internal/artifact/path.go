package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jpbarto/cicd-local/internal/ctxutil"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// OpenPath wraps an existing file on disk in a Handle. This is the CLI
// boundary's escape hatch for single-stage invocations, where the user
// points a stage at a context artifact produced by an earlier run (or
// another tool entirely). Everything past the boundary sees only the
// opaque handle; the path never travels further.
//
// Returns ErrArtifactNotFound if the file does not exist.
func OpenPath(path string) (Handle, error) {
	if path == "" {
		return nil, fmt.Errorf("failed to open artifact: path %w", cicderrors.ErrEmptyValue)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact '%s': %w", path, err)
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("artifact '%s': %w", path, cicderrors.ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact '%s': %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("artifact '%s' is a directory: %w", path, cicderrors.ErrInvalidArtifactName)
	}

	return &pathHandle{name: filepath.Base(abs), path: abs}, nil
}

// pathHandle is a Handle over a caller-supplied file outside any store.
type pathHandle struct {
	name string
	path string
}

// Name returns the file's base name.
func (h *pathHandle) Name() string {
	return h.name
}

// Read returns the file's full contents.
func (h *pathHandle) Read(ctx context.Context) ([]byte, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(h.path) //#nosec G304 -- path was supplied by the invoking user at the CLI boundary
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("artifact '%s': %w", h.name, cicderrors.ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("failed to read artifact '%s': %w", h.name, err)
	}

	return data, nil
}
