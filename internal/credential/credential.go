// Package credential resolves named credential files from the cicd-local
// secrets directory. Stages receive credentials as explicit handles
// injected by the caller; no stage reads ambient environment state such
// as KUBECONFIG or AWS_* variables. A handle carries the credential's
// name and location, never its material - content is read on demand by
// the collaborator that needs it.
package credential

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jpbarto/cicd-local/internal/ctxutil"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// filePerm documents the expected permission for credential files.
const filePerm = 0o600

// Handle is an opaque reference to one named credential file.
// Logging a handle prints only its name, never the material.
type Handle struct {
	name string
	path string
}

// Name returns the credential's name (e.g. "kubeconfig").
func (h *Handle) Name() string {
	return h.name
}

// Path returns the filesystem location of the credential file, for
// collaborators that pass files by path (helm --kubeconfig).
func (h *Handle) Path() string {
	return h.path
}

// String implements fmt.Stringer without exposing the material or its
// location.
func (h *Handle) String() string {
	return "credential:" + h.name
}

// Read returns the credential material. Callers must not log or persist
// the returned bytes.
func (h *Handle) Read(ctx context.Context) ([]byte, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(h.path) //#nosec G304 -- path is validated at Load time from a trusted base
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("credential '%s': %w", h.name, cicderrors.ErrMissingCredential)
		}
		return nil, fmt.Errorf("failed to read credential '%s': %w", h.name, err)
	}

	return data, nil
}

// Load resolves the named credential file under dir. It fails with
// ErrMissingCredential if the file does not exist, so a stage that
// requires a credential surfaces the absence before doing any work.
func Load(dir, name string) (*Handle, error) {
	if dir == "" {
		return nil, fmt.Errorf("failed to load credential: directory %w", cicderrors.ErrEmptyValue)
	}
	if name == "" {
		return nil, fmt.Errorf("failed to load credential: name %w", cicderrors.ErrEmptyValue)
	}
	if filepath.Base(name) != name {
		return nil, fmt.Errorf("credential name '%s': %w", name, cicderrors.ErrPathTraversal)
	}

	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("credential '%s': %w", name, cicderrors.ErrMissingCredential)
	}

	return &Handle{name: name, path: path}, nil
}

// Store writes credential material under dir with owner-only permissions,
// creating the directory if needed. Used by `cicd` setup flows that
// capture a kubeconfig for later runs.
func Store(dir, name string, data []byte) (*Handle, error) {
	if dir == "" {
		return nil, fmt.Errorf("failed to store credential: directory %w", cicderrors.ErrEmptyValue)
	}
	if name == "" {
		return nil, fmt.Errorf("failed to store credential: name %w", cicderrors.ErrEmptyValue)
	}
	if filepath.Base(name) != name {
		return nil, fmt.Errorf("credential name '%s': %w", name, cicderrors.ErrPathTraversal)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create secrets directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return nil, fmt.Errorf("failed to store credential '%s': %w", name, err)
	}

	return &Handle{name: name, path: path}, nil
}
