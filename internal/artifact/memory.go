package artifact

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jpbarto/cicd-local/internal/ctxutil"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// MemStore implements Store with an in-memory map. It is used by tests
// and dry runs where nothing should touch the filesystem. Safe for
// concurrent use.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemStore creates an empty in-memory artifact store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

// Put stores data under the given name. The stored copy is detached from
// the caller's slice.
func (s *MemStore) Put(ctx context.Context, name string, data []byte) (Handle, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := validateName(name); err != nil {
		return nil, fmt.Errorf("failed to put artifact: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[name]; exists {
		return nil, fmt.Errorf("failed to put artifact '%s': %w", name, cicderrors.ErrArtifactExists)
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[name] = stored

	return &memHandle{name: name, store: s}, nil
}

// Open returns a handle to an existing artifact.
func (s *MemStore) Open(ctx context.Context, name string) (Handle, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := validateName(name); err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.objects[name]; !exists {
		return nil, fmt.Errorf("artifact '%s': %w", name, cicderrors.ErrArtifactNotFound)
	}

	return &memHandle{name: name, store: s}, nil
}

// List returns the names of all stored artifacts, sorted.
func (s *MemStore) List(ctx context.Context) ([]string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}

	// Sort for consistent ordering
	sort.Strings(names)

	return names, nil
}

// memHandle is a Handle backed by a MemStore entry.
type memHandle struct {
	name  string
	store *MemStore
}

// Name returns the artifact's store key.
func (h *memHandle) Name() string {
	return h.name
}

// Read returns a copy of the artifact's contents so callers cannot
// mutate the stored bytes.
func (h *memHandle) Read(ctx context.Context) ([]byte, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	h.store.mu.RLock()
	defer h.store.mu.RUnlock()

	data, exists := h.store.objects[h.name]
	if !exists {
		return nil, fmt.Errorf("artifact '%s': %w", h.name, cicderrors.ErrArtifactNotFound)
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
