// Package artifact provides storage for pipeline artifacts.
// Artifacts are opaque named blobs (context documents, captured build
// output) exchanged between stages through a store. Stages never see
// filesystem paths; they hold Handles and read content explicitly.
package artifact

import "context"

// Handle is an opaque reference to a stored artifact. A handle is
// created by a Store and stays valid for the lifetime of the store's
// backing medium. Holding a handle grants read access only; artifacts
// are immutable once written.
type Handle interface {
	// Name returns the artifact's store key (e.g. "delivery-context.json").
	// Names are identifiers, not paths.
	Name() string

	// Read returns the artifact's full contents.
	// Returns ErrArtifactNotFound if the artifact has been removed
	// from under the store.
	Read(ctx context.Context) ([]byte, error)
}
