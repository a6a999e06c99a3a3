// Package ctxutil provides context utility functions.
package ctxutil

import "context"

// Canceled reports whether the context has been canceled or exceeded its
// deadline, returning the context error if so and nil otherwise. Stage
// executors and stores call this at entry so canceled pipelines stop before
// touching external collaborators or storage.
//
// The implementation directly returns ctx.Err() because it already returns
// nil while Done is open - no select with default case is needed.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
