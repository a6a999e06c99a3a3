// This file implements the three protocol operations: Produce, Consume,
// and Branch. Produce owns the timestamp field; Consume owns malformed
// input detection; Branch owns the status gate that decides whether a
// health-dependent stage runs.
package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jpbarto/cicd-local/internal/artifact"
	"github.com/jpbarto/cicd-local/internal/clock"
	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/ctxutil"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// Produce serializes fields to indented JSON and stores the result under
// name, returning the opaque handle. The document always carries a
// `timestamp` field in RFC 3339 format taken from clk at call time; a
// caller-supplied timestamp is overwritten because the protocol owns
// that field. The caller's map is not modified.
//
// The store's write-once semantics make produced contexts immutable: a
// second Produce under the same name fails with ErrArtifactExists.
func Produce(ctx context.Context, clk clock.Clock, store artifact.Store, name string, fields map[string]any) (artifact.Handle, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if clk == nil {
		return nil, fmt.Errorf("failed to produce context: clock %w", cicderrors.ErrEmptyValue)
	}
	if store == nil {
		return nil, fmt.Errorf("failed to produce context: store %w", cicderrors.ErrEmptyValue)
	}

	doc := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	doc[constants.FieldTimestamp] = clk.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to produce context '%s': %w", name, err)
	}

	handle, err := store.Put(ctx, name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to produce context '%s': %w", name, err)
	}

	return handle, nil
}

// Consume reads the artifact behind the handle and parses it as a JSON
// object. Contents that are not a JSON object - arrays, scalars, null,
// and empty input - fail with ErrMalformedContext. No schema validation
// happens beyond that: unknown fields are kept, missing fields are the
// consumer's problem, solved through the Document getters.
func Consume(ctx context.Context, h artifact.Handle) (Document, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if h == nil {
		return nil, fmt.Errorf("failed to consume context: handle %w", cicderrors.ErrEmptyValue)
	}

	data, err := h.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to consume context '%s': %w", h.Name(), err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to consume context '%s': %w: %v", h.Name(), cicderrors.ErrMalformedContext, err)
	}

	// json.Unmarshal accepts a bare `null` without error, leaving the map nil.
	if doc == nil {
		return nil, fmt.Errorf("failed to consume context '%s': document is null: %w", h.Name(), cicderrors.ErrMalformedContext)
	}

	return doc, nil
}

// Branch reports whether a dependent stage should continue: true iff the
// value at key is the string expected. An absent key, a non-string
// value, or any other string yields false. Branch never errors - the
// protocol treats "can't tell" as "don't proceed".
func Branch(doc Document, key, expected string) bool {
	value, ok := doc[key].(string)
	if !ok {
		return false
	}
	return value == expected
}

// BranchWithPolicy behaves like Branch except when the key is entirely
// absent: UnknownStatusProceed then treats the missing key as permission
// to continue. A present value that is not the expected string blocks
// regardless of policy - the policy only governs genuine absence.
func BranchWithPolicy(doc Document, key, expected string, policy constants.UnknownStatusPolicy) bool {
	if !doc.Has(key) {
		return policy == constants.UnknownStatusProceed
	}
	return Branch(doc, key, expected)
}
