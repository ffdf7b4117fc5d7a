// Package corekind defines the error taxonomy shared across codectx's
// components, per spec.md §7.
package corekind

import "errors"

// Sentinel error kinds. Components wrap these with fmt.Errorf("...: %w", err)
// at each boundary; callers check with errors.Is.
var (
	// ErrValidation indicates malformed input (bad path, empty bytes,
	// malformed query) rejected before any state changes.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a requested artifact, concept, or invariant
	// does not exist in the store.
	ErrNotFound = errors.New("not found")

	// ErrParse indicates the parser could not produce a tree for an
	// artifact's content. Components degrade to fingerprint-only rather
	// than propagating this past the Ingest Adapter.
	ErrParse = errors.New("parse error")

	// ErrIO indicates a filesystem or persistence I/O failure.
	ErrIO = errors.New("i/o error")

	// ErrStore indicates a graph store operation failed (schema,
	// transaction, or query execution).
	ErrStore = errors.New("store error")

	// ErrCorruption indicates persisted state (Bloom snapshot, graph,
	// fingerprint index) failed an integrity check on load.
	ErrCorruption = errors.New("corruption error")

	// ErrDeadlineExceeded indicates a query was truncated by the §5 soft
	// deadline. Not fatal — callers inspect the result's Truncated field.
	ErrDeadlineExceeded = errors.New("deadline exceeded")

	// ErrDepthExceeded indicates a traversal requested a depth beyond the
	// §4.C hard cap.
	ErrDepthExceeded = errors.New("depth exceeds cap")
)
