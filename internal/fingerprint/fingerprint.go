// Package fingerprint computes order-normalized structural hashes over
// parsed syntax trees, per spec.md §4.A.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Node is the minimal capability a parsed tree node must expose for
// fingerprinting. It deliberately avoids any dependency on a concrete
// parser type (tree-sitter, go/ast, ...) so the Fingerprinter stays
// usable against any collaborator that can answer these two
// questions, per spec.md §9's "duck-typed parser" design note.
type Node interface {
	// Type returns the grammar node kind (e.g. "function_declaration").
	Type() string
	// NamedChildren returns this node's named children, in source order.
	// The Fingerprinter re-sorts them; callers need not pre-sort.
	NamedChildren() []Node
}

// Fingerprint computes the structural hash of root.
//
// The hash is recursive: a leaf's hash is SHA-256(type); an interior
// node's hash is SHA-256("type:" + sorted-joined child hashes). Sorting
// child hashes at every interior node (not only at roots) makes the
// fingerprint insensitive to declaration order at every nesting level —
// see SPEC_FULL.md §13 for the rationale and the accepted tradeoff
// (order-sensitive languages lose that signal).
func Fingerprint(root Node) string {
	return hashNode(root)
}

// FingerprintBytes falls back to a plain content hash when no parse
// tree is available, per spec.md §4.A's degradation rule.
func FingerprintBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func hashNode(n Node) string {
	children := n.NamedChildren()
	if len(children) == 0 {
		sum := sha256.Sum256([]byte(n.Type()))
		return hex.EncodeToString(sum[:])
	}

	childHashes := make([]string, len(children))
	for i, c := range children {
		childHashes[i] = hashNode(c)
	}
	sort.Strings(childHashes)

	combined := n.Type() + ":" + strings.Join(childHashes, ",")
	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])
}
