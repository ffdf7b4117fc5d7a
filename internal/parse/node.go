// Package parse implements the external parser collaborator named at
// the core boundary in spec.md §6: `(bytes, language_tag) → tree,
// named-child iterator, per-language extractors`. It wraps
// github.com/smacker/go-tree-sitter, the parser library carried over
// from the teacher's internal/world/ast_treesitter.go.
package parse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codectx/codectx/internal/fingerprint"
)

// sitterNode adapts *sitter.Node to the fingerprint.Node capability
// interface, so the Fingerprinter stays independent of tree-sitter's
// concrete type, per spec.md §9's duck-typed-parser design note.
type sitterNode struct {
	n *sitter.Node
}

func (s sitterNode) Type() string { return s.n.Type() }

func (s sitterNode) NamedChildren() []fingerprint.Node {
	count := int(s.n.NamedChildCount())
	children := make([]fingerprint.Node, count)
	for i := 0; i < count; i++ {
		children[i] = sitterNode{n: s.n.NamedChild(i)}
	}
	return children
}

// Tree wraps a parsed tree-sitter tree, its root node, and the source
// bytes it was parsed from (needed to resolve node text spans).
type Tree struct {
	tree    *sitter.Tree
	root    *sitter.Node
	content []byte
}

// Root returns the tree's root node as a fingerprint.Node, ready for
// Fingerprinter.Fingerprint.
func (t *Tree) Root() fingerprint.Node {
	return sitterNode{n: t.root}
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
	}
}

func (t *Tree) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(t.content)
}

func isExported(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}
