package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNode is a minimal Node implementation for testing, independent of
// any real parser.
type fakeNode struct {
	typ      string
	children []Node
}

func (f *fakeNode) Type() string          { return f.typ }
func (f *fakeNode) NamedChildren() []Node { return f.children }

func leaf(typ string) Node { return &fakeNode{typ: typ} }

func node(typ string, children ...Node) Node {
	return &fakeNode{typ: typ, children: children}
}

func TestFingerprint_Deterministic(t *testing.T) {
	tree := node("source_file",
		leaf("import"),
		node("function_declaration", leaf("identifier"), leaf("block")),
	)

	h1 := Fingerprint(tree)
	h2 := Fingerprint(tree)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestFingerprint_OrderInsensitive(t *testing.T) {
	a := leaf("import")
	b := node("function_declaration", leaf("identifier"), leaf("block"))

	treeAB := node("source_file", a, b)
	treeBA := node("source_file", b, a)

	require.Equal(t, Fingerprint(treeAB), Fingerprint(treeBA),
		"fingerprint must be invariant to sibling order at every interior node")
}

func TestFingerprint_StructuralChangeAltersHash(t *testing.T) {
	tree1 := node("source_file", leaf("import"))
	tree2 := node("source_file", leaf("import"), leaf("export"))

	assert.NotEqual(t, Fingerprint(tree1), Fingerprint(tree2))
}

func TestFingerprintBytes_FallsBackOnNoParse(t *testing.T) {
	h1 := FingerprintBytes([]byte("package main"))
	h2 := FingerprintBytes([]byte("package main"))
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	h3 := FingerprintBytes([]byte("package other"))
	assert.NotEqual(t, h1, h3)
}
