package graphstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codectx/codectx/internal/corekind"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndGetArtifact(t *testing.T) {
	s := newTestStore(t)

	a := Artifact{ID: "artifact-aaaa", Path: "auth.py", ContentHash: "hash1", Language: "python", ASTFingerprint: "fp1", ParseSuccess: true, LastModified: 1000}
	require.NoError(t, s.UpsertArtifact(a))

	got, err := s.GetArtifact("artifact-aaaa")
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestGetArtifact_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetArtifact("does-not-exist")
	assert.ErrorIs(t, err, corekind.ErrNotFound)
}

func TestUpsertArtifact_Idempotent(t *testing.T) {
	s := newTestStore(t)
	a := Artifact{ID: "artifact-aaaa", Path: "auth.py", ContentHash: "hash1", Language: "python", ASTFingerprint: "fp1", ParseSuccess: true, LastModified: 1000}

	require.NoError(t, s.UpsertArtifact(a))
	require.NoError(t, s.UpsertArtifact(a))

	ids, err := s.AllArtifactIDs()
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestCreateDependsOnEdge_DropsMissingEndpoint(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertArtifact(Artifact{ID: "artifact-a", Path: "a.py", ASTFingerprint: "fp-a", LastModified: 1}))

	// dst does not exist; must be a silent no-op, not an error.
	err := s.CreateDependsOnEdge("artifact-a", "artifact-missing", "import")
	require.NoError(t, err)

	deps, err := s.TraverseDependsOn("artifact-a", 1)
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestTraverseDependsOn_RespectsDepthCap(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertArtifact(Artifact{ID: "a", Path: "a", ASTFingerprint: "fa", LastModified: 1}))
	require.NoError(t, s.UpsertArtifact(Artifact{ID: "b", Path: "b", ASTFingerprint: "fb", LastModified: 1}))
	require.NoError(t, s.UpsertArtifact(Artifact{ID: "c", Path: "c", ASTFingerprint: "fc", LastModified: 1}))

	require.NoError(t, s.CreateDependsOnEdge("a", "b", "import"))
	require.NoError(t, s.CreateDependsOnEdge("b", "c", "import"))

	depsAt1, err := s.TraverseDependsOn("a", 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b"}, depsAt1)

	depsAt2, err := s.TraverseDependsOn("a", 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, depsAt2)
}

func TestTraverseDependsOn_RejectsDepthAboveCap(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertArtifact(Artifact{ID: "a", Path: "a", ASTFingerprint: "fa", LastModified: 1}))

	_, err := s.TraverseDependsOn("a", MaxTraversalDepth+1)
	assert.ErrorIs(t, err, corekind.ErrDepthExceeded)
}

func TestFindByFingerprint_ClustersClones(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertArtifact(Artifact{ID: "a", Path: "a", ASTFingerprint: "shared", LastModified: 1}))
	require.NoError(t, s.UpsertArtifact(Artifact{ID: "b", Path: "b", ASTFingerprint: "shared", LastModified: 1}))
	require.NoError(t, s.UpsertArtifact(Artifact{ID: "c", Path: "c", ASTFingerprint: "different", LastModified: 1}))

	clones, err := s.FindByFingerprint("shared")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, clones)
}

func TestDeleteArtifact_RemovesOutgoingEdgesAndIndex(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertArtifact(Artifact{ID: "a", Path: "a", ASTFingerprint: "fa", LastModified: 1}))
	require.NoError(t, s.UpsertArtifact(Artifact{ID: "b", Path: "b", ASTFingerprint: "fb", LastModified: 1}))
	require.NoError(t, s.CreateDependsOnEdge("a", "b", "import"))

	require.NoError(t, s.DeleteArtifact("a"))

	_, err := s.GetArtifact("a")
	assert.ErrorIs(t, err, corekind.ErrNotFound)

	deps, err := s.TraverseDependsOn("a", 1)
	require.NoError(t, err)
	assert.Empty(t, deps)

	clones, err := s.FindByFingerprint("fa")
	require.NoError(t, err)
	assert.Empty(t, clones)
}
