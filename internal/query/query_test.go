package query

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codectx/codectx/internal/bloom"
	"github.com/codectx/codectx/internal/graphstore"
	"github.com/codectx/codectx/internal/parse"
)

func newTestEngine(t *testing.T, files map[string][]byte) (*Engine, *graphstore.Store) {
	t.Helper()
	store, err := graphstore.Open(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	filter := bloom.New(1000, 0.01)
	engine := NewEngine(store, filter, parse.NewRegistry(), 500*time.Millisecond)
	engine.ReadFile = func(path string) ([]byte, error) {
		content, ok := files[path]
		if !ok {
			return nil, assert.AnError
		}
		return content, nil
	}
	return engine, store
}

func TestQuery_BloomMissReturnsFastNegative(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	result, err := engine.Query(context.Background(), "artifact-missing", false, 1)
	require.NoError(t, err)
	assert.False(t, result.BloomHit)
	assert.Empty(t, result.Bundle)
}

func TestQuery_BloomFalsePositiveReportsMissingNode(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	engine.Bloom.Add("artifact-ghost")

	result, err := engine.Query(context.Background(), "artifact-ghost", false, 1)
	require.NoError(t, err)
	assert.True(t, result.BloomHit)
	assert.Equal(t, 0, result.FilesParsed)
	assert.Contains(t, result.Bundle, "not found")
}

func TestQuery_WithDependencies(t *testing.T) {
	files := map[string][]byte{
		"auth.py": []byte("def login():\n    pass\n"),
		"user.py": []byte("def find():\n    pass\n"),
	}
	engine, store := newTestEngine(t, files)

	require.NoError(t, store.UpsertArtifact(graphstore.Artifact{ID: "a", Path: "auth.py", Language: "python", ASTFingerprint: "fa", LastModified: 1}))
	require.NoError(t, store.UpsertArtifact(graphstore.Artifact{ID: "b", Path: "user.py", Language: "python", ASTFingerprint: "fb", LastModified: 1}))
	require.NoError(t, store.CreateDependsOnEdge("a", "b", "import"))
	engine.Bloom.Add("a")

	result, err := engine.Query(context.Background(), "a", true, 2)
	require.NoError(t, err)
	assert.True(t, result.BloomHit)
	assert.Equal(t, 1, result.DependenciesFound)
	assert.Contains(t, result.Bundle, "## user.py")
}

func TestQuery_RespectsContextCancellation(t *testing.T) {
	engine, store := newTestEngine(t, nil)
	require.NoError(t, store.UpsertArtifact(graphstore.Artifact{ID: "a", Path: "auth.py", Language: "python", ASTFingerprint: "fa", LastModified: 1}))
	engine.Bloom.Add("a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Query(ctx, "a", false, 1)
	assert.Error(t, err)
}
