// Package ingest implements the Ingest Adapter of spec.md §4.D: takes
// a parsed artifact and writes it into the graph, the Bloom Index, and
// the DEPENDS_ON edge set via the Import Resolver.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/codectx/codectx/internal/bloom"
	"github.com/codectx/codectx/internal/fingerprint"
	"github.com/codectx/codectx/internal/graphstore"
	"github.com/codectx/codectx/internal/invariant"
	"github.com/codectx/codectx/internal/logging"
	"github.com/codectx/codectx/internal/resolver"
)

// Import is one resolved-or-not import string extracted by the parser
// collaborator, carrying the DEPENDS_ON edge kind spec.md §3 names.
type Import struct {
	Path string
	Kind string // one of "import", "require", "include"
}

// Parsed is the `(language, tree | null, imports[], symbols[])` tuple
// spec.md §4.D's contract names. Tree is nil when the external parser
// failed; the adapter falls back to a content hash for the fingerprint.
type Parsed struct {
	Language    string
	Tree        fingerprint.Node
	Imports     []Import
	SymbolCount int
}

// Report is returned from Ingest, per spec.md §4.D step 7.
type Report struct {
	Status      string
	DepsWritten int
	Symbols     int
	Violations  []invariant.Violation
	ArtifactID  string
}

// Adapter wires the Fingerprinter, Bloom Index, Graph Store, and Import
// Resolver together to implement Ingest, per spec.md §4.D.
type Adapter struct {
	Store    *graphstore.Store
	Bloom    *bloom.Filter
	Resolver *resolver.Resolver
	Cache    *resolver.Cache
	Checkers []invariant.Checker
	Now      func() int64
}

// New constructs an Adapter with the default invariant checker set.
func New(store *graphstore.Store, filter *bloom.Filter, res *resolver.Resolver, cache *resolver.Cache, now func() int64) *Adapter {
	return &Adapter{
		Store:    store,
		Bloom:    filter,
		Resolver: res,
		Cache:    cache,
		Checkers: invariant.DefaultCheckers(),
		Now:      now,
	}
}

// Ingest implements spec.md §4.D's `ingest(path, bytes, parsed) → Report`.
func (a *Adapter) Ingest(path string, content []byte, parsed Parsed) (Report, error) {
	timer := logging.StartTimer(logging.CategoryIngest, "Ingest")
	defer timer.Stop()

	contentHash := sha256Hex(content)

	fp := ""
	parseSuccess := parsed.Tree != nil
	if parseSuccess {
		fp = fingerprint.Fingerprint(parsed.Tree)
	} else {
		fp = fingerprint.FingerprintBytes(content)
		logging.Get(logging.CategoryIngest).Warn("parser failed for %s, falling back to content hash fingerprint", path)
	}

	id := "artifact-" + contentHash[:16]

	existing, err := a.Store.GetArtifactByPath(path)
	if err == nil && existing.ContentHash == contentHash {
		// Idempotent re-ingest: identical bytes at the same path is a
		// no-op on the graph, per spec.md §4.D's idempotence rule.
		return Report{Status: "unchanged", ArtifactID: existing.ID}, nil
	}
	if err == nil && existing.ID != id {
		// Re-ingest with different bytes: delete the old node (and its
		// outgoing edges) before writing the new one, per §4.D.
		if delErr := a.Store.DeleteArtifact(existing.ID); delErr != nil {
			return Report{}, fmt.Errorf("failed to delete stale artifact for %s: %w", path, delErr)
		}
		a.Cache.Invalidate(path)
	}

	artifact := graphstore.Artifact{
		ID:             id,
		Path:           path,
		ContentHash:    contentHash,
		Language:       parsed.Language,
		ASTFingerprint: fp,
		ParseSuccess:   parseSuccess,
		LastModified:   a.Now(),
	}
	if err := a.Store.UpsertArtifact(artifact); err != nil {
		return Report{}, fmt.Errorf("failed to upsert artifact %s: %w", path, err)
	}

	a.Bloom.Add(id)
	a.Cache.Put(path, id)

	depsWritten := 0
	for _, imp := range parsed.Imports {
		res := a.Resolver.Resolve(imp.Path, path, parsed.Language)
		if res.Kind != resolver.KindInternal {
			continue
		}
		if err := a.Store.CreateDependsOnEdge(id, res.ArtifactID, imp.Kind); err != nil {
			logging.Get(logging.CategoryIngest).Warn("edge create failed %s -> %s: %v", id, res.ArtifactID, err)
			continue
		}
		depsWritten++
	}

	violations := invariant.RunAll(a.Checkers, path, content)
	if err := a.writeViolations(id, violations); err != nil {
		logging.Get(logging.CategoryIngest).Warn("failed to persist invariants for %s: %v", path, err)
	}

	return Report{
		Status:      "ingested",
		DepsWritten: depsWritten,
		Symbols:     parsed.SymbolCount,
		Violations:  violations,
		ArtifactID:  id,
	}, nil
}

func (a *Adapter) writeViolations(artifactID string, violations []invariant.Violation) error {
	for i, v := range violations {
		invID := fmt.Sprintf("invariant-%s-%s-%d", artifactID, v.RuleName, i)
		if err := a.Store.UpsertInvariant(graphstore.Invariant{
			ID:        invID,
			RuleName:  v.RuleName,
			Severity:  string(v.Severity),
			CheckExpr: v.Detail,
		}); err != nil {
			return err
		}
		if err := a.Store.CreateConstrainsEdge(invID, artifactID, 1.0); err != nil {
			return err
		}
	}
	return nil
}

func sha256Hex(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
