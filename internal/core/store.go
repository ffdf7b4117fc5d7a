// Package core wires the Fingerprinter, Bloom Index, Graph Store,
// Ingest Adapter, Import Resolver, Query Engine, and TOON Emitter into
// the language-neutral Core API named in spec.md §6: open_store,
// ingest, query, find_similar, stats.
package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codectx/codectx/internal/bloom"
	"github.com/codectx/codectx/internal/config"
	"github.com/codectx/codectx/internal/corekind"
	"github.com/codectx/codectx/internal/graphstore"
	"github.com/codectx/codectx/internal/ingest"
	"github.com/codectx/codectx/internal/logging"
	"github.com/codectx/codectx/internal/parse"
	"github.com/codectx/codectx/internal/query"
	"github.com/codectx/codectx/internal/resolver"
)

// Handle is the store handle returned by Open, per spec.md §6's Core
// API table. It owns every component's lifetime.
type Handle struct {
	cfg     *config.Config
	dataDir string

	store    *graphstore.Store
	filter   *bloom.Filter
	parsers  *parse.Registry
	cache    *resolver.Cache
	res      *resolver.Resolver
	adapter  *ingest.Adapter
	engine   *query.Engine
}

const bloomSnapshotFile = "bloom.snap"

// Open implements spec.md §6's `open_store(dir) → store handle`. It
// bootstraps the graph schema, and loads (or builds) the Bloom Index,
// per spec.md §4.B's snapshot-or-rebuild failure semantics.
func Open(dir string, cfg *config.Config) (*Handle, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if err := logging.Initialize(dir, cfg.Logging); err != nil {
		// Logging failures are non-fatal, matching the teacher's
		// cmd/nerd/main.go policy of warning rather than aborting boot.
		fmt.Fprintf(os.Stderr, "warning: logging init failed: %v\n", err)
	}

	storePath := filepath.Join(dir, "graph", "store.db")
	store, err := graphstore.Open(storePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", corekind.ErrIO, err)
	}

	filter, err := loadOrRebuildBloom(dir, cfg, store)
	if err != nil {
		store.Close()
		return nil, err
	}

	parsers := parse.NewRegistry()

	h := &Handle{cfg: cfg, dataDir: dir, store: store, filter: filter, parsers: parsers}

	h.cache = resolver.NewCache(func(path string) (string, bool) {
		a, err := store.GetArtifactByPath(path)
		if err != nil {
			return "", false
		}
		return a.ID, true
	})
	h.res = resolver.New(dir, h.cache)
	h.adapter = ingest.New(store, filter, h.res, h.cache, func() int64 { return time.Now().Unix() })
	h.engine = query.NewEngine(store, filter, parsers, cfg.Query.SoftDeadline)

	return h, nil
}

func loadOrRebuildBloom(dir string, cfg *config.Config, store *graphstore.Store) (*bloom.Filter, error) {
	snapPath := filepath.Join(dir, bloomSnapshotFile)

	data, err := os.ReadFile(snapPath)
	if err == nil {
		filter, loadErr := bloom.Load(data, cfg.Bloom)
		if loadErr == nil {
			return filter, nil
		}
		logging.Get(logging.CategoryBloom).Warn("bloom snapshot unusable, rebuilding from graph: %v", loadErr)
	}

	filter := bloom.New(cfg.Bloom.ExpectedItems, cfg.Bloom.FalsePositiveRate)
	ids, err := store.AllArtifactIDs()
	if err != nil {
		return nil, fmt.Errorf("%w: bloom rebuild failed: %v", corekind.ErrStore, err)
	}
	for _, id := range ids {
		filter.Add(id)
	}
	return filter, nil
}

// Close persists the Bloom snapshot and releases the graph store.
func (h *Handle) Close() error {
	snap, err := h.filter.Snapshot()
	if err == nil {
		_ = os.WriteFile(filepath.Join(h.dataDir, bloomSnapshotFile), snap, 0644)
	} else {
		logging.Get(logging.CategoryBloom).Warn("failed to snapshot bloom filter on close: %v", err)
	}
	logging.CloseAll()
	return h.store.Close()
}

// Ingest implements spec.md §6's `ingest(handle, path, bytes, parsed)`.
func (h *Handle) Ingest(path string, content []byte, parsed ingest.Parsed) (ingest.Report, error) {
	return h.adapter.Ingest(path, content, parsed)
}

// Query implements spec.md §6's `query(handle, id, include_deps, max_depth)`.
// max_depth outside 1..5 is rejected with a Validation error, per §8's
// boundary behavior (max_depth=6 rejected).
func (h *Handle) Query(ctx context.Context, id string, includeDeps bool, maxDepth int) (query.Result, error) {
	if id == "" {
		return query.Result{}, fmt.Errorf("%w: id must be non-empty", corekind.ErrValidation)
	}
	if maxDepth < 1 || maxDepth > graphstore.MaxTraversalDepth {
		return query.Result{}, fmt.Errorf("%w: max_depth must be in 1..%d", corekind.ErrValidation, graphstore.MaxTraversalDepth)
	}
	return h.engine.Query(ctx, id, includeDeps, maxDepth)
}

// FindSimilar implements spec.md §6's `find_similar(handle, id, limit)`:
// returns other artifact ids sharing id's AST fingerprint, per
// SPEC_FULL.md §12 item 1's reverse-index lookup.
func (h *Handle) FindSimilar(id string, limit int) ([]string, error) {
	if limit < 1 || limit > 50 {
		return nil, fmt.Errorf("%w: limit must be in 1..50", corekind.ErrValidation)
	}

	artifact, err := h.store.GetArtifact(id)
	if err != nil {
		return nil, nil
	}

	all, err := h.store.FindByFingerprint(artifact.ASTFingerprint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", corekind.ErrStore, err)
	}

	var others []string
	for _, candidate := range all {
		if candidate == id {
			continue
		}
		others = append(others, candidate)
		if len(others) >= limit {
			break
		}
	}
	return others, nil
}

// Stats implements spec.md §6's `stats(handle)`, extended with the
// per-severity invariant breakdown from SPEC_FULL.md §12 item 3.
type Stats struct {
	ArtifactCount        int
	DependsOnEdgeCount   int
	BloomEstimatedCount  int
	ViolationsBySeverity map[string]int
}

// Stats returns repository-wide counts.
func (h *Handle) Stats() (Stats, error) {
	ids, err := h.store.AllArtifactIDs()
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", corekind.ErrStore, err)
	}

	invariants, err := h.store.AllInvariants()
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %v", corekind.ErrStore, err)
	}

	bySeverity := make(map[string]int)
	for _, inv := range invariants {
		bySeverity[inv.Severity]++
	}

	edgeCount := 0
	for _, id := range ids {
		deps, err := h.store.TraverseDependsOn(id, 1)
		if err != nil {
			continue
		}
		edgeCount += len(deps)
	}

	return Stats{
		ArtifactCount:        len(ids),
		DependsOnEdgeCount:   edgeCount,
		BloomEstimatedCount:  h.filter.EstimateCount(),
		ViolationsBySeverity: bySeverity,
	}, nil
}

// Parsers exposes the registry so a driver can build ingest.Parsed
// values from raw file bytes before calling Ingest.
func (h *Handle) Parsers() *parse.Registry {
	return h.parsers
}
