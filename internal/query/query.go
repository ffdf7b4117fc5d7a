// Package query implements the Query Engine of spec.md §4.F: Bloom
// probe, node fetch, bounded traversal, per-file re-parse, and TOON
// emission, composed under the cooperative suspension-point model of
// spec.md §5.
package query

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/codectx/codectx/internal/astsummary"
	"github.com/codectx/codectx/internal/bloom"
	"github.com/codectx/codectx/internal/graphstore"
	"github.com/codectx/codectx/internal/logging"
	"github.com/codectx/codectx/internal/parse"
	"github.com/codectx/codectx/internal/toon"
)

// Result is the QueryResult value named in spec.md §4.F.
type Result struct {
	Bundle            string
	FilesParsed       int
	TokensEstimated   int
	DurationMS        float64
	BloomHit          bool
	DependenciesFound int
	Truncated         bool
}

// Engine composes the Bloom Index, Graph Store, parser registry, and
// TOON Emitter into the single-query pipeline spec.md §4.F names. Its
// staged shape is grounded on
// other_examples/.../internal-ingestion-processor.go's
// ProcessRepositoryFromPath (walk -> parse -> extract -> graph),
// adapted here from a batch-ingest pipeline to a single-query one.
type Engine struct {
	Store        *graphstore.Store
	Bloom        *bloom.Filter
	Parsers      *parse.Registry
	SoftDeadline time.Duration
	ReadFile     func(path string) ([]byte, error)
}

// NewEngine constructs an Engine with the production file reader.
func NewEngine(store *graphstore.Store, filter *bloom.Filter, parsers *parse.Registry, softDeadline time.Duration) *Engine {
	return &Engine{Store: store, Bloom: filter, Parsers: parsers, SoftDeadline: softDeadline, ReadFile: os.ReadFile}
}

// Query implements spec.md §4.F's `query(id, include_deps, max_depth) → QueryResult`.
func (e *Engine) Query(ctx context.Context, id string, includeDeps bool, maxDepth int) (Result, error) {
	start := time.Now()
	deadline := start.Add(e.SoftDeadline)

	timer := logging.StartTimer(logging.CategoryQuery, "Query")
	defer timer.Stop()

	// Stage 1: Bloom probe. Target latency < 1ms.
	if !e.Bloom.MightContain(id) {
		return Result{BloomHit: false, DurationMS: elapsedMS(start)}, nil
	}
	if err := checkCtx(ctx); err != nil {
		return Result{}, err
	}

	// Stage 2: node fetch. A Bloom hit with a missing node is a false
	// positive, not an error, per spec.md §4.F step 2.
	artifact, err := e.Store.GetArtifact(id)
	if err != nil {
		return Result{
			BloomHit:    true,
			FilesParsed: 0,
			Bundle:      "artifact node not found",
			DurationMS:  elapsedMS(start),
		}, nil
	}
	if err := checkCtx(ctx); err != nil {
		return Result{}, err
	}

	// Stage 3: bounded traversal.
	var depIDs []string
	if includeDeps {
		depIDs, err = e.Store.TraverseDependsOn(id, maxDepth)
		if err != nil {
			return Result{}, fmt.Errorf("traversal failed: %w", err)
		}
		// At most 50 dependency ids are carried into the re-parse stage.
		const maxDependencies = 50
		if len(depIDs) > maxDependencies {
			depIDs = depIDs[:maxDependencies]
		}
	}
	if err := checkCtx(ctx); err != nil {
		return Result{}, err
	}

	// Stage 4: re-parse main artifact and each dependency.
	truncated := false
	mainSummary, filesParsed := e.reParse(artifact)

	var depSummaries []astsummary.Summary
	for _, depID := range depIDs {
		if time.Now().After(deadline) {
			truncated = true
			break
		}
		if err := checkCtx(ctx); err != nil {
			return Result{}, err
		}

		depArtifact, err := e.Store.GetArtifact(depID)
		if err != nil {
			// Endpoint vanished since traversal; degrade per §3's
			// lifecycle garbage-collection rule rather than failing.
			continue
		}
		summary, parsed := e.reParse(depArtifact)
		depSummaries = append(depSummaries, summary)
		filesParsed += parsed
	}

	// Stage 5: emit.
	bundle := toon.EmitBundle(mainSummary, depSummaries)

	return Result{
		Bundle:            bundle,
		FilesParsed:       filesParsed,
		TokensEstimated:   len(bundle) / 4,
		DurationMS:        elapsedMS(start),
		BloomHit:          true,
		DependenciesFound: len(depSummaries),
		Truncated:         truncated,
	}, nil
}

// reParse re-parses an artifact's current source bytes, degrading to a
// stub summary on any I/O or parser failure, per spec.md §4.F step 4.
func (e *Engine) reParse(a graphstore.Artifact) (astsummary.Summary, int) {
	content, err := e.ReadFile(a.Path)
	if err != nil {
		logging.Get(logging.CategoryQuery).Warn("read failed for %s: %v", a.Path, err)
		return astsummary.Stub(a.Path, a.Language), 0
	}

	parser := e.Parsers.Get(a.Language)
	if parser == nil {
		return astsummary.Stub(a.Path, a.Language), 0
	}

	tree, err := parser.Parse(context.Background(), content)
	if err != nil {
		logging.Get(logging.CategoryQuery).Warn("re-parse failed for %s: %v", a.Path, err)
		return astsummary.Stub(a.Path, a.Language), 0
	}
	defer tree.Close()

	functions, classes := parser.ExtractSymbols(tree)
	summary := astsummary.Summary{
		FilePath:  a.Path,
		Language:  a.Language,
		Functions: functions,
		Classes:   classes,
		Imports:   parser.ExtractImports(tree),
		Exports:   parser.ExtractExports(tree),
	}
	return summary, 1
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
