package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codectx/codectx/internal/core"
	"github.com/codectx/codectx/internal/ingest"
)

var ingestLanguage string

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "parse and ingest a source file into the graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		h, err := core.Open(dataDir, loadConfig())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer h.Close()

		parsed := buildParsed(h, path, content)

		report, err := h.Ingest(path, content, parsed)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}

		fmt.Printf("status=%s artifact_id=%s deps_written=%d symbols=%d violations=%d\n",
			report.Status, report.ArtifactID, report.DepsWritten, report.Symbols, len(report.Violations))
		for _, v := range report.Violations {
			fmt.Printf("  [%s] %s: %s\n", v.Severity, v.RuleName, v.Detail)
		}
		return nil
	},
}

// buildParsed runs the parser registry over content to produce the
// (language, tree, imports, symbols) tuple Ingest expects, degrading to
// a tree-less Parsed on any parse failure per spec.md §4.D step 2.
func buildParsed(h *core.Handle, path string, content []byte) ingest.Parsed {
	parser := h.Parsers().Get(ingestLanguage)
	if parser == nil {
		return ingest.Parsed{Language: ingestLanguage}
	}

	tree, err := parser.Parse(context.Background(), content)
	if err != nil {
		return ingest.Parsed{Language: ingestLanguage}
	}
	defer tree.Close()

	functions, classes := parser.ExtractSymbols(tree)
	symbolCount := len(functions)
	for _, c := range classes {
		symbolCount += len(c.Methods)
	}

	var imports []ingest.Import
	for _, imp := range parser.ExtractImports(tree) {
		imports = append(imports, ingest.Import{Path: imp, Kind: "import"})
	}

	return ingest.Parsed{
		Language:    ingestLanguage,
		Tree:        tree.Root(),
		Imports:     imports,
		SymbolCount: symbolCount,
	}
}
