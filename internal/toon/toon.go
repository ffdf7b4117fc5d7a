// Package toon implements the TOON (Token-Oriented Object Notation)
// text encoding that is the only wire format the core defines, per
// spec.md §4.G and §6.
package toon

import (
	"fmt"
	"strings"

	"github.com/codectx/codectx/internal/astsummary"
)

// sanitize replaces forbidden characters (":" and newlines) in an
// identifier with "?", per spec.md §6's grammar note.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\n", "?")
	s = strings.ReplaceAll(s, ":", "?")
	return s
}

// Emit encodes a single AST Summary as TOON text, per the `summary`
// production in spec.md §6's grammar.
func Emit(s astsummary.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s:\n", sanitize(s.FilePath))
	fmt.Fprintf(&b, "  language: %s\n", sanitize(s.Language))

	if len(s.Imports) > 0 {
		b.WriteString("  imports:\n")
		for _, imp := range s.Imports {
			fmt.Fprintf(&b, "    - %s\n", sanitize(imp))
		}
	}

	if len(s.Exports) > 0 {
		b.WriteString("  exports:\n")
		for _, exp := range s.Exports {
			fmt.Fprintf(&b, "    - %s\n", sanitize(exp))
		}
	}

	if len(s.Functions) > 0 {
		b.WriteString("  functions:\n")
		for _, fn := range s.Functions {
			writeFunctionLine(&b, "    - ", "      ", fn)
		}
	}

	if len(s.Classes) > 0 {
		b.WriteString("  classes:\n")
		for _, cls := range s.Classes {
			fmt.Fprintf(&b, "    - %s:\n", sanitize(cls.Name))
			for _, m := range cls.Methods {
				writeFunctionLine(&b, "      - ", "        ", m)
			}
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func writeFunctionLine(b *strings.Builder, linePrefix, callsPrefix string, fn astsummary.Function) {
	params := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		params[i] = sanitize(p)
	}
	ret := fn.ReturnType
	if ret == "" {
		ret = "None"
	}
	fmt.Fprintf(b, "%s%s(%s) -> %s\n", linePrefix, sanitize(fn.Name), strings.Join(params, ", "), sanitize(ret))

	if len(fn.Calls) > 0 {
		calls := make([]string, len(fn.Calls))
		for i, c := range fn.Calls {
			calls[i] = sanitize(c)
		}
		fmt.Fprintf(b, "%scalls: %s\n", callsPrefix, strings.Join(calls, ", "))
	}
}

// EmitBundle encodes a main artifact plus its dependencies as a single
// TOON bundle, per the `bundle` production in spec.md §6: a `# main`
// section, a `\n\n---\n\n` separator, then one `## dep` section per
// dependency. This is the primary export format for agent queries.
func EmitBundle(main astsummary.Summary, deps []astsummary.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", sanitize(main.FilePath))
	b.WriteString(Emit(main))

	if len(deps) == 0 {
		return b.String()
	}

	b.WriteString("\n\n---\n\n")
	for i, dep := range deps {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## %s\n", sanitize(dep.FilePath))
		b.WriteString(Emit(dep))
	}

	return b.String()
}

// CompressionReport holds the token/byte comparison between a TOON
// encoding and the equivalent canonical JSON, carried forward from
// original_source/palace/core/toon.py's compare_vs_json per SPEC_FULL.md
// §12 item 2.
type CompressionReport struct {
	ToonTokens     int
	JSONTokens     int
	ToonSize       int
	JSONSize       int
	TokenReduction float64 // fraction, e.g. 0.42 for 42% smaller
	SpaceReduction float64
}

// estimateTokens applies the same rough ~4-characters-per-token
// heuristic the original implementation uses.
func estimateTokens(s string) int {
	return len(s) / 4
}

// Compare computes a CompressionReport for summary, encoding it both as
// TOON and as canonical JSON for comparison.
func Compare(s astsummary.Summary) CompressionReport {
	toonStr := Emit(s)
	jsonStr := canonicalJSON(s)

	toonTokens := estimateTokens(toonStr)
	jsonTokens := estimateTokens(jsonStr)

	report := CompressionReport{
		ToonTokens: toonTokens,
		JSONTokens: jsonTokens,
		ToonSize:   len(toonStr),
		JSONSize:   len(jsonStr),
	}
	if jsonTokens > 0 {
		report.TokenReduction = float64(jsonTokens-toonTokens) / float64(jsonTokens)
	}
	if len(jsonStr) > 0 {
		report.SpaceReduction = float64(len(jsonStr)-len(toonStr)) / float64(len(jsonStr))
	}
	return report
}
