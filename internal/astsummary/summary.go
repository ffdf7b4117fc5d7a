// Package astsummary defines the transient AST Summary value type
// produced by the external parser collaborator and consumed by the
// TOON Emitter, per spec.md §3 and §4.G.
package astsummary

// Function describes one function or method signature.
type Function struct {
	Name       string
	Parameters []string
	ReturnType string
	Calls      []string
}

// Class describes one class/struct and its methods.
type Class struct {
	Name    string
	Methods []Function
}

// Summary is the simplified, language-neutral AST summary produced on
// query from the external parser. It is never persisted — see spec.md
// §3's "transient value (not stored)" note.
type Summary struct {
	FilePath  string
	Language  string
	Functions []Function
	Classes   []Class
	Imports   []string
	Exports   []string
}

// Stub returns a degraded AST Summary carrying only a path and
// language, used when a dependency fails to re-parse during a query
// per spec.md §4.F's per-file degradation rule.
func Stub(filePath, language string) Summary {
	return Summary{FilePath: filePath, Language: language}
}
