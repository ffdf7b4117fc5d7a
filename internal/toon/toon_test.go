package toon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codectx/codectx/internal/astsummary"
)

func sampleSummary() astsummary.Summary {
	return astsummary.Summary{
		FilePath: "auth.py",
		Language: "python",
		Imports:  []string{"user", "database", "hashlib"},
		Exports:  []string{"login", "logout"},
		Functions: []astsummary.Function{
			{Name: "login", Parameters: []string{"username", "password"}, ReturnType: "bool", Calls: []string{"hash_password", "user.find"}},
			{Name: "logout", Parameters: []string{"session_id"}, ReturnType: "None"},
		},
		Classes: []astsummary.Class{
			{Name: "Session", Methods: []astsummary.Function{
				{Name: "refresh", Parameters: []string{}, ReturnType: "bool"},
			}},
		},
	}
}

func TestEmit_Deterministic(t *testing.T) {
	s := sampleSummary()
	out1 := Emit(s)
	out2 := Emit(s)
	require.Equal(t, out1, out2)
}

func TestEmit_MatchesGrammar(t *testing.T) {
	s := sampleSummary()
	out := Emit(s)

	assert.Contains(t, out, "auth.py:\n")
	assert.Contains(t, out, "  language: python\n")
	assert.Contains(t, out, "  imports:\n")
	assert.Contains(t, out, "    - user\n")
	assert.Contains(t, out, "  functions:\n")
	assert.Contains(t, out, "    - login(username, password) -> bool\n")
	assert.Contains(t, out, "      calls: hash_password, user.find\n")
	assert.Contains(t, out, "  classes:\n")
	assert.Contains(t, out, "    - Session:\n")
	assert.Contains(t, out, "      - refresh() -> bool")
}

func TestEmit_SanitizesForbiddenCharacters(t *testing.T) {
	s := astsummary.Summary{FilePath: "weird:path\nname", Language: "go"}
	out := Emit(s)
	assert.NotContains(t, out[:len(s.FilePath)], ":")
}

func TestEmitBundle_SectionSeparator(t *testing.T) {
	main := sampleSummary()
	dep1 := astsummary.Summary{FilePath: "user.py", Language: "python", Imports: []string{"database"}}
	dep2 := astsummary.Summary{FilePath: "database.py", Language: "python"}

	out := EmitBundle(main, []astsummary.Summary{dep1, dep2})

	assert.Contains(t, out, "# auth.py\n")
	assert.Contains(t, out, "\n\n---\n\n")
	assert.Contains(t, out, "## user.py\n")
	assert.Contains(t, out, "## database.py\n")
}

func TestEmitBundle_NoDepsOmitsSeparator(t *testing.T) {
	main := sampleSummary()
	out := EmitBundle(main, nil)
	assert.NotContains(t, out, "---")
}

func TestCompare_ReportsReduction(t *testing.T) {
	s := sampleSummary()
	report := Compare(s)

	require.Greater(t, report.JSONSize, 0)
	require.Greater(t, report.ToonSize, 0)
	assert.Less(t, report.ToonSize, report.JSONSize, "TOON should be smaller than canonical JSON for a structured summary")
	assert.Greater(t, report.SpaceReduction, 0.0)
}

// TestCompare_MeetsCompressionBound exercises the 40%-shorter property
// named in spec.md §8 scenario 6, using a summary with the same shape
// (4 functions, 1 class, 3 imports, 2 exports).
func TestCompare_MeetsCompressionBound(t *testing.T) {
	s := astsummary.Summary{
		FilePath: "module.go",
		Language: "go",
		Imports:  []string{"fmt", "os", "strings"},
		Exports:  []string{"Run", "Stop"},
		Functions: []astsummary.Function{
			{Name: "Run", Parameters: []string{"ctx"}, ReturnType: "error"},
			{Name: "Stop", Parameters: []string{}, ReturnType: "error"},
			{Name: "helper", Parameters: []string{"x", "y"}, ReturnType: "int"},
			{Name: "validate", Parameters: []string{"input"}, ReturnType: "bool"},
		},
		Classes: []astsummary.Class{
			{Name: "Runner", Methods: []astsummary.Function{{Name: "init", ReturnType: "error"}}},
		},
	}

	report := Compare(s)
	assert.Greater(t, report.SpaceReduction, 0.4)
}
