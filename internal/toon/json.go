package toon

import (
	"encoding/json"

	"github.com/codectx/codectx/internal/astsummary"
)

// jsonSummary mirrors astsummary.Summary's field order for the
// canonical JSON comparison used by Compare.
type jsonSummary struct {
	FilePath  string                `json:"file_path"`
	Language  string                `json:"language"`
	Functions []astsummary.Function `json:"functions"`
	Classes   []astsummary.Class    `json:"classes"`
	Imports   []string              `json:"imports"`
	Exports   []string              `json:"exports"`
}

func canonicalJSON(s astsummary.Summary) string {
	js := jsonSummary{
		FilePath:  s.FilePath,
		Language:  s.Language,
		Functions: s.Functions,
		Classes:   s.Classes,
		Imports:   s.Imports,
		Exports:   s.Exports,
	}
	data, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
