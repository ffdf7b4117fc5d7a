package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codectx/codectx/internal/core"
)

func TestStatsCmd_RunsAgainstEmptyStore(t *testing.T) {
	dataDir = t.TempDir()
	configPath = ""

	var out bytes.Buffer
	statsCmd.SetOut(&out)

	err := statsCmd.RunE(statsCmd, nil)
	require.NoError(t, err)
}

func TestFindSimilarCmd_RejectsBadLimit(t *testing.T) {
	dataDir = t.TempDir()
	configPath = ""
	findSimilarLimit = 0

	err := findSimilarCmd.RunE(findSimilarCmd, []string{"artifact-x"})
	assert.Error(t, err)
}

func TestBuildParsed_UnknownLanguageReturnsTreelessParsed(t *testing.T) {
	h, err := core.Open(t.TempDir(), nil)
	require.NoError(t, err)
	defer h.Close()

	ingestLanguage = "cobol"
	parsed := buildParsed(h, filepath.Join("x.cob"), []byte("source"))
	assert.Nil(t, parsed.Tree)
	assert.Equal(t, "cobol", parsed.Language)
}
