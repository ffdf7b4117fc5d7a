package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitParamList(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"()", nil},
		{"(a, b)", []string{"a", "b"}},
		{"(ctx context.Context, path string)", []string{"ctx context.Context", "path string"}},
		{"  (x)  ", []string{"x"}},
	}

	for _, c := range cases {
		got := splitParamList(c.raw)
		assert.Equal(t, c.want, got)
	}
}

func TestRegistry_ResolvesRegisteredLanguages(t *testing.T) {
	r := NewRegistry()

	for _, lang := range []string{"go", "python", "javascript", "typescript", "rust"} {
		assert.NotNil(t, r.Get(lang), "expected %s to be registered", lang)
		assert.Equal(t, lang, r.Get(lang).Language())
	}
}

func TestRegistry_UnknownLanguageReturnsNil(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("cobol"))
}

func TestContainsType(t *testing.T) {
	assert.True(t, containsType([]string{"a", "b"}, "b"))
	assert.False(t, containsType([]string{"a", "b"}, "c"))
}
