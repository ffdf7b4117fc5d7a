package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExister struct{ present map[string]bool }

func (f fakeExister) Exists(path string) bool { return f.present[path] }

type fakeLookup struct{ ids map[string]string }

func (f fakeLookup) Lookup(path string) (string, bool) {
	id, ok := f.ids[path]
	return id, ok
}

func TestResolve_PythonStdlibIsExternal(t *testing.T) {
	r := &Resolver{ProjectRoot: "/repo", Exists: fakeExister{}, Lookup: fakeLookup{}}
	res := r.Resolve("os", "/repo/app.py", "python")
	assert.Equal(t, KindExternal, res.Kind)
}

func TestResolve_PythonInternalModule(t *testing.T) {
	r := &Resolver{
		ProjectRoot: "/repo",
		Exists:      fakeExister{present: map[string]bool{"/repo/user.py": true}},
		Lookup:      fakeLookup{ids: map[string]string{"user.py": "artifact-user"}},
	}
	res := r.Resolve("user", "/repo/auth.py", "python")
	assert.Equal(t, KindInternal, res.Kind)
	assert.Equal(t, "artifact-user", res.ArtifactID)
}

func TestResolve_PythonUnresolvedModule(t *testing.T) {
	r := &Resolver{ProjectRoot: "/repo", Exists: fakeExister{}, Lookup: fakeLookup{}}
	res := r.Resolve("nonexistent_module", "/repo/auth.py", "python")
	assert.Equal(t, KindUnresolved, res.Kind)
}

func TestResolve_JSRelativeImport(t *testing.T) {
	r := &Resolver{
		ProjectRoot: "/repo",
		Exists:      fakeExister{present: map[string]bool{"/repo/src/utils.ts": true}},
		Lookup:      fakeLookup{ids: map[string]string{"src/utils.ts": "artifact-utils"}},
	}
	res := r.Resolve("./utils", "/repo/src/app.ts", "typescript")
	assert.Equal(t, KindInternal, res.Kind)
	assert.Equal(t, "artifact-utils", res.ArtifactID)
}

func TestResolve_JSBareSpecifierIsExternal(t *testing.T) {
	r := &Resolver{ProjectRoot: "/repo", Exists: fakeExister{}, Lookup: fakeLookup{}}
	res := r.Resolve("react", "/repo/src/app.tsx", "javascript")
	assert.Equal(t, KindExternal, res.Kind)
}

func TestResolve_GoStdlibIsExternal(t *testing.T) {
	r := &Resolver{ProjectRoot: "/repo", Exists: fakeExister{}, Lookup: fakeLookup{}}
	res := r.Resolve("fmt", "/repo/main.go", "go")
	assert.Equal(t, KindExternal, res.Kind)
}

func TestResolve_UnknownLanguageAlwaysUnresolved(t *testing.T) {
	r := &Resolver{ProjectRoot: "/repo", Exists: fakeExister{}, Lookup: fakeLookup{}}
	res := r.Resolve("anything", "/repo/main.rb", "ruby")
	assert.Equal(t, KindUnresolved, res.Kind)
}

func TestCache_LazyPopulationAndInvalidation(t *testing.T) {
	calls := 0
	cache := NewCache(func(path string) (string, bool) {
		calls++
		if path == "user.py" {
			return "artifact-user", true
		}
		return "", false
	})

	id, ok := cache.Lookup("user.py")
	assert.True(t, ok)
	assert.Equal(t, "artifact-user", id)
	assert.Equal(t, 1, calls)

	// second lookup must hit cache, not the miss function
	_, _ = cache.Lookup("user.py")
	assert.Equal(t, 1, calls)

	cache.Invalidate("user.py")
	_, _ = cache.Lookup("user.py")
	assert.Equal(t, 2, calls)
}
