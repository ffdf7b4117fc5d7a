// Package resolver implements the Import Resolver of spec.md §4.E:
// language-specific import-string resolution to an internal artifact
// id, an external-package marker, or unresolved — never an exception.
package resolver

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Kind discriminates the three cases of Resolution, replacing the
// exception-based control flow the original implementation used, per
// spec.md §9's design note.
type Kind int

const (
	// KindInternal means the import resolved to an artifact already
	// known to this repository.
	KindInternal Kind = iota
	// KindExternal means the import is a standard-library or third-party
	// package outside this repository.
	KindExternal
	// KindUnresolved means the import could not be matched to any known
	// artifact or external allow-list entry.
	KindUnresolved
)

// Resolution is the sum type `Internal(id) | External | Unresolved`
// from spec.md §4.E, represented as a tagged struct since Go has no
// native sum types.
type Resolution struct {
	Kind       Kind
	ArtifactID string // set only when Kind == KindInternal
}

// Internal constructs a Resolution naming an internal artifact id.
func Internal(id string) Resolution { return Resolution{Kind: KindInternal, ArtifactID: id} }

// External constructs a Resolution marking the import as external.
func External() Resolution { return Resolution{Kind: KindExternal} }

// Unresolved constructs a Resolution marking the import as unresolved.
func Unresolved() Resolution { return Resolution{Kind: KindUnresolved} }

// PathExister probes whether a repository-relative file path exists.
// Abstracted behind an interface so tests can avoid real filesystem
// dependence; the production implementation is osExister.
type PathExister interface {
	Exists(path string) bool
}

type osExister struct{}

func (osExister) Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// PathLookup maps a repository-relative path to an artifact id. Backed
// by the Graph Store in production; see resolver.Cache for the lazy,
// invalidation-aware wrapper spec.md §4.E calls for.
type PathLookup interface {
	Lookup(path string) (id string, ok bool)
}

// Resolver resolves import strings against a repository root.
type Resolver struct {
	ProjectRoot string
	Exists      PathExister
	Lookup      PathLookup
}

// New constructs a Resolver rooted at projectRoot, backed by lookup for
// path-to-id resolution.
func New(projectRoot string, lookup PathLookup) *Resolver {
	return &Resolver{ProjectRoot: projectRoot, Exists: osExister{}, Lookup: lookup}
}

var pythonStdlib = map[string]bool{
	"abc": true, "argparse": true, "asyncio": true, "base64": true, "collections": true,
	"contextlib": true, "copy": true, "csv": true, "datetime": true, "enum": true,
	"functools": true, "glob": true, "hashlib": true, "io": true, "itertools": true,
	"json": true, "logging": true, "math": true, "os": true, "pathlib": true,
	"pickle": true, "re": true, "shutil": true, "socket": true, "sqlite3": true,
	"string": true, "subprocess": true, "sys": true, "tempfile": true, "threading": true,
	"time": true, "typing": true, "unittest": true, "urllib": true, "uuid": true, "warnings": true,
}

var nodeExternalPrefixes = map[string]bool{
	"react": true, "react-dom": true, "vue": true, "angular": true, "lodash": true,
	"axios": true, "express": true, "moment": true, "date-fns": true, "webpack": true,
	"babel": true, "eslint": true, "prettier": true, "jest": true, "vitest": true,
	"typescript": true,
}

var goStdlib = map[string]bool{
	"fmt": true, "os": true, "io": true, "bufio": true, "bytes": true, "strings": true,
	"strconv": true, "math": true, "time": true, "net/http": true, "net": true,
	"context": true, "sync": true, "database/sql": true, "encoding/json": true,
	"encoding/xml": true, "log": true, "path": true, "path/filepath": true, "sort": true,
	"reflect": true, "errors": true, "regexp": true,
}

// Resolve resolves importStr, seen in importerPath's source, under
// language, per spec.md §4.E's per-language policy table.
func (r *Resolver) Resolve(importStr, importerPath, language string) Resolution {
	switch language {
	case "python":
		return r.resolvePython(importStr, importerPath)
	case "javascript", "typescript":
		return r.resolveJSLike(importStr, importerPath)
	case "go":
		return r.resolveGo(importStr, importerPath)
	default:
		// Unknown language: every import is Unresolved, not an error,
		// per spec.md §4.E's failure semantics.
		return Unresolved()
	}
}

func (r *Resolver) resolvePython(importStr, importerPath string) Resolution {
	trimmed := strings.TrimLeft(importStr, ".")
	topLevel := strings.SplitN(trimmed, ".", 2)[0]

	if pythonStdlib[topLevel] {
		return External()
	}

	modulePath := strings.ReplaceAll(trimmed, ".", "/")
	candidates := []string{modulePath + ".py", path.Join(modulePath, "__init__.py")}

	importerDir := filepath.Dir(importerPath)
	for _, c := range candidates {
		full := filepath.Join(importerDir, c)
		if r.Exists.Exists(full) {
			return r.lookupOrUnresolved(full)
		}
	}
	for _, c := range candidates {
		full := filepath.Join(r.ProjectRoot, c)
		if r.Exists.Exists(full) {
			return r.lookupOrUnresolved(full)
		}
	}
	return Unresolved()
}

var jsExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

func (r *Resolver) resolveJSLike(importStr, importerPath string) Resolution {
	importerDir := filepath.Dir(importerPath)

	if strings.HasPrefix(importStr, "./") || strings.HasPrefix(importStr, "../") {
		base := filepath.Join(importerDir, importStr)
		return r.probeJSCandidate(base)
	}

	if strings.HasPrefix(importStr, "@/") {
		base := filepath.Join(r.ProjectRoot, strings.TrimPrefix(importStr, "@/"))
		return r.probeJSCandidate(base)
	}

	topLevel := strings.SplitN(importStr, "/", 2)[0]
	if nodeExternalPrefixes[topLevel] {
		return External()
	}
	// Bare specifier not on the allow-list: treated as external per
	// spec.md §4.E ("Bare specifiers are External unless ... alias").
	return External()
}

func (r *Resolver) probeJSCandidate(base string) Resolution {
	for _, ext := range jsExtensions {
		candidate := base + ext
		if r.Exists.Exists(candidate) {
			return r.lookupOrUnresolved(candidate)
		}
	}
	for _, indexName := range []string{"index.js", "index.ts"} {
		candidate := filepath.Join(base, indexName)
		if r.Exists.Exists(candidate) {
			return r.lookupOrUnresolved(candidate)
		}
	}
	return Unresolved()
}

func (r *Resolver) resolveGo(importStr, importerPath string) Resolution {
	if goStdlib[importStr] {
		return External()
	}
	// Treat as repo-relative, per spec.md §4.E's Go-like policy.
	candidate := filepath.Join(r.ProjectRoot, importStr)
	if r.Exists.Exists(candidate) {
		return r.lookupOrUnresolved(candidate)
	}
	return Unresolved()
}

func (r *Resolver) lookupOrUnresolved(fsPath string) Resolution {
	rel, err := filepath.Rel(r.ProjectRoot, fsPath)
	if err != nil {
		rel = fsPath
	}
	if id, ok := r.Lookup.Lookup(rel); ok {
		return Internal(id)
	}
	return Unresolved()
}
