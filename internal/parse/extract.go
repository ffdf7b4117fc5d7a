package parse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codectx/codectx/internal/astsummary"
)

func (p *treeSitterParser) walk(n *sitter.Node, visit func(*sitter.Node)) {
	visit(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p.walk(n.NamedChild(i), visit)
	}
}

func containsType(kinds []string, typ string) bool {
	for _, k := range kinds {
		if k == typ {
			return true
		}
	}
	return false
}

// ExtractSymbols walks t and returns its functions and classes,
// mirroring internal/world/ast_treesitter.go's per-language symbol
// extraction (field-based name/params/result lookups), generalized
// over the language's node-kind table instead of duplicated per
// language.
func (p *treeSitterParser) ExtractSymbols(t *Tree) ([]astsummary.Function, []astsummary.Class) {
	var functions []astsummary.Function
	var classes []astsummary.Class

	p.walk(t.root, func(n *sitter.Node) {
		switch {
		case containsType(p.nodeKind.functionDecl, n.Type()):
			if fn, ok := p.extractFunction(t, n); ok {
				functions = append(functions, fn)
			}
		case containsType(p.nodeKind.classDecl, n.Type()):
			if cls, ok := p.extractClass(t, n); ok {
				classes = append(classes, cls)
			}
		}
	})

	return functions, classes
}

func (p *treeSitterParser) extractFunction(t *Tree, n *sitter.Node) (astsummary.Function, bool) {
	nameNode := n.ChildByFieldName(p.nodeKind.nameField)
	if nameNode == nil {
		return astsummary.Function{}, false
	}

	fn := astsummary.Function{Name: t.text(nameNode)}

	if p.nodeKind.paramsField != "" {
		if paramsNode := n.ChildByFieldName(p.nodeKind.paramsField); paramsNode != nil {
			fn.Parameters = splitParamList(t.text(paramsNode))
		}
	}
	if p.nodeKind.resultField != "" {
		if resultNode := n.ChildByFieldName(p.nodeKind.resultField); resultNode != nil {
			fn.ReturnType = strings.TrimSpace(t.text(resultNode))
		}
	}

	fn.Calls = p.extractCalls(t, n)
	return fn, true
}

// extractCalls collects identifiers used as the callee of a call
// expression within a function body, a coarse but language-portable
// approximation of the `calls[]` field spec.md §3 names.
func (p *treeSitterParser) extractCalls(t *Tree, fnNode *sitter.Node) []string {
	var calls []string
	seen := map[string]bool{}

	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "call_expression" || n.Type() == "call" {
			fnField := n.ChildByFieldName("function")
			if fnField == nil {
				fnField = n.NamedChild(0)
			}
			if fnField != nil {
				name := t.text(fnField)
				if !seen[name] {
					seen[name] = true
					calls = append(calls, name)
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(fnNode)
	return calls
}

func (p *treeSitterParser) extractClass(t *Tree, n *sitter.Node) (astsummary.Class, bool) {
	nameNode := n.ChildByFieldName(p.nodeKind.nameField)
	if nameNode == nil {
		// Go's type_declaration wraps a type_spec child carrying the name.
		for i := 0; i < int(n.NamedChildCount()); i++ {
			spec := n.NamedChild(i)
			if spec.Type() == "type_spec" {
				nameNode = spec.ChildByFieldName("name")
				break
			}
		}
	}
	if nameNode == nil {
		return astsummary.Class{}, false
	}

	cls := astsummary.Class{Name: t.text(nameNode)}

	bodyField := n.ChildByFieldName("body")
	if bodyField != nil {
		p.walk(bodyField, func(inner *sitter.Node) {
			if containsType(p.nodeKind.functionDecl, inner.Type()) {
				if m, ok := p.extractFunction(t, inner); ok {
					cls.Methods = append(cls.Methods, m)
				}
			}
		})
	}

	return cls, true
}

// splitParamList splits a grammar's raw parameter-list text (with its
// surrounding parens) into individual parameter strings.
func splitParamList(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "(")
	raw = strings.TrimSuffix(raw, ")")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	params := make([]string, 0, len(parts))
	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p != "" {
			params = append(params, p)
		}
	}
	return params
}

// ExtractImports walks t and returns raw import strings, per-language,
// mirroring ast_treesitter.go's import_declaration/import_statement/
// use_declaration cases.
func (p *treeSitterParser) ExtractImports(t *Tree) []string {
	var imports []string

	p.walk(t.root, func(n *sitter.Node) {
		if !containsType(p.nodeKind.importDecl, n.Type()) {
			return
		}
		switch p.lang {
		case "go":
			imports = append(imports, extractGoImportPaths(t, n)...)
		case "python":
			if imp := extractPythonImport(t, n); imp != "" {
				imports = append(imports, imp)
			}
		default:
			if imp := extractGenericImportSource(t, n); imp != "" {
				imports = append(imports, imp)
			}
		}
	})

	return imports
}

func extractGoImportPaths(t *Tree, n *sitter.Node) []string {
	var paths []string
	p := func(spec *sitter.Node) {
		pathNode := spec.ChildByFieldName("path")
		if pathNode != nil {
			paths = append(paths, strings.Trim(t.text(pathNode), `"`))
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "import_spec":
			p(child)
		case "import_spec_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				p(child.NamedChild(j))
			}
		}
	}
	return paths
}

func extractPythonImport(t *Tree, n *sitter.Node) string {
	if moduleNode := n.ChildByFieldName("module_name"); moduleNode != nil {
		return t.text(moduleNode)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "dotted_name" || child.Type() == "relative_import" {
			return t.text(child)
		}
	}
	return ""
}

func extractGenericImportSource(t *Tree, n *sitter.Node) string {
	if sourceNode := n.ChildByFieldName("source"); sourceNode != nil {
		return strings.Trim(t.text(sourceNode), `"'`)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "string" {
			return strings.Trim(t.text(child), `"'`)
		}
	}
	return ""
}

// ExtractExports returns exported symbol names from the functions and
// classes ExtractSymbols finds: capitalized names for Go, names without
// a leading underscore for Python, and every name for other languages.
// Export keywords (JS/TS) are not inspected.
func (p *treeSitterParser) ExtractExports(t *Tree) []string {
	functions, classes := p.ExtractSymbols(t)
	var exports []string

	exportable := func(name string) bool {
		switch p.lang {
		case "go":
			return isExported(name)
		case "python":
			return !strings.HasPrefix(name, "_")
		default:
			return true
		}
	}

	for _, fn := range functions {
		if exportable(fn.Name) {
			exports = append(exports, fn.Name)
		}
	}
	for _, cls := range classes {
		if exportable(cls.Name) {
			exports = append(exports, cls.Name)
		}
	}
	return exports
}
