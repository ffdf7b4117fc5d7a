package graphstore

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/codectx/codectx/internal/corekind"
)

// Row is a single result row from Execute, keyed by the RETURN clause's
// variable names.
type Row map[string]string

// matchTraversalPattern recognizes the variable-length traversal form
// named in spec.md §4.C/§4.F:
//
//	MATCH (a)-[:DEPENDS_ON*1..d]->(b) WHERE a.id=$id RETURN b.id LIMIT n
var matchTraversalPattern = regexp.MustCompile(
	`^MATCH\s+\(a\)-\[:DEPENDS_ON\*1\.\.(\d+)\]->\(b\)\s+WHERE\s+a\.id\s*=\s*\$id\s+RETURN\s+b\.id\s+LIMIT\s+(\d+)$`,
)

// matchDeleteEdgePattern recognizes the DELETE form:
//
//	MATCH (a)-[:DEPENDS_ON]->(b) WHERE a.id=$src AND b.id=$dst DELETE
var matchDeleteEdgePattern = regexp.MustCompile(
	`^MATCH\s+\(a\)-\[:DEPENDS_ON\]->\(b\)\s+WHERE\s+a\.id\s*=\s*\$src\s+AND\s+b\.id\s*=\s*\$dst\s+DELETE$`,
)

// Execute runs a small fixed set of Cypher-like query shapes against the
// graph, per spec.md §4.C's "small Cypher-like pattern language"
// contract. Malformed or unsupported queries return a validation error
// rather than corrupting state, per the component's failure semantics.
//
// This is intentionally not a general Cypher interpreter: spec.md §4.C
// names exactly MATCH...WHERE...RETURN...LIMIT with a variable-length
// DEPENDS_ON path, and DELETE, so Execute matches those literal shapes
// rather than parsing an arbitrary grammar.
func (s *Store) Execute(query string, params map[string]string) ([]Row, error) {
	if m := matchTraversalPattern.FindStringSubmatch(query); m != nil {
		depth, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid depth in query", corekind.ErrValidation)
		}
		limit, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid limit in query", corekind.ErrValidation)
		}
		id, ok := params["id"]
		if !ok {
			return nil, fmt.Errorf("%w: missing $id parameter", corekind.ErrValidation)
		}

		ids, err := s.TraverseDependsOn(id, depth)
		if err != nil {
			return nil, err
		}
		if limit < len(ids) {
			ids = ids[:limit]
		}

		rows := make([]Row, len(ids))
		for i, depID := range ids {
			rows[i] = Row{"b.id": depID}
		}
		return rows, nil
	}

	if matchDeleteEdgePattern.MatchString(query) {
		src, okSrc := params["src"]
		dst, okDst := params["dst"]
		if !okSrc || !okDst {
			return nil, fmt.Errorf("%w: missing $src/$dst parameter", corekind.ErrValidation)
		}
		if err := s.DeleteEdge(src, dst); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return nil, fmt.Errorf("%w: unsupported query shape", corekind.ErrValidation)
}
