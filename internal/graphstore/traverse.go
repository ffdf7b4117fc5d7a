package graphstore

import (
	"fmt"

	"github.com/codectx/codectx/internal/corekind"
	"github.com/codectx/codectx/internal/logging"
)

// MaxTraversalDepth is the hard depth cap d <= 5 from spec.md §4.C.
// Configured depth requests above this are rejected rather than
// silently clamped, per the store's "honor the cap or refuse" contract.
const MaxTraversalDepth = 5

// MaxResultRows is the hard result cap enforced by the query engine and
// honored here as a backstop, per spec.md §4.C.
const MaxResultRows = 100

// TraverseDependsOn performs a bounded breadth-first traversal of the
// DEPENDS_ON edge table starting at rootID, up to maxDepth hops,
// returning distinct reachable artifact ids (rootID excluded). This
// implements the `MATCH (a)-[:DEPENDS_ON*1..d]->(b)` pattern named in
// spec.md §4.C/§4.F, grounded on
// internal/store/local_graph.go's TraversePath: a cameFrom-style
// frontier walk avoids materializing every path, only the visited set
// and the current frontier.
func (s *Store) TraverseDependsOn(rootID string, maxDepth int) ([]string, error) {
	if maxDepth < 1 || maxDepth > MaxTraversalDepth {
		return nil, fmt.Errorf("%w: requested depth %d exceeds cap %d", corekind.ErrDepthExceeded, maxDepth, MaxTraversalDepth)
	}

	timer := logging.StartTimer(logging.CategoryGraph, "TraverseDependsOn")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	visited := map[string]bool{rootID: true}
	frontier := []string{rootID}
	var result []string

	for depth := 0; depth < maxDepth && len(result) < MaxResultRows; depth++ {
		next, err := s.outgoingDependsOnLocked(frontier)
		if err != nil {
			return nil, err
		}

		var newFrontier []string
		for _, id := range next {
			if visited[id] {
				continue
			}
			visited[id] = true
			result = append(result, id)
			newFrontier = append(newFrontier, id)
			if len(result) >= MaxResultRows {
				break
			}
		}
		if len(newFrontier) == 0 {
			break
		}
		frontier = newFrontier
	}

	if len(result) > MaxResultRows {
		result = result[:MaxResultRows]
	}
	return result, nil
}

// outgoingDependsOnLocked assumes the caller holds at least s.mu.RLock(),
// mirroring local_graph.go's queryLinksLocked split to avoid a nested
// RLock re-acquisition deadlock if a writer is pending.
func (s *Store) outgoingDependsOnLocked(srcIDs []string) ([]string, error) {
	if len(srcIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]interface{}, len(srcIDs))
	query := "SELECT DISTINCT dst_id FROM edges_depends_on WHERE src_id IN ("
	for i, id := range srcIDs {
		if i > 0 {
			query += ","
		}
		query += "?"
		placeholders[i] = id
	}
	query += ")"

	rows, err := s.db.Query(query, placeholders...)
	if err != nil {
		return nil, fmt.Errorf("%w: traversal query failed: %v", corekind.ErrStore, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DeleteEdge removes a single DEPENDS_ON edge, exposed for the small
// `DELETE` clause of the Cypher-like surface named in spec.md §4.C.
func (s *Store) DeleteEdge(srcID, dstID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM edges_depends_on WHERE src_id = ? AND dst_id = ?`, srcID, dstID)
	if err != nil {
		return fmt.Errorf("%w: delete edge failed: %v", corekind.ErrStore, err)
	}
	return nil
}
