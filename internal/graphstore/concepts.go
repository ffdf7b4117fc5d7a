package graphstore

import (
	"database/sql"
	"fmt"

	"github.com/codectx/codectx/internal/corekind"
)

// UpsertConcept creates or replaces a Concept node.
func (s *Store) UpsertConcept(c Concept) error {
	if c.ID == "" || c.Name == "" {
		return fmt.Errorf("%w: concept id and name must be non-empty", corekind.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO concepts (id, name, layer, stability) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Layer, c.Stability,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert concept failed: %v", corekind.ErrStore, err)
	}
	return nil
}

// UpsertInvariant creates or replaces an Invariant node.
func (s *Store) UpsertInvariant(inv Invariant) error {
	if inv.ID == "" || inv.RuleName == "" {
		return fmt.Errorf("%w: invariant id and rule name must be non-empty", corekind.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO invariants (id, rule_name, severity, check_expr) VALUES (?, ?, ?, ?)`,
		inv.ID, inv.RuleName, inv.Severity, inv.CheckExpr,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert invariant failed: %v", corekind.ErrStore, err)
	}
	return nil
}

// CreateEvokesEdge links an artifact to a concept, dropped silently if
// either endpoint is missing, matching CreateDependsOnEdge's policy.
func (s *Store) CreateEvokesEdge(artifactID, conceptID string, weight float64) error {
	return s.createWeightedEdge("edges_evokes", "artifacts", "concepts", artifactID, conceptID, weight)
}

// CreateConstrainsEdge links an invariant to the artifact it constrains.
func (s *Store) CreateConstrainsEdge(invariantID, artifactID string, strictness float64) error {
	return s.createWeightedEdge("edges_constrains", "invariants", "artifacts", invariantID, artifactID, strictness)
}

// CreateRelatedToEdge links two concepts.
func (s *Store) CreateRelatedToEdge(srcConceptID, dstConceptID string, weight float64) error {
	return s.createWeightedEdge("edges_related_to", "concepts", "concepts", srcConceptID, dstConceptID, weight)
}

func (s *Store) createWeightedEdge(table, srcTable, dstTable, srcID, dstID string, weight float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var srcExists, dstExists int
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", srcTable), srcID).Scan(&srcExists); err != nil {
		return fmt.Errorf("%w: endpoint check failed: %v", corekind.ErrStore, err)
	}
	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", dstTable), dstID).Scan(&dstExists); err != nil {
		return fmt.Errorf("%w: endpoint check failed: %v", corekind.ErrStore, err)
	}
	if srcExists == 0 || dstExists == 0 {
		return nil
	}

	weightCol := "weight"
	if table == "edges_constrains" {
		weightCol = "strictness"
	}
	_, err := s.db.Exec(
		fmt.Sprintf("INSERT OR REPLACE INTO %s (src_id, dst_id, %s) VALUES (?, ?, ?)", table, weightCol),
		srcID, dstID, weight,
	)
	if err != nil {
		return fmt.Errorf("%w: create edge failed: %v", corekind.ErrStore, err)
	}
	return nil
}

// InvariantsForArtifact returns every Invariant CONSTRAINS-linked to
// artifactID. stats() does not use it; it builds ViolationsBySeverity
// from AllInvariants.
func (s *Store) InvariantsForArtifact(artifactID string) ([]Invariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT i.id, i.rule_name, i.severity, i.check_expr
		 FROM invariants i JOIN edges_constrains c ON c.src_id = i.id
		 WHERE c.dst_id = ?`, artifactID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: invariant lookup failed: %v", corekind.ErrStore, err)
	}
	defer rows.Close()

	var invs []Invariant
	for rows.Next() {
		var inv Invariant
		var checkExpr sql.NullString
		if err := rows.Scan(&inv.ID, &inv.RuleName, &inv.Severity, &checkExpr); err != nil {
			continue
		}
		inv.CheckExpr = checkExpr.String
		invs = append(invs, inv)
	}
	return invs, nil
}

// AllInvariants returns every Invariant node, used by stats() to build
// the repository-wide ViolationsBySeverity breakdown.
func (s *Store) AllInvariants() ([]Invariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, rule_name, severity, check_expr FROM invariants`)
	if err != nil {
		return nil, fmt.Errorf("%w: list invariants failed: %v", corekind.ErrStore, err)
	}
	defer rows.Close()

	var invs []Invariant
	for rows.Next() {
		var inv Invariant
		var checkExpr sql.NullString
		if err := rows.Scan(&inv.ID, &inv.RuleName, &inv.Severity, &checkExpr); err != nil {
			continue
		}
		inv.CheckExpr = checkExpr.String
		invs = append(invs, inv)
	}
	return invs, nil
}
