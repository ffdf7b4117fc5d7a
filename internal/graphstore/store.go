// Package graphstore implements the persistent typed property graph of
// spec.md §3/§4.C: artifact/concept/invariant node tables, four typed
// edge tables, a bounded-depth traversal, and a fingerprint reverse
// index for exact-clone clustering (SPEC_FULL.md §12 item 1).
package graphstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codectx/codectx/internal/corekind"
	"github.com/codectx/codectx/internal/logging"
)

// Artifact is the persisted representation of a parsed source file,
// per spec.md §3.
type Artifact struct {
	ID             string
	Path           string
	ContentHash    string
	Language       string
	ASTFingerprint string
	ParseSuccess   bool
	LastModified   int64
}

// Concept is an optional semantic annotation attached to artifacts.
type Concept struct {
	ID        string
	Name      string
	Layer     string
	Stability float64
}

// Invariant is a rule annotation detected at ingest.
type Invariant struct {
	ID        string
	RuleName  string
	Severity  string
	CheckExpr string
}

// Store is a single-writer/multi-reader SQLite-backed graph store.
// Single-writer is enforced by mu's write lock (Lock, on write paths);
// reads take RLock so concurrent readers see a consistent
// snapshot while writes are serialized, per spec.md §4.C's guarantee.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the graph store at path, bootstrapping
// the schema idempotently on first open, per spec.md §4.C.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryGraph, "open_store")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create graph directory: %v", corekind.ErrIO, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open graph store: %v", corekind.ErrStore, err)
	}

	s := &Store{db: db, path: path}
	if err := s.bootstrap(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Get(logging.CategoryGraph).Info("graph store opened at %s", path)
	return s, nil
}

func (s *Store) bootstrap() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("%w: schema bootstrap failed: %v", corekind.ErrStore, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertArtifact creates or replaces an artifact node, per spec.md
// §4.D step 4. Replacing is an INSERT OR REPLACE keyed on id, matching
// the teacher's StoreLink idiom.
func (s *Store) UpsertArtifact(a Artifact) error {
	timer := logging.StartTimer(logging.CategoryGraph, "UpsertArtifact")
	defer timer.Stop()

	if a.ID == "" || a.Path == "" {
		return fmt.Errorf("%w: artifact id and path must be non-empty", corekind.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO artifacts (id, path, content_hash, language, ast_fingerprint, parse_success, last_modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Path, a.ContentHash, a.Language, a.ASTFingerprint, boolToInt(a.ParseSuccess), a.LastModified,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert artifact failed: %v", corekind.ErrStore, err)
	}

	_, err = s.db.Exec(
		`INSERT OR IGNORE INTO fingerprint_index (ast_fingerprint, artifact_id) VALUES (?, ?)`,
		a.ASTFingerprint, a.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: fingerprint index update failed: %v", corekind.ErrStore, err)
	}
	return nil
}

// DeleteArtifact removes an artifact node, its outgoing DEPENDS_ON
// edges, and its fingerprint index entry. Incoming edges are left to
// dangle, per spec.md §3's lifecycle rule; TraverseDependsOn still
// returns their endpoint ids, and the Query Engine skips any id whose
// node GetArtifact no longer finds.
func (s *Store) DeleteArtifact(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: delete artifact failed: %v", corekind.ErrStore, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM artifacts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: delete artifact failed: %v", corekind.ErrStore, err)
	}
	if _, err := tx.Exec(`DELETE FROM edges_depends_on WHERE src_id = ?`, id); err != nil {
		return fmt.Errorf("%w: delete artifact edges failed: %v", corekind.ErrStore, err)
	}
	if _, err := tx.Exec(`DELETE FROM fingerprint_index WHERE artifact_id = ?`, id); err != nil {
		return fmt.Errorf("%w: delete fingerprint index entry failed: %v", corekind.ErrStore, err)
	}

	return tx.Commit()
}

// GetArtifact fetches an artifact by id. Returns corekind.ErrNotFound if
// absent — the caller (Query Engine) distinguishes this from a Bloom
// false positive per spec.md §4.F step 2.
func (s *Store) GetArtifact(id string) (Artifact, error) {
	timer := logging.StartTimer(logging.CategoryGraph, "GetArtifact")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var a Artifact
	var parseSuccess int
	row := s.db.QueryRow(
		`SELECT id, path, content_hash, language, ast_fingerprint, parse_success, last_modified
		 FROM artifacts WHERE id = ?`, id,
	)
	err := row.Scan(&a.ID, &a.Path, &a.ContentHash, &a.Language, &a.ASTFingerprint, &parseSuccess, &a.LastModified)
	if err == sql.ErrNoRows {
		return Artifact{}, corekind.ErrNotFound
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: get artifact failed: %v", corekind.ErrStore, err)
	}
	a.ParseSuccess = parseSuccess != 0
	return a, nil
}

// GetArtifactByPath looks up an artifact by its repository-relative
// path, used by the Import Resolver's lookup cache.
func (s *Store) GetArtifactByPath(path string) (Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getArtifactByPathLocked(path)
}

func (s *Store) getArtifactByPathLocked(path string) (Artifact, error) {
	var a Artifact
	var parseSuccess int
	row := s.db.QueryRow(
		`SELECT id, path, content_hash, language, ast_fingerprint, parse_success, last_modified
		 FROM artifacts WHERE path = ?`, path,
	)
	err := row.Scan(&a.ID, &a.Path, &a.ContentHash, &a.Language, &a.ASTFingerprint, &parseSuccess, &a.LastModified)
	if err == sql.ErrNoRows {
		return Artifact{}, corekind.ErrNotFound
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: get artifact by path failed: %v", corekind.ErrStore, err)
	}
	a.ParseSuccess = parseSuccess != 0
	return a, nil
}

// AllArtifactIDs returns every artifact id, used by the Bloom Index's
// O(N) rebuild-on-corruption recovery path per spec.md §4.B.
func (s *Store) AllArtifactIDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id FROM artifacts`)
	if err != nil {
		return nil, fmt.Errorf("%w: list artifact ids failed: %v", corekind.ErrStore, err)
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

// FindByFingerprint returns every artifact id sharing ast_fingerprint,
// the O(1)-average find_similar lookup from SPEC_FULL.md §12 item 1.
func (s *Store) FindByFingerprint(fingerprint string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT artifact_id FROM fingerprint_index WHERE ast_fingerprint = ?`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("%w: fingerprint lookup failed: %v", corekind.ErrStore, err)
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

// CreateDependsOnEdge creates a DEPENDS_ON edge, per spec.md §3's
// invariant 3: both endpoints must already exist. A missing endpoint is
// a no-op plus a diagnostic, never an aborting error, per §4.C's
// failure semantics.
func (s *Store) CreateDependsOnEdge(srcID, dstID, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM artifacts WHERE id IN (?, ?)`, srcID, dstID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: endpoint check failed: %v", corekind.ErrStore, err)
	}
	if exists < 2 {
		logging.Get(logging.CategoryGraph).Warn("dropped DEPENDS_ON edge %s->%s: missing endpoint", srcID, dstID)
		return nil
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO edges_depends_on (src_id, dst_id, kind, weight) VALUES (?, ?, ?, 1.0)`,
		srcID, dstID, kind,
	)
	if err != nil {
		return fmt.Errorf("%w: create edge failed: %v", corekind.ErrStore, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
