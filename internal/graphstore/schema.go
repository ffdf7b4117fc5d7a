package graphstore

const schemaSQL = `
CREATE TABLE IF NOT EXISTS artifacts (
	id             TEXT PRIMARY KEY,
	path           TEXT NOT NULL,
	content_hash   TEXT NOT NULL,
	language       TEXT NOT NULL,
	ast_fingerprint TEXT NOT NULL,
	parse_success  INTEGER NOT NULL DEFAULT 1,
	last_modified  INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_artifacts_path ON artifacts(path);
CREATE INDEX IF NOT EXISTS idx_artifacts_fingerprint ON artifacts(ast_fingerprint);

CREATE TABLE IF NOT EXISTS concepts (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	layer          TEXT NOT NULL,
	stability      REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS invariants (
	id             TEXT PRIMARY KEY,
	rule_name      TEXT NOT NULL,
	severity       TEXT NOT NULL,
	check_expr     TEXT
);

CREATE TABLE IF NOT EXISTS edges_depends_on (
	src_id  TEXT NOT NULL,
	dst_id  TEXT NOT NULL,
	kind    TEXT NOT NULL,
	weight  REAL NOT NULL DEFAULT 1.0,
	PRIMARY KEY (src_id, dst_id)
);
CREATE INDEX IF NOT EXISTS idx_depends_on_src ON edges_depends_on(src_id);
CREATE INDEX IF NOT EXISTS idx_depends_on_dst ON edges_depends_on(dst_id);

CREATE TABLE IF NOT EXISTS edges_evokes (
	src_id  TEXT NOT NULL,
	dst_id  TEXT NOT NULL,
	weight  REAL NOT NULL,
	PRIMARY KEY (src_id, dst_id)
);
CREATE INDEX IF NOT EXISTS idx_evokes_src ON edges_evokes(src_id);

CREATE TABLE IF NOT EXISTS edges_constrains (
	src_id     TEXT NOT NULL,
	dst_id     TEXT NOT NULL,
	strictness REAL NOT NULL,
	PRIMARY KEY (src_id, dst_id)
);
CREATE INDEX IF NOT EXISTS idx_constrains_src ON edges_constrains(src_id);

CREATE TABLE IF NOT EXISTS edges_related_to (
	src_id  TEXT NOT NULL,
	dst_id  TEXT NOT NULL,
	weight  REAL NOT NULL,
	PRIMARY KEY (src_id, dst_id)
);
CREATE INDEX IF NOT EXISTS idx_related_to_src ON edges_related_to(src_id);

CREATE TABLE IF NOT EXISTS fingerprint_index (
	ast_fingerprint TEXT NOT NULL,
	artifact_id     TEXT NOT NULL,
	PRIMARY KEY (ast_fingerprint, artifact_id)
);
`
