package store

// SchemaVersion is the current schema version. Migrations are forward-only
// and each one must be safe to rerun after a partial failure (spec §4.1).
const SchemaVersion = 1

// CoreSchema creates every table, index, and constraint needed to uphold
// invariants I1-I6 (spec §3). Layout follows the teacher's schema.go:
// one CREATE TABLE IF NOT EXISTS block per concern, FK cascades doing the
// cascade-delete work spec §3's Lifecycle paragraph describes.
const CoreSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- =============================================================================
-- STATUSES
-- =============================================================================
CREATE TABLE IF NOT EXISTS statuses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	is_closable BOOLEAN NOT NULL DEFAULT 0,
	sort_order INTEGER NOT NULL DEFAULT 0
);

-- =============================================================================
-- ITEMS
-- =============================================================================
CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	content TEXT,
	status_id INTEGER NOT NULL REFERENCES statuses(id),
	priority TEXT NOT NULL DEFAULT 'MEDIUM',
	version TEXT,
	category TEXT,
	start_date TEXT,
	end_date TEXT,
	summary TEXT,
	embedding BLOB,
	search_index TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_type ON items(type);
CREATE INDEX IF NOT EXISTS idx_items_status ON items(status_id);
CREATE INDEX IF NOT EXISTS idx_items_priority ON items(priority);
CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);
CREATE INDEX IF NOT EXISTS idx_items_updated_at ON items(updated_at);

-- =============================================================================
-- VOCABULARIES: tags, keywords, concepts
-- =============================================================================
CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS keywords (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS concepts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS item_tags (
	item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (item_id, tag_id)
);
CREATE INDEX IF NOT EXISTS idx_item_tags_tag ON item_tags(tag_id);

CREATE TABLE IF NOT EXISTS item_keywords (
	item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	keyword_id INTEGER NOT NULL REFERENCES keywords(id) ON DELETE CASCADE,
	weight REAL NOT NULL DEFAULT 1.0 CHECK (weight > 0.0 AND weight <= 1.0),
	PRIMARY KEY (item_id, keyword_id)
);
CREATE INDEX IF NOT EXISTS idx_item_keywords_keyword ON item_keywords(keyword_id);

CREATE TABLE IF NOT EXISTS item_concepts (
	item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	concept_id INTEGER NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
	weight REAL NOT NULL DEFAULT 1.0 CHECK (weight > 0.0 AND weight <= 1.0),
	PRIMARY KEY (item_id, concept_id)
);
CREATE INDEX IF NOT EXISTS idx_item_concepts_concept ON item_concepts(concept_id);

-- =============================================================================
-- RELATION GRAPH
-- =============================================================================
CREATE TABLE IF NOT EXISTS item_relations (
	source_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	target_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (source_id, target_id),
	CHECK (source_id <> target_id)
);
CREATE INDEX IF NOT EXISTS idx_item_relations_target ON item_relations(target_id);

-- =============================================================================
-- LEXICAL INDEX (manual inverted index, see internal/lexical)
-- =============================================================================
CREATE TABLE IF NOT EXISTS lexical_terms (
	item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	term TEXT NOT NULL,
	term_freq INTEGER NOT NULL,
	PRIMARY KEY (item_id, term)
);
CREATE INDEX IF NOT EXISTS idx_lexical_terms_term ON lexical_terms(term);

-- =============================================================================
-- EMBEDDING STORE
-- =============================================================================
CREATE TABLE IF NOT EXISTS item_embeddings (
	item_id INTEGER PRIMARY KEY REFERENCES items(id) ON DELETE CASCADE,
	vector BLOB NOT NULL,
	dim INTEGER NOT NULL
);

-- =============================================================================
-- SYSTEM STATE
-- =============================================================================
CREATE TABLE IF NOT EXISTS system_state (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	version TEXT,
	content TEXT,
	summary TEXT,
	metrics TEXT,
	context TEXT,
	checkpoint TEXT,
	related_items TEXT,
	tags TEXT,
	metadata TEXT,
	is_active BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_system_state_active ON system_state(is_active);
`

// BootstrapStatuses are the statuses the Storage Engine seeds on first init
// (spec §3 Status).
var BootstrapStatuses = []struct {
	Name       string
	IsClosable bool
}{
	{"Open", false},
	{"Specification", false},
	{"Waiting", false},
	{"Ready", false},
	{"In Progress", false},
	{"Review", false},
	{"Testing", false},
	{"Pending", false},
	{"Completed", true},
	{"Closed", true},
	{"Canceled", true},
	{"Rejected", true},
}
