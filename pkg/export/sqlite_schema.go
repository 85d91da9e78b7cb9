package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is recorded in the meta table of every snapshot.
const SchemaVersion = 1

// CreateSchema creates the snapshot tables, indexes and views.
func CreateSchema(db *sql.DB) error {
	if err := createNodesTable(db); err != nil {
		return fmt.Errorf("create nodes table: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	if err := createViews(db); err != nil {
		return fmt.Errorf("create views: %w", err)
	}

	return nil
}

// createNodesTable creates one row per category node. The synthetic root is
// not stored; top-level categories have a NULL parent_id.
func createNodesTable(db *sql.DB) error {
	nodesSQL := `
		CREATE TABLE IF NOT EXISTS nodes (
			id INTEGER PRIMARY KEY,
			parent_id INTEGER,
			name TEXT NOT NULL,
			full_path TEXT NOT NULL UNIQUE,
			depth INTEGER NOT NULL,
			is_leaf INTEGER NOT NULL,
			checked INTEGER NOT NULL DEFAULT 0,
			indeterminate INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (parent_id) REFERENCES nodes(id)
		)
	`
	if _, err := db.Exec(nodesSQL); err != nil {
		return fmt.Errorf("create nodes table: %w", err)
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_depth ON nodes(depth)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_checked ON nodes(checked, is_leaf)`,
	}

	for _, sql := range indexes {
		if _, err := db.Exec(sql); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}

func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// createViews adds the selected view: the checked leaves, which is the same
// list the interactive selection panel shows.
func createViews(db *sql.DB) error {
	selectedSQL := `
		CREATE VIEW IF NOT EXISTS selected AS
		SELECT full_path
		FROM nodes
		WHERE is_leaf = 1 AND checked = 1
		ORDER BY id
	`
	if _, err := db.Exec(selectedSQL); err != nil {
		return fmt.Errorf("create selected view: %w", err)
	}
	return nil
}

// CreateFTSIndex creates the FTS5 table over node names and paths. It must be
// called after the nodes are inserted.
func CreateFTSIndex(db *sql.DB) error {
	ftsSQL := `
		CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
			name,
			full_path,
			content='nodes',
			content_rowid='id',
			tokenize='unicode61'
		)
	`
	if _, err := db.Exec(ftsSQL); err != nil {
		return fmt.Errorf("create FTS5 table: %w", err)
	}

	if _, err := db.Exec(`INSERT INTO nodes_fts(nodes_fts) VALUES('rebuild')`); err != nil {
		return fmt.Errorf("populate FTS index: %w", err)
	}

	return nil
}

// OptimizeDatabase compacts the file. Call it last, before closing.
func OptimizeDatabase(db *sql.DB) error {
	for _, sql := range []string{`PRAGMA journal_mode=DELETE`, `ANALYZE`, `PRAGMA optimize`} {
		if _, err := db.Exec(sql); err != nil {
			continue
		}
	}

	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	sql := `INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`
	_, err := db.Exec(sql, key, value)
	return err
}
