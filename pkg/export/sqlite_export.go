package export

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/vanderheijden86/cattree/pkg/metrics"
	"github.com/vanderheijden86/cattree/pkg/tree"
	"github.com/vanderheijden86/cattree/pkg/version"

	_ "modernc.org/sqlite"
)

// SQLiteExporter writes a snapshot of a tree, check state included, to a
// standalone SQLite file.
type SQLiteExporter struct {
	Tree   *tree.Tree
	Source string

	now func() time.Time
}

// NewSQLiteExporter creates an exporter for t. source is recorded in the
// meta table and may be empty.
func NewSQLiteExporter(t *tree.Tree, source string) *SQLiteExporter {
	return &SQLiteExporter{Tree: t, Source: source, now: time.Now}
}

// Export writes the snapshot to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	defer metrics.Timer(metrics.SQLiteExport)()

	if e.Tree == nil {
		return fmt.Errorf("no tree to export")
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if err := e.insertNodes(db); err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}

	if err := CreateFTSIndex(db); err != nil {
		log.Printf("warning: FTS5 not available: %v", err)
	}

	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	if err := OptimizeDatabase(db); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func (e *SQLiteExporter) insertNodes(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (id, parent_id, name, full_path, depth, is_leaf, checked, indeterminate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var insertErr error
	e.Tree.Walk(func(n tree.Node) bool {
		if insertErr != nil {
			return false
		}
		var parent any
		if n.Parent != tree.RootID {
			parent = int64(n.Parent)
		}
		_, insertErr = stmt.Exec(
			int64(n.ID), parent, n.Name, n.Full, n.Depth,
			boolInt(n.IsLeaf()), boolInt(n.Checked), boolInt(n.Indeterminate),
		)
		if insertErr != nil {
			insertErr = fmt.Errorf("insert %s: %w", n.Full, insertErr)
		}
		return true
	})
	if insertErr != nil {
		return insertErr
	}

	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	values := map[string]string{
		"schema_version": strconv.Itoa(SchemaVersion),
		"exported_at":    e.now().UTC().Format(time.RFC3339),
		"generator":      "cattree " + version.Version,
		"node_count":     strconv.Itoa(e.Tree.Len() - 1),
		"selected_count": strconv.Itoa(e.Tree.SelectedCount()),
		"source":         e.Source,
	}
	for k, v := range values {
		if err := InsertMetaValue(db, k, v); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
