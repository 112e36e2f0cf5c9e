package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/atomicstack/treecombo/internal/tree"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id        TEXT PRIMARY KEY,
	parent_id TEXT,
	label     TEXT NOT NULL,
	position  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS nodes_parent ON nodes(parent_id, position);
`

const childrenQuery = `
SELECT n.id, n.label,
	EXISTS (SELECT 1 FROM nodes c WHERE c.parent_id = n.id)
FROM nodes n
WHERE COALESCE(n.parent_id, '') = ?
ORDER BY n.position, n.id
`

// SQLite serves children from a nodes(id, parent_id, label, position) table.
// A NULL or empty parent_id marks a top-level node.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens the database at path, creating the table when missing.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLite) FetchChildren(ctx context.Context, parentID string) ([]tree.Node, error) {
	if parentID != "" {
		var exists bool
		err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM nodes WHERE id = ?)`, parentID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", parentID, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, parentID)
		}
	}
	rows, err := s.db.QueryContext(ctx, childrenQuery, parentID)
	if err != nil {
		return nil, fmt.Errorf("query children of %s: %w", tree.KeyFor(parentID), err)
	}
	defer rows.Close()

	var nodes []tree.Node
	for rows.Next() {
		n := tree.Node{ParentID: parentID}
		if err := rows.Scan(&n.ID, &n.Label, &n.HasChildren); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		if n.ID == tree.RootKey {
			return nil, fmt.Errorf("node id %q is reserved", tree.RootKey)
		}
		if n.ID == parentID {
			return nil, fmt.Errorf("node %q lists itself as parent", n.ID)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read children of %s: %w", tree.KeyFor(parentID), err)
	}
	return nodes, nil
}

// Insert appends children under parentID after any existing siblings.
func (s *SQLite) Insert(ctx context.Context, parentID string, children ...tree.Node) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM nodes WHERE COALESCE(parent_id, '') = ?`, parentID).Scan(&next)
	if err != nil {
		return fmt.Errorf("next position: %w", err)
	}
	var parent any
	if parentID != "" {
		parent = parentID
	}
	for i, child := range children {
		label := child.Label
		if label == "" {
			label = child.ID
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO nodes (id, parent_id, label, position) VALUES (?, ?, ?, ?)`,
			child.ID, parent, label, next+i)
		if err != nil {
			return fmt.Errorf("insert %s: %w", child.ID, err)
		}
	}
	return tx.Commit()
}
