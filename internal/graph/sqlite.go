package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/edvin/routemanager/internal/platform"
)

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = ":memory:"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS graph_nodes (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL,
	props TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_graph_nodes_label ON graph_nodes(label);
CREATE TABLE IF NOT EXISTS graph_edges (
	from_id TEXT NOT NULL REFERENCES graph_nodes(id) ON DELETE CASCADE,
	to_id TEXT NOT NULL REFERENCES graph_nodes(id) ON DELETE CASCADE,
	type TEXT NOT NULL,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
	PRIMARY KEY (from_id, to_id, type)
);
CREATE INDEX IF NOT EXISTS idx_graph_edges_to ON graph_edges(to_id, type);
`

// SQLiteStore keeps the graph in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path and installs
// the graph schema. Pass MemoryDSN for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := "file::memory:?_foreign_keys=on"
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		dsn = "file:" + path + "?_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: SQLite has a single writer, and an in-memory
	// database only lives as long as its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("install graph schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// DB exposes the handle for stats collection.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) CreateNode(ctx context.Context, label string, props Props) (*Node, error) {
	raw, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("marshal %s props: %w", label, err)
	}

	n := &Node{ID: platform.NewID(), Label: label, Props: cloneProps(props)}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO graph_nodes (id, label, props) VALUES (?, ?, ?)`,
		n.ID, label, string(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s node: %w", label, sqliteError(err))
	}
	return n, nil
}

func (s *SQLiteStore) FindNodes(ctx context.Context, label string, match Props) ([]Node, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, label, props FROM graph_nodes WHERE label = ?`)
	args := []any{label}
	for k, v := range match {
		b.WriteString(` AND json_extract(props, ?) = ?`)
		args = append(args, jsonPath(k), v)
	}
	b.WriteString(` ORDER BY seq`)

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("find %s nodes: %w", label, err)
	}
	return scanSQLNodes(rows, "find "+label+" nodes")
}

func (s *SQLiteStore) DeleteNode(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM graph_nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete node %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete node %s: %w", id, ErrNodeNotFound)
	}
	return nil
}

func (s *SQLiteStore) Connect(ctx context.Context, from, to, edgeType string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO graph_edges (from_id, to_id, type) VALUES (?, ?, ?)
		 ON CONFLICT (from_id, to_id, type) DO NOTHING`,
		from, to, edgeType,
	)
	if err != nil {
		return fmt.Errorf("connect %s -[%s]-> %s: %w", from, edgeType, to, sqliteError(err))
	}
	return nil
}

func (s *SQLiteStore) Disconnect(ctx context.Context, from, to, edgeType string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM graph_edges WHERE from_id = ? AND to_id = ? AND type = ?`,
		from, to, edgeType,
	)
	if err != nil {
		return fmt.Errorf("disconnect %s -[%s]-> %s: %w", from, edgeType, to, err)
	}
	return nil
}

func (s *SQLiteStore) IsConnected(ctx context.Context, from, to, edgeType string) (bool, error) {
	var connected bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM graph_edges WHERE from_id = ? AND to_id = ? AND type = ?)`,
		from, to, edgeType,
	).Scan(&connected)
	if err != nil {
		return false, fmt.Errorf("check %s -[%s]-> %s: %w", from, edgeType, to, err)
	}
	return connected, nil
}

func (s *SQLiteStore) ListEdges(ctx context.Context, from, edgeType string) ([]Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT n.id, n.label, n.props
		 FROM graph_edges e JOIN graph_nodes n ON n.id = e.to_id
		 WHERE e.from_id = ? AND e.type = ?
		 ORDER BY n.seq`,
		from, edgeType,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s edges of %s: %w", edgeType, from, err)
	}
	return scanSQLNodes(rows, "list "+edgeType+" edges")
}

func (s *SQLiteStore) ListIncoming(ctx context.Context, to, edgeType string) ([]Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT n.id, n.label, n.props
		 FROM graph_edges e JOIN graph_nodes n ON n.id = e.from_id
		 WHERE e.to_id = ? AND e.type = ?
		 ORDER BY n.seq`,
		to, edgeType,
	)
	if err != nil {
		return nil, fmt.Errorf("list incoming %s edges of %s: %w", edgeType, to, err)
	}
	return scanSQLNodes(rows, "list incoming "+edgeType+" edges")
}

func (s *SQLiteStore) EnsureUnique(ctx context.Context, label string, keys ...string) error {
	name, err := constraintName(label, keys)
	if err != nil {
		return err
	}

	exprs := make([]string, len(keys))
	for i, k := range keys {
		exprs[i] = fmt.Sprintf("json_extract(props, '%s')", jsonPath(k))
	}
	ddl := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON graph_nodes (%s) WHERE label = '%s'`,
		name, strings.Join(exprs, ", "), label)

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure unique %s(%s): %w", label, strings.Join(keys, ", "), err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	s.db.Close()
}

func jsonPath(key string) string {
	return `$."` + key + `"`
}

func scanSQLNodes(rows *sql.Rows, what string) ([]Node, error) {
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		var n Node
		var raw string
		if err := rows.Scan(&n.ID, &n.Label, &raw); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", what, err)
		}
		if err := json.Unmarshal([]byte(raw), &n.Props); err != nil {
			return nil, fmt.Errorf("%s: decode props of %s: %w", what, n.ID, err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", what, err)
	}
	return nodes, nil
}

// sqliteError translates constraint violations into graph errors.
func sqliteError(err error) error {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", ErrConstraint, sqlErr.Error())
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s", ErrNodeNotFound, sqlErr.Error())
		}
	}
	return err
}
