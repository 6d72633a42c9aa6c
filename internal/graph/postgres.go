package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/routemanager/internal/platform"
)

// DB is the subset of pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresStore keeps the graph in the graph_nodes and graph_edges tables
// created by the migrations in internal/db.
type PostgresStore struct {
	db DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateNode(ctx context.Context, label string, props Props) (*Node, error) {
	raw, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("marshal %s props: %w", label, err)
	}

	n := &Node{ID: platform.NewID(), Label: label, Props: cloneProps(props)}
	_, err = s.db.Exec(ctx,
		`INSERT INTO graph_nodes (id, label, props) VALUES ($1, $2, $3::jsonb)`,
		n.ID, label, string(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s node: %w", label, pgError(err))
	}
	return n, nil
}

func (s *PostgresStore) FindNodes(ctx context.Context, label string, match Props) ([]Node, error) {
	query := `SELECT id::text, label, props FROM graph_nodes WHERE label = $1`
	args := []any{label}

	if len(match) > 0 {
		raw, err := json.Marshal(match)
		if err != nil {
			return nil, fmt.Errorf("marshal %s match: %w", label, err)
		}
		query += ` AND props @> $2::jsonb`
		args = append(args, string(raw))
	}
	query += ` ORDER BY seq`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s nodes: %w", label, err)
	}
	return scanNodes(rows, "find "+label+" nodes")
}

func (s *PostgresStore) DeleteNode(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM graph_nodes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete node %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete node %s: %w", id, ErrNodeNotFound)
	}
	return nil
}

func (s *PostgresStore) Connect(ctx context.Context, from, to, edgeType string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO graph_edges (from_id, to_id, type) VALUES ($1, $2, $3)
		 ON CONFLICT (from_id, to_id, type) DO NOTHING`,
		from, to, edgeType,
	)
	if err != nil {
		return fmt.Errorf("connect %s -[%s]-> %s: %w", from, edgeType, to, pgError(err))
	}
	return nil
}

func (s *PostgresStore) Disconnect(ctx context.Context, from, to, edgeType string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM graph_edges WHERE from_id = $1 AND to_id = $2 AND type = $3`,
		from, to, edgeType,
	)
	if err != nil {
		return fmt.Errorf("disconnect %s -[%s]-> %s: %w", from, edgeType, to, err)
	}
	return nil
}

func (s *PostgresStore) IsConnected(ctx context.Context, from, to, edgeType string) (bool, error) {
	var connected bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM graph_edges WHERE from_id = $1 AND to_id = $2 AND type = $3)`,
		from, to, edgeType,
	).Scan(&connected)
	if err != nil {
		return false, fmt.Errorf("check %s -[%s]-> %s: %w", from, edgeType, to, err)
	}
	return connected, nil
}

func (s *PostgresStore) ListEdges(ctx context.Context, from, edgeType string) ([]Node, error) {
	rows, err := s.db.Query(ctx,
		`SELECT n.id::text, n.label, n.props
		 FROM graph_edges e JOIN graph_nodes n ON n.id = e.to_id
		 WHERE e.from_id = $1 AND e.type = $2
		 ORDER BY n.seq`,
		from, edgeType,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s edges of %s: %w", edgeType, from, err)
	}
	return scanNodes(rows, "list "+edgeType+" edges")
}

func (s *PostgresStore) ListIncoming(ctx context.Context, to, edgeType string) ([]Node, error) {
	rows, err := s.db.Query(ctx,
		`SELECT n.id::text, n.label, n.props
		 FROM graph_edges e JOIN graph_nodes n ON n.id = e.from_id
		 WHERE e.to_id = $1 AND e.type = $2
		 ORDER BY n.seq`,
		to, edgeType,
	)
	if err != nil {
		return nil, fmt.Errorf("list incoming %s edges of %s: %w", edgeType, to, err)
	}
	return scanNodes(rows, "list incoming "+edgeType+" edges")
}

func (s *PostgresStore) EnsureUnique(ctx context.Context, label string, keys ...string) error {
	name, err := constraintName(label, keys)
	if err != nil {
		return err
	}

	exprs := make([]string, len(keys))
	for i, k := range keys {
		exprs[i] = fmt.Sprintf("(props->>'%s')", k)
	}
	ddl := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON graph_nodes (%s) WHERE label = '%s'`,
		name, strings.Join(exprs, ", "), label)

	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure unique %s(%s): %w", label, strings.Join(keys, ", "), err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if p, ok := s.db.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *PostgresStore) Close() {
	if c, ok := s.db.(interface{ Close() }); ok {
		c.Close()
	}
}

func scanNodes(rows pgx.Rows, what string) ([]Node, error) {
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		var n Node
		var raw []byte
		if err := rows.Scan(&n.ID, &n.Label, &raw); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", what, err)
		}
		if err := json.Unmarshal(raw, &n.Props); err != nil {
			return nil, fmt.Errorf("%s: decode props of %s: %w", what, n.ID, err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", what, err)
	}
	return nodes, nil
}

// pgError translates constraint violations into graph errors.
func pgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrNodeNotFound, pgErr.Detail)
		}
	}
	return err
}
