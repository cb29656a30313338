package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// DefaultTable is the table read when none is configured.
const DefaultTable = "counties"

// Pool is the subset of pgxpool.Pool used by PostgresSource.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads a county table from PostgreSQL.
type PostgresSource struct {
	pool    Pool
	table   string
	closeFn func()
}

// NewPostgresSource connects to connString and verifies the connection.
func NewPostgresSource(ctx context.Context, connString, table string) (*PostgresSource, error) {
	if connString == "" {
		return nil, eris.New("postgres: data.database_url is required")
	}
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping database")
	}
	return NewPostgresSourceFromPool(pool, table, pool.Close), nil
}

// NewPostgresSourceFromPool wraps an existing pool. closeFn may be nil.
func NewPostgresSourceFromPool(pool Pool, table string, closeFn func()) *PostgresSource {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresSource{pool: pool, table: table, closeFn: closeFn}
}

// Close releases the pool when the source owns it.
func (s *PostgresSource) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// Load implements Source.
func (s *PostgresSource) Load(ctx context.Context) (*Table, error) {
	ident := pgx.Identifier(strings.Split(s.table, "."))
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT * FROM %s", ident.Sanitize()))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", s.table)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}

	b, err := NewBuilder(header)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: table %s", s.table)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "postgres: read row")
		}
		if err := b.Add(formatRow(values)); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate rows")
	}

	return b.Table()
}
