package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteSource reads a county table from a SQLite database using modernc.org/sqlite.
type SQLiteSource struct {
	db    *sql.DB
	table string
}

// NewSQLiteSource opens the database at dsn. table defaults to "counties".
func NewSQLiteSource(dsn, table string) (*SQLiteSource, error) {
	if dsn == "" {
		return nil, eris.New("sqlite: dsn is required")
	}
	if table == "" {
		table = DefaultTable
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: exec PRAGMA busy_timeout")
	}
	return &SQLiteSource{db: db, table: table}, nil
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Load implements Source.
func (s *SQLiteSource) Load(ctx context.Context) (*Table, error) {
	query := fmt.Sprintf("SELECT * FROM %s", quoteSQLiteIdent(s.table))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query %s", s.table)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: columns")
	}

	b, err := NewBuilder(header)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: table %s", s.table)
	}

	values := make([]any, len(header))
	ptrs := make([]any, len(header))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		if err := b.Add(formatRow(values)); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate rows")
	}

	return b.Table()
}

func quoteSQLiteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
