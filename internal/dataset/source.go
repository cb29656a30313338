package dataset

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/water-cli/internal/config"
)

// Source loads a county table.
type Source interface {
	Load(ctx context.Context) (*Table, error)
}

// Supported source kinds.
const (
	SourceCSV      = "csv"
	SourceXLSX     = "xlsx"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Open returns the source described by cfg together with a close function
// that releases any database handles.
func Open(ctx context.Context, cfg config.DataConfig) (Source, func(), error) {
	noop := func() {}

	switch strings.ToLower(cfg.Source) {
	case "", SourceCSV:
		if cfg.Path == "" {
			return nil, nil, eris.New("dataset: data.path is required for csv source")
		}
		return &CSVSource{Path: cfg.Path}, noop, nil

	case SourceXLSX:
		if cfg.Path == "" {
			return nil, nil, eris.New("dataset: data.path is required for xlsx source")
		}
		return &XLSXSource{Path: cfg.Path, Sheet: cfg.Sheet}, noop, nil

	case SourceSQLite:
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = cfg.Path
		}
		src, err := NewSQLiteSource(dsn, cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close() }, nil

	case SourcePostgres:
		src, err := NewPostgresSource(ctx, cfg.DatabaseURL, cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil

	default:
		return nil, nil, eris.Errorf("dataset: unsupported source %q", cfg.Source)
	}
}

// Load opens the configured source, loads the table and closes the source.
func Load(ctx context.Context, cfg config.DataConfig) (*Table, error) {
	src, closeFn, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return src.Load(ctx)
}
