package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/water-cli/internal/fetcher"
)

// CSVSource reads a county table from a CSV export.
type CSVSource struct {
	Path string
}

// Load implements Source.
func (s *CSVSource) Load(ctx context.Context) (*Table, error) {
	header, rows, err := fetcher.ReadCSVFile(ctx, s.Path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: load csv")
	}
	t, err := FromRows(header, rows)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", s.Path)
	}
	zap.L().Debug("dataset: loaded csv",
		zap.String("path", s.Path),
		zap.Int("records", t.Len()),
		zap.Int("columns", len(t.Columns())),
	)
	return t, nil
}

// XLSXSource reads a county table from a worksheet.
type XLSXSource struct {
	Path  string
	Sheet string
}

// Load implements Source.
func (s *XLSXSource) Load(_ context.Context) (*Table, error) {
	header, rows, err := fetcher.ReadXLSX(s.Path, fetcher.XLSXOptions{SheetName: s.Sheet})
	if err != nil {
		return nil, eris.Wrap(err, "dataset: load xlsx")
	}
	t, err := FromRows(header, rows)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", s.Path)
	}
	zap.L().Debug("dataset: loaded xlsx",
		zap.String("path", s.Path),
		zap.String("sheet", s.Sheet),
		zap.Int("records", t.Len()),
	)
	return t, nil
}
