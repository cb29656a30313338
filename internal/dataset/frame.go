package dataset

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/water-cli/internal/fetcher"
	"github.com/sells-group/water-cli/internal/model"
)

// Frame is a raw table as exported, with cells left as text, for display.
type Frame struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// LoadFrame reads a CSV for display. Index columns are dropped and rows are
// sorted by fips when the file has a fips column.
func LoadFrame(ctx context.Context, path string) (*Frame, error) {
	header, rows, err := fetcher.ReadCSVFile(ctx, path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: load frame")
	}

	var keep []int
	fipsCol := -1
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		if indexColumns[lower] {
			continue
		}
		if keyAliases[lower] == model.ColumnFIPS && fipsCol < 0 {
			fipsCol = len(keep)
		}
		keep = append(keep, i)
	}

	f := &Frame{Header: pick(header, keep), Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		f.Rows = append(f.Rows, pick(row, keep))
	}
	if fipsCol >= 0 {
		slices.SortStableFunc(f.Rows, func(a, b []string) int {
			return compareFIPS(a[fipsCol], b[fipsCol])
		})
	}
	return f, nil
}

// FrameFromTable renders a table as a frame: key columns, then measures.
func FrameFromTable(t *Table) *Frame {
	f := &Frame{
		Header: append([]string{model.ColumnFIPS, model.ColumnState, model.ColumnCounty}, t.Columns()...),
		Rows:   make([][]string, 0, t.Len()),
	}
	for _, r := range t.Records() {
		row := []string{r.FIPS, r.State, r.County}
		for _, c := range t.columns {
			cell := ""
			if v, ok := r.Values[c]; ok {
				cell = strconv.FormatFloat(v, 'f', -1, 64)
			}
			row = append(row, cell)
		}
		f.Rows = append(f.Rows, row)
	}
	return f
}

// compareFIPS orders codes numerically, with unparseable codes last.
func compareFIPS(a, b string) int {
	ka, okA := model.NormalizeFIPS(a)
	kb, okB := model.NormalizeFIPS(b)
	switch {
	case okA && okB:
		return strings.Compare(ka, kb)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
