package dataset

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/water-cli/internal/fetcher"
)

// Dictionary is the data dictionary shown beside the data frame: a free-form
// table describing each column of the dataset.
type Dictionary struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// LoadDictionary reads a data dictionary CSV. Index columns are dropped.
func LoadDictionary(ctx context.Context, path string) (*Dictionary, error) {
	header, rows, err := fetcher.ReadCSVFile(ctx, path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: load dictionary")
	}

	var keep []int
	for i, h := range header {
		if !indexColumns[strings.ToLower(strings.TrimSpace(h))] {
			keep = append(keep, i)
		}
	}

	d := &Dictionary{Header: pick(header, keep)}
	for _, row := range rows {
		d.Rows = append(d.Rows, pick(row, keep))
	}
	return d, nil
}

// Describe returns the dictionary row whose first cell matches column.
func (d *Dictionary) Describe(column string) ([]string, bool) {
	if d == nil {
		return nil, false
	}
	for _, row := range d.Rows {
		if len(row) > 0 && strings.EqualFold(row[0], column) {
			return row, true
		}
	}
	return nil, false
}

func pick(row []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		if j < len(row) {
			out[i] = row[j]
		}
	}
	return out
}
