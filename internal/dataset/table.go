// Package dataset loads the per-county measurement table from files and databases.
package dataset

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/water-cli/internal/model"
)

// Table is an immutable, FIPS-ordered collection of county records.
// It is safe for concurrent readers.
type Table struct {
	records []model.CountyRecord
	columns []string
	index   map[string]int
}

// NewTable builds a table from records. Records are sorted by FIPS and
// duplicate identifiers are rejected. columns lists the measurement columns
// in source order.
func NewTable(records []model.CountyRecord, columns []string) (*Table, error) {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b model.CountyRecord) int {
		return strings.Compare(a.FIPS, b.FIPS)
	})

	index := make(map[string]int, len(sorted))
	for i, r := range sorted {
		if _, dup := index[r.FIPS]; dup {
			return nil, eris.Errorf("dataset: duplicate fips %s", r.FIPS)
		}
		index[r.FIPS] = i
	}

	return &Table{
		records: sorted,
		columns: slices.Clone(columns),
		index:   index,
	}, nil
}

// Len returns the number of county records.
func (t *Table) Len() int { return len(t.records) }

// Records returns the records in FIPS order. Callers must not modify them.
func (t *Table) Records() []model.CountyRecord { return t.records }

// Columns returns the measurement column names in source order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// HasColumn reports whether the table carries the measurement column.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.columns, name)
}

// Get returns the record for a county. The identifier is normalized first,
// so "6037" finds "06037".
func (t *Table) Get(fips string) (model.CountyRecord, bool) {
	key, ok := model.NormalizeFIPS(fips)
	if !ok {
		return model.CountyRecord{}, false
	}
	i, ok := t.index[key]
	if !ok {
		return model.CountyRecord{}, false
	}
	return t.records[i], true
}

// ByState returns the records for a state abbreviation in FIPS order.
func (t *Table) ByState(state string) []model.CountyRecord {
	state = strings.ToUpper(strings.TrimSpace(state))
	var out []model.CountyRecord
	for _, r := range t.records {
		if r.State == state {
			out = append(out, r)
		}
	}
	return out
}
