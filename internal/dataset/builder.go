package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/water-cli/internal/model"
)

// keyAliases maps accepted source headers onto the record key fields.
var keyAliases = map[string]string{
	"fips":       model.ColumnFIPS,
	"geoid":      model.ColumnFIPS,
	"state":      model.ColumnState,
	"countyname": model.ColumnCounty,
	"county":     model.ColumnCounty,
}

// indexColumns are row-number columns left behind by dataframe exports.
var indexColumns = map[string]bool{
	"":           true,
	"unnamed: 0": true,
	"index":      true,
}

// missingTokens are cell values treated as absent rather than non-numeric.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"-":    true,
}

// Builder accumulates string rows into county records.
type Builder struct {
	fipsIdx   int
	stateIdx  int
	countyIdx int
	measures  []measure
	records   []model.CountyRecord
	row       int
}

type measure struct {
	idx  int
	name string
}

// NewBuilder inspects a header row and returns a builder for the rows that follow.
// A FIPS column is required; state and county name columns are optional.
func NewBuilder(header []string) (*Builder, error) {
	b := &Builder{fipsIdx: -1, stateIdx: -1, countyIdx: -1}
	seen := make(map[string]bool, len(header))

	for i, raw := range header {
		name := strings.TrimSpace(raw)
		lower := strings.ToLower(name)
		if indexColumns[lower] {
			continue
		}
		if key, ok := keyAliases[lower]; ok {
			switch key {
			case model.ColumnFIPS:
				if b.fipsIdx < 0 {
					b.fipsIdx = i
				}
			case model.ColumnState:
				if b.stateIdx < 0 {
					b.stateIdx = i
				}
			case model.ColumnCounty:
				if b.countyIdx < 0 {
					b.countyIdx = i
				}
			}
			continue
		}
		if seen[lower] {
			return nil, eris.Errorf("dataset: duplicate column %q", name)
		}
		seen[lower] = true
		b.measures = append(b.measures, measure{idx: i, name: lower})
	}

	if b.fipsIdx < 0 {
		return nil, eris.New("dataset: header has no fips column")
	}
	return b, nil
}

// Columns returns the measurement columns in header order.
func (b *Builder) Columns() []string {
	out := make([]string, len(b.measures))
	for i, m := range b.measures {
		out[i] = m.name
	}
	return out
}

// Add parses one data row.
func (b *Builder) Add(row []string) error {
	b.row++
	fips, ok := model.NormalizeFIPS(cell(row, b.fipsIdx))
	if !ok {
		return eris.Errorf("dataset: row %d: invalid fips %q", b.row, cell(row, b.fipsIdx))
	}

	rec := model.CountyRecord{
		FIPS:   fips,
		State:  strings.ToUpper(cell(row, b.stateIdx)),
		County: cell(row, b.countyIdx),
		Values: make(map[string]float64, len(b.measures)),
	}
	if rec.State == "" {
		if abbr, ok := model.StateAbbrForFIPS(model.StateFIPSOf(fips)); ok {
			rec.State = abbr
		}
	}

	for _, m := range b.measures {
		v, present := parseNumber(cell(row, m.idx))
		if !present {
			continue
		}
		rec.Values[m.name] = v
	}

	b.records = append(b.records, rec)
	return nil
}

// Table finalizes the accumulated rows.
func (b *Builder) Table() (*Table, error) {
	return NewTable(b.records, b.Columns())
}

// FromRows builds a table from a header and data rows in one call.
func FromRows(header []string, rows [][]string) (*Table, error) {
	b, err := NewBuilder(header)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := b.Add(row); err != nil {
			return nil, err
		}
	}
	return b.Table()
}

// parseNumber parses a measurement cell. present is false for missing
// tokens; unparseable text yields NaN so it can be told apart from a gap.
func parseNumber(s string) (v float64, present bool) {
	s = strings.TrimSpace(s)
	if missingTokens[strings.ToLower(s)] {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN(), true
	}
	return f, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
