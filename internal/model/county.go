// Package model defines the county-level records shared across the dashboard.
package model

import (
	"maps"
	"math"
	"slices"
)

// Key column names recognised in source tables.
const (
	ColumnFIPS   = "fips"
	ColumnState  = "state"
	ColumnCounty = "countyname"
)

// CountyRecord is one row of the county dataset. Values holds the numeric
// measurements keyed by column name; a column absent from Values is missing
// for that county and a NaN entry marks a cell that was not numeric.
type CountyRecord struct {
	FIPS   string             `json:"fips"`
	State  string             `json:"state"`
	County string             `json:"county"`
	Values map[string]float64 `json:"values"`
}

// Value returns the numeric value of column. ok is false when the cell is
// missing or non-numeric.
func (r CountyRecord) Value(column string) (float64, bool) {
	v, ok := r.Values[column]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Has reports whether column holds a numeric value.
func (r CountyRecord) Has(column string) bool {
	_, ok := r.Value(column)
	return ok
}

// Columns returns the record's measurement column names in sorted order.
func (r CountyRecord) Columns() []string {
	return slices.Sorted(maps.Keys(r.Values))
}

// Subset returns the values of the given columns. Missing columns are omitted.
func (r CountyRecord) Subset(columns []string) map[string]float64 {
	out := make(map[string]float64, len(columns))
	for _, c := range columns {
		if v, ok := r.Value(c); ok {
			out[c] = v
		}
	}
	return out
}
