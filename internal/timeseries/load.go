// Package timeseries loads county monthly temperature and drought records and
// builds the trend views shown on the time series page.
package timeseries

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/water-cli/internal/fetcher"
	"github.com/sells-group/water-cli/internal/model"
)

// Month is one county-month of temperature (°F) and drought coverage
// (percent of population in each category).
type Month struct {
	Month          time.Time `json:"month"`
	FIPS           string    `json:"fips"`
	MinTemp        float64   `json:"min_temp"`
	MaxTemp        float64   `json:"max_temp"`
	MeanTemp       float64   `json:"mean_temp"`
	FlagPopCovered float64   `json:"flag_pop_covered"`
	Moderate       float64   `json:"moderate_drought"`
	Severe         float64   `json:"severe_drought"`
	Extreme        float64   `json:"extreme_drought"`
	Exceptional    float64   `json:"exceptional_drought"`
}

// Year is one county-year mean temperature in °F.
type Year struct {
	Year     int     `json:"year"`
	FIPS     string  `json:"fips"`
	MeanTemp float64 `json:"mean_temp"`
}

// CelsiusToFahrenheit converts a temperature.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// monthlyColumns maps source headers onto Month fields.
var monthlyColumns = map[string]string{
	"month":               "month",
	"fips":                "fips",
	"tmin_c":              "min_temp",
	"tmax_c":              "max_temp",
	"tmean_c":             "mean_temp",
	"flag_t":              "flag_pop_covered",
	"moderate_drought":    "moderate",
	"severe_drought":      "severe",
	"extreme_drought":     "extreme",
	"exceptional_drought": "exceptional",
}

// ParseMonthly converts monthly rows. Temperatures arrive in Celsius and are
// stored in Fahrenheit. Blank drought cells read as zero coverage.
func ParseMonthly(header []string, rows [][]string) ([]Month, error) {
	idx := columnIndex(header, monthlyColumns)
	for _, req := range []string{"month", "fips", "mean_temp"} {
		if _, ok := idx[req]; !ok {
			return nil, eris.Errorf("timeseries: monthly header missing %s", req)
		}
	}

	out := make([]Month, 0, len(rows))
	for n, row := range rows {
		fips, ok := model.NormalizeFIPS(get(row, idx, "fips"))
		if !ok {
			return nil, eris.Errorf("timeseries: monthly row %d: invalid fips %q", n+1, get(row, idx, "fips"))
		}
		month, err := time.Parse("2006-01", get(row, idx, "month"))
		if err != nil {
			return nil, eris.Wrapf(err, "timeseries: monthly row %d: parse month", n+1)
		}

		m := Month{Month: month, FIPS: fips}
		fields := []struct {
			key  string
			dst  *float64
			temp bool
		}{
			{"min_temp", &m.MinTemp, true},
			{"max_temp", &m.MaxTemp, true},
			{"mean_temp", &m.MeanTemp, true},
			{"flag_pop_covered", &m.FlagPopCovered, false},
			{"moderate", &m.Moderate, false},
			{"severe", &m.Severe, false},
			{"extreme", &m.Extreme, false},
			{"exceptional", &m.Exceptional, false},
		}
		for _, f := range fields {
			v, err := number(get(row, idx, f.key))
			if err != nil {
				return nil, eris.Wrapf(err, "timeseries: monthly row %d: %s", n+1, f.key)
			}
			if f.temp {
				v = CelsiusToFahrenheit(v)
			}
			*f.dst = v
		}
		out = append(out, m)
	}
	return out, nil
}

var annualColumns = map[string]string{
	"year":    "year",
	"fips":    "fips",
	"tmean_c": "mean_temp",
}

// ParseAnnual converts annual rows to Fahrenheit yearly means.
func ParseAnnual(header []string, rows [][]string) ([]Year, error) {
	idx := columnIndex(header, annualColumns)
	for _, req := range []string{"year", "fips", "mean_temp"} {
		if _, ok := idx[req]; !ok {
			return nil, eris.Errorf("timeseries: annual header missing %s", req)
		}
	}

	out := make([]Year, 0, len(rows))
	for n, row := range rows {
		fips, ok := model.NormalizeFIPS(get(row, idx, "fips"))
		if !ok {
			return nil, eris.Errorf("timeseries: annual row %d: invalid fips %q", n+1, get(row, idx, "fips"))
		}
		raw := get(row, idx, "year")
		if len(raw) > 4 {
			raw = raw[:4]
		}
		year, err := strconv.Atoi(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "timeseries: annual row %d: parse year", n+1)
		}
		mean, err := number(get(row, idx, "mean_temp"))
		if err != nil {
			return nil, eris.Wrapf(err, "timeseries: annual row %d: mean_temp", n+1)
		}
		out = append(out, Year{Year: year, FIPS: fips, MeanTemp: CelsiusToFahrenheit(mean)})
	}
	return out, nil
}

// Store indexes monthly and annual records by county. It is read-only after
// construction.
type Store struct {
	monthly map[string][]Month
	annual  map[string][]Year
}

// NewStore groups records by FIPS in chronological order.
func NewStore(months []Month, years []Year) *Store {
	s := &Store{
		monthly: make(map[string][]Month),
		annual:  make(map[string][]Year),
	}
	for _, m := range months {
		s.monthly[m.FIPS] = append(s.monthly[m.FIPS], m)
	}
	for _, y := range years {
		s.annual[y.FIPS] = append(s.annual[y.FIPS], y)
	}
	for _, ms := range s.monthly {
		slices.SortStableFunc(ms, func(a, b Month) int { return a.Month.Compare(b.Month) })
	}
	for _, ys := range s.annual {
		slices.SortStableFunc(ys, func(a, b Year) int { return a.Year - b.Year })
	}
	return s
}

// Load reads the monthly and annual CSV files.
func Load(ctx context.Context, monthlyPath, annualPath string) (*Store, error) {
	header, rows, err := fetcher.ReadCSVFile(ctx, monthlyPath)
	if err != nil {
		return nil, eris.Wrap(err, "timeseries: load monthly")
	}
	months, err := ParseMonthly(header, rows)
	if err != nil {
		return nil, err
	}

	header, rows, err = fetcher.ReadCSVFile(ctx, annualPath)
	if err != nil {
		return nil, eris.Wrap(err, "timeseries: load annual")
	}
	years, err := ParseAnnual(header, rows)
	if err != nil {
		return nil, err
	}

	s := NewStore(months, years)
	zap.L().Debug("timeseries: loaded",
		zap.Int("months", len(months)),
		zap.Int("years", len(years)),
		zap.Int("counties", len(s.monthly)),
	)
	return s, nil
}

// Counties returns the number of counties with monthly data.
func (s *Store) Counties() int { return len(s.monthly) }

func columnIndex(header []string, names map[string]string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, h := range header {
		if key, ok := names[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, dup := idx[key]; !dup {
				idx[key] = i
			}
		}
	}
	return idx
}

func get(row []string, idx map[string]int, key string) string {
	i, ok := idx[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func number(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
