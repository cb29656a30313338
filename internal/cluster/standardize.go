package cluster

import (
	"math"

	"github.com/sells-group/water-cli/internal/model"
)

// Scaler holds the per-column mean and standard deviation fitted by Standardize.
type Scaler struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// Matrix extracts the selected columns from records as a row-major matrix.
// Missing and non-numeric cells are validation errors.
func Matrix(records []model.CountyRecord, columns []string) ([][]float64, error) {
	out := make([][]float64, len(records))
	for i, r := range records {
		row := make([]float64, len(columns))
		for j, c := range columns {
			v, present := r.Values[c]
			if !present {
				return nil, invalid(c, "missing value for county %s", r.FIPS)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, invalid(c, "non-numeric value for county %s", r.FIPS)
			}
			row[j] = v
		}
		out[i] = row
	}
	return out, nil
}

// Standardize fits a Scaler to x and returns the zero-mean, unit-variance
// transform of x. The population standard deviation is used. A column whose
// variance is zero cannot be scaled and is reported as a validation error.
func Standardize(x [][]float64, columns []string) (*Scaler, [][]float64, error) {
	if len(x) == 0 {
		return nil, nil, invalid("", "no rows to standardize")
	}

	n := float64(len(x))
	s := &Scaler{
		Columns: append([]string(nil), columns...),
		Mean:    make([]float64, len(columns)),
		Scale:   make([]float64, len(columns)),
	}

	for j := range columns {
		var sum float64
		for _, row := range x {
			sum += row[j]
		}
		mean := sum / n

		var ss float64
		for _, row := range x {
			d := row[j] - mean
			ss += d * d
		}
		std := math.Sqrt(ss / n)
		if std <= 1e-10*math.Max(1, math.Abs(mean)) {
			return nil, nil, invalid(columns[j], "zero variance across %d rows", len(x))
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}

	return s, s.Transform(x), nil
}

// Transform applies the fitted scaling to x.
func (s *Scaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		z := make([]float64, len(row))
		for j, v := range row {
			z[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = z
	}
	return out
}

// Inverse maps a standardized point back to original units.
func (s *Scaler) Inverse(z []float64) []float64 {
	out := make([]float64, len(z))
	for j, v := range z {
		out[j] = v*s.Scale[j] + s.Mean[j]
	}
	return out
}
