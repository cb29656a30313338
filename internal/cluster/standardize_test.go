package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/water-cli/internal/model"
)

func TestStandardize_ZeroMeanUnitVariance(t *testing.T) {
	x := [][]float64{{1, 10}, {2, 20}, {3, 30}, {4, 40}}
	s, z, err := Standardize(x, []string{"a", "b"})
	require.NoError(t, err)

	for j := range 2 {
		var sum, ss float64
		for _, row := range z {
			sum += row[j]
			ss += row[j] * row[j]
		}
		assert.InDelta(t, 0, sum/4, 1e-12)
		assert.InDelta(t, 1, ss/4, 1e-12)
	}
	assert.InDelta(t, 2.5, s.Mean[0], 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), s.Scale[0], 1e-12)
}

func TestStandardize_RoundTrip(t *testing.T) {
	x := [][]float64{{500, 300}, {1.5, 0.2}, {1200, 4}, {7, 880.25}}
	s, z, err := Standardize(x, []string{"ps_wtotl", "do_psdel"})
	require.NoError(t, err)

	for i, row := range z {
		back := s.Inverse(row)
		for j := range back {
			assert.InDelta(t, x[i][j], back[j], 1e-9)
		}
	}
}

func TestStandardize_ConstantColumn(t *testing.T) {
	x := [][]float64{{0.1, 1}, {0.1, 2}, {0.1, 3}}
	_, _, err := Standardize(x, []string{"flat", "b"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "flat")
}

func TestStandardize_Empty(t *testing.T) {
	_, _, err := Standardize(nil, []string{"a"})
	assert.True(t, IsValidation(err))
}

func TestMatrix(t *testing.T) {
	records := []model.CountyRecord{
		{FIPS: "06037", Values: map[string]float64{"a": 1, "b": 2, "c": 9}},
		{FIPS: "06059", Values: map[string]float64{"a": 3, "b": 4}},
	}

	x, err := Matrix(records, []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 1}, {4, 3}}, x)

	_, err = Matrix(records, []string{"a", "c"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "missing value for county 06059")

	records[0].Values["b"] = math.NaN()
	_, err = Matrix(records, []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-numeric value for county 06037")
}
