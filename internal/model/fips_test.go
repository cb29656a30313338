package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFIPS(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"06037", "06037", true},
		{"6037", "06037", true},
		{"6037.0", "06037", true},
		{" 1001 ", "01001", true},
		{"56045", "56045", true},
		{"", "", false},
		{"abc", "", false},
		{"6037.5", "", false},
		{"123456", "", false},
		{"0", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeFIPS(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCombineFIPS(t *testing.T) {
	assert.Equal(t, "06037", CombineFIPS("6", "37"))
	assert.Equal(t, "48201", CombineFIPS("48", "201"))
	assert.Equal(t, "", CombineFIPS("", "37"))
	assert.Equal(t, "", CombineFIPS("06", ""))
}

func TestFormatFIPS(t *testing.T) {
	assert.Equal(t, "01001", FormatFIPS(1001, 5))
	assert.Equal(t, "06", FormatFIPS(6, 2))
}

func TestStateAbbrForFIPS(t *testing.T) {
	abbr, ok := StateAbbrForFIPS("6")
	assert.True(t, ok)
	assert.Equal(t, "CA", abbr)

	_, ok = StateAbbrForFIPS("72")
	assert.False(t, ok)

	assert.Equal(t, "06", StateFIPSOf("06037"))
	assert.Equal(t, "", StateFIPSOf("603"))
}

func TestStateAbbreviations(t *testing.T) {
	assert.Len(t, StateAbbreviations, 51)
	assert.True(t, IsStateAbbr("DC"))
	assert.False(t, IsStateAbbr("PR"))

	covered := make(map[string]bool, len(stateFIPS))
	for _, abbr := range stateFIPS {
		covered[abbr] = true
	}
	for _, abbr := range StateAbbreviations {
		assert.True(t, covered[abbr], "missing FIPS for %s", abbr)
	}
}
