package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDictionary(t *testing.T) {
	path := writeFile(t, "data_dict.csv",
		",Column,Description,Units\n"+
			"0,ps_wtotl,\"Public Supply, total withdrawals\",Mgal/d\n"+
			"1,do_psdel,Domestic deliveries from public supply,Mgal/d\n")

	d, err := LoadDictionary(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Column", "Description", "Units"}, d.Header)
	require.Len(t, d.Rows, 2)

	row, ok := d.Describe("PS_WTOTL")
	require.True(t, ok)
	assert.Equal(t, "Public Supply, total withdrawals", row[1])

	_, ok = d.Describe("missing")
	assert.False(t, ok)
}

func TestDictionary_DescribeNil(t *testing.T) {
	var d *Dictionary
	_, ok := d.Describe("x")
	assert.False(t, ok)
}
