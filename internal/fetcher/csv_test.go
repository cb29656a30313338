package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	for err := range errCh {
		if err != nil {
			return rows, err
		}
	}
	return rows, nil
}

func TestStreamCSV_Basic(t *testing.T) {
	input := "fips,state\n06037,CA\n01001,AL\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"fips", "state"}, rows[0])
	assert.Equal(t, []string{"06037", "CA"}, rows[1])
}

func TestStreamCSV_WithHeader(t *testing.T) {
	input := "fips,ps_wtotl\n06037,500\n01001,3.5\n"
	headerCh := make(chan []string, 1)

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})

	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"06037", "500"}, rows[0])
	assert.Equal(t, []string{"fips", "ps_wtotl"}, <-headerCh)
}

func TestStreamCSV_Delimiter(t *testing.T) {
	input := "a|b\n1|2\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{Delimiter: '|'})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)
}

func TestStreamCSV_TrimSpaceAndComment(t *testing.T) {
	input := "# exported\n a , b \n 1 , 2 \n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		TrimSpace: true,
		Comment:   '#',
	})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)
}

func TestStreamCSV_ReadError(t *testing.T) {
	input := "a,b\n1,\"unterminated\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: read row")
}

func TestStreamCSV_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a\n1\n"), CSVOptions{})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestReadCSV(t *testing.T) {
	input := "\ufefffips, state ,countyname\n06037,CA,Los Angeles\n"
	header, rows, err := ReadCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"fips", "state", "countyname"}, header)
	assert.Equal(t, [][]string{{"06037", "CA", "Los Angeles"}}, rows)
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	header, rows, err := ReadCSV(context.Background(), strings.NewReader("fips,state\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"fips", "state"}, header)
	assert.Empty(t, rows)
}

func TestReadCSV_Empty(t *testing.T) {
	_, _, err := ReadCSV(context.Background(), strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing header")
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.csv")
	require.NoError(t, os.WriteFile(path, []byte("fips,ps_wtotl\n1001,2.5\n"), 0o644))

	header, rows, err := ReadCSVFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"fips", "ps_wtotl"}, header)
	assert.Equal(t, [][]string{{"1001", "2.5"}}, rows)

	_, _, err = ReadCSVFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: open")
}
