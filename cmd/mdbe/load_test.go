package main

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/monetdbe/monetdbe-go"
)

func TestReadCSV(t *testing.T) {
	target := []monetdbe.ColumnInfo{
		{Name: "id", Type: monetdbe.TYPE_INT32},
		{Name: "name", Type: monetdbe.TYPE_STR},
		{Name: "at", Type: monetdbe.TYPE_TIMESTAMP},
	}
	input := "id;name;at\n1;one;2024-01-02 03:04:05\n2;;\n"

	columns, rows, err := readCSV(strings.NewReader(input), ';', target)
	require.NoError(t, err)
	require.Equal(t, 2, rows)
	require.Len(t, columns, 3)

	require.Equal(t, []int64{1, 2}, columns["id"].Data)
	require.Nil(t, columns["id"].Valid)
	require.Equal(t, []string{"one", ""}, columns["name"].Data)
	require.Equal(t, []bool{true, false}, columns["name"].Valid)
	require.Equal(t, []time.Time{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), {}}, columns["at"].Data)
	require.Equal(t, []bool{true, false}, columns["at"].Valid)
}

func TestReadCSVErrors(t *testing.T) {
	target := []monetdbe.ColumnInfo{{Name: "id", Type: monetdbe.TYPE_INT32}}

	_, _, err := readCSV(strings.NewReader(""), ',', target)
	require.ErrorContains(t, err, "missing header row")

	_, _, err = readCSV(strings.NewReader("id\nx\n"), ',', target)
	require.ErrorContains(t, err, "column id: row 1")

	// Unknown header fields stay strings for Append to reject.
	columns, _, err := readCSV(strings.NewReader("other\n5\n"), ',', target)
	require.NoError(t, err)
	require.Equal(t, []string{"5"}, columns["other"].Data)
}

func TestParseColumn(t *testing.T) {
	col, err := parseColumn([]string{"true", "", "0"}, monetdbe.TYPE_BOOL)
	require.NoError(t, err)
	require.Equal(t, []bool{true, false, false}, col.Data)
	require.Equal(t, []bool{true, false, true}, col.Valid)

	col, err = parseColumn([]string{"170141183460469231731687303715884105727"}, monetdbe.TYPE_INT128)
	require.NoError(t, err)
	max, _ := new(big.Int).SetString("170141183460469231731687303715884105727", 10)
	require.Equal(t, 0, max.Cmp(col.Data.([]*big.Int)[0]))

	col, err = parseColumn([]string{"0aff"}, monetdbe.TYPE_BLOB)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x0a, 0xff}}, col.Data)

	col, err = parseColumn([]string{"12:30:00", "23:59:59.5"}, monetdbe.TYPE_TIME)
	require.NoError(t, err)
	times := col.Data.([]time.Time)
	require.Equal(t, 12, times[0].Hour())
	require.Equal(t, 500*time.Millisecond, time.Duration(times[1].Nanosecond()))

	col, err = parseColumn([]string{"1.5", "-2"}, monetdbe.TYPE_FLOAT)
	require.NoError(t, err)
	require.Equal(t, []float64{1.5, -2}, col.Data)

	_, err = parseColumn([]string{"12"}, monetdbe.TYPE_DATE)
	require.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	for _, s := range []string{"2024-01-02T03:04:05Z", "2024-01-02 03:04:05", "2024-01-02"} {
		ts, err := parseTimestamp(s)
		require.NoError(t, err, s)
		require.Equal(t, 2024, ts.Year())
	}
	_, err := parseTimestamp("yesterday")
	require.Error(t, err)
}
