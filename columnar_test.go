package monetdbe

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractAll(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.Exec(`CREATE TABLE test (i int, f real)`)
	require.NoError(t, err)
	affected, err := s.Exec(`INSERT INTO test VALUES (1, 1.5), (2, 2.5), (NULL, NULL), (4, 4.5)`)
	require.NoError(t, err)
	require.Equal(t, int64(4), affected)

	err = s.WithResult(`SELECT * FROM test`, func(r *Result) error {
		require.Equal(t, 4, r.Rows())
		require.Equal(t, 2, r.Columns())

		vectors, err := r.ExtractAll()
		require.NoError(t, err)
		require.Len(t, vectors, 2)

		i := vectors["i"]
		require.Equal(t, TYPE_INT32, i.Type)
		require.Equal(t, 4, i.Len())
		require.Equal(t, []bool{true, true, false, true}, i.Valid)
		ints := i.Data.([]int32)
		require.Equal(t, []int32{1, 2, 4}, []int32{ints[0], ints[1], ints[3]})
		require.False(t, i.IsValid(2))

		f := vectors["f"]
		require.Equal(t, TYPE_FLOAT, f.Type)
		require.Equal(t, []bool{true, true, false, true}, f.Valid)
		floats := f.Data.([]float32)
		require.Equal(t, []float32{1.5, 2.5, 4.5}, []float32{floats[0], floats[1], floats[3]})
		require.True(t, math.IsNaN(float64(floats[2])))
		return nil
	})
	require.NoError(t, err)
}

func TestExtractAllWithoutNulls(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.Exec(`CREATE TABLE test (i bigint, d double, b boolean)`)
	require.NoError(t, err)
	_, err = s.Exec(`INSERT INTO test VALUES (1, 0.5, true), (2, -0.5, false)`)
	require.NoError(t, err)

	err = s.WithResult(`SELECT i, d, b FROM test`, func(r *Result) error {
		vectors, err := r.ExtractAll()
		require.NoError(t, err)
		for name, vec := range vectors {
			require.Nil(t, vec.Valid, name)
		}
		require.Equal(t, []int64{1, 2}, vectors["i"].Data)
		require.Equal(t, []float64{0.5, -0.5}, vectors["d"].Data)
		require.Equal(t, []bool{true, false}, vectors["b"].Data)
		return nil
	})
	require.NoError(t, err)
}

func TestExtractAllBoolNull(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.Exec(`CREATE TABLE test (b boolean)`)
	require.NoError(t, err)
	_, err = s.Exec(`INSERT INTO test VALUES (true), (NULL), (false)`)
	require.NoError(t, err)

	err = s.WithResult(`SELECT * FROM test`, func(r *Result) error {
		vectors, err := r.ExtractAll()
		require.NoError(t, err)
		require.Equal(t, []bool{true, false, false}, vectors["b"].Data)
		require.Equal(t, []bool{true, false, true}, vectors["b"].Valid)
		return nil
	})
	require.NoError(t, err)
}

func TestExtractAllVariableWidth(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.Exec(`CREATE TABLE test (s string, d date)`)
	require.NoError(t, err)
	_, err = s.Exec(`INSERT INTO test VALUES ('a', '2020-01-01'), (NULL, NULL)`)
	require.NoError(t, err)

	err = s.WithResult(`SELECT * FROM test`, func(r *Result) error {
		vectors, err := r.ExtractAll()
		require.NoError(t, err)

		// No mask at this layer; nulls hold zero values.
		require.Nil(t, vectors["s"].Valid)
		require.Equal(t, []string{"a", ""}, vectors["s"].Data)
		require.Nil(t, vectors["d"].Valid)
		require.Equal(t, []time.Time{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), {}}, vectors["d"].Data)

		// The scalar path tells them apart.
		row, err := r.Row(1, nil)
		require.NoError(t, err)
		require.Equal(t, []any{nil, nil}, row)
		return nil
	})
	require.NoError(t, err)
}

func TestExtractAllEmpty(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.Exec(`CREATE TABLE test (i int, s string)`)
	require.NoError(t, err)

	err = s.WithResult(`SELECT * FROM test`, func(r *Result) error {
		vectors, err := r.ExtractAll()
		require.NoError(t, err)
		require.Equal(t, []int32{}, vectors["i"].Data)
		require.Equal(t, []string{}, vectors["s"].Data)
		require.Equal(t, 0, vectors["i"].Len())
		return nil
	})
	require.NoError(t, err)
}

func TestExtractVectorCopies(t *testing.T) {
	col := newMemColumn("i", TYPE_INT64, []memCell{packValue(t, TYPE_INT64, int64(7))})
	vec, err := ExtractVector(col)
	require.NoError(t, err)

	col.data[0] = 0
	require.Equal(t, []int64{7}, vec.Data)
}

func TestVectorBulk(t *testing.T) {
	vec := Vector{Name: "i", Type: TYPE_INT32, Data: []int32{1, 2}, Valid: []bool{true, false}}
	bulk := vec.Bulk()
	require.Equal(t, []int32{1, 2}, bulk.Data)
	require.Equal(t, []bool{true, false}, bulk.Valid)
	require.True(t, vec.IsValid(0))
	require.False(t, vec.IsValid(1))
	require.True(t, Vector{}.IsValid(3))
	require.Equal(t, 0, Vector{}.Len())
}
