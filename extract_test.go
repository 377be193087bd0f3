package monetdbe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type textValue struct {
	s string
}

func TestExtractNull(t *testing.T) {
	for _, tag := range allTypes {
		t.Run(tag.String(), func(t *testing.T) {
			desc, err := Describe(tag)
			require.NoError(t, err)

			// Garbage cell bytes must not be looked at.
			garbage := make([]byte, desc.Size)
			for i := range garbage {
				garbage[i] = 0xAB
			}
			col := newMemColumn("c", tag, []memCell{{null: true, raw: garbage}, packValue(t, tag, sampleValue(tag))})

			v, err := Extract(col, 0, nil)
			require.NoError(t, err)
			require.Nil(t, v)

			v, err = Extract(col, 1, nil)
			require.NoError(t, err)
			require.NotNil(t, v)
		})
	}
}

func TestExtractText(t *testing.T) {
	factory := func(s string) any { return textValue{s: s} }

	str := newMemColumn("s", TYPE_STR, []memCell{packValue(t, TYPE_STR, "abc"), {null: true}})
	v, err := Extract(str, 0, factory)
	require.NoError(t, err)
	require.Equal(t, textValue{s: "abc"}, v)

	v, err = Extract(str, 1, factory)
	require.NoError(t, err)
	require.Nil(t, v)

	// Only text columns go through the factory.
	blob := newMemColumn("b", TYPE_BLOB, []memCell{packValue(t, TYPE_BLOB, []byte("abc"))})
	v, err = Extract(blob, 0, factory)
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), v)

	i := newMemColumn("i", TYPE_INT32, []memCell{packValue(t, TYPE_INT32, int32(5))})
	v, err = Extract(i, 0, factory)
	require.NoError(t, err)
	require.Equal(t, int32(5), v)
}

func TestExtractRawIntegers(t *testing.T) {
	col := newMemColumn("i", TYPE_INT16, []memCell{packValue(t, TYPE_INT16, int16(-2))})
	v, err := Extract(col, 0, nil)
	require.NoError(t, err)
	require.Equal(t, int16(-2), v)
}

func TestExtractBlobCopies(t *testing.T) {
	cell := packValue(t, TYPE_BLOB, []byte{1, 2, 3})
	col := newMemColumn("b", TYPE_BLOB, []memCell{cell})
	v, err := Extract(col, 0, nil)
	require.NoError(t, err)

	cell.raw[0] = 9
	require.Equal(t, []byte{1, 2, 3}, v)
}

type unknownColumn struct {
	memColumn
}

func (unknownColumn) Type() TypeTag { return TypeTag(77) }

func TestExtractUnknownType(t *testing.T) {
	col := &unknownColumn{}
	_, err := Extract(col, 0, nil)
	var unknown *UnknownTypeError
	require.True(t, errors.As(err, &unknown))

	_, err = ExtractVector(col)
	require.True(t, errors.As(err, &unknown))
}
