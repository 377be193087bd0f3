package monetdbe

import (
	"encoding/binary"
	"errors"
	"math"
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var allTypes = []TypeTag{
	TYPE_BOOL, TYPE_INT8, TYPE_INT16, TYPE_INT32, TYPE_INT64, TYPE_INT128, TYPE_SIZE_T,
	TYPE_FLOAT, TYPE_DOUBLE, TYPE_STR, TYPE_BLOB, TYPE_DATE, TYPE_TIME, TYPE_TIMESTAMP,
}

// sampleValue is a non-null host value of each type.
func sampleValue(tag TypeTag) any {
	switch tag {
	case TYPE_BOOL:
		return true
	case TYPE_INT8:
		return int8(-7)
	case TYPE_INT16:
		return int16(-300)
	case TYPE_INT32:
		return int32(70000)
	case TYPE_INT64:
		return int64(-1) << 40
	case TYPE_INT128:
		i, _ := new(big.Int).SetString("-170141183460469231731687303715884105727", 10)
		return i
	case TYPE_SIZE_T:
		return uint64(math.MaxUint64)
	case TYPE_FLOAT:
		return float32(1.5)
	case TYPE_DOUBLE:
		return -2.25
	case TYPE_STR:
		return "héllo"
	case TYPE_BLOB:
		return []byte{0, 1, 2}
	case TYPE_DATE:
		return time.Date(1970, time.January, 2, 0, 0, 0, 0, time.UTC)
	case TYPE_TIME:
		return time.Date(1, time.January, 1, 13, 14, 15, 16000000, time.UTC)
	case TYPE_TIMESTAMP:
		return time.Date(2021, time.March, 4, 5, 6, 7, 8000000, time.UTC)
	}
	return nil
}

func packValue(t *testing.T, tag TypeTag, v any) memCell {
	t.Helper()
	desc, err := Describe(tag)
	require.NoError(t, err)
	h, err := toHostVector(singleton(v))
	require.NoError(t, err)
	col, err := packColumn("c", desc, h, nil)
	require.NoError(t, err)
	if desc.Fixed() {
		return memCell{raw: col.Data}
	}
	return memCell{raw: col.Var[0]}
}

func TestDescribe(t *testing.T) {
	for _, tag := range allTypes {
		t.Run(tag.String(), func(t *testing.T) {
			desc, err := Describe(tag)
			require.NoError(t, err)
			require.Equal(t, tag, desc.Tag)
			require.NotEmpty(t, desc.CastName)
			require.Positive(t, desc.Size)
			require.NotNil(t, desc.VectorType)
			if desc.Null != nil {
				require.Len(t, desc.Null, desc.Size)
				require.True(t, desc.IsSentinel(desc.Null))
			}
		})
	}
}

func TestDescribeUnknown(t *testing.T) {
	for _, tag := range []TypeTag{TYPE_UNKNOWN, TypeTag(99), TypeTag(-1)} {
		_, err := Describe(tag)
		var unknown *UnknownTypeError
		require.True(t, errors.As(err, &unknown))
		require.Equal(t, tag, unknown.Tag)
	}
}

func TestDescriptorSizes(t *testing.T) {
	sizes := map[TypeTag]int{
		TYPE_BOOL: 1, TYPE_INT8: 1, TYPE_INT16: 2, TYPE_INT32: 4, TYPE_INT64: 8,
		TYPE_INT128: 16, TYPE_SIZE_T: 8, TYPE_FLOAT: 4, TYPE_DOUBLE: 8,
		TYPE_STR: pointerSize, TYPE_BLOB: 2 * pointerSize,
		TYPE_DATE: 4, TYPE_TIME: 8, TYPE_TIMESTAMP: 12,
	}
	for tag, size := range sizes {
		desc, err := Describe(tag)
		require.NoError(t, err)
		require.Equal(t, size, desc.Size, tag.String())

		if desc.VectorType.Kind() != reflect.Bool && desc.Fixed() && desc.Convert == nil {
			// The columnar byte span must match the vector element width.
			require.Equal(t, size, int(desc.VectorType.Size()), tag.String())
		}
	}
}

func TestVectorTypeMatchesExtraction(t *testing.T) {
	for _, tag := range allTypes {
		t.Run(tag.String(), func(t *testing.T) {
			desc, err := Describe(tag)
			require.NoError(t, err)

			col := newMemColumn("c", tag, []memCell{packValue(t, tag, sampleValue(tag))})
			vec, err := ExtractVector(col)
			require.NoError(t, err)
			require.Equal(t, reflect.SliceOf(desc.VectorType), reflect.TypeOf(vec.Data))

			v, err := Extract(col, 0, nil)
			require.NoError(t, err)
			require.Equal(t, desc.VectorType, reflect.TypeOf(v))
			require.Equal(t, sampleValue(tag), v)
		})
	}
}

func TestSentinels(t *testing.T) {
	int32Desc, _ := Describe(TYPE_INT32)
	require.True(t, int32Desc.IsSentinel(binary.NativeEndian.AppendUint32(nil, uint32(1)<<31)))
	require.False(t, int32Desc.IsSentinel(binary.NativeEndian.AppendUint32(nil, 0)))

	doubleDesc, _ := Describe(TYPE_DOUBLE)
	require.True(t, doubleDesc.IsSentinel(binary.NativeEndian.AppendUint64(nil, math.Float64bits(math.NaN()))))
	// Any NaN payload counts.
	require.True(t, doubleDesc.IsSentinel(binary.NativeEndian.AppendUint64(nil, 0x7ff0000000000001)))
	require.False(t, doubleDesc.IsSentinel(binary.NativeEndian.AppendUint64(nil, math.Float64bits(math.Inf(1)))))

	boolDesc, _ := Describe(TYPE_BOOL)
	require.True(t, boolDesc.IsSentinel([]byte{0x80}))
	require.False(t, boolDesc.IsSentinel([]byte{1}))

	for _, tag := range []TypeTag{TYPE_STR, TYPE_BLOB, TYPE_DATE, TYPE_TIME, TYPE_TIMESTAMP, TYPE_INT128, TYPE_SIZE_T} {
		desc, _ := Describe(tag)
		require.False(t, desc.HasSentinel(), tag.String())
	}
}

func TestInt128Codec(t *testing.T) {
	values := []string{
		"0", "1", "-1",
		"18446744073709551616",
		"-18446744073709551617",
		"170141183460469231731687303715884105727",
		"-170141183460469231731687303715884105728",
	}
	for _, s := range values {
		i, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok)
		cell := make([]byte, 16)
		require.NoError(t, encodeInt128(i, cell))
		v, err := convertInt128(cell)
		require.NoError(t, err)
		require.Equal(t, 0, i.Cmp(v.(*big.Int)), s)
	}

	tooBig, _ := new(big.Int).SetString("170141183460469231731687303715884105728", 10)
	require.Error(t, encodeInt128(tooBig, make([]byte, 16)))

	_, err := convertInt128(make([]byte, 8))
	require.Error(t, err)
}

func TestTemporalCodec(t *testing.T) {
	ts := time.Date(1999, time.December, 31, 23, 59, 58, 123000000, time.UTC)
	cell := make([]byte, timestampSize)
	encodeTimestamp(ts, cell)
	v, err := convertTimestamp(cell)
	require.NoError(t, err)
	require.Equal(t, ts, v)

	// Sub-millisecond precision is not stored.
	encodeTimestamp(ts.Add(999*time.Microsecond), cell)
	v, err = convertTimestamp(cell)
	require.NoError(t, err)
	require.Equal(t, ts, v)

	date := make([]byte, dateSize)
	encodeDate(time.Date(-44, time.March, 15, 0, 0, 0, 0, time.UTC), date)
	v, err = convertDate(date)
	require.NoError(t, err)
	require.Equal(t, -44, v.(time.Time).Year())

	tm := make([]byte, timeSize)
	encodeNullTime(tm)
	require.Equal(t, uint8(0xFF), tm[6])
	encodeNullDate(date)
	require.Equal(t, []byte{0, 0, 0, 0}, date)
}

func TestTypeTagString(t *testing.T) {
	require.Equal(t, "int32_t", TYPE_INT32.String())
	require.Equal(t, "timestamp", TYPE_TIMESTAMP.String())
	require.Equal(t, "invalid", TypeTag(42).String())
}
