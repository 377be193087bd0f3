package monetdbe

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"
)

// Converter decodes the raw bytes of one non-null cell.
type Converter func(cell []byte) (any, error)

// TypeDescriptor describes how cells of one engine type are laid out and decoded.
type TypeDescriptor struct {
	Tag TypeTag
	// CastName is the C element type of the column struct, e.g. "int32_t".
	CastName string
	// Size is the width of one element in the column's data buffer.
	Size int
	// Convert is nil for types whose raw native value is returned as is.
	Convert Converter
	// VectorType is the element type of columnar vectors.
	VectorType reflect.Type
	// Null is the sentinel bit pattern marking a null cell, nil if the type has none.
	Null []byte

	isSentinel func(cell []byte) bool
}

// HasSentinel reports whether nulls of this type are stored in-band.
func (d TypeDescriptor) HasSentinel() bool {
	return d.isSentinel != nil
}

// IsSentinel reports whether cell holds the type's null sentinel.
func (d TypeDescriptor) IsSentinel(cell []byte) bool {
	return d.isSentinel != nil && d.isSentinel(cell)
}

// Fixed reports whether the column's data buffer holds the values themselves
// rather than pointers to them.
func (d TypeDescriptor) Fixed() bool {
	return d.Tag != TYPE_STR && d.Tag != TYPE_BLOB
}

var registry = map[TypeTag]TypeDescriptor{}

func register(d TypeDescriptor) {
	if d.Null != nil && d.isSentinel == nil {
		null := d.Null
		d.isSentinel = func(cell []byte) bool { return string(cell) == string(null) }
	}
	registry[d.Tag] = d
}

func init() {
	register(TypeDescriptor{Tag: TYPE_BOOL, CastName: "bool", Size: 1, Convert: convertBool,
		VectorType: reflectTypeBool, Null: []byte{0x80}})
	register(TypeDescriptor{Tag: TYPE_INT8, CastName: "int8_t", Size: 1,
		VectorType: reflectTypeInt8, Null: []byte{0x80}})
	register(TypeDescriptor{Tag: TYPE_INT16, CastName: "int16_t", Size: 2,
		VectorType: reflectTypeInt16, Null: binary.NativeEndian.AppendUint16(nil, 1<<15)})
	register(TypeDescriptor{Tag: TYPE_INT32, CastName: "int32_t", Size: 4,
		VectorType: reflectTypeInt32, Null: binary.NativeEndian.AppendUint32(nil, 1<<31)})
	register(TypeDescriptor{Tag: TYPE_INT64, CastName: "int64_t", Size: 8,
		VectorType: reflectTypeInt64, Null: binary.NativeEndian.AppendUint64(nil, 1<<63)})
	register(TypeDescriptor{Tag: TYPE_INT128, CastName: "int128_t", Size: 16, Convert: convertInt128,
		VectorType: reflectTypeBigInt})
	register(TypeDescriptor{Tag: TYPE_SIZE_T, CastName: "size_t", Size: 8,
		VectorType: reflectTypeUint64})
	register(TypeDescriptor{Tag: TYPE_FLOAT, CastName: "float", Size: 4, Convert: convertFloat,
		VectorType: reflectTypeFloat32, Null: binary.NativeEndian.AppendUint32(nil, math.Float32bits(float32(math.NaN()))),
		isSentinel: func(cell []byte) bool {
			return math.IsNaN(float64(math.Float32frombits(binary.NativeEndian.Uint32(cell))))
		}})
	register(TypeDescriptor{Tag: TYPE_DOUBLE, CastName: "double", Size: 8, Convert: convertDouble,
		VectorType: reflectTypeFloat64, Null: binary.NativeEndian.AppendUint64(nil, math.Float64bits(math.NaN())),
		isSentinel: func(cell []byte) bool {
			return math.IsNaN(math.Float64frombits(binary.NativeEndian.Uint64(cell)))
		}})
	register(TypeDescriptor{Tag: TYPE_STR, CastName: "str", Size: pointerSize, Convert: convertString,
		VectorType: reflectTypeString})
	register(TypeDescriptor{Tag: TYPE_BLOB, CastName: "blob", Size: blobSize, Convert: convertBlob,
		VectorType: reflectTypeBytes})
	register(TypeDescriptor{Tag: TYPE_DATE, CastName: "date", Size: dateSize, Convert: convertDate,
		VectorType: reflectTypeTime})
	register(TypeDescriptor{Tag: TYPE_TIME, CastName: "time", Size: timeSize, Convert: convertTime,
		VectorType: reflectTypeTime})
	register(TypeDescriptor{Tag: TYPE_TIMESTAMP, CastName: "timestamp", Size: timestampSize, Convert: convertTimestamp,
		VectorType: reflectTypeTime})
}

// Describe returns the descriptor registered for tag.
func Describe(tag TypeTag) (TypeDescriptor, error) {
	d, ok := registry[tag]
	if !ok {
		return TypeDescriptor{}, unknownTypeError(tag)
	}
	return d, nil
}

// raw decodes a fixed-width cell into its native Go value without conversion.
func (d TypeDescriptor) raw(cell []byte) any {
	switch d.Tag {
	case TYPE_BOOL:
		return cell[0] != 0
	case TYPE_INT8:
		return int8(cell[0])
	case TYPE_INT16:
		return int16(binary.NativeEndian.Uint16(cell))
	case TYPE_INT32:
		return int32(binary.NativeEndian.Uint32(cell))
	case TYPE_INT64:
		return int64(binary.NativeEndian.Uint64(cell))
	case TYPE_SIZE_T:
		return binary.NativeEndian.Uint64(cell)
	case TYPE_FLOAT:
		return math.Float32frombits(binary.NativeEndian.Uint32(cell))
	case TYPE_DOUBLE:
		return math.Float64frombits(binary.NativeEndian.Uint64(cell))
	}
	// Remaining types always carry a converter.
	return cell
}

func convertBool(cell []byte) (any, error) {
	return cell[0] != 0, nil
}

func convertFloat(cell []byte) (any, error) {
	return postProcessFloat(math.Float32frombits(binary.NativeEndian.Uint32(cell))), nil
}

func convertDouble(cell []byte) (any, error) {
	return postProcessFloat(math.Float64frombits(binary.NativeEndian.Uint64(cell))), nil
}

func postProcessFloat(v any) any {
	if fn, ok := converters.first(floatHooks); ok {
		return fn(v)
	}
	return v
}

func convertString(cell []byte) (any, error) {
	return string(cell), nil
}

func convertBlob(cell []byte) (any, error) {
	b := make([]byte, len(cell))
	copy(b, cell)
	return b, nil
}

// hge values are stored as (lower, upper) 64-bit words, lower first.
// The value is computed as: upper * 2^64 + lower
func convertInt128(cell []byte) (any, error) {
	if len(cell) != 16 {
		return nil, castError(fmt.Sprintf("%d bytes", len(cell)), TYPE_INT128.String())
	}
	lower := binary.LittleEndian.Uint64(cell[:8])
	upper := int64(binary.LittleEndian.Uint64(cell[8:]))

	i := big.NewInt(upper)
	i.Lsh(i, 64)
	i.Add(i, new(big.Int).SetUint64(lower))
	return i, nil
}

// minInt128 is -2^127, the engine's int128 null.
var minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))

func encodeInt128(i *big.Int, dst []byte) error {
	d := big.NewInt(1)
	d.Lsh(d, 64)

	q := new(big.Int)
	r := new(big.Int)
	q.DivMod(i, d, r)

	if !q.IsInt64() {
		return fmt.Errorf("big.Int(%s) is too big for %s", i.String(), TYPE_INT128)
	}
	binary.LittleEndian.PutUint64(dst[:8], r.Uint64())
	binary.LittleEndian.PutUint64(dst[8:], uint64(q.Int64()))
	return nil
}

func decodeDate(cell []byte) time.Time {
	day := int(cell[0])
	month := time.Month(cell[1])
	year := int(int16(binary.NativeEndian.Uint16(cell[2:4])))
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func decodeTime(cell []byte) (hour, minute, sec, nanos int) {
	ms := binary.NativeEndian.Uint32(cell[0:4])
	return int(cell[6]), int(cell[5]), int(cell[4]), int(ms) * int(time.Millisecond)
}

func convertDate(cell []byte) (any, error) {
	return decodeDate(cell), nil
}

func convertTime(cell []byte) (any, error) {
	hour, minute, sec, nanos := decodeTime(cell)
	return time.Date(1, time.January, 1, hour, minute, sec, nanos, time.UTC), nil
}

func convertTimestamp(cell []byte) (any, error) {
	date := decodeDate(cell[:dateSize])
	hour, minute, sec, nanos := decodeTime(cell[dateSize:])
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, sec, nanos, time.UTC), nil
}

func encodeDate(t time.Time, dst []byte) {
	t = t.UTC()
	dst[0] = uint8(t.Day())
	dst[1] = uint8(t.Month())
	binary.NativeEndian.PutUint16(dst[2:4], uint16(int16(t.Year())))
}

func encodeTime(t time.Time, dst []byte) {
	t = t.UTC()
	binary.NativeEndian.PutUint32(dst[0:4], uint32(t.Nanosecond()/int(time.Millisecond)))
	dst[4] = uint8(t.Second())
	dst[5] = uint8(t.Minute())
	dst[6] = uint8(t.Hour())
	dst[7] = 0
}

func encodeTimestamp(t time.Time, dst []byte) {
	encodeDate(t, dst[:dateSize])
	encodeTime(t, dst[dateSize:])
}

// Invalid dates and times are mapped to nil by the engine.
func encodeNullDate(dst []byte) {
	clear(dst)
}

func encodeNullTime(dst []byte) {
	clear(dst)
	dst[6] = 0xFF
}
