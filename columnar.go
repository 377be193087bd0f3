package monetdbe

import (
	"math/big"
	"reflect"
	"time"
	"unsafe"
)

// Vector is one result column extracted in bulk.
//
// Data is a typed slice whose element type is the column descriptor's
// VectorType, e.g. []int32 for INT32 or []string for STR. Valid is nil when
// no cell holds the type's null sentinel; otherwise Valid[i] is false for
// null cells. Types without a sentinel (STR, BLOB, DATE, TIME, TIMESTAMP,
// INT128, SIZE_T) never get a mask: their null cells hold the zero value and
// must be told apart with the scalar path.
type Vector struct {
	Name  string
	Type  TypeTag
	Data  any
	Valid []bool
}

// Len is the number of elements in the vector.
func (v Vector) Len() int {
	if v.Data == nil {
		return 0
	}
	return reflect.ValueOf(v.Data).Len()
}

// IsValid reports whether element i is not null.
func (v Vector) IsValid(i int) bool {
	return v.Valid == nil || v.Valid[i]
}

// Bulk turns the vector into an append column.
func (v Vector) Bulk() BulkColumn {
	return BulkColumn{Data: v.Data, Valid: v.Valid}
}

// ExtractAll extracts every column of the result into a Vector, keyed by column name.
func (r *Result) ExtractAll() (map[string]Vector, error) {
	out := make(map[string]Vector, r.h.Cols)
	for i := 0; i < r.h.Cols; i++ {
		col, err := r.Column(i)
		if err != nil {
			return nil, err
		}
		vec, err := ExtractVector(col)
		if err != nil {
			return nil, columnError(err, col.Name())
		}
		out[col.Name()] = vec
	}
	return out, nil
}

// ExtractVector extracts a whole column. Fixed-width numeric columns are
// copied out of the engine buffer in one piece.
func ExtractVector(col ResultColumn) (Vector, error) {
	desc, err := Describe(col.Type())
	if err != nil {
		return Vector{}, err
	}
	vec := Vector{Name: col.Name(), Type: desc.Tag}
	n := col.Len()

	switch desc.Tag {
	case TYPE_INT8:
		vec.Data = copyFixed[int8](col.Data(), n)
	case TYPE_INT16:
		vec.Data = copyFixed[int16](col.Data(), n)
	case TYPE_INT32:
		vec.Data = copyFixed[int32](col.Data(), n)
	case TYPE_INT64:
		vec.Data = copyFixed[int64](col.Data(), n)
	case TYPE_SIZE_T:
		vec.Data = copyFixed[uint64](col.Data(), n)
	case TYPE_FLOAT:
		vec.Data = copyFixed[float32](col.Data(), n)
	case TYPE_DOUBLE:
		vec.Data = copyFixed[float64](col.Data(), n)
	case TYPE_BOOL:
		// Stored as int8 with 0x80 as nil, which is not a valid Go bool.
		data := col.Data()
		bools := make([]bool, n)
		for i := range bools {
			bools[i] = data[i] == 1
		}
		vec.Data = bools
	case TYPE_INT128:
		vec.Data, err = decodeVector[*big.Int](col, desc)
	case TYPE_STR:
		vec.Data, err = decodeVector[string](col, desc)
	case TYPE_BLOB:
		vec.Data, err = decodeVector[[]byte](col, desc)
	case TYPE_DATE, TYPE_TIME, TYPE_TIMESTAMP:
		vec.Data, err = decodeVector[time.Time](col, desc)
	default:
		return Vector{}, unknownTypeError(desc.Tag)
	}
	if err != nil {
		return Vector{}, err
	}

	if desc.HasSentinel() {
		vec.Valid = sentinelMask(col.Data(), desc, n)
	}
	return vec, nil
}

// copyFixed copies n native-endian elements out of data.
func copyFixed[T int8 | int16 | int32 | int64 | uint64 | float32 | float64](data []byte, n int) []T {
	vals := make([]T, n)
	if n == 0 {
		return vals
	}
	size := int(unsafe.Sizeof(vals[0]))
	dst := unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), n*size)
	copy(dst, data[:n*size])
	return vals
}

// decodeVector converts each non-null cell. Null cells keep the zero value.
func decodeVector[T any](col ResultColumn, desc TypeDescriptor) (any, error) {
	vals := make([]T, col.Len())
	for i := range vals {
		if col.IsNull(i) {
			continue
		}
		v, err := desc.Convert(col.Cell(i))
		if err != nil {
			return nil, err
		}
		vals[i] = v.(T)
	}
	return vals, nil
}

// sentinelMask scans data for the type's sentinel. It returns nil if there is none.
func sentinelMask(data []byte, desc TypeDescriptor, n int) []bool {
	var valid []bool
	for i := 0; i < n; i++ {
		cell := data[i*desc.Size : (i+1)*desc.Size]
		if !desc.IsSentinel(cell) {
			continue
		}
		if valid == nil {
			valid = make([]bool, n)
			for j := range valid {
				valid[j] = true
			}
		}
		valid[i] = false
	}
	return valid
}
