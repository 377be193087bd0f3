package monetdbe

import (
	"math/big"
	"reflect"
	"time"
	"unsafe"
)

// TypeTag identifies the physical type of an engine column. The values match
// monetdbe_types on engine builds with 128-bit integer support.
type TypeTag int32

const (
	TYPE_BOOL TypeTag = iota
	TYPE_INT8
	TYPE_INT16
	TYPE_INT32
	TYPE_INT64
	TYPE_INT128
	TYPE_SIZE_T
	TYPE_FLOAT
	TYPE_DOUBLE
	TYPE_STR
	TYPE_BLOB
	TYPE_DATE
	TYPE_TIME
	TYPE_TIMESTAMP
	TYPE_UNKNOWN
)

var typeToStringMap = map[TypeTag]string{
	TYPE_BOOL:      "bool",
	TYPE_INT8:      "int8_t",
	TYPE_INT16:     "int16_t",
	TYPE_INT32:     "int32_t",
	TYPE_INT64:     "int64_t",
	TYPE_INT128:    "int128_t",
	TYPE_SIZE_T:    "size_t",
	TYPE_FLOAT:     "float",
	TYPE_DOUBLE:    "double",
	TYPE_STR:       "str",
	TYPE_BLOB:      "blob",
	TYPE_DATE:      "date",
	TYPE_TIME:      "time",
	TYPE_TIMESTAMP: "timestamp",
	TYPE_UNKNOWN:   "unknown",
}

func (t TypeTag) String() string {
	if s, ok := typeToStringMap[t]; ok {
		return s
	}
	return "invalid"
}

// Fixed-width cell sizes of the engine's C structs.
const (
	dateSize      = 4  // monetdbe_data_date: day, month uint8; year int16
	timeSize      = 8  // monetdbe_data_time: ms uint32; seconds, minutes, hours uint8; padding
	timestampSize = 12 // monetdbe_data_timestamp: date, time
	pointerSize   = int(unsafe.Sizeof(uintptr(0)))
	blobSize      = 2 * pointerSize // monetdbe_data_blob: size_t size; char *data
)

var (
	reflectTypeBool    = reflect.TypeOf(true)
	reflectTypeInt8    = reflect.TypeOf(int8(0))
	reflectTypeInt16   = reflect.TypeOf(int16(0))
	reflectTypeInt32   = reflect.TypeOf(int32(0))
	reflectTypeInt64   = reflect.TypeOf(int64(0))
	reflectTypeUint64  = reflect.TypeOf(uint64(0))
	reflectTypeFloat32 = reflect.TypeOf(float32(0))
	reflectTypeFloat64 = reflect.TypeOf(float64(0))
	reflectTypeString  = reflect.TypeOf("")
	reflectTypeBytes   = reflect.TypeOf([]byte{})
	reflectTypeTime    = reflect.TypeOf(time.Time{})
	reflectTypeBigInt  = reflect.TypeOf((*big.Int)(nil))
)
