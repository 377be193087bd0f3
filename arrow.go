package monetdbe

import (
	"fmt"
	"math/big"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

const maxDecimalDigits = 38

// maxDecimal is the largest magnitude of a decimal(38, 0).
var maxDecimal = new(big.Int).Sub(new(big.Int).Exp(big.NewInt(10), big.NewInt(maxDecimalDigits), nil), big.NewInt(1))

// arrowType maps an engine type onto the Arrow type used for export.
func arrowType(tag TypeTag) (arrow.DataType, error) {
	switch tag {
	case TYPE_BOOL:
		return arrow.FixedWidthTypes.Boolean, nil
	case TYPE_INT8:
		return arrow.PrimitiveTypes.Int8, nil
	case TYPE_INT16:
		return arrow.PrimitiveTypes.Int16, nil
	case TYPE_INT32:
		return arrow.PrimitiveTypes.Int32, nil
	case TYPE_INT64:
		return arrow.PrimitiveTypes.Int64, nil
	case TYPE_INT128:
		// decimal(38, 0) covers all but the outermost int128 values; Arrow
		// rejects those on export.
		return &arrow.Decimal128Type{Precision: maxDecimalDigits, Scale: 0}, nil
	case TYPE_SIZE_T:
		return arrow.PrimitiveTypes.Uint64, nil
	case TYPE_FLOAT:
		return arrow.PrimitiveTypes.Float32, nil
	case TYPE_DOUBLE:
		return arrow.PrimitiveTypes.Float64, nil
	case TYPE_STR:
		return arrow.BinaryTypes.String, nil
	case TYPE_BLOB:
		return arrow.BinaryTypes.Binary, nil
	case TYPE_DATE:
		return arrow.FixedWidthTypes.Date32, nil
	case TYPE_TIME:
		return arrow.FixedWidthTypes.Time64us, nil
	case TYPE_TIMESTAMP:
		return arrow.FixedWidthTypes.Timestamp_us, nil
	}
	return nil, unknownTypeError(tag)
}

// Arrow copies the result into an Arrow record. Unlike ExtractAll, nulls of
// every type are carried in the record's validity bitmaps. The caller owns
// the record and must release it.
func (r *Result) Arrow(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	cols := make([]ResultColumn, r.h.Cols)
	fields := make([]arrow.Field, r.h.Cols)
	for i := range cols {
		col, err := r.Column(i)
		if err != nil {
			return nil, err
		}
		typ, err := arrowType(col.Type())
		if err != nil {
			return nil, err
		}
		cols[i] = col
		fields[i] = arrow.Field{Name: col.Name(), Type: typ, Nullable: true}
	}

	rb := array.NewRecordBuilder(mem, arrow.NewSchema(fields, nil))
	defer rb.Release()

	for i, col := range cols {
		vec, err := ExtractVector(col)
		if err != nil {
			return nil, columnError(err, col.Name())
		}
		valid := make([]bool, col.Len())
		for row := range valid {
			valid[row] = !col.IsNull(row)
		}
		if err := appendArrow(rb.Field(i), vec, valid); err != nil {
			return nil, columnError(err, col.Name())
		}
	}
	return rb.NewRecord(), nil
}

func appendArrow(b array.Builder, vec Vector, valid []bool) error {
	switch b := b.(type) {
	case *array.BooleanBuilder:
		b.AppendValues(vec.Data.([]bool), valid)
	case *array.Int8Builder:
		b.AppendValues(vec.Data.([]int8), valid)
	case *array.Int16Builder:
		b.AppendValues(vec.Data.([]int16), valid)
	case *array.Int32Builder:
		b.AppendValues(vec.Data.([]int32), valid)
	case *array.Int64Builder:
		b.AppendValues(vec.Data.([]int64), valid)
	case *array.Uint64Builder:
		b.AppendValues(vec.Data.([]uint64), valid)
	case *array.Float32Builder:
		b.AppendValues(vec.Data.([]float32), valid)
	case *array.Float64Builder:
		b.AppendValues(vec.Data.([]float64), valid)
	case *array.StringBuilder:
		b.AppendValues(vec.Data.([]string), valid)
	case *array.BinaryBuilder:
		b.AppendValues(vec.Data.([][]byte), valid)
	case *array.Decimal128Builder:
		for i, v := range vec.Data.([]*big.Int) {
			if !valid[i] {
				b.AppendNull()
				continue
			}
			if v.CmpAbs(maxDecimal) > 0 {
				return programmingError(errValueRange, "%s exceeds %d decimal digits", v, maxDecimalDigits)
			}
			b.Append(decimal128.FromBigInt(v))
		}
	case *array.Date32Builder:
		for i, t := range vec.Data.([]time.Time) {
			if !valid[i] {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Date32FromTime(t))
		}
	case *array.Time64Builder:
		for i, t := range vec.Data.([]time.Time) {
			if !valid[i] {
				b.AppendNull()
				continue
			}
			midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			b.Append(arrow.Time64(t.Sub(midnight).Microseconds()))
		}
	case *array.TimestampBuilder:
		for i, t := range vec.Data.([]time.Time) {
			if !valid[i] {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Timestamp(t.UnixMicro()))
		}
	default:
		return fmt.Errorf("%w: %T", errUnsupportedType, b)
	}
	return nil
}

// BulkFromArrow turns the columns of rec into append columns keyed by field
// name. The returned columns may share memory with rec, which must stay alive
// until the append is done.
func BulkFromArrow(rec arrow.Record) (map[string]BulkColumn, error) {
	out := make(map[string]BulkColumn, rec.NumCols())
	for i, arr := range rec.Columns() {
		name := rec.ColumnName(i)
		col, err := bulkFromArrowArray(arr)
		if err != nil {
			return nil, columnError(err, name)
		}
		out[name] = col
	}
	return out, nil
}

func arrowValidity(arr arrow.Array) []bool {
	if arr.NullN() == 0 {
		return nil
	}
	valid := make([]bool, arr.Len())
	for i := range valid {
		valid[i] = arr.IsValid(i)
	}
	return valid
}

func arrowValues[T any](n int, value func(i int) T) []T {
	vals := make([]T, n)
	for i := range vals {
		vals[i] = value(i)
	}
	return vals
}

func bulkFromArrowArray(arr arrow.Array) (BulkColumn, error) {
	col := BulkColumn{Valid: arrowValidity(arr)}
	n := arr.Len()

	switch a := arr.(type) {
	case *array.Boolean:
		col.Data = arrowValues(n, a.Value)
	case *array.Int8:
		col.Data = a.Int8Values()
	case *array.Int16:
		col.Data = a.Int16Values()
	case *array.Int32:
		col.Data = a.Int32Values()
	case *array.Int64:
		col.Data = a.Int64Values()
	case *array.Uint8:
		col.Data = a.Uint8Values()
	case *array.Uint16:
		col.Data = a.Uint16Values()
	case *array.Uint32:
		col.Data = a.Uint32Values()
	case *array.Uint64:
		col.Data = a.Uint64Values()
	case *array.Float32:
		col.Data = a.Float32Values()
	case *array.Float64:
		col.Data = a.Float64Values()
	case *array.String:
		col.Data = arrowValues(n, a.Value)
	case *array.LargeString:
		col.Data = arrowValues(n, a.Value)
	case *array.Binary:
		col.Data = arrowValues(n, a.Value)
	case *array.Decimal128:
		col.Data = arrowValues(n, func(i int) *big.Int { return a.Value(i).BigInt() })
	case *array.Date32:
		col.Data = arrowValues(n, func(i int) time.Time { return a.Value(i).ToTime() })
	case *array.Time64:
		unit := a.DataType().(*arrow.Time64Type).Unit
		col.Data = arrowValues(n, func(i int) time.Time { return a.Value(i).ToTime(unit) })
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		col.Data = arrowValues(n, func(i int) time.Time { return a.Value(i).ToTime(unit) })
	default:
		return BulkColumn{}, programmingError(errUnsupportedType, "arrow %s", arr.DataType())
	}
	return col, nil
}
