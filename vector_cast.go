package monetdbe

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"
)

type hostKind int

const (
	hostSigned hostKind = iota
	hostUnsigned
	hostFloat
	hostBool
	hostString
	hostBytes
	hostTime
	hostBigInt
)

// hostVector is a host column normalized to one element kind per family.
type hostVector struct {
	kind   hostKind
	goType string

	ints   []int64
	uints  []uint64
	floats []float64
	bools  []bool
	strs   []string
	bytes  [][]byte
	times  []time.Time
	bigs   []*big.Int
}

func (h hostVector) len() int {
	switch h.kind {
	case hostSigned:
		return len(h.ints)
	case hostUnsigned:
		return len(h.uints)
	case hostFloat:
		return len(h.floats)
	case hostBool:
		return len(h.bools)
	case hostString:
		return len(h.strs)
	case hostBytes:
		return len(h.bytes)
	case hostTime:
		return len(h.times)
	}
	return len(h.bigs)
}

func widen[S int8 | int16 | int32 | int64 | int, D int64 | uint64 | float64](src []S) []D {
	dst := make([]D, len(src))
	for i, v := range src {
		dst[i] = D(v)
	}
	return dst
}

func widenUnsigned[S uint8 | uint16 | uint32 | uint64 | uint](src []S) []uint64 {
	dst := make([]uint64, len(src))
	for i, v := range src {
		dst[i] = uint64(v)
	}
	return dst
}

// toHostVector normalizes a typed host slice. Slices of interfaces and any
// other element type have no engine counterpart and are rejected.
func toHostVector(data any) (hostVector, error) {
	if data == nil {
		return hostVector{}, programmingError(errUnsupportedType, "no data")
	}
	h := hostVector{goType: reflect.TypeOf(data).String()}
	switch v := data.(type) {
	case []int8:
		h.kind, h.ints = hostSigned, widen[int8, int64](v)
	case []int16:
		h.kind, h.ints = hostSigned, widen[int16, int64](v)
	case []int32:
		h.kind, h.ints = hostSigned, widen[int32, int64](v)
	case []int64:
		h.kind, h.ints = hostSigned, v
	case []int:
		h.kind, h.ints = hostSigned, widen[int, int64](v)
	case []uint8:
		// []byte is []uint8; a single BLOB value is passed as [][]byte.
		h.kind, h.uints = hostUnsigned, widenUnsigned(v)
	case []uint16:
		h.kind, h.uints = hostUnsigned, widenUnsigned(v)
	case []uint32:
		h.kind, h.uints = hostUnsigned, widenUnsigned(v)
	case []uint64:
		h.kind, h.uints = hostUnsigned, v
	case []uint:
		h.kind, h.uints = hostUnsigned, widenUnsigned(v)
	case []float32:
		h.kind = hostFloat
		h.floats = make([]float64, len(v))
		for i, f := range v {
			h.floats[i] = float64(f)
		}
	case []float64:
		h.kind, h.floats = hostFloat, v
	case []bool:
		h.kind, h.bools = hostBool, v
	case []string:
		h.kind, h.strs = hostString, v
	case [][]byte:
		h.kind, h.bytes = hostBytes, v
	case []time.Time:
		h.kind, h.times = hostTime, v
	case []*big.Int:
		h.kind, h.bigs = hostBigInt, v
	default:
		return h, programmingError(errUnsupportedType, "%s", h.goType)
	}
	return h, nil
}

// packColumn converts h into the engine layout of desc. valid, if not nil,
// marks null positions, which are written as the type's null representation.
func packColumn(name string, desc TypeDescriptor, h hostVector, valid []bool) (PackedColumn, error) {
	n := h.len()
	if valid != nil && len(valid) != n {
		return PackedColumn{}, programmingError(errMaskLength, "%s: %d values, %d mask entries", name, n, len(valid))
	}
	col := PackedColumn{Name: name, Type: desc.Tag, Count: n}

	if !desc.Fixed() {
		vals, err := packVar(desc, h, valid)
		if err != nil {
			return PackedColumn{}, castColumnError(err, name)
		}
		col.Var = vals
		return col, nil
	}

	col.Data = make([]byte, n*desc.Size)
	for i := 0; i < n; i++ {
		cell := col.Data[i*desc.Size : (i+1)*desc.Size]
		if valid != nil && !valid[i] {
			if err := packNull(desc, cell); err != nil {
				return PackedColumn{}, castColumnError(err, name)
			}
			continue
		}
		if err := packCell(desc, h, i, cell); err != nil {
			return PackedColumn{}, castColumnError(err, fmt.Sprintf("%s row %d", name, i))
		}
	}
	return col, nil
}

func castColumnError(err error, name string) error {
	var perr *ProgrammingError
	if errors.As(err, &perr) {
		return &ProgrammingError{Op: perr.Op, Msg: fmt.Sprintf("column %s: %s", name, perr.Msg)}
	}
	return programmingError(errUnsupportedType, "column %s: %s", name, err.Error())
}

func packVar(desc TypeDescriptor, h hostVector, valid []bool) ([][]byte, error) {
	n := h.len()
	vals := make([][]byte, n)
	switch {
	case h.kind == hostString:
		for i, s := range h.strs {
			vals[i] = []byte(s)
		}
	case h.kind == hostBytes && desc.Tag == TYPE_BLOB:
		for i, b := range h.bytes {
			// A nil slice is a null; an empty one an empty blob.
			vals[i] = b
		}
	default:
		return nil, castError(h.goType, desc.Tag.String())
	}
	for i := range vals {
		if valid != nil && !valid[i] {
			vals[i] = nil
		} else if vals[i] == nil && h.kind == hostString {
			vals[i] = []byte{}
		}
	}
	return vals, nil
}

// packNull writes the null representation of desc into cell.
func packNull(desc TypeDescriptor, cell []byte) error {
	switch {
	case desc.Null != nil:
		copy(cell, desc.Null)
	case desc.Tag == TYPE_INT128:
		clear(cell)
		binary.LittleEndian.PutUint64(cell[8:], 1<<63)
	case desc.Tag == TYPE_DATE:
		encodeNullDate(cell)
	case desc.Tag == TYPE_TIME:
		encodeNullTime(cell)
	case desc.Tag == TYPE_TIMESTAMP:
		encodeNullDate(cell[:dateSize])
		encodeNullTime(cell[dateSize:])
	default:
		return programmingError(errUnsupportedType, "%s has no null representation", desc.Tag)
	}
	return nil
}

// packCell converts element i of h into cell. Values that do not fit the
// target or that equal its null sentinel are rejected.
func packCell(desc TypeDescriptor, h hostVector, i int, cell []byte) error {
	switch desc.Tag {
	case TYPE_BOOL:
		b, err := boolAt(h, i)
		if err != nil {
			return err
		}
		cell[0] = 0
		if b {
			cell[0] = 1
		}
		return nil
	case TYPE_INT8:
		v, err := signedAt(h, i, math.MinInt8, math.MaxInt8, desc.Tag)
		cell[0] = uint8(int8(v))
		return err
	case TYPE_INT16:
		v, err := signedAt(h, i, math.MinInt16, math.MaxInt16, desc.Tag)
		binary.NativeEndian.PutUint16(cell, uint16(int16(v)))
		return err
	case TYPE_INT32:
		v, err := signedAt(h, i, math.MinInt32, math.MaxInt32, desc.Tag)
		binary.NativeEndian.PutUint32(cell, uint32(int32(v)))
		return err
	case TYPE_INT64:
		v, err := signedAt(h, i, math.MinInt64, math.MaxInt64, desc.Tag)
		binary.NativeEndian.PutUint64(cell, uint64(v))
		return err
	case TYPE_SIZE_T:
		v, err := unsignedAt(h, i, desc.Tag)
		binary.NativeEndian.PutUint64(cell, v)
		return err
	case TYPE_INT128:
		v, err := bigAt(h, i, desc.Tag)
		if err != nil {
			return err
		}
		if v.Cmp(minInt128) == 0 {
			return programmingError(errValueRange, "%s is the null value of %s", v, desc.Tag)
		}
		if err := encodeInt128(v, cell); err != nil {
			return programmingError(errValueRange, "%s", err.Error())
		}
		return nil
	case TYPE_FLOAT:
		f, err := floatAt(h, i, desc.Tag)
		if err != nil {
			return err
		}
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return programmingError(errValueRange, "%v does not fit %s", f, desc.Tag)
		}
		binary.NativeEndian.PutUint32(cell, math.Float32bits(float32(f)))
		return nil
	case TYPE_DOUBLE:
		f, err := floatAt(h, i, desc.Tag)
		binary.NativeEndian.PutUint64(cell, math.Float64bits(f))
		return err
	case TYPE_DATE, TYPE_TIME, TYPE_TIMESTAMP:
		if h.kind != hostTime {
			return castError(h.goType, desc.Tag.String())
		}
		t := h.times[i]
		switch desc.Tag {
		case TYPE_DATE:
			if err := checkYear(t, desc.Tag); err != nil {
				return err
			}
			encodeDate(t, cell)
		case TYPE_TIME:
			encodeTime(t, cell)
		default:
			if err := checkYear(t, desc.Tag); err != nil {
				return err
			}
			encodeTimestamp(t, cell)
		}
		return nil
	}
	return castError(h.goType, desc.Tag.String())
}

func checkYear(t time.Time, tag TypeTag) error {
	if y := t.UTC().Year(); y < math.MinInt16 || y > math.MaxInt16 {
		return programmingError(errValueRange, "year %d does not fit %s", y, tag)
	}
	return nil
}

func boolAt(h hostVector, i int) (bool, error) {
	switch h.kind {
	case hostBool:
		return h.bools[i], nil
	case hostSigned:
		return h.ints[i] != 0, nil
	case hostUnsigned:
		return h.uints[i] != 0, nil
	}
	return false, castError(h.goType, TYPE_BOOL.String())
}

// signedAt narrows element i into [min, max]. min itself is the engine's
// null sentinel and is rejected.
func signedAt(h hostVector, i int, min int64, max int64, tag TypeTag) (int64, error) {
	var v int64
	switch h.kind {
	case hostSigned:
		v = h.ints[i]
	case hostUnsigned:
		if h.uints[i] > uint64(max) {
			return 0, programmingError(errValueRange, "%d does not fit %s", h.uints[i], tag)
		}
		return int64(h.uints[i]), nil
	case hostFloat:
		f := h.floats[i]
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, programmingError(errValueRange, "%v does not fit %s", f, tag)
		}
		f = math.Trunc(f)
		// float64(max) rounds up for INT64, hence >=.
		if f <= float64(min) || f >= float64(max)+1 {
			return 0, programmingError(errValueRange, "%v does not fit %s", f, tag)
		}
		v = int64(f)
	case hostBool:
		if h.bools[i] {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, castError(h.goType, tag.String())
	}
	if v <= min || v > max {
		return 0, programmingError(errValueRange, "%d does not fit %s", v, tag)
	}
	return v, nil
}

func unsignedAt(h hostVector, i int, tag TypeTag) (uint64, error) {
	switch h.kind {
	case hostUnsigned:
		return h.uints[i], nil
	case hostSigned:
		if h.ints[i] < 0 {
			return 0, programmingError(errValueRange, "%d does not fit %s", h.ints[i], tag)
		}
		return uint64(h.ints[i]), nil
	case hostFloat:
		f := math.Trunc(h.floats[i])
		if math.IsNaN(f) || f < 0 || f >= math.MaxUint64 {
			return 0, programmingError(errValueRange, "%v does not fit %s", h.floats[i], tag)
		}
		return uint64(f), nil
	case hostBool:
		if h.bools[i] {
			return 1, nil
		}
		return 0, nil
	}
	return 0, castError(h.goType, tag.String())
}

func bigAt(h hostVector, i int, tag TypeTag) (*big.Int, error) {
	switch h.kind {
	case hostBigInt:
		if h.bigs[i] == nil {
			return nil, programmingError(errValueRange, "nil %s", h.goType)
		}
		return h.bigs[i], nil
	case hostSigned:
		return big.NewInt(h.ints[i]), nil
	case hostUnsigned:
		return new(big.Int).SetUint64(h.uints[i]), nil
	}
	return nil, castError(h.goType, tag.String())
}

// floatAt returns element i as a float64. NaN is the engine's null and is rejected.
func floatAt(h hostVector, i int, tag TypeTag) (float64, error) {
	var f float64
	switch h.kind {
	case hostFloat:
		f = h.floats[i]
	case hostSigned:
		f = float64(h.ints[i])
	case hostUnsigned:
		f = float64(h.uints[i])
	case hostBool:
		if h.bools[i] {
			f = 1
		}
	default:
		return 0, castError(h.goType, tag.String())
	}
	if math.IsNaN(f) {
		return 0, programmingError(errValueRange, "NaN is the null value of %s", tag)
	}
	return f, nil
}
