package monetdbe

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

// nativeColumn reads a monetdbe_column_<type> struct in engine memory.
type nativeColumn struct {
	ptr   uintptr
	data  uintptr
	name  string
	rows  int
	desc  TypeDescriptor
	null  []byte
	fnPtr uintptr
}

func newNativeColumn(ptr uintptr, rows int) (*nativeColumn, error) {
	c := (*cColumn)(unsafe.Pointer(ptr))
	tag, err := tagFromNative(c.typ)
	if err != nil {
		return nil, err
	}
	desc, err := Describe(tag)
	if err != nil {
		return nil, err
	}

	col := &nativeColumn{
		ptr:  ptr,
		data: c.data,
		name: string(goBytes(c.name)),
		rows: rows,
		desc: desc,
	}

	// The typed struct continues with: ctype null_value; double scale; int (*is_null)(ctype *).
	nullOffset := cColumnNullValueOffset
	scaleOffset := alignUp(nullOffset+uintptr(desc.Size), 8)
	col.null = unsafe.Slice((*byte)(unsafe.Pointer(ptr+nullOffset)), desc.Size)
	col.fnPtr = *(*uintptr)(unsafe.Pointer(ptr + scaleOffset + 8))
	return col, nil
}

func alignUp(n uintptr, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

func (c *nativeColumn) Name() string {
	return c.name
}

func (c *nativeColumn) Type() TypeTag {
	return c.desc.Tag
}

func (c *nativeColumn) Len() int {
	return c.rows
}

func (c *nativeColumn) slot(row int) uintptr {
	return c.data + uintptr(row*c.desc.Size)
}

func (c *nativeColumn) IsNull(row int) bool {
	if c.fnPtr != 0 {
		r1, _, _ := purego.SyscallN(c.fnPtr, c.slot(row))
		return int32(r1) != 0
	}

	switch c.desc.Tag {
	case TYPE_STR:
		return *(*uintptr)(unsafe.Pointer(c.slot(row))) == 0
	case TYPE_BLOB:
		return (*cBlob)(unsafe.Pointer(c.slot(row))).data == 0
	}
	return string(c.Cell(row)) == string(c.null)
}

func (c *nativeColumn) Data() []byte {
	if !c.desc.Fixed() || c.rows == 0 || c.data == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(c.data)), c.rows*c.desc.Size)
}

func (c *nativeColumn) Cell(row int) []byte {
	switch c.desc.Tag {
	case TYPE_STR:
		return goBytes(*(*uintptr)(unsafe.Pointer(c.slot(row))))
	case TYPE_BLOB:
		b := (*cBlob)(unsafe.Pointer(c.slot(row)))
		if b.data == 0 {
			return nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(b.data)), int(b.size))
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(c.slot(row))), c.desc.Size)
}
