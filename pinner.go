package monetdbe

import (
	"runtime"
	"unsafe"
)

// Buffers handed to the engine are Go memory. They stay pinned until the
// engine is done with them: for the duration of an append call, or until a
// prepared statement is cleaned up.

// pinBytes pins b and returns the address of its first byte, 0 if b is empty.
func pinBytes(pinner *runtime.Pinner, b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	pinner.Pin(&b[0])
	return uintptr(unsafe.Pointer(&b[0]))
}

// pinStrings builds a pinned char* array. Nil payloads become NULL pointers.
func pinStrings(pinner *runtime.Pinner, values [][]byte) uintptr {
	if len(values) == 0 {
		return 0
	}
	arr := make([]uintptr, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		s := cString(string(v))
		pinner.Pin(s)
		arr[i] = uintptr(unsafe.Pointer(s))
	}
	pinner.Pin(&arr[0])
	return uintptr(unsafe.Pointer(&arr[0]))
}

// pinBlob describes v as a monetdbe_data_blob. A nil v is a null blob with
// a NULL data pointer; an empty one points at a pinned empty buffer.
func pinBlob(pinner *runtime.Pinner, v []byte) cBlob {
	if v == nil {
		return cBlob{}
	}
	if len(v) == 0 {
		empty := cString("")
		pinner.Pin(empty)
		return cBlob{data: uintptr(unsafe.Pointer(empty))}
	}
	return cBlob{size: uintptr(len(v)), data: pinBytes(pinner, v)}
}

// pinBlobs builds a pinned monetdbe_data_blob array.
func pinBlobs(pinner *runtime.Pinner, values [][]byte) uintptr {
	if len(values) == 0 {
		return 0
	}
	arr := make([]cBlob, len(values))
	for i, v := range values {
		arr[i] = pinBlob(pinner, v)
	}
	pinner.Pin(&arr[0])
	return uintptr(unsafe.Pointer(&arr[0]))
}
