//go:build !windows

package monetdbe

import (
	"runtime"

	"github.com/ebitengine/purego"
)

// Unix builds of the engine always carry 128-bit integers.
const hasInt128 = true

var defaultLibraryName = func() string {
	if runtime.GOOS == "darwin" {
		return "libmonetdbe.dylib"
	}
	return "libmonetdbe.so"
}()

func loadLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func closeLibrary(handle uintptr) {
	if handle != 0 {
		_ = purego.Dlclose(handle)
	}
}

func loadSymbol(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}
