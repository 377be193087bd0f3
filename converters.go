package monetdbe

import (
	"strings"
	"sync"
)

// PostProcessor rewrites a decoded value before it is handed to the caller.
type PostProcessor func(v any) any

// TextFactory wraps decoded strings, e.g. to produce a custom text type.
type TextFactory func(s string) any

// floatHooks is the priority order in which FLOAT and DOUBLE cells look up a
// registered post-processor.
var floatHooks = []string{"FLOAT", "DOUBLE"}

// ConverterRegistry holds named post-processors. Names are case-insensitive.
type ConverterRegistry struct {
	mu    sync.RWMutex
	hooks map[string]PostProcessor
}

// NewConverterRegistry returns an empty registry.
func NewConverterRegistry() *ConverterRegistry {
	return &ConverterRegistry{hooks: map[string]PostProcessor{}}
}

// Register installs fn under name, replacing any previous hook.
func (r *ConverterRegistry) Register(name string, fn PostProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[strings.ToUpper(name)] = fn
}

// Unregister removes the hook registered under name.
func (r *ConverterRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hooks, strings.ToUpper(name))
}

// first returns the hook of the first name that has one.
func (r *ConverterRegistry) first(names []string) (PostProcessor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range names {
		if fn, ok := r.hooks[name]; ok && fn != nil {
			return fn, true
		}
	}
	return nil, false
}

// converters is consulted by the FLOAT and DOUBLE descriptors.
var converters = NewConverterRegistry()

// RegisterConverter installs a post-processor in the process-wide registry.
// FLOAT and DOUBLE columns pass their decoded value to the hook registered
// under "FLOAT" or, if absent, "DOUBLE".
func RegisterConverter(name string, fn PostProcessor) {
	converters.Register(name, fn)
}

// UnregisterConverter removes a post-processor from the process-wide registry.
func UnregisterConverter(name string) {
	converters.Unregister(name)
}
