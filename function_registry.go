package countries

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Function is a helper callable from expressions, by name or through
// call("name", ...).
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom functions keyed by name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// reservedNames are bound by every evaluator and cannot be shadowed.
var reservedNames = map[string]struct{}{
	"code":     {},
	"record":   {},
	"now":      {},
	"args":     {},
	"metadata": {},
	"call":     {},
}

// Register stores fn under name guarding against duplicates and names the
// evaluators already bind.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("countries: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("countries: function name must not be empty")
	}
	if _, reserved := reservedNames[strings.ToLower(name)]; reserved {
		return fmt.Errorf("countries: function name %q is reserved", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("countries: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Has reports whether name is registered.
func (r *FunctionRegistry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.functions[strings.ToLower(name)]
	return ok
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &FunctionRegistry{functions: maps.Clone(r.functions)}
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("countries: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("countries: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.functions))
}
