package primitive

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps stable names to primitives.
type Registry struct {
	mu    sync.RWMutex
	prims map[string]Primitive
}

func NewRegistry() *Registry {
	return &Registry{prims: make(map[string]Primitive)}
}

// Register adds p under its name. Names are unique.
func (r *Registry) Register(p Primitive) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.prims[p.Name()]; exists {
		return fmt.Errorf("primitive %q already registered", p.Name())
	}
	r.prims[p.Name()] = p
	return nil
}

func (r *Registry) Lookup(name string) (Primitive, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prims[name]
	return p, ok
}

func (r *Registry) MustLookup(name string) Primitive {
	p, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("unknown primitive %q", name))
	}
	return p
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.prims))
	for name := range r.prims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterBuiltins adds the builtin operations to r.
func RegisterBuiltins(r *Registry) error {
	for _, p := range []Primitive{Add, Sub, Mul, Neg, Lt, Eq, Not, Cons, Car, Cdr} {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}

var builtins = sync.OnceValue(func() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		panic(err)
	}
	return r
})

// Builtins returns the shared registry of builtin primitives.
func Builtins() *Registry {
	return builtins()
}
