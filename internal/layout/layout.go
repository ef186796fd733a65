// Package layout implements fixed-shape objects whose field set is owned by a
// shared, redefinable Definition.
//
// A Definition publishes immutable Layout snapshots. Every Layout carries a
// Guard that is invalidated exactly once, when the layout stops being the
// definition's current one. Access sites cache (layout, index) pairs and
// only trust them while the guard is valid; instances lazily migrate their
// stored values to the current layout the next time they are touched.
package layout

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/object"
)

// Guard is a one-way valid -> invalid flag.
type Guard struct {
	invalid atomic.Bool
}

// Valid reports whether the layout protected by the guard is still current.
func (g *Guard) Valid() bool {
	return !g.invalid.Load()
}

// invalidate flips the guard. It returns false if it was already invalid.
func (g *Guard) invalidate() bool {
	return g.invalid.CompareAndSwap(false, true)
}

// Layout is an immutable snapshot of a definition's field names.
type Layout struct {
	names   []string
	index   map[string]int
	guard   *Guard
	version uint64
}

func newLayout(definition string, names []string, version uint64) (*Layout, error) {
	l := &Layout{
		names:   append([]string(nil), names...),
		index:   make(map[string]int, len(names)),
		guard:   &Guard{},
		version: version,
	}
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%s: empty field name at position %d", definition, i)
		}
		if _, dup := l.index[name]; dup {
			return nil, fmt.Errorf("%s: duplicate field %q", definition, name)
		}
		l.index[name] = i
	}
	return l, nil
}

// FieldNames returns a copy of the ordered field names.
func (l *Layout) FieldNames() []string {
	return append([]string(nil), l.names...)
}

// Index returns the position of name in the layout.
func (l *Layout) Index(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}

func (l *Layout) Len() int        { return len(l.names) }
func (l *Layout) Guard() *Guard   { return l.guard }
func (l *Layout) Version() uint64 { return l.version }

func (l *Layout) String() string {
	return fmt.Sprintf("v%d[%s]", l.version, strings.Join(l.names, ", "))
}

// Definition is the shared, mutable schema of a family of objects.
type Definition struct {
	name string

	// mu serialises layout replacement and fast-path construction.
	mu      sync.Mutex
	current atomic.Pointer[Layout]
	version uint64
}

// NewDefinition creates a definition whose first layout holds fields.
func NewDefinition(name string, fields ...string) (*Definition, error) {
	d := &Definition{name: name}
	l, err := newLayout(name, fields, 0)
	if err != nil {
		return nil, err
	}
	d.current.Store(l)
	return d, nil
}

// MustNewDefinition is NewDefinition for static field lists.
func MustNewDefinition(name string, fields ...string) *Definition {
	d, err := NewDefinition(name, fields...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Definition) Name() string { return d.name }

// Layout returns the current layout without locking.
func (d *Definition) Layout() *Layout {
	return d.current.Load()
}

// SetFieldNames replaces the current layout and invalidates the previous
// layout's guard. The modification lock is held for the whole operation,
// invalidation included, so no fast path can be built against a layout that
// is being superseded.
func (d *Definition) SetFieldNames(names ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := newLayout(d.name, names, d.version+1)
	if err != nil {
		return err
	}
	d.version++
	prev := d.current.Load()
	d.current.Store(next)
	prev.guard.invalidate()
	return nil
}

// Resolve reads the current layout and the index of field under the
// modification lock. The returned layout's guard protects the index.
func (d *Definition) Resolve(field string) (*Layout, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	l := d.current.Load()
	idx, ok := l.Index(field)
	if !ok {
		return nil, -1, diagnostics.NewUnknownFieldError(d.name, field)
	}
	return l, idx, nil
}

// New creates an instance with every field unset.
func (d *Definition) New() *Object {
	o := &Object{def: d}
	o.data.Store(newFieldData(d.Layout()))
	return o
}

// Arity and Invoke make a definition callable: calling it with no arguments
// instantiates it.
func (d *Definition) Arity() int { return 0 }

func (d *Definition) Invoke(args ...object.Object) (object.Object, error) {
	if len(args) != 0 {
		return nil, diagnostics.NewArityError(d.name, 0, len(args))
	}
	return d.New(), nil
}
