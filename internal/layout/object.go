package layout

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/object"
)

// fieldData is an immutable snapshot of an instance's stored values, labelled
// with the layout it was laid out for. Integers live unboxed in ints; every
// other value lives in refs.
type fieldData struct {
	layout  *Layout
	refs    []object.Object
	ints    []int64
	unboxed []bool
}

func newFieldData(l *Layout) *fieldData {
	fd := &fieldData{
		layout:  l,
		refs:    make([]object.Object, l.Len()),
		ints:    make([]int64, l.Len()),
		unboxed: make([]bool, l.Len()),
	}
	for i := range fd.refs {
		fd.refs[i] = object.UNSET
	}
	return fd
}

func (fd *fieldData) value(i int) object.Object {
	if fd.unboxed[i] {
		return object.NewInteger(fd.ints[i])
	}
	return fd.refs[i]
}

func (fd *fieldData) clone() *fieldData {
	return &fieldData{
		layout:  fd.layout,
		refs:    append([]object.Object(nil), fd.refs...),
		ints:    append([]int64(nil), fd.ints...),
		unboxed: append([]bool(nil), fd.unboxed...),
	}
}

func (fd *fieldData) with(i int, v object.Object) *fieldData {
	next := fd.clone()
	next.put(i, v)
	return next
}

func (fd *fieldData) put(i int, v object.Object) {
	if n, ok := v.(*object.Integer); ok {
		fd.refs[i] = nil
		fd.ints[i] = n.Value
		fd.unboxed[i] = true
		return
	}
	fd.refs[i] = v
	fd.ints[i] = 0
	fd.unboxed[i] = false
}

// reconcile migrates old to the layout to, matching fields by name. Fields
// missing from to are dropped; new fields start unset. Reconciling to the
// layout old already has returns old itself.
func reconcile(old *fieldData, to *Layout) *fieldData {
	if old.layout == to {
		return old
	}
	next := newFieldData(to)
	for i, name := range to.names {
		j, ok := old.layout.Index(name)
		if !ok {
			continue
		}
		next.refs[i] = old.refs[j]
		next.ints[i] = old.ints[j]
		next.unboxed[i] = old.unboxed[j]
	}
	return next
}

// Object is an instance of a Definition. It refers to the definition, not to
// a particular layout.
type Object struct {
	def *Definition

	// mu serialises writers and reconciliation; readers never take it while
	// the stored data matches the current layout.
	mu   sync.Mutex
	data atomic.Pointer[fieldData]
}

func (o *Object) Type() object.ObjectType { return object.FIXED_OBJ }
func (o *Object) Hash() uint32 {
	var h uint32
	for _, c := range o.def.name {
		h = h*31 + uint32(c)
	}
	return h
}

func (o *Object) Inspect() string {
	d := o.snapshot()
	var sb strings.Builder
	sb.WriteString(o.def.name)
	sb.WriteString("{")
	for i, name := range d.layout.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(d.value(i).Inspect())
	}
	sb.WriteString("}")
	return sb.String()
}

func (o *Object) Definition() *Definition { return o.def }

// snapshot returns the instance data laid out for the definition's current
// layout, reconciling first if the instance has fallen behind.
func (o *Object) snapshot() *fieldData {
	d := o.data.Load()
	if d.layout == o.def.Layout() {
		return d
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reconcileLocked()
}

func (o *Object) reconcileLocked() *fieldData {
	d := o.data.Load()
	if cur := o.def.Layout(); d.layout != cur {
		d = reconcile(d, cur)
		o.data.Store(d)
	}
	return d
}

// Get reads a field by name.
func (o *Object) Get(name string) (object.Object, error) {
	d := o.snapshot()
	idx, ok := d.layout.Index(name)
	if !ok {
		return nil, diagnostics.NewUnknownFieldError(o.def.name, name)
	}
	return d.value(idx), nil
}

// Set writes a field by name.
func (o *Object) Set(name string, v object.Object) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	d := o.reconcileLocked()
	idx, ok := d.layout.Index(name)
	if !ok {
		return diagnostics.NewUnknownFieldError(o.def.name, name)
	}
	o.data.Store(d.with(idx, v))
	return nil
}

// FieldNames returns the names of the current layout.
func (o *Object) FieldNames() []string {
	return o.snapshot().layout.FieldNames()
}

// getAt reads slot idx if the instance can be brought to layout l.
func (o *Object) getAt(l *Layout, idx int) (object.Object, bool) {
	d := o.data.Load()
	if d.layout != l {
		d = o.snapshot()
		if d.layout != l {
			return nil, false
		}
	}
	return d.value(idx), true
}

// setAt writes slot idx if the instance can be brought to layout l.
func (o *Object) setAt(l *Layout, idx int, v object.Object) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	d := o.reconcileLocked()
	if d.layout != l {
		return false
	}
	o.data.Store(d.with(idx, v))
	return true
}
