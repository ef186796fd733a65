package object

import (
	"fmt"
	"strconv"
)

// Integer
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Hash() uint32 {
	return uint32(i.Value ^ (i.Value >> 32))
}

// Boolean
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }
func (b *Boolean) Hash() uint32 {
	if b.Value {
		return 1
	}
	return 0
}

// String
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return strconv.Quote(s.Value) }
func (s *String) Hash() uint32     { return hashString(s.Value) }

// Nil
type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "Nil" }
func (n *Nil) Hash() uint32     { return 0 }

// Unset marks an object field that has never been written, including fields
// added to a definition after the instance was created.
type Unset struct{}

func (u *Unset) Type() ObjectType { return UNSET_OBJ }
func (u *Unset) Inspect() string  { return "<unset>" }
func (u *Unset) Hash() uint32     { return 0 }

// Cons is an immutable pair.
type Cons struct {
	Car Object
	Cdr Object
}

func (c *Cons) Type() ObjectType { return CONS_OBJ }
func (c *Cons) Inspect() string {
	return "(" + c.Car.Inspect() + " . " + c.Cdr.Inspect() + ")"
}
func (c *Cons) Hash() uint32 {
	return c.Car.Hash()*31 + c.Cdr.Hash()
}

// ReturnValue wraps a value that is being returned prematurely
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }
func (rv *ReturnValue) Hash() uint32     { return rv.Value.Hash() }

var (
	NIL   = &Nil{}
	UNSET = &Unset{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// NativeBool returns the shared Boolean object for b.
func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// small integers are boxed very often by compiled code returning to the
// interpreter, so they are shared.
const (
	smallIntMin = -128
	smallIntMax = 1023
)

var smallInts = func() []*Integer {
	ints := make([]*Integer, smallIntMax-smallIntMin+1)
	for i := range ints {
		ints[i] = &Integer{Value: int64(i + smallIntMin)}
	}
	return ints
}()

// NewInteger boxes v.
func NewInteger(v int64) *Integer {
	if v >= smallIntMin && v <= smallIntMax {
		return smallInts[v-smallIntMin]
	}
	return &Integer{Value: v}
}

// NewString boxes s.
func NewString(s string) *String {
	return &String{Value: s}
}
