package vm

import (
	"strconv"

	"github.com/funvibe/tiervm/internal/object"
)

// ValueType identifies the representation stored in a Value.
type ValueType uint8

const (
	ValRef  ValueType = iota // boxed object in Obj
	ValInt                   // unboxed int64 in Data
	ValBool                  // unboxed bool in Data (0/1)
)

// Value is a stack-allocated tagged union. Integers and booleans stay
// unboxed; everything else is a boxed object.
type Value struct {
	Type ValueType
	Data int64
	Obj  object.Object
}

func IntVal(v int64) Value {
	return Value{Type: ValInt, Data: v}
}

func BoolVal(v bool) Value {
	var data int64
	if v {
		data = 1
	}
	return Value{Type: ValBool, Data: data}
}

func RefVal(o object.Object) Value {
	return Value{Type: ValRef, Obj: o}
}

func (v Value) AsInt() int64 { return v.Data }
func (v Value) AsBool() bool { return v.Data == 1 }
func (v Value) IsInt() bool  { return v.Type == ValInt }
func (v Value) IsBool() bool { return v.Type == ValBool }
func (v Value) IsRef() bool  { return v.Type == ValRef }

// AsObject boxes v.
func (v Value) AsObject() object.Object {
	switch v.Type {
	case ValInt:
		return object.NewInteger(v.Data)
	case ValBool:
		return object.NativeBool(v.Data == 1)
	default:
		if v.Obj == nil {
			return object.NIL
		}
		return v.Obj
	}
}

func (v Value) Inspect() string {
	switch v.Type {
	case ValInt:
		return strconv.FormatInt(v.Data, 10)
	case ValBool:
		return strconv.FormatBool(v.Data == 1)
	default:
		return v.AsObject().Inspect()
	}
}
