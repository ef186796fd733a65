package ast

import (
	"github.com/funvibe/tiervm/internal/layout"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/primitive"
)

func NewConst(v object.Object) *Const { return &Const{Value: v} }

func Int(n int64) *Const         { return NewConst(object.NewInteger(n)) }
func Str(s string) *Const        { return NewConst(object.NewString(s)) }
func Bool(b bool) *Const         { return NewConst(object.NativeBool(b)) }
func Nil() *Const                { return NewConst(object.NIL) }
func Ref(v object.Object) *Const { return NewConst(v) }

func NewVar(v *Variable) *Var { return &Var{Variable: v} }

func NewIf(cond, then, els Expression) *If {
	return &If{Cond: cond, Then: then, Else: els}
}

func NewLet(v *Variable, init, body Expression) *Let {
	return &Let{Variable: v, Init: init, Body: body}
}

func NewSetVar(v *Variable, value Expression) *SetVar {
	return &SetVar{Variable: v, Value: value}
}

func NewProg(body ...Expression) *Prog { return &Prog{Body: body} }

func NewRet(value Expression) *Ret { return &Ret{Value: value} }

func Prim1(p primitive.Primitive, arg Expression) *Primitive1 {
	return &Primitive1{Prim: p, Arg: arg}
}

func Prim2(p primitive.Primitive, left, right Expression) *Primitive2 {
	return &Primitive2{Prim: p, Left: left, Right: right}
}

func NewCall(callee object.Callable, args ...Expression) *Call {
	return &Call{Callee: callee, Args: args}
}

func Call0(callee object.Callable) *Call               { return NewCall(callee) }
func Call1(callee object.Callable, a Expression) *Call { return NewCall(callee, a) }
func Call2(callee object.Callable, a, b Expression) *Call {
	return NewCall(callee, a, b)
}

// GetField reads obj.name through a field-access primitive owned by the node.
func GetField(obj Expression, name string) *Primitive1 {
	return Prim1(primitive.NewFieldGet(name), obj)
}

// SetField writes obj.name = value and yields value.
func SetField(obj Expression, name string, value Expression) *Primitive2 {
	return Prim2(primitive.NewFieldSet(name), obj, value)
}

// New instantiates a fixed-shape object of def.
func New(def *layout.Definition) *Call { return Call0(def) }
