package ast

import (
	"strings"

	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/primitive"
)

// Const is a literal value.
type Const struct {
	Annotation
	Value object.Object
}

func (n *Const) Accept(v Visitor) { v.VisitConst(n) }
func (n *Const) String() string   { return n.Value.Inspect() }

// Var reads a variable.
type Var struct {
	Annotation
	Variable *Variable
}

func (n *Var) Accept(v Visitor) { v.VisitVar(n) }
func (n *Var) String() string   { return n.Variable.Name }

// If evaluates Then or Else depending on Cond, which must be a Boolean.
type If struct {
	Annotation
	Cond Expression
	Then Expression
	Else Expression
}

func (n *If) Accept(v Visitor) { v.VisitIf(n) }
func (n *If) String() string {
	return "(if " + n.Cond.String() + " " + n.Then.String() + " " + n.Else.String() + ")"
}

// Let binds Variable to Init for the evaluation of Body.
type Let struct {
	Annotation
	Variable *Variable
	Init     Expression
	Body     Expression
}

func (n *Let) Accept(v Visitor) { v.VisitLet(n) }
func (n *Let) String() string {
	return "(let " + n.Variable.Name + " " + n.Init.String() + " " + n.Body.String() + ")"
}

// SetVar assigns an existing variable and yields the assigned value.
type SetVar struct {
	Annotation
	Variable *Variable
	Value    Expression
}

func (n *SetVar) Accept(v Visitor) { v.VisitSetVar(n) }
func (n *SetVar) String() string {
	return "(set! " + n.Variable.Name + " " + n.Value.String() + ")"
}

// Prog evaluates Body in order and yields the last value, or Nil when empty.
type Prog struct {
	Annotation
	Body []Expression
}

func (n *Prog) Accept(v Visitor) { v.VisitProg(n) }
func (n *Prog) String() string {
	parts := make([]string, 0, len(n.Body)+1)
	parts = append(parts, "(prog")
	for _, e := range n.Body {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, " ") + ")"
}

// Ret leaves the function with Value.
type Ret struct {
	Annotation
	Value Expression
}

func (n *Ret) Accept(v Visitor) { v.VisitRet(n) }
func (n *Ret) String() string   { return "(return " + n.Value.String() + ")" }

// Primitive1 applies a unary primitive.
type Primitive1 struct {
	Annotation
	Prim primitive.Primitive
	Arg  Expression
}

func (n *Primitive1) Accept(v Visitor) { v.VisitPrimitive1(n) }
func (n *Primitive1) String() string {
	return "(" + n.Prim.Name() + " " + n.Arg.String() + ")"
}

// Primitive2 applies a binary primitive. Left is evaluated first.
type Primitive2 struct {
	Annotation
	Prim  primitive.Primitive
	Left  Expression
	Right Expression
}

func (n *Primitive2) Accept(v Visitor) { v.VisitPrimitive2(n) }
func (n *Primitive2) String() string {
	return "(" + n.Prim.Name() + " " + n.Left.String() + " " + n.Right.String() + ")"
}

// Call invokes a callable with arguments evaluated left to right. The callee
// decides which tier runs.
type Call struct {
	Annotation
	Callee object.Callable
	Args   []Expression
}

func (n *Call) Accept(v Visitor) { v.VisitCall(n) }
func (n *Call) String() string {
	parts := make([]string, 0, len(n.Args)+1)
	parts = append(parts, "("+n.Callee.Name())
	for _, a := range n.Args {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ") + ")"
}
