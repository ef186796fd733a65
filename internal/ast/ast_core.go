// Package ast is the expression model: the node types every tier consumes
// and the constructors through which trees enter the runtime.
package ast

import (
	"fmt"

	"github.com/funvibe/tiervm/internal/profile"
	"github.com/funvibe/tiervm/internal/typesystem"
)

// Expression is the base interface for all nodes.
type Expression interface {
	Accept(v Visitor)
	String() string

	// Category is the annotation written by the analyzer.
	Category() typesystem.Category
	Annotate(c typesystem.Category)
}

// Visitor dispatches on the concrete node type.
type Visitor interface {
	VisitConst(n *Const)
	VisitVar(n *Var)
	VisitIf(n *If)
	VisitLet(n *Let)
	VisitSetVar(n *SetVar)
	VisitProg(n *Prog)
	VisitRet(n *Ret)
	VisitPrimitive1(n *Primitive1)
	VisitPrimitive2(n *Primitive2)
	VisitCall(n *Call)
}

// Annotation is the per-node category slot. The analyzer rewrites it once
// per compilation; nothing else writes it.
type Annotation struct {
	category typesystem.Category
}

func (a *Annotation) Category() typesystem.Category  { return a.category }
func (a *Annotation) Annotate(c typesystem.Category) { a.category = c }

// Variable is a named frame slot. Index is assigned when the enclosing
// function body is installed; Profile accumulates the values the
// interpreted tier observes.
type Variable struct {
	Name    string
	Index   int
	Profile *profile.VariableProfile
}

// NewVariable returns an unassigned variable with an empty profile.
func NewVariable(name string) *Variable {
	return &Variable{Name: name, Index: -1, Profile: profile.NewVariableProfile()}
}

func (v *Variable) String() string {
	if v.Index < 0 {
		return v.Name
	}
	return fmt.Sprintf("%s#%d", v.Name, v.Index)
}
