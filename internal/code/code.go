// Package code is the flat abstract-code form of a function body and the
// baseline interpreter that executes it.
package code

import (
	"strings"

	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/primitive"
)

// Operand is a value computed without control flow.
type Operand interface {
	operand()
	String() string
}

type ConstOperand struct {
	Value object.Object
}

type VarOperand struct {
	Var *ast.Variable
}

// PrimOperand applies a primitive to operands evaluated left to right.
type PrimOperand struct {
	Prim primitive.Primitive
	Args []Operand
}

func (ConstOperand) operand() {}
func (VarOperand) operand()   {}
func (PrimOperand) operand()  {}

func (o ConstOperand) String() string { return o.Value.Inspect() }
func (o VarOperand) String() string   { return o.Var.String() }
func (o PrimOperand) String() string {
	return "(" + o.Prim.Name() + " " + joinOperands(o.Args) + ")"
}

func joinOperands(ops []Operand) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}

// Instruction is one step of abstract code. Load and Call leave their
// result in the accumulator; Store copies the accumulator into a slot.
type Instruction interface {
	instruction()
}

type Load struct {
	Value Operand
}

type Store struct {
	Var *ast.Variable
}

type Jump struct {
	Target int
}

// JumpIfFalse branches when Cond evaluates to false. Cond must be a Boolean.
type JumpIfFalse struct {
	Cond   Operand
	Target int
}

type Call struct {
	Callee object.Callable
	Args   []Operand
}

type Return struct {
	Value Operand
}

func (Load) instruction()        {}
func (Store) instruction()       {}
func (Jump) instruction()        {}
func (JumpIfFalse) instruction() {}
func (Call) instruction()        {}
func (Return) instruction()      {}

// Code is the immutable abstract code of one function.
type Code struct {
	Name         string
	Params       []*ast.Variable
	Temps        []*ast.Variable // spill slots created by lowering
	Instructions []Instruction
	FrameSize    int
}

// NewFrame allocates a frame holding args in the parameter slots.
func (c *Code) NewFrame(args []object.Object) []object.Object {
	frame := make([]object.Object, c.FrameSize)
	copy(frame, args)
	for i := len(args); i < len(frame); i++ {
		frame[i] = object.NIL
	}
	return frame
}
