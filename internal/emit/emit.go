// Package emit describes the native code emission capability the code
// generator drives. The generator and the primitives only ever talk to an
// Emitter; internal/vm provides the concrete one.
package emit

import (
	"github.com/funvibe/tiervm/internal/layout"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/typesystem"
)

// Op is a raw machine operation on unboxed operands. Raw operations trust
// their operands' representation and perform no checks.
type Op uint8

const (
	IAdd   Op = iota // int, int -> int
	ISub             // int, int -> int
	IMul             // int, int -> int
	INeg             // int -> int
	ICmpLt           // int, int -> bool
	ICmpEq           // int, int -> bool
	BCmpEq           // bool, bool -> bool
	BNot             // bool -> bool
)

var opNames = [...]string{
	IAdd:   "IADD",
	ISub:   "ISUB",
	IMul:   "IMUL",
	INeg:   "INEG",
	ICmpLt: "ICMPLT",
	ICmpEq: "ICMPEQ",
	BCmpEq: "BCMPEQ",
	BNot:   "BNOT",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "OP?"
}

// Adaptation converts one operand between representations.
type Adaptation uint8

const (
	BoxInt    Adaptation = iota // int -> reference
	UnboxInt                    // reference -> int, checked
	BoxBool                     // bool -> reference
	UnboxBool                   // reference -> bool, checked
)

func (a Adaptation) String() string {
	switch a {
	case BoxInt:
		return "BOX_INT"
	case UnboxInt:
		return "UNBOX_INT"
	case BoxBool:
		return "BOX_BOOL"
	case UnboxBool:
		return "UNBOX_BOOL"
	default:
		return "ADAPT?"
	}
}

// Label is a branch target allocated by NewLabel and placed by Mark.
type Label int

// Helper is a boxed implementation of an operation, called when operands
// stay references.
type Helper interface {
	Name() string
	Apply(args ...object.Object) (object.Object, error)
}

// Compiled is the invocable product of an emission.
type Compiled interface {
	Run(args ...object.Object) (object.Object, error)
}

// Emitter accepts a linear sequence of typed emit operations. Operands are
// passed on an implicit stack; depth 0 is the top.
type Emitter interface {
	LoadInt(n int64)
	LoadConst(v object.Object)
	LoadSlot(slot int, c typesystem.Category)
	StoreSlot(slot int, c typesystem.Category)

	// GuardInt checks that the boxed argument in slot is an integer and
	// unboxes it in place. Failure abandons the compiled call before any
	// side effect so the caller can fall back to interpretation.
	GuardInt(slot int)

	NewLabel() Label
	Mark(l Label)
	Jump(l Label)
	JumpIfFalse(l Label)

	Call(callee object.Callable, argc int)
	CallHelper(h Helper, argc int)
	Raw(op Op)

	// Adapt converts the operand at depth. A failed unbox raises a
	// RuntimeTypeError attributed to op.
	Adapt(a Adaptation, depth int, op string)
	GetField(site *layout.Site)
	SetField(site *layout.Site)

	Pop()
	Dup()
	Return(c typesystem.Category)

	Finish() (Compiled, error)
}
