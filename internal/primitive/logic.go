package primitive

import (
	"github.com/funvibe/tiervm/internal/emit"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/typesystem"
)

// equal accepts every operand category: unboxed pairs of the same kind use a
// raw comparison, everything else is boxed and compared structurally.
type equal struct{}

func (equal) Name() string { return "eq" }
func (equal) Arity() int   { return 2 }

func (p equal) Apply(args ...object.Object) (object.Object, error) {
	if err := checkArgs(p, args); err != nil {
		return nil, err
	}
	return object.NativeBool(object.ObjectsEqual(args[0], args[1])), nil
}

func (equal) Infer(operands []typesystem.Category) typesystem.Category {
	if len(operands) != 2 {
		return typesystem.Reference
	}
	switch shapeOf(operands[0], operands[1]) {
	case shapeIntInt, shapeBoolBool:
		return typesystem.Boolean
	default:
		return typesystem.Reference
	}
}

func (p equal) Generate(em emit.Emitter, operands []typesystem.Category) (typesystem.Category, error) {
	if len(operands) != 2 {
		return 0, arityMismatch(p, operands)
	}
	switch shapeOf(operands[0], operands[1]) {
	case shapeIntInt:
		em.Raw(emit.ICmpEq)
		return typesystem.Boolean, nil
	case shapeBoolBool:
		em.Raw(emit.BCmpEq)
		return typesystem.Boolean, nil
	case shapeRefRef, shapeRefInt, shapeIntRef, shapeBoolRef, shapeRefBool, shapeBoolInt, shapeIntBool:
		boxAll(em, p.Name(), operands)
		em.CallHelper(p, 2)
		return typesystem.Reference, nil
	default:
		return 0, unsupported(p, operands)
	}
}

// not is boolean negation. Integers are rejected at generation time.
type not struct{}

func (not) Name() string { return "not" }
func (not) Arity() int   { return 1 }

func (p not) Apply(args ...object.Object) (object.Object, error) {
	if err := checkArgs(p, args); err != nil {
		return nil, err
	}
	b, err := expectBool(p.Name(), args[0])
	if err != nil {
		return nil, err
	}
	return object.NativeBool(!b), nil
}

func (not) Infer(operands []typesystem.Category) typesystem.Category {
	if len(operands) == 1 && operands[0] != typesystem.Int {
		return typesystem.Boolean
	}
	return typesystem.Reference
}

func (p not) Generate(em emit.Emitter, operands []typesystem.Category) (typesystem.Category, error) {
	if len(operands) != 1 {
		return 0, arityMismatch(p, operands)
	}
	switch operands[0] {
	case typesystem.Boolean:
		em.Raw(emit.BNot)
		return typesystem.Boolean, nil
	case typesystem.Reference:
		em.Adapt(emit.UnboxBool, 0, p.Name())
		em.Raw(emit.BNot)
		return typesystem.Boolean, nil
	default:
		return 0, unsupported(p, operands)
	}
}

var (
	Eq  Primitive = equal{}
	Not Primitive = not{}
)
