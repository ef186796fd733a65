package primitive

import (
	"github.com/funvibe/tiervm/internal/emit"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/typesystem"
)

// intBinary is an integer operation on two operands: add, sub, mul, lt.
type intBinary struct {
	name   string
	op     emit.Op
	result typesystem.Category // Int for arithmetic, Boolean for comparisons
	apply  func(a, b int64) object.Object
}

func (p *intBinary) Name() string { return p.name }
func (p *intBinary) Arity() int   { return 2 }

func (p *intBinary) Apply(args ...object.Object) (object.Object, error) {
	if err := checkArgs(p, args); err != nil {
		return nil, err
	}
	a, err := expectInt(p.name, args[0])
	if err != nil {
		return nil, err
	}
	b, err := expectInt(p.name, args[1])
	if err != nil {
		return nil, err
	}
	return p.apply(a, b), nil
}

func (p *intBinary) Infer(operands []typesystem.Category) typesystem.Category {
	if len(operands) != 2 {
		return typesystem.Reference
	}
	switch shapeOf(operands[0], operands[1]) {
	case shapeIntInt, shapeRefInt, shapeIntRef:
		return p.result
	default:
		return typesystem.Reference
	}
}

func (p *intBinary) Generate(em emit.Emitter, operands []typesystem.Category) (typesystem.Category, error) {
	if len(operands) != 2 {
		return 0, arityMismatch(p, operands)
	}
	switch shapeOf(operands[0], operands[1]) {
	case shapeRefRef:
		em.CallHelper(p, 2)
		return typesystem.Reference, nil
	case shapeIntInt:
		em.Raw(p.op)
		return p.result, nil
	case shapeRefInt:
		em.Adapt(emit.UnboxInt, 1, p.name)
		em.Raw(p.op)
		return p.result, nil
	case shapeIntRef:
		em.Adapt(emit.UnboxInt, 0, p.name)
		em.Raw(p.op)
		return p.result, nil
	default:
		return 0, unsupported(p, operands)
	}
}

// negate is integer negation.
type negate struct{}

func (negate) Name() string { return "neg" }
func (negate) Arity() int   { return 1 }

func (p negate) Apply(args ...object.Object) (object.Object, error) {
	if err := checkArgs(p, args); err != nil {
		return nil, err
	}
	n, err := expectInt(p.Name(), args[0])
	if err != nil {
		return nil, err
	}
	return object.NewInteger(-n), nil
}

func (negate) Infer(operands []typesystem.Category) typesystem.Category {
	if len(operands) == 1 && operands[0] == typesystem.Int {
		return typesystem.Int
	}
	return typesystem.Reference
}

func (p negate) Generate(em emit.Emitter, operands []typesystem.Category) (typesystem.Category, error) {
	if len(operands) != 1 {
		return 0, arityMismatch(p, operands)
	}
	switch operands[0] {
	case typesystem.Int:
		em.Raw(emit.INeg)
		return typesystem.Int, nil
	case typesystem.Reference:
		em.CallHelper(p, 1)
		return typesystem.Reference, nil
	default:
		return 0, unsupported(p, operands)
	}
}

var (
	Add Primitive = &intBinary{
		name: "add", op: emit.IAdd, result: typesystem.Int,
		apply: func(a, b int64) object.Object { return object.NewInteger(a + b) },
	}
	Sub Primitive = &intBinary{
		name: "sub", op: emit.ISub, result: typesystem.Int,
		apply: func(a, b int64) object.Object { return object.NewInteger(a - b) },
	}
	Mul Primitive = &intBinary{
		name: "mul", op: emit.IMul, result: typesystem.Int,
		apply: func(a, b int64) object.Object { return object.NewInteger(a * b) },
	}
	Lt Primitive = &intBinary{
		name: "lt", op: emit.ICmpLt, result: typesystem.Boolean,
		apply: func(a, b int64) object.Object { return object.NativeBool(a < b) },
	}
	Neg Primitive = negate{}
)
