// Package primitive defines the two-part protocol every builtin operation
// implements: interpreted semantics (Apply) and specialized code generation
// over the operand value categories (Infer/Generate).
package primitive

import (
	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/emit"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/typesystem"
)

// Primitive is a builtin operation with a fixed arity.
type Primitive interface {
	// Name is the stable identifying name of the operation.
	Name() string
	Arity() int

	// Apply checks operand types dynamically and computes the result.
	Apply(args ...object.Object) (object.Object, error)

	// Infer reports the category Generate will produce for the operand
	// categories. It never fails; unsupported combinations report
	// Reference and are rejected by Generate.
	Infer(operands []typesystem.Category) typesystem.Category

	// Generate emits the code shape for the operand categories. The operands
	// are already on the emitter's stack, first operand deepest.
	Generate(em emit.Emitter, operands []typesystem.Category) (typesystem.Category, error)
}

// shape is one cell of the operand category matrix of a binary operation.
type shape uint8

const (
	shapeUnsupported shape = iota
	shapeRefRef
	shapeIntInt
	shapeRefInt
	shapeIntRef
	shapeBoolBool
	shapeBoolRef
	shapeRefBool
	shapeBoolInt
	shapeIntBool
)

func shapeOf(a, b typesystem.Category) shape {
	switch a {
	case typesystem.Reference:
		switch b {
		case typesystem.Reference:
			return shapeRefRef
		case typesystem.Int:
			return shapeRefInt
		case typesystem.Boolean:
			return shapeRefBool
		}
	case typesystem.Int:
		switch b {
		case typesystem.Reference:
			return shapeIntRef
		case typesystem.Int:
			return shapeIntInt
		case typesystem.Boolean:
			return shapeIntBool
		}
	case typesystem.Boolean:
		switch b {
		case typesystem.Reference:
			return shapeBoolRef
		case typesystem.Int:
			return shapeBoolInt
		case typesystem.Boolean:
			return shapeBoolBool
		}
	}
	return shapeUnsupported
}

func unsupported(p Primitive, operands []typesystem.Category) error {
	return diagnostics.NewGeneratorInternalError(p.Name(), "unsupported operand categories", operands...)
}

func arityMismatch(p Primitive, operands []typesystem.Category) error {
	return diagnostics.NewGeneratorInternalError(p.Name(), "wrong number of operands", operands...)
}

func expectInt(op string, v object.Object) (int64, error) {
	n, ok := v.(*object.Integer)
	if !ok {
		return 0, diagnostics.NewRuntimeTypeError(op, "integer", object.TypeName(v))
	}
	return n.Value, nil
}

func expectBool(op string, v object.Object) (bool, error) {
	b, ok := v.(*object.Boolean)
	if !ok {
		return false, diagnostics.NewRuntimeTypeError(op, "boolean", object.TypeName(v))
	}
	return b.Value, nil
}

func checkArgs(p Primitive, args []object.Object) error {
	if len(args) != p.Arity() {
		return diagnostics.NewArityError(p.Name(), p.Arity(), len(args))
	}
	return nil
}

// boxAll adapts every unboxed operand to a reference, leaving the stack
// ready for a boxed helper call.
func boxAll(em emit.Emitter, name string, operands []typesystem.Category) {
	for i, c := range operands {
		depth := len(operands) - 1 - i
		switch c {
		case typesystem.Int:
			em.Adapt(emit.BoxInt, depth, name)
		case typesystem.Boolean:
			em.Adapt(emit.BoxBool, depth, name)
		}
	}
}
