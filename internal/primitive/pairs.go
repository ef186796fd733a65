package primitive

import (
	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/emit"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/typesystem"
)

// cons builds a pair from operands of any category; compiled code always
// boxes them and calls the helper.
type cons struct{}

func (cons) Name() string { return "cons" }
func (cons) Arity() int   { return 2 }

func (p cons) Apply(args ...object.Object) (object.Object, error) {
	if err := checkArgs(p, args); err != nil {
		return nil, err
	}
	return &object.Cons{Car: args[0], Cdr: args[1]}, nil
}

func (cons) Infer([]typesystem.Category) typesystem.Category { return typesystem.Reference }

func (p cons) Generate(em emit.Emitter, operands []typesystem.Category) (typesystem.Category, error) {
	if len(operands) != 2 {
		return 0, arityMismatch(p, operands)
	}
	boxAll(em, p.Name(), operands)
	em.CallHelper(p, 2)
	return typesystem.Reference, nil
}

// accessor is car or cdr. Only reference operands can hold a pair.
type accessor struct {
	name string
	get  func(*object.Cons) object.Object
}

func (p *accessor) Name() string { return p.name }
func (p *accessor) Arity() int   { return 1 }

func (p *accessor) Apply(args ...object.Object) (object.Object, error) {
	if err := checkArgs(p, args); err != nil {
		return nil, err
	}
	c, ok := args[0].(*object.Cons)
	if !ok {
		return nil, diagnostics.NewRuntimeTypeError(p.name, "cons", object.TypeName(args[0]))
	}
	return p.get(c), nil
}

func (p *accessor) Infer([]typesystem.Category) typesystem.Category { return typesystem.Reference }

func (p *accessor) Generate(em emit.Emitter, operands []typesystem.Category) (typesystem.Category, error) {
	if len(operands) != 1 {
		return 0, arityMismatch(p, operands)
	}
	if operands[0] != typesystem.Reference {
		return 0, unsupported(p, operands)
	}
	em.CallHelper(p, 1)
	return typesystem.Reference, nil
}

var (
	Cons Primitive = cons{}
	Car  Primitive = &accessor{name: "car", get: func(c *object.Cons) object.Object { return c.Car }}
	Cdr  Primitive = &accessor{name: "cdr", get: func(c *object.Cons) object.Object { return c.Cdr }}
)
