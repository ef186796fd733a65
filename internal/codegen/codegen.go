// Package codegen turns an analyzed function body into specialized code
// through an emit.Emitter. Every node leaves its value in the
// representation its annotation names; primitives pick their own code
// shape for their operands' categories.
package codegen

import (
	"fmt"

	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/emit"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/typesystem"
)

// Generate emits code for body in one pass and finishes the emitter. cats
// holds the analyzer's variable categories; INT parameters are checked on
// entry.
func Generate(params []*ast.Variable, body ast.Expression, cats map[*ast.Variable]typesystem.Category, em emit.Emitter) (emit.Compiled, error) {
	g := &generator{em: em, cats: cats}

	for _, p := range params {
		if g.category(p) == typesystem.Int {
			em.GuardInt(p.Index)
		}
	}

	if err := g.gen(body); err != nil {
		return nil, err
	}
	g.ret(body.Category())

	return em.Finish()
}

type generator struct {
	em   emit.Emitter
	cats map[*ast.Variable]typesystem.Category
}

func (g *generator) category(v *ast.Variable) typesystem.Category {
	if c, ok := g.cats[v]; ok {
		return c
	}
	return typesystem.Reference
}

// ret returns the value on top of the stack. Booleans leave compiled code
// boxed.
func (g *generator) ret(c typesystem.Category) {
	if c == typesystem.Boolean {
		g.em.Adapt(emit.BoxBool, 0, "return")
		c = typesystem.Reference
	}
	g.em.Return(c)
}

// coerce converts the value on top of the stack between representations.
func (g *generator) coerce(from, to typesystem.Category, op string) error {
	if from == to {
		return nil
	}
	switch {
	case from == typesystem.Int && to == typesystem.Reference:
		g.em.Adapt(emit.BoxInt, 0, op)
	case from == typesystem.Boolean && to == typesystem.Reference:
		g.em.Adapt(emit.BoxBool, 0, op)
	case from == typesystem.Reference && to == typesystem.Int:
		g.em.Adapt(emit.UnboxInt, 0, op)
	case from == typesystem.Reference && to == typesystem.Boolean:
		g.em.Adapt(emit.UnboxBool, 0, op)
	default:
		return diagnostics.NewGeneratorInternalError(op,
			fmt.Sprintf("cannot convert %s to %s", from, to), from)
	}
	return nil
}

func (g *generator) gen(e ast.Expression) error {
	switch n := e.(type) {
	case *ast.Const:
		return g.genConst(n)

	case *ast.Var:
		g.em.LoadSlot(n.Variable.Index, g.category(n.Variable))
		return nil

	case *ast.If:
		return g.genIf(n)

	case *ast.Let:
		if err := g.gen(n.Init); err != nil {
			return err
		}
		c := g.category(n.Variable)
		if err := g.coerce(n.Init.Category(), c, n.Variable.Name); err != nil {
			return err
		}
		g.em.StoreSlot(n.Variable.Index, c)
		return g.gen(n.Body)

	case *ast.SetVar:
		if err := g.gen(n.Value); err != nil {
			return err
		}
		c := g.category(n.Variable)
		if err := g.coerce(n.Value.Category(), c, n.Variable.Name); err != nil {
			return err
		}
		g.em.Dup()
		g.em.StoreSlot(n.Variable.Index, c)
		return nil

	case *ast.Prog:
		if len(n.Body) == 0 {
			g.em.LoadConst(object.NIL)
			return nil
		}
		for i, expr := range n.Body {
			if err := g.gen(expr); err != nil {
				return err
			}
			if i < len(n.Body)-1 {
				g.em.Pop()
			}
		}
		return nil

	case *ast.Ret:
		if err := g.gen(n.Value); err != nil {
			return err
		}
		g.ret(n.Value.Category())
		return nil

	case *ast.Primitive1:
		return g.genPrimitive(n, n.Prim.Name(), n.Prim.Generate, n.Arg)

	case *ast.Primitive2:
		return g.genPrimitive(n, n.Prim.Name(), n.Prim.Generate, n.Left, n.Right)

	case *ast.Call:
		for _, arg := range n.Args {
			if err := g.gen(arg); err != nil {
				return err
			}
			if err := g.coerce(arg.Category(), typesystem.Reference, n.Callee.Name()); err != nil {
				return err
			}
		}
		g.em.Call(n.Callee, len(n.Args))
		return nil

	default:
		return diagnostics.NewGeneratorInternalError(fmt.Sprintf("%T", e), "unknown node")
	}
}

func (g *generator) genConst(n *ast.Const) error {
	if n.Category() != typesystem.Int {
		g.em.LoadConst(n.Value)
		return nil
	}
	i, ok := n.Value.(*object.Integer)
	if !ok {
		return diagnostics.NewGeneratorInternalError("const", "INT annotation on "+object.TypeName(n.Value))
	}
	g.em.LoadInt(i.Value)
	return nil
}

func (g *generator) genIf(n *ast.If) error {
	if err := g.gen(n.Cond); err != nil {
		return err
	}
	switch n.Cond.Category() {
	case typesystem.Boolean:
	case typesystem.Int:
		// Fails at run time exactly as the interpreter does.
		g.em.Adapt(emit.BoxInt, 0, "if")
		g.em.Adapt(emit.UnboxBool, 0, "if")
	default:
		g.em.Adapt(emit.UnboxBool, 0, "if")
	}

	els := g.em.NewLabel()
	end := g.em.NewLabel()
	g.em.JumpIfFalse(els)
	if err := g.gen(n.Then); err != nil {
		return err
	}
	if err := g.coerce(n.Then.Category(), n.Category(), "if"); err != nil {
		return err
	}
	g.em.Jump(end)
	g.em.Mark(els)
	if err := g.gen(n.Else); err != nil {
		return err
	}
	if err := g.coerce(n.Else.Category(), n.Category(), "if"); err != nil {
		return err
	}
	g.em.Mark(end)
	return nil
}

type generateFunc func(emit.Emitter, []typesystem.Category) (typesystem.Category, error)

func (g *generator) genPrimitive(n ast.Expression, name string, generate generateFunc, args ...ast.Expression) error {
	cats := make([]typesystem.Category, len(args))
	for i, arg := range args {
		if err := g.gen(arg); err != nil {
			return err
		}
		cats[i] = arg.Category()
	}
	got, err := generate(g.em, cats)
	if err != nil {
		return err
	}
	return g.coerce(got, n.Category(), name)
}
