package code

import (
	"fmt"

	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/object"
)

// Lower flattens body into abstract code. Slots must already be assigned;
// frameSize is the number of slots they use. Nested sub-expressions that
// need control flow or calls are computed into temporaries appended after
// the assigned slots.
func Lower(name string, params []*ast.Variable, body ast.Expression, frameSize int) (*Code, error) {
	l := &lowerer{
		code:  &Code{Name: name, Params: params, FrameSize: frameSize},
		temps: make(map[*ast.Variable]bool),
	}
	op, err := l.operand(body)
	if err != nil {
		return nil, err
	}
	l.emit(Return{Value: op})
	return l.code, nil
}

type lowerer struct {
	code  *Code
	temps map[*ast.Variable]bool
}

func (l *lowerer) emit(in Instruction) int {
	l.code.Instructions = append(l.code.Instructions, in)
	return len(l.code.Instructions) - 1
}

func (l *lowerer) here() int { return len(l.code.Instructions) }

func (l *lowerer) patch(at, target int) {
	switch in := l.code.Instructions[at].(type) {
	case Jump:
		in.Target = target
		l.code.Instructions[at] = in
	case JumpIfFalse:
		in.Target = target
		l.code.Instructions[at] = in
	}
}

func (l *lowerer) temp() *ast.Variable {
	v := ast.NewVariable(fmt.Sprintf("$t%d", len(l.code.Temps)))
	v.Index = l.code.FrameSize
	l.code.FrameSize++
	l.code.Temps = append(l.code.Temps, v)
	l.temps[v] = true
	return v
}

// stable reports whether op yields the same value no matter what runs
// between its creation and its use: constants and write-once temporaries.
func (l *lowerer) stable(op Operand) bool {
	switch o := op.(type) {
	case ConstOperand:
		return true
	case VarOperand:
		return l.temps[o.Var]
	default:
		return false
	}
}

// simple reports whether e lowers to an operand without emitting code.
func simple(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.Const, *ast.Var:
		return true
	case *ast.Primitive1:
		return simple(n.Arg)
	case *ast.Primitive2:
		return simple(n.Left) && simple(n.Right)
	default:
		return false
	}
}

// operand lowers e to an operand, emitting whatever instructions must run
// first.
func (l *lowerer) operand(e ast.Expression) (Operand, error) {
	switch n := e.(type) {
	case *ast.Const:
		return ConstOperand{Value: n.Value}, nil
	case *ast.Var:
		return VarOperand{Var: n.Variable}, nil
	case *ast.Primitive1:
		args, err := l.operands([]ast.Expression{n.Arg})
		if err != nil {
			return nil, err
		}
		return PrimOperand{Prim: n.Prim, Args: args}, nil
	case *ast.Primitive2:
		args, err := l.operands([]ast.Expression{n.Left, n.Right})
		if err != nil {
			return nil, err
		}
		return PrimOperand{Prim: n.Prim, Args: args}, nil
	}
	if err := l.value(e); err != nil {
		return nil, err
	}
	t := l.temp()
	l.emit(Store{Var: t})
	return VarOperand{Var: t}, nil
}

// operands lowers call and primitive arguments left to right. An argument
// that precedes one emitting code is computed into a temporary first, so
// reads and errors keep their left-to-right order.
func (l *lowerer) operands(args []ast.Expression) ([]Operand, error) {
	last := -1
	for i, a := range args {
		if !simple(a) {
			last = i
		}
	}
	ops := make([]Operand, len(args))
	for i, a := range args {
		op, err := l.operand(a)
		if err != nil {
			return nil, err
		}
		if i < last && !l.stable(op) {
			t := l.temp()
			l.emit(Load{Value: op})
			l.emit(Store{Var: t})
			op = VarOperand{Var: t}
		}
		ops[i] = op
	}
	return ops, nil
}

// value lowers e so that its result ends up in the accumulator.
func (l *lowerer) value(e ast.Expression) error {
	switch n := e.(type) {
	case *ast.Const, *ast.Var, *ast.Primitive1, *ast.Primitive2:
		op, err := l.operand(n)
		if err != nil {
			return err
		}
		l.emit(Load{Value: op})
		return nil

	case *ast.If:
		cond, err := l.operand(n.Cond)
		if err != nil {
			return err
		}
		branch := l.emit(JumpIfFalse{Cond: cond})
		if err := l.value(n.Then); err != nil {
			return err
		}
		exit := l.emit(Jump{})
		l.patch(branch, l.here())
		if err := l.value(n.Else); err != nil {
			return err
		}
		l.patch(exit, l.here())
		return nil

	case *ast.Let:
		if err := l.value(n.Init); err != nil {
			return err
		}
		l.emit(Store{Var: n.Variable})
		return l.value(n.Body)

	case *ast.SetVar:
		if err := l.value(n.Value); err != nil {
			return err
		}
		l.emit(Store{Var: n.Variable})
		return nil

	case *ast.Prog:
		if len(n.Body) == 0 {
			l.emit(Load{Value: ConstOperand{Value: object.NIL}})
			return nil
		}
		for _, s := range n.Body {
			if err := l.value(s); err != nil {
				return err
			}
		}
		return nil

	case *ast.Ret:
		op, err := l.operand(n.Value)
		if err != nil {
			return err
		}
		l.emit(Return{Value: op})
		return nil

	case *ast.Call:
		args, err := l.operands(n.Args)
		if err != nil {
			return err
		}
		l.emit(Call{Callee: n.Callee, Args: args})
		return nil

	default:
		return fmt.Errorf("cannot lower %T", e)
	}
}
