// Package evaluator is the tree-walking tier: it executes expression trees
// directly and serves as the reference semantics for the other tiers. It
// does not record profiles.
package evaluator

import (
	"errors"
	"fmt"

	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/object"
)

// maxEvalDepth is the maximum nesting depth of Eval calls within one
// function body.
const maxEvalDepth = 10000

var ErrDepthExceeded = errors.New("maximum evaluation depth exceeded")

type Evaluator struct {
	evalDepth int
}

func New() *Evaluator {
	return &Evaluator{}
}

// Run evaluates a function body against frame and unwraps an early return.
func (e *Evaluator) Run(body ast.Expression, frame []object.Object) (object.Object, error) {
	v, err := e.Eval(body, frame)
	if err != nil {
		return nil, err
	}
	return unwrapReturnValue(v), nil
}

// Eval evaluates node. A Ret anywhere below yields a *object.ReturnValue
// that every enclosing node passes through unchanged.
func (e *Evaluator) Eval(node ast.Expression, frame []object.Object) (object.Object, error) {
	e.evalDepth++
	defer func() { e.evalDepth-- }()
	if e.evalDepth > maxEvalDepth {
		return nil, ErrDepthExceeded
	}
	return e.evalCore(node, frame)
}

func (e *Evaluator) evalCore(node ast.Expression, frame []object.Object) (object.Object, error) {
	switch node := node.(type) {
	case *ast.Const:
		return node.Value, nil

	case *ast.Var:
		return frame[node.Variable.Index], nil

	case *ast.If:
		return e.evalIf(node, frame)

	case *ast.Let:
		init, err := e.Eval(node.Init, frame)
		if err != nil || isReturn(init) {
			return init, err
		}
		frame[node.Variable.Index] = init
		return e.Eval(node.Body, frame)

	case *ast.SetVar:
		v, err := e.Eval(node.Value, frame)
		if err != nil || isReturn(v) {
			return v, err
		}
		frame[node.Variable.Index] = v
		return v, nil

	case *ast.Prog:
		var result object.Object = object.NIL
		for _, expr := range node.Body {
			v, err := e.Eval(expr, frame)
			if err != nil || isReturn(v) {
				return v, err
			}
			result = v
		}
		return result, nil

	case *ast.Ret:
		v, err := e.Eval(node.Value, frame)
		if err != nil || isReturn(v) {
			return v, err
		}
		return &object.ReturnValue{Value: v}, nil

	case *ast.Primitive1:
		args, ret, err := e.evalArgs([]ast.Expression{node.Arg}, frame)
		if err != nil || ret != nil {
			return ret, err
		}
		return node.Prim.Apply(args...)

	case *ast.Primitive2:
		args, ret, err := e.evalArgs([]ast.Expression{node.Left, node.Right}, frame)
		if err != nil || ret != nil {
			return ret, err
		}
		return node.Prim.Apply(args...)

	case *ast.Call:
		args, ret, err := e.evalArgs(node.Args, frame)
		if err != nil || ret != nil {
			return ret, err
		}
		return node.Callee.Invoke(args...)

	default:
		return nil, fmt.Errorf("cannot evaluate %T", node)
	}
}

func (e *Evaluator) evalIf(node *ast.If, frame []object.Object) (object.Object, error) {
	cond, err := e.Eval(node.Cond, frame)
	if err != nil || isReturn(cond) {
		return cond, err
	}
	b, ok := cond.(*object.Boolean)
	if !ok {
		return nil, diagnostics.NewRuntimeTypeError("if", "boolean", object.TypeName(cond))
	}
	if b.Value {
		return e.Eval(node.Then, frame)
	}
	return e.Eval(node.Else, frame)
}

// evalArgs evaluates operands left to right. A non-nil ReturnValue means an
// operand returned from the function.
func (e *Evaluator) evalArgs(exprs []ast.Expression, frame []object.Object) ([]object.Object, object.Object, error) {
	args := make([]object.Object, len(exprs))
	for i, expr := range exprs {
		v, err := e.Eval(expr, frame)
		if err != nil {
			return nil, nil, err
		}
		if isReturn(v) {
			return nil, v, nil
		}
		args[i] = v
	}
	return args, nil, nil
}

func isReturn(obj object.Object) bool {
	_, ok := obj.(*object.ReturnValue)
	return ok
}

func unwrapReturnValue(obj object.Object) object.Object {
	if returnValue, ok := obj.(*object.ReturnValue); ok {
		return returnValue.Value
	}
	return obj
}
