package ast

import "fmt"

// Children returns the direct sub-expressions of e in evaluation order.
func Children(e Expression) []Expression {
	switch n := e.(type) {
	case *If:
		return []Expression{n.Cond, n.Then, n.Else}
	case *Let:
		return []Expression{n.Init, n.Body}
	case *SetVar:
		return []Expression{n.Value}
	case *Prog:
		return n.Body
	case *Ret:
		return []Expression{n.Value}
	case *Primitive1:
		return []Expression{n.Arg}
	case *Primitive2:
		return []Expression{n.Left, n.Right}
	case *Call:
		return n.Args
	default:
		return nil
	}
}

// Walk calls fn for e and then its descendants in evaluation order. A false
// return skips the node's children.
func Walk(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}

// BindError reports a malformed function body.
type BindError struct {
	Variable string
	Msg      string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("variable %s: %s", e.Variable, e.Msg)
}

// AssignSlots numbers params 0..n-1 and every Let-bound variable after
// them, checks that every variable reference is in scope and that primitive
// arities match. Call arity is checked by the callee at run time. It
// returns the frame size.
func AssignSlots(params []*Variable, body Expression) (int, error) {
	b := &binder{scope: make(map[*Variable]int)}
	for _, p := range params {
		if b.scope[p] > 0 {
			return 0, &BindError{Variable: p.Name, Msg: "duplicate parameter"}
		}
		p.Index = b.next
		b.next++
		b.scope[p]++
	}
	if err := b.bind(body); err != nil {
		return 0, err
	}
	return b.next, nil
}

type binder struct {
	scope map[*Variable]int
	seen  map[*Variable]bool
	next  int
}

func (b *binder) use(v *Variable) error {
	if b.scope[v] == 0 {
		return &BindError{Variable: v.Name, Msg: "not in scope"}
	}
	return nil
}

func (b *binder) bind(e Expression) error {
	if e == nil {
		return fmt.Errorf("missing expression")
	}
	switch n := e.(type) {
	case *Var:
		return b.use(n.Variable)
	case *SetVar:
		if err := b.use(n.Variable); err != nil {
			return err
		}
		return b.bind(n.Value)
	case *Let:
		if err := b.bind(n.Init); err != nil {
			return err
		}
		if b.scope[n.Variable] > 0 {
			return &BindError{Variable: n.Variable.Name, Msg: "already bound"}
		}
		if b.seen == nil {
			b.seen = make(map[*Variable]bool)
		}
		if !b.seen[n.Variable] {
			n.Variable.Index = b.next
			b.next++
			b.seen[n.Variable] = true
		}
		b.scope[n.Variable]++
		defer func() { b.scope[n.Variable]-- }()
		return b.bind(n.Body)
	case *Primitive1:
		if n.Prim.Arity() != 1 {
			return fmt.Errorf("primitive %s takes %d operands, got 1", n.Prim.Name(), n.Prim.Arity())
		}
	case *Primitive2:
		if n.Prim.Arity() != 2 {
			return fmt.Errorf("primitive %s takes %d operands, got 2", n.Prim.Name(), n.Prim.Arity())
		}
	}
	for _, c := range Children(e) {
		if err := b.bind(c); err != nil {
			return err
		}
	}
	return nil
}
