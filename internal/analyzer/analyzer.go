// Package analyzer assigns a value category to every node and variable of a
// function body from the profiles the interpreted tier collected. It never
// fails: missing or mixed evidence yields REFERENCE.
package analyzer

import (
	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/typesystem"
)

// Analysis is the outcome of one analyzer pass.
type Analysis struct {
	Variables map[*ast.Variable]typesystem.Category
	Result    typesystem.Category
}

// Analyze annotates body in place. Running it again with unchanged
// profiles produces the same annotations.
//
// A variable is INT only when its profile is sampled and pure-int and
// every value stored into it is itself INT. Arguments are not stores:
// compiled code checks INT parameters on entry.
func Analyze(params []*ast.Variable, body ast.Expression) *Analysis {
	a := &analyzer{cats: make(map[*ast.Variable]typesystem.Category)}

	for _, p := range params {
		a.cats[p] = fromProfile(p)
	}

	var stores []store
	ast.Walk(body, func(e ast.Expression) bool {
		switch n := e.(type) {
		case *ast.Let:
			if _, ok := a.cats[n.Variable]; !ok {
				a.cats[n.Variable] = fromProfile(n.Variable)
			}
			stores = append(stores, store{n.Variable, n.Init})
		case *ast.SetVar:
			stores = append(stores, store{n.Variable, n.Value})
		}
		return true
	})

	// Demotion only ever narrows the set of INT variables, so this
	// terminates after at most one round per variable.
	for changed := true; changed; {
		changed = false
		for _, s := range stores {
			if a.cats[s.v] == typesystem.Int && a.category(s.value) != typesystem.Int {
				a.cats[s.v] = typesystem.Reference
				changed = true
			}
		}
	}

	return &Analysis{Variables: a.cats, Result: a.category(body)}
}

// fromProfile narrows a variable to INT only on pure-int evidence.
func fromProfile(v *ast.Variable) typesystem.Category {
	snap := v.Profile.Snapshot()
	if snap.Sampled() && snap.PureInt() {
		return typesystem.Int
	}
	return typesystem.Reference
}

type store struct {
	v     *ast.Variable
	value ast.Expression
}

type analyzer struct {
	cats   map[*ast.Variable]typesystem.Category
	result typesystem.Category
}

// category annotates e and its subtree and returns e's category.
func (a *analyzer) category(e ast.Expression) typesystem.Category {
	e.Accept(a)
	c := a.result
	e.Annotate(c)
	return c
}

func (a *analyzer) VisitConst(n *ast.Const) {
	if _, ok := n.Value.(*object.Integer); ok {
		a.result = typesystem.Int
		return
	}
	a.result = typesystem.Reference
}

func (a *analyzer) VisitVar(n *ast.Var) {
	a.result = a.cats[n.Variable]
}

func (a *analyzer) VisitIf(n *ast.If) {
	a.category(n.Cond)
	then := a.category(n.Then)
	els := a.category(n.Else)
	a.result = typesystem.Join(then, els)
}

func (a *analyzer) VisitLet(n *ast.Let) {
	a.category(n.Init)
	a.result = a.category(n.Body)
}

func (a *analyzer) VisitSetVar(n *ast.SetVar) {
	a.category(n.Value)
	a.result = a.cats[n.Variable]
}

func (a *analyzer) VisitProg(n *ast.Prog) {
	c := typesystem.Reference
	for _, e := range n.Body {
		c = a.category(e)
	}
	a.result = c
}

func (a *analyzer) VisitRet(n *ast.Ret) {
	a.category(n.Value)
	a.result = typesystem.Reference
}

func (a *analyzer) VisitPrimitive1(n *ast.Primitive1) {
	arg := a.category(n.Arg)
	a.result = n.Prim.Infer([]typesystem.Category{arg})
}

func (a *analyzer) VisitPrimitive2(n *ast.Primitive2) {
	left := a.category(n.Left)
	right := a.category(n.Right)
	a.result = n.Prim.Infer([]typesystem.Category{left, right})
}

func (a *analyzer) VisitCall(n *ast.Call) {
	for _, arg := range n.Args {
		a.category(arg)
	}
	a.result = typesystem.Reference
}
