// Package samples builds small programs on a Runtime. The CLI runs them and
// the tests use them as fixtures.
package samples

import (
	"fmt"
	"sort"

	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/layout"
	"github.com/funvibe/tiervm/internal/nexus"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/primitive"
)

// Sample is a named program together with the inputs the CLI feeds it.
type Sample struct {
	Name        string
	Description string
	Build       func(rt *nexus.Runtime) (*nexus.Function, error)
	Inputs      [][]object.Object

	// Before, if set, runs ahead of the call with input i.
	Before func(i int) error
}

func ints(ns ...int64) [][]object.Object {
	out := make([][]object.Object, len(ns))
	for i, n := range ns {
		out[i] = []object.Object{object.NewInteger(n)}
	}
	return out
}

var registry = map[string]func() Sample{
	"fact": func() Sample {
		return Sample{
			Name:        "fact",
			Description: "recursive factorial",
			Build:       Factorial,
			Inputs:      ints(5, 0, 10, 20),
		}
	},
	"fib": func() Sample {
		return Sample{
			Name:        "fib",
			Description: "doubly recursive fibonacci",
			Build:       Fib,
			Inputs:      ints(10, 1, 20),
		}
	},
	"id": func() Sample {
		return Sample{
			Name:        "id",
			Description: "identity over integers, then a string",
			Build:       Identity,
			Inputs: [][]object.Object{
				{object.NewInteger(42)},
				{object.NewInteger(42)},
				{object.NewInteger(42)},
				{object.NewString("hello")},
			},
		}
	},
	"abs": func() Sample {
		return Sample{
			Name:        "abs",
			Description: "absolute value through a mutable local",
			Build:       Abs,
			Inputs:      ints(-7, 3, 0, -1000000),
		}
	},
	"range": func() Sample {
		return Sample{
			Name:        "range",
			Description: "cons list n..1",
			Build:       Range,
			Inputs:      ints(3, 0, 5),
		}
	},
	"point": func() Sample {
		def := PointDefinition()
		return Sample{
			Name:        "point",
			Description: "fixed-shape object fields, redefined mid-run",
			Build: func(rt *nexus.Runtime) (*nexus.Function, error) {
				return PointWith(rt, def)
			},
			Inputs: ints(1, 2, 3, 4),
			Before: func(i int) error {
				if i != 2 {
					return nil
				}
				return def.SetFieldNames("z", "y", "x")
			},
		}
	},
}

// Names lists the available samples.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Get returns the named sample.
func Get(name string) (Sample, error) {
	mk, ok := registry[name]
	if !ok {
		return Sample{}, fmt.Errorf("unknown sample %q", name)
	}
	return mk(), nil
}

// Factorial defines fact(n) = if n < 1 then 1 else n * fact(n - 1).
func Factorial(rt *nexus.Runtime) (*nexus.Function, error) {
	n := ast.NewVariable("n")
	fact := rt.Define("fact", n)
	body := ast.NewIf(
		ast.Prim2(primitive.Lt, ast.NewVar(n), ast.Int(1)),
		ast.Int(1),
		ast.Prim2(primitive.Mul,
			ast.NewVar(n),
			ast.Call1(fact, ast.Prim2(primitive.Sub, ast.NewVar(n), ast.Int(1)))))
	return fact, fact.SetBody(body)
}

// Fib defines fib(n) = if n < 2 then n else fib(n-1) + fib(n-2).
func Fib(rt *nexus.Runtime) (*nexus.Function, error) {
	n := ast.NewVariable("n")
	fib := rt.Define("fib", n)
	body := ast.NewIf(
		ast.Prim2(primitive.Lt, ast.NewVar(n), ast.Int(2)),
		ast.NewVar(n),
		ast.Prim2(primitive.Add,
			ast.Call1(fib, ast.Prim2(primitive.Sub, ast.NewVar(n), ast.Int(1))),
			ast.Call1(fib, ast.Prim2(primitive.Sub, ast.NewVar(n), ast.Int(2)))))
	return fib, fib.SetBody(body)
}

// Identity defines id(x) = x.
func Identity(rt *nexus.Runtime) (*nexus.Function, error) {
	x := ast.NewVariable("x")
	id := rt.Define("id", x)
	return id, id.SetBody(ast.NewVar(x))
}

// Abs defines abs(x) = let r = x in { if x < 0 then r := -x; r }.
func Abs(rt *nexus.Runtime) (*nexus.Function, error) {
	x := ast.NewVariable("x")
	r := ast.NewVariable("r")
	abs := rt.Define("abs", x)
	body := ast.NewLet(r, ast.NewVar(x), ast.NewProg(
		ast.NewIf(
			ast.Prim2(primitive.Lt, ast.NewVar(x), ast.Int(0)),
			ast.NewSetVar(r, ast.Prim1(primitive.Neg, ast.NewVar(x))),
			ast.NewVar(r)),
		ast.NewVar(r)))
	return abs, abs.SetBody(body)
}

// Range defines range(n) = if n < 1 then nil else cons(n, range(n - 1)).
func Range(rt *nexus.Runtime) (*nexus.Function, error) {
	n := ast.NewVariable("n")
	rng := rt.Define("range", n)
	body := ast.NewIf(
		ast.Prim2(primitive.Lt, ast.NewVar(n), ast.Int(1)),
		ast.Nil(),
		ast.Prim2(primitive.Cons,
			ast.NewVar(n),
			ast.Call1(rng, ast.Prim2(primitive.Sub, ast.NewVar(n), ast.Int(1)))))
	return rng, rng.SetBody(body)
}

// PointDefinition is the definition used by Point. Each runtime gets its
// own so redefinitions stay local.
func PointDefinition() *layout.Definition {
	return layout.MustNewDefinition("Point", "x", "y")
}

// Point defines point(n) = let p = Point() in { p.x = n; p.y = n + 1; p.x + p.y }.
func Point(rt *nexus.Runtime) (*nexus.Function, error) {
	return PointWith(rt, PointDefinition())
}

// PointWith is Point over a caller-supplied definition.
func PointWith(rt *nexus.Runtime, def *layout.Definition) (*nexus.Function, error) {
	n := ast.NewVariable("n")
	p := ast.NewVariable("p")
	fn := rt.Define("point", n)
	body := ast.NewLet(p, ast.New(def), ast.NewProg(
		ast.SetField(ast.NewVar(p), "x", ast.NewVar(n)),
		ast.SetField(ast.NewVar(p), "y", ast.Prim2(primitive.Add, ast.NewVar(n), ast.Int(1))),
		ast.Prim2(primitive.Add,
			ast.GetField(ast.NewVar(p), "x"),
			ast.GetField(ast.NewVar(p), "y"))))
	return fn, fn.SetBody(body)
}
