package samples

import (
	"fmt"
	"math/rand"

	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/layout"
	"github.com/funvibe/tiervm/internal/nexus"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/primitive"
)

// RandomSource abstracts the source of randomness.
type RandomSource interface {
	Intn(n int) int
}

// RandSource wraps math/rand.
type RandSource struct {
	*rand.Rand
}

// ByteSource uses a byte slice as a source of randomness. It yields zeros
// once exhausted, which steers generation towards leaves.
type ByteSource struct {
	data []byte
	pos  int
}

func (s *ByteSource) Intn(n int) int {
	if n <= 0 || s.pos >= len(s.data) {
		return 0
	}
	v := int(s.data[s.pos])
	s.pos++
	return v % n
}

// Generator produces random, well-scoped function bodies over two
// parameters. Bodies only call a non-recursive helper, so every one
// terminates.
type Generator struct {
	src   RandomSource
	scope []*ast.Variable
	lets  int

	pair *nexus.Function
	cell *layout.Definition
}

const MaxDepth = 5

var (
	binaries = []primitive.Primitive{primitive.Add, primitive.Sub, primitive.Mul, primitive.Lt, primitive.Eq, primitive.Cons}
	unaries  = []primitive.Primitive{primitive.Neg, primitive.Not, primitive.Car, primitive.Cdr}
)

func NewGenerator(seed int64) *Generator {
	return &Generator{src: &RandSource{rand.New(rand.NewSource(seed))}}
}

func NewGeneratorFromData(data []byte) *Generator {
	return &Generator{src: &ByteSource{data: data}}
}

// Function defines name(x, y) on rt with a generated body. Bodies may call
// pair(a, b) = cons(b, a), defined alongside, and use objects of a
// one-field Cell definition.
func (g *Generator) Function(rt *nexus.Runtime, name string) (*nexus.Function, error) {
	a, b := ast.NewVariable("a"), ast.NewVariable("b")
	g.pair = rt.Define(name+".pair", a, b)
	if err := g.pair.SetBody(ast.Prim2(primitive.Cons, ast.NewVar(b), ast.NewVar(a))); err != nil {
		return nil, err
	}
	g.cell = layout.MustNewDefinition("Cell", "v")

	x, y := ast.NewVariable("x"), ast.NewVariable("y")
	g.scope = []*ast.Variable{x, y}
	g.lets = 0
	fn := rt.Define(name, x, y)
	return fn, fn.SetBody(g.expr(0))
}

// Inputs returns n argument pairs, mostly integers.
func (g *Generator) Inputs(n int) [][]object.Object {
	out := make([][]object.Object, n)
	for i := range out {
		out[i] = []object.Object{g.value(), g.value()}
	}
	return out
}

func (g *Generator) value() object.Object {
	switch g.src.Intn(10) {
	case 0:
		return object.NewString("s")
	case 1:
		return object.NativeBool(g.src.Intn(2) == 0)
	default:
		return object.NewInteger(int64(g.src.Intn(41) - 20))
	}
}

func (g *Generator) leaf() ast.Expression {
	switch g.src.Intn(8) {
	case 0:
		return ast.Bool(g.src.Intn(2) == 0)
	case 1:
		return ast.Nil()
	case 2, 3:
		return ast.Int(int64(g.src.Intn(300) - 100))
	default:
		return ast.NewVar(g.scope[g.src.Intn(len(g.scope))])
	}
}

// cellRoundTrip builds let c = Cell() in { c.v = e; c.v }.
func (g *Generator) cellRoundTrip(depth int) ast.Expression {
	c := ast.NewVariable(fmt.Sprintf("v%d", g.lets))
	g.lets++
	value := g.expr(depth)
	return ast.NewLet(c, ast.New(g.cell), ast.NewProg(
		ast.SetField(ast.NewVar(c), "v", value),
		ast.GetField(ast.NewVar(c), "v")))
}

func (g *Generator) expr(depth int) ast.Expression {
	if depth >= MaxDepth {
		return g.leaf()
	}
	d := depth + 1
	switch g.src.Intn(15) {
	case 0, 1:
		return g.leaf()
	case 2:
		return ast.NewIf(g.expr(d), g.expr(d), g.expr(d))
	case 3:
		return ast.NewIf(ast.Prim2(primitive.Lt, g.expr(d), g.expr(d)), g.expr(d), g.expr(d))
	case 4:
		v := ast.NewVariable(fmt.Sprintf("v%d", g.lets))
		g.lets++
		init := g.expr(d)
		g.scope = append(g.scope, v)
		body := g.expr(d)
		g.scope = g.scope[:len(g.scope)-1]
		return ast.NewLet(v, init, body)
	case 5:
		return ast.NewSetVar(g.scope[g.src.Intn(len(g.scope))], g.expr(d))
	case 6:
		return ast.NewProg(g.expr(d), g.expr(d))
	case 7:
		if g.src.Intn(3) == 0 {
			return ast.NewRet(g.expr(d))
		}
		return g.leaf()
	case 8:
		return ast.Prim1(unaries[g.src.Intn(len(unaries))], g.expr(d))
	case 9:
		if g.src.Intn(8) == 0 {
			return ast.Call1(g.pair, g.expr(d))
		}
		return ast.Call2(g.pair, g.expr(d), g.expr(d))
	case 10:
		return g.cellRoundTrip(d)
	case 11:
		return ast.GetField(g.expr(d), "v")
	default:
		return ast.Prim2(binaries[g.src.Intn(len(binaries))], g.expr(d), g.expr(d))
	}
}
