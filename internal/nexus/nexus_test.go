package nexus_test

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/backend"
	"github.com/funvibe/tiervm/internal/config"
	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/nexus"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/primitive"
	"github.com/funvibe/tiervm/internal/samples"
)

func newRuntime(t *testing.T, mutate func(*config.Config)) *nexus.Runtime {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	return nexus.New(cfg)
}

func build(t *testing.T, rt *nexus.Runtime, b func(*nexus.Runtime) (*nexus.Function, error)) *nexus.Function {
	t.Helper()
	fn, err := b(rt)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return fn
}

func invoke(t *testing.T, fn *nexus.Function, args ...object.Object) object.Object {
	t.Helper()
	res, err := fn.Invoke(args...)
	if err != nil {
		t.Fatalf("%s: %v", fn.Name(), err)
	}
	return res
}

func testIntegerObject(t *testing.T, obj object.Object, expected int64) {
	t.Helper()
	result, ok := obj.(*object.Integer)
	if !ok {
		t.Fatalf("object is not Integer. got=%T (%+v)", obj, obj)
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. got=%d, want=%d", result.Value, expected)
	}
}

func TestIdentityTiersUpAndDeoptimizes(t *testing.T) {
	rt := newRuntime(t, nil)
	id := build(t, rt, samples.Identity)

	testIntegerObject(t, invoke(t, id, object.NewInteger(42)), 42)
	if id.State() != backend.Interpreted {
		t.Fatalf("state after one call = %s", id.State())
	}
	testIntegerObject(t, invoke(t, id, object.NewInteger(42)), 42)
	if id.State() != backend.Compiled || id.Program() == nil {
		t.Fatalf("state after threshold = %s", id.State())
	}
	testIntegerObject(t, invoke(t, id, object.NewInteger(42)), 42)

	res := invoke(t, id, object.NewString("hello"))
	if s, ok := res.(*object.String); !ok || s.Value != "hello" {
		t.Fatalf("id(\"hello\") = %s", res.Inspect())
	}
	stats := id.Stats()
	if stats.Deopts != 1 || stats.Tier != backend.Compiled || stats.Invocations != 4 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestFactorialOnBothTiers(t *testing.T) {
	rt := newRuntime(t, func(c *config.Config) { c.CompileThreshold = 1000 })
	fact := build(t, rt, samples.Factorial)

	check := func() {
		t.Helper()
		testIntegerObject(t, invoke(t, fact, object.NewInteger(5)), 120)
		testIntegerObject(t, invoke(t, fact, object.NewInteger(0)), 1)
	}
	check()
	if fact.State() != backend.Interpreted {
		t.Fatalf("compiled below threshold")
	}
	if err := fact.ForceCompile(); err != nil {
		t.Fatalf("ForceCompile: %v", err)
	}
	if fact.State() != backend.Compiled {
		t.Fatalf("state = %s after ForceCompile", fact.State())
	}
	check()
	if fact.Stats().Compilations != 1 {
		t.Errorf("compilations = %d", fact.Stats().Compilations)
	}
}

// Every sample gives the same answers on the tree walker, on abstract code
// and on compiled code.
func TestTiersAgree(t *testing.T) {
	for _, name := range samples.Names() {
		t.Run(name, func(t *testing.T) {
			run := func(cfg func(*config.Config)) []string {
				s, err := samples.Get(name)
				if err != nil {
					t.Fatal(err)
				}
				rt := newRuntime(t, cfg)
				fn := build(t, rt, s.Build)
				var out []string
				for round := 0; round < 2; round++ {
					for i, in := range s.Inputs {
						if s.Before != nil && round == 0 {
							if err := s.Before(i); err != nil {
								t.Fatal(err)
							}
						}
						res, err := fn.Invoke(in...)
						if err != nil {
							out = append(out, "error: "+err.Error())
							continue
						}
						out = append(out, res.Inspect())
					}
				}
				return out
			}

			tree := run(func(c *config.Config) {
				c.Interpreter = config.InterpreterTree
				c.CompileThreshold = 1 << 40
			})
			abstract := run(func(c *config.Config) { c.CompileThreshold = 1 << 40 })
			tiered := run(func(c *config.Config) { c.CompileThreshold = 1 })

			for i := range tree {
				if abstract[i] != tree[i] || tiered[i] != tree[i] {
					t.Errorf("result %d: tree=%s abstract=%s tiered=%s", i, tree[i], abstract[i], tiered[i])
				}
			}
		})
	}
}

func TestConcurrentInvocationsCompileOnce(t *testing.T) {
	rt := newRuntime(t, func(c *config.Config) { c.CompileThreshold = 50 })
	fact := build(t, rt, samples.Factorial)

	var g errgroup.Group
	for w := 0; w < 16; w++ {
		g.Go(func() error {
			for i := 0; i < 40; i++ {
				res, err := fact.Invoke(object.NewInteger(10))
				if err != nil {
					return err
				}
				if v, ok := res.(*object.Integer); !ok || v.Value != 3628800 {
					return fmt.Errorf("fact(10) = %s", res.Inspect())
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	stats := fact.Stats()
	if stats.Tier != backend.Compiled || stats.Compilations != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestGeneratorErrorMakesFunctionInterpretOnly(t *testing.T) {
	rt := newRuntime(t, nil)
	x := ast.NewVariable("x")
	f := rt.Define("f", x)
	body := ast.Prim2(primitive.Mul, ast.Prim2(primitive.Lt, ast.NewVar(x), ast.Int(1)), ast.Int(3))
	if err := f.SetBody(body); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		_, err := f.Invoke(object.NewInteger(int64(i)))
		if !diagnostics.IsRuntimeTypeError(err) {
			t.Fatalf("call %d: expected RuntimeTypeError, got %v", i, err)
		}
	}
	stats := f.Stats()
	if !stats.InterpretOnly || stats.Tier != backend.Interpreted || stats.CompileFailures != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if err := f.ForceCompile(); !errors.Is(err, nexus.ErrInterpretOnly) {
		t.Errorf("ForceCompile = %v", err)
	}
}

func TestOrdinaryFailuresAreRetried(t *testing.T) {
	rt := newRuntime(t, func(c *config.Config) { c.MaxCompileAttempts = 2 })
	x := ast.NewVariable("x")
	f := rt.Define("wide", x)

	// More locals than a compiled frame can address.
	var body ast.Expression = ast.NewVar(x)
	for i := 0; i < 300; i++ {
		body = ast.NewLet(ast.NewVariable(fmt.Sprintf("v%d", i)), ast.Int(int64(i)), body)
	}
	if err := f.SetBody(body); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 3; i++ {
		testIntegerObject(t, invoke(t, f, object.NewInteger(7)), 7)
		if f.InterpretOnly() {
			t.Fatalf("interpret-only after %d calls", i)
		}
	}
	if got := f.Stats().CompileFailures; got != 1 {
		t.Fatalf("failures after window = %d, want 1", got)
	}
	testIntegerObject(t, invoke(t, f, object.NewInteger(7)), 7)
	stats := f.Stats()
	if stats.CompileFailures != 2 || !stats.InterpretOnly {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRecompileAfterDeopts(t *testing.T) {
	rt := newRuntime(t, func(c *config.Config) { c.RecompileAfterDeopts = 2 })
	x := ast.NewVariable("x")
	f := rt.Define("f", x)
	body := ast.NewIf(ast.Prim2(primitive.Eq, ast.NewVar(x), ast.Int(0)), ast.Int(1), ast.NewVar(x))
	if err := f.SetBody(body); err != nil {
		t.Fatal(err)
	}

	invoke(t, f, object.NewInteger(1))
	invoke(t, f, object.NewInteger(2))
	first := f.Program()
	if first == nil {
		t.Fatal("not compiled")
	}

	str := object.NewString("s")
	for i := 0; i < 3; i++ {
		if res := invoke(t, f, str); res.Inspect() != `"s"` {
			t.Fatalf("f(\"s\") = %s", res.Inspect())
		}
	}
	stats := f.Stats()
	if stats.Deopts != 2 || stats.Compilations != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if f.Program() == nil || f.Program().ID == first.ID {
		t.Error("expected a fresh program")
	}
	testIntegerObject(t, invoke(t, f, object.NewInteger(0)), 1)
}

func TestProfilesOnlyGrow(t *testing.T) {
	rt := newRuntime(t, func(c *config.Config) { c.CompileThreshold = 1 << 40 })
	id := build(t, rt, samples.Identity)
	x := id.Params()[0]

	prev := x.Profile.Snapshot()
	for _, in := range []object.Object{object.NewInteger(1), object.NewString("a"), object.NewInteger(2), object.TRUE} {
		invoke(t, id, in)
		cur := x.Profile.Snapshot()
		if cur.IntCases < prev.IntCases || cur.ReferenceCases < prev.ReferenceCases {
			t.Fatalf("profile shrank: %s -> %s", prev, cur)
		}
		prev = cur
	}
	if prev.IntCases != 2 || prev.ReferenceCases != 2 {
		t.Errorf("profile = %s", prev)
	}
}

func TestInvocationErrors(t *testing.T) {
	rt := newRuntime(t, nil)
	fact := build(t, rt, samples.Factorial)

	if _, err := fact.Invoke(); !diagnostics.IsArityError(err) {
		t.Errorf("expected ArityError, got %v", err)
	}
	if _, err := rt.Invoke("missing"); err == nil {
		t.Error("expected error for undefined function")
	}
	empty := rt.Define("empty")
	if _, err := empty.Invoke(); !errors.Is(err, nexus.ErrNoBody) {
		t.Errorf("expected ErrNoBody, got %v", err)
	}
	res, err := rt.Invoke("fact", object.NewInteger(3))
	if err != nil {
		t.Fatal(err)
	}
	testIntegerObject(t, res, 6)

	names := []string{}
	for _, fn := range rt.Functions() {
		names = append(names, fn.Name())
	}
	if fmt.Sprint(names) != "[empty fact]" {
		t.Errorf("functions = %v", names)
	}
}

func TestWideCallStaysInterpreted(t *testing.T) {
	rt := newRuntime(t, func(c *config.Config) { c.CompileThreshold = 1 << 40 })

	params := make([]*ast.Variable, 256)
	for i := range params {
		params[i] = ast.NewVariable(fmt.Sprintf("p%d", i))
	}
	wide := rt.Define("wide", params...)
	if err := wide.SetBody(ast.Int(1)); err != nil {
		t.Fatal(err)
	}
	args := make([]ast.Expression, len(params))
	for i := range args {
		args[i] = ast.Int(int64(i))
	}
	caller := rt.Define("caller")
	if err := caller.SetBody(ast.NewCall(wide, args...)); err != nil {
		t.Fatal(err)
	}

	testIntegerObject(t, invoke(t, caller), 1)
	if err := caller.ForceCompile(); err == nil {
		t.Fatal("expected compilation of a 256-argument call to fail")
	}
	if caller.State() != backend.Interpreted || caller.Program() != nil {
		t.Fatalf("state = %s after failed compilation", caller.State())
	}
	testIntegerObject(t, invoke(t, caller), 1)
}

func TestCallArityMismatchFailsAlikeOnBothTiers(t *testing.T) {
	rt := newRuntime(t, func(c *config.Config) { c.CompileThreshold = 1 << 40 })
	id := build(t, rt, samples.Identity)
	x := ast.NewVariable("x")
	f := rt.Define("f", x)
	if err := f.SetBody(ast.Call2(id, ast.NewVar(x), ast.NewVar(x))); err != nil {
		t.Fatalf("SetBody: %v", err)
	}

	_, interpreted := f.Invoke(object.NewInteger(1))
	if !diagnostics.IsArityError(interpreted) {
		t.Fatalf("expected ArityError, got %v", interpreted)
	}
	if err := f.ForceCompile(); err != nil {
		t.Fatalf("ForceCompile: %v", err)
	}
	_, compiled := f.Invoke(object.NewInteger(1))
	if !diagnostics.IsArityError(compiled) || compiled.Error() != interpreted.Error() {
		t.Errorf("compiled error %v, interpreted error %v", compiled, interpreted)
	}
	if f.State() != backend.Compiled {
		t.Errorf("state = %s", f.State())
	}
}
