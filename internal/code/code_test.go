package code

import (
	"testing"

	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/primitive"
)

// testFunc is a Callable that always interprets its abstract code.
type testFunc struct {
	name  string
	code  *Code
	calls int
}

func (f *testFunc) Name() string { return f.name }
func (f *testFunc) Arity() int   { return len(f.code.Params) }
func (f *testFunc) Invoke(args ...object.Object) (object.Object, error) {
	f.calls++
	return Interpret(f.code, f.code.NewFrame(args))
}

func define(t *testing.T, name string, params []*ast.Variable, build func(self object.Callable) ast.Expression) *testFunc {
	t.Helper()
	f := &testFunc{name: name}
	body := build(f)
	size, err := ast.AssignSlots(params, body)
	if err != nil {
		t.Fatalf("AssignSlots: %v", err)
	}
	c, err := Lower(name, params, body, size)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	f.code = c
	return f
}

func factorial(t *testing.T) (*testFunc, *ast.Variable) {
	n := ast.NewVariable("n")
	f := define(t, "fact", []*ast.Variable{n}, func(self object.Callable) ast.Expression {
		return ast.NewIf(
			ast.Prim2(primitive.Lt, ast.NewVar(n), ast.Int(1)),
			ast.Int(1),
			ast.Prim2(primitive.Mul, ast.NewVar(n),
				ast.Call1(self, ast.Prim2(primitive.Sub, ast.NewVar(n), ast.Int(1)))),
		)
	})
	return f, n
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

func TestFactorial(t *testing.T) {
	f, n := factorial(t)

	tests := []struct {
		input    int64
		expected int64
	}{
		{0, 1},
		{1, 1},
		{5, 120},
		{10, 3628800},
	}
	for _, tt := range tests {
		v, err := f.Invoke(object.NewInteger(tt.input))
		if err != nil {
			t.Fatalf("fact(%d): %v", tt.input, err)
		}
		testIntegerObject(t, v, tt.expected)
	}

	snap := n.Profile.Snapshot()
	if !snap.PureInt() {
		t.Errorf("n profile = %s, want pure int", snap)
	}
}

func TestLowerListing(t *testing.T) {
	f, _ := factorial(t)
	want := `== fact (frame 4) ==
0000 JUMP_IF_FALSE (lt n#0 1) 0003
0001 LOAD 1
0002 JUMP 0008
0003 LOAD n#0
0004 STORE $t0#1
0005 CALL fact (sub n#0 1)
0006 STORE $t1#2
0007 LOAD (mul $t0#1 $t1#2)
0008 STORE $t2#3
0009 RETURN $t2#3
`
	if got := Print(f.code); got != want {
		t.Errorf("listing:\n%s\nwant:\n%s", got, want)
	}
}

func TestOperandOrderSurvivesAssignment(t *testing.T) {
	x := ast.NewVariable("x")
	// (add x (set! x 5)) with x = 1 reads the old x first.
	f := define(t, "f", []*ast.Variable{x}, func(object.Callable) ast.Expression {
		return ast.Prim2(primitive.Add, ast.NewVar(x), ast.NewSetVar(x, ast.Int(5)))
	})
	v, err := f.Invoke(object.NewInteger(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testIntegerObject(t, v, 6)
}

func TestErrorOrderBeforeLaterCall(t *testing.T) {
	side := define(t, "side", nil, func(object.Callable) ast.Expression { return ast.Int(1) })
	f := define(t, "f", nil, func(object.Callable) ast.Expression {
		return ast.Prim2(primitive.Add,
			ast.Prim2(primitive.Mul, ast.Str("a"), ast.Int(3)),
			ast.Call0(side))
	})

	_, err := f.Invoke()
	if !diagnostics.IsRuntimeTypeError(err) {
		t.Fatalf("expected RuntimeTypeError, got %v", err)
	}
	if side.calls != 0 {
		t.Errorf("call ran before the failing operand: %d calls", side.calls)
	}
}

func TestIdentityProfile(t *testing.T) {
	arg := ast.NewVariable("arg")
	f := define(t, "id", []*ast.Variable{arg}, func(object.Callable) ast.Expression {
		return ast.NewVar(arg)
	})

	v, err := f.Invoke(object.NewInteger(42))
	if err != nil {
		t.Fatal(err)
	}
	testIntegerObject(t, v, 42)

	v, err = f.Invoke(object.NewString("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := v.(*object.String); !ok || s.Value != "hello" {
		t.Errorf("id(\"hello\") = %v", v)
	}

	snap := arg.Profile.Snapshot()
	if snap.IntCases != 1 || snap.ReferenceCases != 1 {
		t.Errorf("profile = %s, want int=1 ref=1", snap)
	}
}

func TestBooleansProfileAsReferences(t *testing.T) {
	b := ast.NewVariable("b")
	f := define(t, "f", nil, func(object.Callable) ast.Expression {
		return ast.NewLet(b, ast.Prim2(primitive.Lt, ast.Int(1), ast.Int(2)), ast.NewVar(b))
	})
	if _, err := f.Invoke(); err != nil {
		t.Fatal(err)
	}
	snap := b.Profile.Snapshot()
	if snap.IntCases != 0 || snap.ReferenceCases != 2 {
		t.Errorf("profile = %s, want int=0 ref=2", snap)
	}
}

func TestConditionMustBeBoolean(t *testing.T) {
	f := define(t, "f", nil, func(object.Callable) ast.Expression {
		return ast.NewIf(ast.Int(0), ast.Int(1), ast.Int(2))
	})
	_, err := f.Invoke()
	if !diagnostics.IsRuntimeTypeError(err) {
		t.Fatalf("expected RuntimeTypeError, got %v", err)
	}
	if err.Error() != "if: boolean expected, got Int" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestReturnLeavesEarly(t *testing.T) {
	x := ast.NewVariable("x")
	f := define(t, "f", []*ast.Variable{x}, func(object.Callable) ast.Expression {
		return ast.NewProg(
			ast.NewIf(ast.Prim2(primitive.Lt, ast.NewVar(x), ast.Int(0)),
				ast.NewRet(ast.Str("negative")),
				ast.Nil()),
			ast.NewSetVar(x, ast.Prim2(primitive.Mul, ast.NewVar(x), ast.Int(2))),
			ast.NewVar(x),
		)
	})

	v, err := f.Invoke(object.NewInteger(-1))
	if err != nil {
		t.Fatal(err)
	}
	if v.Inspect() != `"negative"` {
		t.Errorf("f(-1) = %s", v.Inspect())
	}
	v, err = f.Invoke(object.NewInteger(4))
	if err != nil {
		t.Fatal(err)
	}
	testIntegerObject(t, v, 8)
}

func TestEmptyProgIsNil(t *testing.T) {
	f := define(t, "f", nil, func(object.Callable) ast.Expression { return ast.NewProg() })
	v, err := f.Invoke()
	if err != nil {
		t.Fatal(err)
	}
	if v != object.NIL {
		t.Errorf("empty prog = %v, want Nil", v)
	}
}
