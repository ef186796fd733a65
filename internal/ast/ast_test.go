package ast

import (
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/tiervm/internal/layout"
	"github.com/funvibe/tiervm/internal/primitive"
)

func TestAssignSlots(t *testing.T) {
	n := NewVariable("n")
	acc := NewVariable("acc")
	tmp := NewVariable("tmp")

	body := NewLet(acc, Int(1),
		NewProg(
			NewLet(tmp, Prim2(primitive.Mul, NewVar(acc), NewVar(n)),
				NewSetVar(acc, NewVar(tmp))),
			NewVar(acc),
		))

	size, err := AssignSlots([]*Variable{n}, body)
	if err != nil {
		t.Fatalf("AssignSlots: %v", err)
	}
	if size != 3 {
		t.Errorf("frame size = %d, want 3", size)
	}
	for v, want := range map[*Variable]int{n: 0, acc: 1, tmp: 2} {
		if v.Index != want {
			t.Errorf("%s index = %d, want %d", v.Name, v.Index, want)
		}
	}
}

func TestAssignSlotsRejectsOutOfScope(t *testing.T) {
	x := NewVariable("x")
	y := NewVariable("y")

	tests := []struct {
		name   string
		params []*Variable
		body   Expression
	}{
		{"unbound read", nil, NewVar(x)},
		{"unbound write", []*Variable{y}, NewSetVar(x, Int(1))},
		{"read after let", nil, NewProg(NewLet(x, Int(1), NewVar(x)), NewVar(x))},
		{"let init sees itself", nil, NewLet(x, NewVar(x), Int(1))},
		{"let shadows param", []*Variable{x}, NewLet(x, Int(1), NewVar(x))},
		{"duplicate param", []*Variable{x, x}, Int(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AssignSlots(tt.params, tt.body)
			var be *BindError
			if !errors.As(err, &be) {
				t.Fatalf("expected BindError, got %v", err)
			}
		})
	}
}

func TestAssignSlotsChecksPrimitiveArity(t *testing.T) {
	_, err := AssignSlots(nil, Prim1(primitive.Add, Int(1)))
	if err == nil || !strings.Contains(err.Error(), "add takes 2") {
		t.Errorf("expected arity error, got %v", err)
	}
}

func TestWalkOrder(t *testing.T) {
	a := NewVariable("a")
	body := NewIf(
		Prim2(primitive.Lt, NewVar(a), Int(2)),
		NewRet(Int(1)),
		Prim2(primitive.Sub, NewVar(a), Int(1)),
	)

	var got []string
	Walk(body, func(e Expression) bool {
		got = append(got, e.String())
		return true
	})
	want := []string{
		"(if (lt a 2) (return 1) (sub a 1))",
		"(lt a 2)", "a", "2",
		"(return 1)", "1",
		"(sub a 1)", "a", "1",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("walk order:\n got %v\nwant %v", got, want)
	}

	count := 0
	Walk(body, func(e Expression) bool {
		count++
		_, isIf := e.(*If)
		return isIf
	})
	if count != 4 {
		t.Errorf("pruned walk visited %d nodes, want 4", count)
	}
}

func TestFieldSugar(t *testing.T) {
	def := layout.MustNewDefinition("Point", "x", "y")
	p := NewVariable("p")

	get := GetField(NewVar(p), "x")
	set := SetField(NewVar(p), "y", Int(3))
	if get.String() != "(.x p)" {
		t.Errorf("GetField = %s", get.String())
	}
	if set.String() != "(.y= p 3)" {
		t.Errorf("SetField = %s", set.String())
	}
	if New(def).String() != "(Point)" {
		t.Errorf("New = %s", New(def).String())
	}
	if GetField(NewVar(p), "x").Prim == get.Prim {
		t.Error("field access nodes must not share a primitive")
	}
}

func TestAnnotation(t *testing.T) {
	c := Int(3)
	if c.Category().String() != "REFERENCE" {
		t.Errorf("default category = %s", c.Category())
	}
}
