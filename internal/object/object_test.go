package object

import "testing"

func TestObjectsEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Object
		expected bool
	}{
		{"ints", NewInteger(3), &Integer{Value: 3}, true},
		{"different ints", NewInteger(3), NewInteger(4), false},
		{"large ints", NewInteger(1 << 40), NewInteger(1 << 40), true},
		{"strings", NewString("a"), NewString("a"), true},
		{"int vs string", NewInteger(1), NewString("1"), false},
		{"bools", NativeBool(true), &Boolean{Value: true}, true},
		{"nil", NIL, &Nil{}, true},
		{"cons", &Cons{Car: NewInteger(1), Cdr: NIL}, &Cons{Car: NewInteger(1), Cdr: NIL}, true},
		{"cons differs", &Cons{Car: NewInteger(1), Cdr: NIL}, &Cons{Car: NewInteger(2), Cdr: NIL}, false},
		{"nil operand", nil, NIL, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObjectsEqual(tt.a, tt.b); got != tt.expected {
				t.Errorf("ObjectsEqual(%v, %v) = %t, want %t", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestNewIntegerSharesSmallValues(t *testing.T) {
	if NewInteger(5) != NewInteger(5) {
		t.Errorf("small integers should be shared")
	}
	if NewInteger(-128) != NewInteger(-128) {
		t.Errorf("lower bound should be shared")
	}
	if NewInteger(100000) == NewInteger(100000) {
		t.Errorf("large integers should be freshly allocated")
	}
	if got := NewInteger(1023).Value; got != 1023 {
		t.Errorf("got %d, want 1023", got)
	}
}

func TestInspect(t *testing.T) {
	tests := []struct {
		obj      Object
		expected string
	}{
		{NewInteger(-7), "-7"},
		{NewString("hi"), `"hi"`},
		{TRUE, "true"},
		{NIL, "Nil"},
		{UNSET, "<unset>"},
		{&Cons{Car: NewInteger(1), Cdr: NIL}, "(1 . Nil)"},
	}
	for _, tt := range tests {
		if got := tt.obj.Inspect(); got != tt.expected {
			t.Errorf("Inspect() = %q, want %q", got, tt.expected)
		}
	}
}
