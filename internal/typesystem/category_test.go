package typesystem

import "testing"

func TestJoin(t *testing.T) {
	tests := []struct {
		a, b     Category
		expected Category
	}{
		{Int, Int, Int},
		{Int, Reference, Reference},
		{Reference, Int, Reference},
		{Boolean, Boolean, Reference},
		{Boolean, Int, Reference},
		{Reference, Reference, Reference},
	}
	for _, tt := range tests {
		if got := Join(tt.a, tt.b); got != tt.expected {
			t.Errorf("Join(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestZeroValueIsReference(t *testing.T) {
	var c Category
	if c != Reference {
		t.Fatalf("zero Category should be Reference, got %s", c)
	}
}
