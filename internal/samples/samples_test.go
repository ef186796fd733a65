package samples

import (
	"testing"

	"github.com/funvibe/tiervm/internal/backend"
	"github.com/funvibe/tiervm/internal/config"
	"github.com/funvibe/tiervm/internal/nexus"
)

func TestSampleResults(t *testing.T) {
	tests := []struct {
		sample string
		want   []string
	}{
		{"fact", []string{"120", "1", "3628800", "2432902008176640000"}},
		{"fib", []string{"55", "1", "6765"}},
		{"id", []string{"42", "42", "42", `"hello"`}},
		{"abs", []string{"7", "3", "0", "1000000"}},
		{"range", []string{"(3 . (2 . (1 . Nil)))", "Nil", "(5 . (4 . (3 . (2 . (1 . Nil)))))"}},
		{"point", []string{"3", "5", "7", "9"}},
	}

	for _, tt := range tests {
		t.Run(tt.sample, func(t *testing.T) {
			s, err := Get(tt.sample)
			if err != nil {
				t.Fatal(err)
			}
			rt := nexus.New(config.Default())
			fn, err := s.Build(rt)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			for i, in := range s.Inputs {
				if s.Before != nil {
					if err := s.Before(i); err != nil {
						t.Fatal(err)
					}
				}
				res, err := fn.Invoke(in...)
				if err != nil {
					t.Fatalf("input %d: %v", i, err)
				}
				if res.Inspect() != tt.want[i] {
					t.Errorf("input %d: got %s, want %s", i, res.Inspect(), tt.want[i])
				}
			}
			if fn.State() != backend.Compiled {
				t.Errorf("%s still %s after %d calls", tt.sample, fn.State(), len(s.Inputs))
			}
		})
	}
}

func TestUnknownSample(t *testing.T) {
	if _, err := Get("nope"); err == nil {
		t.Error("expected error")
	}
	if len(Names()) != 6 {
		t.Errorf("names = %v", Names())
	}
}
