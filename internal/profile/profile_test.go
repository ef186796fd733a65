package profile

import (
	"strings"
	"sync"
	"testing"

	"github.com/funvibe/tiervm/internal/object"
)

func TestRecordCategories(t *testing.T) {
	p := NewVariableProfile()
	p.Record(object.NewInteger(1))
	p.Record(object.NewInteger(2))
	s := p.Snapshot()
	if !s.Sampled() || !s.PureInt() {
		t.Fatalf("expected sampled pure-int history, got %s", s)
	}

	p.Record(object.NewString("x"))
	s = p.Snapshot()
	if s.PureInt() {
		t.Errorf("a reference occurrence must end the pure-int history")
	}
	if s.IntCases != 2 || s.ReferenceCases != 1 {
		t.Errorf("got %s", s)
	}
}

func TestBooleansCountAsReferences(t *testing.T) {
	p := NewVariableProfile()
	p.Record(object.TRUE)
	p.Record(object.FALSE)
	s := p.Snapshot()
	if s.IntCases != 0 || s.ReferenceCases != 2 {
		t.Errorf("booleans must be recorded as references, got %s", s)
	}
}

func TestUnsampledIsNotPureInt(t *testing.T) {
	var s Snapshot
	if s.Sampled() || s.PureInt() {
		t.Errorf("empty snapshot must be neither sampled nor pure-int")
	}
}

func TestConcurrentRecordDoesNotLoseUpdates(t *testing.T) {
	p := NewVariableProfile()
	m := NewMethodProfile()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				p.Record(object.NewInteger(int64(i)))
				m.Invoke()
			}
		}()
	}
	wg.Wait()
	if got := p.Snapshot().IntCases; got != 8000 {
		t.Errorf("intCases = %d, want 8000", got)
	}
	if got := m.Invocations(); got != 8000 {
		t.Errorf("invocations = %d, want 8000", got)
	}
}

func TestMethodProfileTracksSlots(t *testing.T) {
	m := NewMethodProfile()
	n := NewVariableProfile()
	m.Track(0, "n", n)
	n.Record(object.NewInteger(3))

	got, ok := m.Variable(0)
	if !ok || got != n {
		t.Fatalf("slot 0 not tracked")
	}
	if _, ok := m.Variable(1); ok {
		t.Errorf("slot 1 should not be tracked")
	}
	if vars := m.Variables(); vars[0].IntCases != 1 {
		t.Errorf("Variables()[0] = %s", vars[0])
	}
	if s := m.String(); !strings.Contains(s, "n#0{int=1 ref=0}") {
		t.Errorf("String() = %q", s)
	}
}
