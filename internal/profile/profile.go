// Package profile records the value categories observed by interpreted
// execution and the invocation counts the tiering controller reads.
//
// Counters are plain atomics: concurrent interpreted calls never lose
// updates, but a snapshot taken while calls are in flight may lag slightly.
// The analyzer only ever widens on what it sees, so lagging is harmless.
package profile

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/funvibe/tiervm/internal/object"
)

// VariableProfile counts the runtime categories seen for one variable.
// It is never reset.
type VariableProfile struct {
	intCases       atomic.Int64
	referenceCases atomic.Int64
}

// Snapshot is a point-in-time copy of a VariableProfile.
type Snapshot struct {
	IntCases       int64
	ReferenceCases int64
}

func NewVariableProfile() *VariableProfile {
	return &VariableProfile{}
}

// Record counts one occurrence of v. Integers count as int cases; every other
// value, booleans included, is a reference case.
func (p *VariableProfile) Record(v object.Object) {
	if _, ok := v.(*object.Integer); ok {
		p.intCases.Add(1)
		return
	}
	p.referenceCases.Add(1)
}

func (p *VariableProfile) Snapshot() Snapshot {
	return Snapshot{
		IntCases:       p.intCases.Load(),
		ReferenceCases: p.referenceCases.Load(),
	}
}

// Sampled reports whether any occurrence was recorded.
func (s Snapshot) Sampled() bool {
	return s.IntCases+s.ReferenceCases > 0
}

// PureInt reports an int-only history.
func (s Snapshot) PureInt() bool {
	return s.IntCases > 0 && s.ReferenceCases == 0
}

func (s Snapshot) String() string {
	return fmt.Sprintf("int=%d ref=%d", s.IntCases, s.ReferenceCases)
}

// MethodProfile holds a function's invocation counter and the profiles of
// its variables keyed by frame slot.
type MethodProfile struct {
	invocations atomic.Int64

	mu        sync.RWMutex
	variables map[int]trackedVariable
}

type trackedVariable struct {
	name    string
	profile *VariableProfile
}

func NewMethodProfile() *MethodProfile {
	return &MethodProfile{variables: make(map[int]trackedVariable)}
}

// Invoke counts one invocation and returns the new total.
func (m *MethodProfile) Invoke() int64 {
	return m.invocations.Add(1)
}

func (m *MethodProfile) Invocations() int64 {
	return m.invocations.Load()
}

// Track registers the profile of the variable living in slot.
func (m *MethodProfile) Track(slot int, name string, p *VariableProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variables[slot] = trackedVariable{name: name, profile: p}
}

// Variable returns the profile of the variable in slot.
func (m *MethodProfile) Variable(slot int) (*VariableProfile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tv, ok := m.variables[slot]
	return tv.profile, ok
}

// Variables returns a snapshot per slot.
func (m *MethodProfile) Variables() map[int]Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]Snapshot, len(m.variables))
	for slot, tv := range m.variables {
		out[slot] = tv.profile.Snapshot()
	}
	return out
}

func (m *MethodProfile) String() string {
	m.mu.RLock()
	slots := make([]int, 0, len(m.variables))
	for slot := range m.variables {
		slots = append(slots, slot)
	}
	m.mu.RUnlock()
	sort.Ints(slots)

	var sb strings.Builder
	fmt.Fprintf(&sb, "invocations=%d", m.Invocations())
	for _, slot := range slots {
		m.mu.RLock()
		tv := m.variables[slot]
		m.mu.RUnlock()
		fmt.Fprintf(&sb, " %s#%d{%s}", tv.name, slot, tv.profile.Snapshot())
	}
	return sb.String()
}
