// Package backend wraps each executable representation of a function behind
// one interface, so the tiering controller can swap them freely.
package backend

import (
	"github.com/funvibe/tiervm/internal/object"
)

// Tier is the execution tier of a representation.
type Tier uint8

const (
	Interpreted Tier = iota
	Compiled
)

func (t Tier) String() string {
	switch t {
	case Interpreted:
		return "INTERPRETED"
	case Compiled:
		return "COMPILED"
	default:
		return "UNKNOWN"
	}
}

// Backend is the interface for execution backends
type Backend interface {
	// Run executes the function body with already arity-checked arguments
	Run(args ...object.Object) (object.Object, error)

	// Name returns the backend name for display
	Name() string

	Tier() Tier
}
