package backend

import (
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/vm"
)

// CompiledBackend runs a specialized vm program.
type CompiledBackend struct {
	prog *vm.Program
}

func NewCompiled(prog *vm.Program) *CompiledBackend {
	return &CompiledBackend{prog: prog}
}

func (b *CompiledBackend) Run(args ...object.Object) (object.Object, error) {
	return b.prog.Run(args...)
}

func (b *CompiledBackend) Name() string         { return "compiled" }
func (b *CompiledBackend) Tier() Tier           { return Compiled }
func (b *CompiledBackend) Program() *vm.Program { return b.prog }
