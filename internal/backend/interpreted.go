package backend

import (
	"github.com/funvibe/tiervm/internal/code"
	"github.com/funvibe/tiervm/internal/object"
)

// InterpretedBackend runs abstract code and feeds the profiles.
type InterpretedBackend struct {
	code *code.Code
}

func NewInterpreted(c *code.Code) *InterpretedBackend {
	return &InterpretedBackend{code: c}
}

func (b *InterpretedBackend) Run(args ...object.Object) (object.Object, error) {
	return code.Interpret(b.code, b.code.NewFrame(args))
}

func (b *InterpretedBackend) Name() string     { return "abstract" }
func (b *InterpretedBackend) Tier() Tier       { return Interpreted }
func (b *InterpretedBackend) Code() *code.Code { return b.code }
