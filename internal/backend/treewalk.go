package backend

import (
	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/evaluator"
	"github.com/funvibe/tiervm/internal/object"
)

// TreeWalkBackend evaluates the expression tree directly. It records no
// profiles, so code compiled after it keeps every variable boxed.
type TreeWalkBackend struct {
	body      ast.Expression
	frameSize int
}

// NewTreeWalk creates a new tree-walk backend
func NewTreeWalk(body ast.Expression, frameSize int) *TreeWalkBackend {
	return &TreeWalkBackend{body: body, frameSize: frameSize}
}

func (b *TreeWalkBackend) Run(args ...object.Object) (object.Object, error) {
	frame := make([]object.Object, b.frameSize)
	copy(frame, args)
	for i := len(args); i < len(frame); i++ {
		frame[i] = object.NIL
	}
	return evaluator.New().Run(b.body, frame)
}

func (b *TreeWalkBackend) Name() string { return "tree" }
func (b *TreeWalkBackend) Tier() Tier   { return Interpreted }
