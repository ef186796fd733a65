// Package pipeline runs the stages that turn a profiled function body into
// a compiled representation.
package pipeline

import (
	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/emit"
	"github.com/funvibe/tiervm/internal/profile"
	"github.com/funvibe/tiervm/internal/typesystem"
)

// PipelineContext carries one compilation attempt through the stages.
type PipelineContext struct {
	Name      string
	Params    []*ast.Variable
	Body      ast.Expression
	FrameSize int // slots used by params and let-bound variables
	Profile   *profile.MethodProfile

	// Written by the analyzer stage.
	Categories     map[*ast.Variable]typesystem.Category
	ResultCategory typesystem.Category

	// Written by the code generation stage.
	Compiled emit.Compiled

	Errors []error
}

// Processor is one stage of a pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Compilation is speculative, so the first stage
// that records an error ends the run.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		if len(ctx.Errors) > 0 {
			break
		}
	}
	return ctx
}

// Err returns the first recorded error.
func (ctx *PipelineContext) Err() error {
	if len(ctx.Errors) == 0 {
		return nil
	}
	return ctx.Errors[0]
}
