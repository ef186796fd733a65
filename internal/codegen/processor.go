package codegen

import (
	"github.com/funvibe/tiervm/internal/emit"
	"github.com/funvibe/tiervm/internal/pipeline"
)

// Processor is the code generation stage. NewEmitter supplies a fresh
// emitter for each attempt.
type Processor struct {
	NewEmitter func(ctx *pipeline.PipelineContext) emit.Emitter
}

func (p Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Body == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	compiled, err := Generate(ctx.Params, ctx.Body, ctx.Categories, p.NewEmitter(ctx))
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Compiled = compiled
	return ctx
}
