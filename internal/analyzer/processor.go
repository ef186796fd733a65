package analyzer

import "github.com/funvibe/tiervm/internal/pipeline"

// Processor is the analysis stage of the compilation pipeline.
type Processor struct{}

func (Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Body == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	analysis := Analyze(ctx.Params, ctx.Body)
	ctx.Categories = analysis.Variables
	ctx.ResultCategory = analysis.Result
	return ctx
}
