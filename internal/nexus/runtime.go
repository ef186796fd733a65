// Package nexus owns the executable state of every function: it decides
// when a function moves from the interpreted tier to compiled code and
// installs the new representation without disturbing calls in flight.
package nexus

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/funvibe/tiervm/internal/analyzer"
	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/codegen"
	"github.com/funvibe/tiervm/internal/config"
	"github.com/funvibe/tiervm/internal/emit"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/pipeline"
	"github.com/funvibe/tiervm/internal/vm"
)

// Runtime is a namespace of functions sharing one tiering configuration.
type Runtime struct {
	cfg      *config.Config
	logger   *log.Logger
	pipeline *pipeline.Pipeline

	mu        sync.RWMutex
	functions map[string]*Function
}

// New creates a runtime. A nil cfg selects the defaults.
func New(cfg *config.Config) *Runtime {
	if cfg == nil {
		cfg = config.Default()
	}
	out := io.Discard
	if cfg.Trace {
		out = os.Stderr
	}
	return &Runtime{
		cfg:       cfg,
		logger:    log.New(out, "tiervm: ", 0),
		pipeline:  newPipeline(),
		functions: make(map[string]*Function),
	}
}

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(
		analyzer.Processor{},
		codegen.Processor{NewEmitter: func(ctx *pipeline.PipelineContext) emit.Emitter {
			return vm.NewAssembler(ctx.Name, len(ctx.Params), ctx.FrameSize)
		}},
	)
}

func (rt *Runtime) Config() *config.Config { return rt.cfg }

// SetLogger redirects trace output.
func (rt *Runtime) SetLogger(l *log.Logger) { rt.logger = l }

// Define creates a function without a body. Defining an existing name
// replaces the namespace entry; callables already captured by call
// expressions keep the old function.
func (rt *Runtime) Define(name string, params ...*ast.Variable) *Function {
	fn := newFunction(rt, name, params)
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, ok := rt.functions[name]; ok {
		rt.logger.Printf("%s: redefined", name)
	}
	rt.functions[name] = fn
	return fn
}

func (rt *Runtime) Lookup(name string) (*Function, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	fn, ok := rt.functions[name]
	return fn, ok
}

// Invoke calls the named function.
func (rt *Runtime) Invoke(name string, args ...object.Object) (object.Object, error) {
	fn, ok := rt.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("undefined function %q", name)
	}
	return fn.Invoke(args...)
}

// Functions returns the defined functions sorted by name.
func (rt *Runtime) Functions() []*Function {
	rt.mu.RLock()
	out := make([]*Function, 0, len(rt.functions))
	for _, fn := range rt.functions {
		out = append(out, fn)
	}
	rt.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
