package nexus

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/funvibe/tiervm/internal/ast"
	"github.com/funvibe/tiervm/internal/backend"
	"github.com/funvibe/tiervm/internal/code"
	"github.com/funvibe/tiervm/internal/config"
	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/pipeline"
	"github.com/funvibe/tiervm/internal/profile"
	"github.com/funvibe/tiervm/internal/vm"
)

var (
	// ErrNoBody is returned when invoking a function whose body was never set.
	ErrNoBody = errors.New("function has no body")
	// ErrInterpretOnly is returned by ForceCompile once tiering was given up.
	ErrInterpretOnly = errors.New("function is interpret-only")
)

// rep is one installed representation set. It is never mutated after
// publication; transitions publish a modified copy.
type rep struct {
	body      ast.Expression
	frameSize int
	code      *code.Code
	profile   *profile.MethodProfile

	interp backend.Backend
	active backend.Backend
	prog   *vm.Program
}

// Function is a named, tier-managed function. It implements
// object.Callable, so call expressions and compiled code invoke it directly.
type Function struct {
	rt     *Runtime
	id     uuid.UUID
	name   string
	params []*ast.Variable

	rep   atomic.Pointer[rep]
	group singleflight.Group

	interpretOnly atomic.Bool
	nextAttempt   atomic.Int64
	failures      atomic.Int64
	compilations  atomic.Int64
	deopts        atomic.Int64
	deoptsSince   atomic.Int64
}

// Stats is a snapshot of a function's tiering counters.
type Stats struct {
	Invocations     int64
	Compilations    int64
	CompileFailures int64
	Deopts          int64
	Tier            backend.Tier
	InterpretOnly   bool
	ProgramSize     int
}

func newFunction(rt *Runtime, name string, params []*ast.Variable) *Function {
	fn := &Function{rt: rt, id: uuid.New(), name: name, params: params}
	fn.nextAttempt.Store(rt.cfg.CompileThreshold)
	return fn
}

func (f *Function) ID() uuid.UUID           { return f.id }
func (f *Function) Name() string            { return f.name }
func (f *Function) Arity() int              { return len(f.params) }
func (f *Function) Params() []*ast.Variable { return f.params }
func (f *Function) InterpretOnly() bool     { return f.interpretOnly.Load() }
func (f *Function) Runtime() *Runtime       { return f.rt }
func (f *Function) logf(format string, args ...interface{}) {
	f.rt.logger.Printf(f.name+": "+format, args...)
}

// SetBody installs body as the function's interpreted representation and
// resets its tiering state. Variables get their frame slots here.
func (f *Function) SetBody(body ast.Expression) error {
	size, err := ast.AssignSlots(f.params, body)
	if err != nil {
		return fmt.Errorf("%s: %w", f.name, err)
	}
	c, err := code.Lower(f.name, f.params, body, size)
	if err != nil {
		return fmt.Errorf("%s: %w", f.name, err)
	}

	mp := profile.NewMethodProfile()
	for _, p := range f.params {
		mp.Track(p.Index, p.Name, p.Profile)
	}
	ast.Walk(body, func(e ast.Expression) bool {
		if l, ok := e.(*ast.Let); ok {
			mp.Track(l.Variable.Index, l.Variable.Name, l.Variable.Profile)
		}
		return true
	})
	for _, t := range c.Temps {
		mp.Track(t.Index, t.Name, t.Profile)
	}

	var interp backend.Backend = backend.NewInterpreted(c)
	if f.rt.cfg.Interpreter == config.InterpreterTree {
		interp = backend.NewTreeWalk(body, size)
	}

	f.interpretOnly.Store(false)
	f.failures.Store(0)
	f.deoptsSince.Store(0)
	f.nextAttempt.Store(f.rt.cfg.CompileThreshold)
	f.rep.Store(&rep{
		body:      body,
		frameSize: size,
		code:      c,
		profile:   mp,
		interp:    interp,
		active:    interp,
	})
	f.logf("installed %s representation", interp.Name())
	return nil
}

// Invoke runs the function on its current representation. The
// representation is read once, so a concurrent installation never affects
// a call already under way.
func (f *Function) Invoke(args ...object.Object) (object.Object, error) {
	if len(args) != len(f.params) {
		return nil, diagnostics.NewArityError(f.name, len(f.params), len(args))
	}
	r := f.rep.Load()
	if r == nil {
		return nil, fmt.Errorf("%s: %w", f.name, ErrNoBody)
	}

	n := r.profile.Invoke()
	if r.active.Tier() == backend.Interpreted && f.due(n) {
		due := func(cur *rep) bool {
			return cur.active.Tier() == backend.Interpreted && f.due(n)
		}
		if err := f.compile(r, due); err != nil {
			f.logf("compilation failed: %v", err)
		}
		r = f.rep.Load()
	}

	res, err := r.active.Run(args...)
	if errors.Is(err, vm.ErrDeoptimize) {
		f.deoptimize(r)
		return r.interp.Run(args...)
	}
	return res, err
}

func (f *Function) due(invocations int64) bool {
	return !f.interpretOnly.Load() && invocations >= f.nextAttempt.Load()
}

// ForceCompile compiles the function now, whatever its invocation count.
// A compiled function is recompiled from its current profile.
func (f *Function) ForceCompile() error {
	r := f.rep.Load()
	if r == nil {
		return fmt.Errorf("%s: %w", f.name, ErrNoBody)
	}
	if f.interpretOnly.Load() {
		return fmt.Errorf("%s: %w", f.name, ErrInterpretOnly)
	}
	return f.compile(r, nil)
}

// compile runs the pipeline once per concurrent burst. Callers whose view
// of the representation is stale, or for which check no longer holds once
// they get their turn, do nothing.
func (f *Function) compile(from *rep, check func(*rep) bool) error {
	_, err, _ := f.group.Do("compile", func() (interface{}, error) {
		cur := f.rep.Load()
		if cur != from || (check != nil && !check(cur)) {
			return nil, nil
		}
		return nil, f.build(cur)
	})
	return err
}

func (f *Function) build(cur *rep) error {
	ctx := f.rt.pipeline.Run(&pipeline.PipelineContext{
		Name:      f.name,
		Params:    f.params,
		Body:      cur.body,
		FrameSize: cur.frameSize,
		Profile:   cur.profile,
	})
	if err := ctx.Err(); err != nil {
		f.failed(cur, err)
		return err
	}
	prog, ok := ctx.Compiled.(*vm.Program)
	if !ok {
		err := fmt.Errorf("unexpected compiled representation %T", ctx.Compiled)
		f.failed(cur, err)
		return err
	}

	next := *cur
	next.active = backend.NewCompiled(prog)
	next.prog = prog
	if !f.rep.CompareAndSwap(cur, &next) {
		f.logf("body replaced during compilation, result dropped")
		return nil
	}
	f.compilations.Add(1)
	f.deoptsSince.Store(0)
	f.logf("compiled (%d bytes) after %d invocations", prog.Size(), cur.profile.Invocations())
	return nil
}

// failed applies the failure policy. Generator contract violations end
// tiering for good; anything else is retried after another threshold
// window until the attempts run out.
func (f *Function) failed(cur *rep, err error) {
	attempts := f.failures.Add(1)
	switch {
	case diagnostics.IsGeneratorInternalError(err):
		f.interpretOnly.Store(true)
		f.logf("interpret-only: %v", err)
	case attempts >= int64(f.rt.cfg.MaxCompileAttempts):
		f.interpretOnly.Store(true)
		f.logf("interpret-only after %d failed attempts", attempts)
	default:
		f.nextAttempt.Store(cur.profile.Invocations() + f.rt.cfg.CompileThreshold)
	}

	if cur.active.Tier() == backend.Compiled {
		next := *cur
		next.active = cur.interp
		next.prog = nil
		f.rep.CompareAndSwap(cur, &next)
	}
}

// deoptimize records a guard failure of r's compiled code and recompiles
// once enough have accumulated.
func (f *Function) deoptimize(r *rep) {
	f.deopts.Add(1)
	since := f.deoptsSince.Add(1)
	f.logf("deoptimized (%d since compilation)", since)
	if since < f.rt.cfg.RecompileAfterDeopts {
		return
	}
	stale := func(cur *rep) bool {
		return cur.active.Tier() == backend.Compiled &&
			f.deoptsSince.Load() >= f.rt.cfg.RecompileAfterDeopts
	}
	if err := f.compile(r, stale); err != nil {
		f.logf("recompilation failed: %v", err)
	}
}

// State is the tier of the active representation. A function without a
// body reports Interpreted.
func (f *Function) State() backend.Tier {
	if r := f.rep.Load(); r != nil {
		return r.active.Tier()
	}
	return backend.Interpreted
}

// Backend is the active representation, or nil before SetBody.
func (f *Function) Backend() backend.Backend {
	if r := f.rep.Load(); r != nil {
		return r.active
	}
	return nil
}

func (f *Function) Profile() *profile.MethodProfile {
	if r := f.rep.Load(); r != nil {
		return r.profile
	}
	return nil
}

func (f *Function) Code() *code.Code {
	if r := f.rep.Load(); r != nil {
		return r.code
	}
	return nil
}

func (f *Function) Body() ast.Expression {
	if r := f.rep.Load(); r != nil {
		return r.body
	}
	return nil
}

// Program is the compiled program, or nil while interpreted.
func (f *Function) Program() *vm.Program {
	if r := f.rep.Load(); r != nil {
		return r.prog
	}
	return nil
}

func (f *Function) Stats() Stats {
	s := Stats{
		Compilations:    f.compilations.Load(),
		CompileFailures: f.failures.Load(),
		Deopts:          f.deopts.Load(),
		InterpretOnly:   f.interpretOnly.Load(),
	}
	if r := f.rep.Load(); r != nil {
		s.Invocations = r.profile.Invocations()
		s.Tier = r.active.Tier()
		if r.prog != nil {
			s.ProgramSize = r.prog.Size()
		}
	}
	return s
}
