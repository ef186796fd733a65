package vm

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/funvibe/tiervm/internal/emit"
	"github.com/funvibe/tiervm/internal/layout"
	"github.com/funvibe/tiervm/internal/object"
	"github.com/funvibe/tiervm/internal/typesystem"
)

const (
	maxSlots   = math.MaxUint8 + 1
	maxIndex   = math.MaxUint16
	maxCodeLen = math.MaxUint16
)

type fixup struct {
	at    int
	label emit.Label
}

// Assembler implements emit.Emitter by writing bytecode into a Chunk. The
// first misuse is remembered and reported by Finish.
type Assembler struct {
	name      string
	arity     int
	frameSize int

	chunk  *Chunk
	labels []int
	fixups []fixup
	err    error
}

// NewAssembler starts a program for a function of the given arity whose
// frame holds frameSize slots.
func NewAssembler(name string, arity, frameSize int) *Assembler {
	a := &Assembler{name: name, arity: arity, frameSize: frameSize, chunk: NewChunk()}
	if frameSize > maxSlots {
		a.fail("frame of %d slots exceeds %d", frameSize, maxSlots)
	}
	return a
}

func (a *Assembler) fail(format string, args ...interface{}) {
	if a.err == nil {
		a.err = fmt.Errorf("vm: %s: %s", a.name, fmt.Sprintf(format, args...))
	}
}

func (a *Assembler) op(op Opcode) { a.chunk.WriteOp(op) }

func (a *Assembler) index(kind string, idx int) {
	if idx > maxIndex {
		a.fail("too many %s", kind)
	}
	a.chunk.WriteU16(idx)
}

func (a *Assembler) slot(slot int) {
	if slot < 0 || slot >= a.frameSize {
		a.fail("slot %d outside frame of %d", slot, a.frameSize)
		slot = 0
	}
	a.chunk.Write(byte(slot))
}

func (a *Assembler) depth(depth int) {
	if depth < 0 || depth > math.MaxUint8 {
		a.fail("operand depth %d out of range", depth)
		depth = 0
	}
	a.chunk.Write(byte(depth))
}

// LoadInt picks the shortest encoding for n.
func (a *Assembler) LoadInt(n int64) {
	switch {
	case n >= 0 && n <= 5:
		a.op(OP_ICONST_0 + Opcode(n))
	case n >= math.MinInt8 && n <= math.MaxInt8:
		a.op(OP_BIPUSH)
		a.chunk.Write(byte(int8(n)))
	case n >= math.MinInt16 && n <= math.MaxInt16:
		a.op(OP_SIPUSH)
		a.chunk.WriteU16(int(uint16(int16(n))))
	default:
		a.op(OP_ILDC)
		a.index("constants", a.chunk.AddConstant(object.NewInteger(n)))
	}
}

func (a *Assembler) LoadConst(v object.Object) {
	a.op(OP_ALDC)
	a.index("constants", a.chunk.AddConstant(v))
}

func (a *Assembler) LoadSlot(slot int, c typesystem.Category) {
	switch c {
	case typesystem.Int:
		a.op(OP_ILOAD)
	case typesystem.Reference:
		a.op(OP_ALOAD)
	default:
		a.fail("no %s slots", c)
	}
	a.slot(slot)
}

func (a *Assembler) StoreSlot(slot int, c typesystem.Category) {
	switch c {
	case typesystem.Int:
		a.op(OP_ISTORE)
	case typesystem.Reference:
		a.op(OP_ASTORE)
	default:
		a.fail("no %s slots", c)
	}
	a.slot(slot)
}

func (a *Assembler) GuardInt(slot int) {
	if slot >= a.arity {
		a.fail("guard on non-argument slot %d", slot)
	}
	a.op(OP_GUARD_INT)
	a.slot(slot)
}

func (a *Assembler) NewLabel() emit.Label {
	a.labels = append(a.labels, -1)
	return emit.Label(len(a.labels) - 1)
}

func (a *Assembler) Mark(l emit.Label) {
	if int(l) >= len(a.labels) || a.labels[l] >= 0 {
		a.fail("bad or duplicate label %d", l)
		return
	}
	a.labels[l] = len(a.chunk.Code)
}

func (a *Assembler) branch(op Opcode, l emit.Label) {
	a.op(op)
	a.fixups = append(a.fixups, fixup{at: len(a.chunk.Code), label: l})
	a.chunk.WriteU16(0)
}

func (a *Assembler) Jump(l emit.Label)        { a.branch(OP_GOTO, l) }
func (a *Assembler) JumpIfFalse(l emit.Label) { a.branch(OP_IFEQ, l) }

func (a *Assembler) argc(callee string, argc int) {
	if argc < 0 || argc > math.MaxUint8 {
		a.fail("call to %s with %d arguments exceeds %d", callee, argc, math.MaxUint8)
		argc = 0
	}
	a.chunk.Write(byte(argc))
}

// Call leaves the arity check to the callee, so a mismatch raises the same
// ArityError as in the interpreter.
func (a *Assembler) Call(callee object.Callable, argc int) {
	a.op(OP_CALL)
	a.index("callees", a.chunk.addCallee(callee))
	a.argc(callee.Name(), argc)
}

func (a *Assembler) CallHelper(h emit.Helper, argc int) {
	a.op(OP_INVOKE_HELPER)
	a.index("helpers", a.chunk.addHelper(h))
	a.argc(h.Name(), argc)
}

var rawOps = map[emit.Op]Opcode{
	emit.IAdd:   OP_IADD,
	emit.ISub:   OP_ISUB,
	emit.IMul:   OP_IMUL,
	emit.INeg:   OP_INEG,
	emit.ICmpLt: OP_ICMPLT,
	emit.ICmpEq: OP_ICMPEQ,
	emit.BCmpEq: OP_BCMPEQ,
	emit.BNot:   OP_BNOT,
}

func (a *Assembler) Raw(op emit.Op) {
	code, ok := rawOps[op]
	if !ok {
		a.fail("unknown raw operation %s", op)
		return
	}
	a.op(code)
}

func (a *Assembler) Adapt(ad emit.Adaptation, depth int, name string) {
	switch ad {
	case emit.BoxInt:
		a.op(OP_BOX_INT)
		a.depth(depth)
	case emit.BoxBool:
		a.op(OP_BOX_BOOL)
		a.depth(depth)
	case emit.UnboxInt:
		a.op(OP_UNBOX_INT)
		a.depth(depth)
		a.index("names", a.chunk.addName(name))
	case emit.UnboxBool:
		a.op(OP_UNBOX_BOOL)
		a.depth(depth)
		a.index("names", a.chunk.addName(name))
	default:
		a.fail("unknown adaptation %s", ad)
	}
}

func (a *Assembler) GetField(site *layout.Site) {
	a.op(OP_GETFIELD)
	a.index("sites", a.chunk.addSite(site))
}

func (a *Assembler) SetField(site *layout.Site) {
	a.op(OP_PUTFIELD)
	a.index("sites", a.chunk.addSite(site))
}

func (a *Assembler) Pop() { a.op(OP_POP) }
func (a *Assembler) Dup() { a.op(OP_DUP) }

func (a *Assembler) Return(c typesystem.Category) {
	switch c {
	case typesystem.Int:
		a.op(OP_IRETURN)
	case typesystem.Reference:
		a.op(OP_ARETURN)
	default:
		a.fail("cannot return %s", c)
	}
}

// Finish resolves branch targets and seals the program.
func (a *Assembler) Finish() (emit.Compiled, error) {
	prog, err := a.Program()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// Program is Finish with the concrete result type.
func (a *Assembler) Program() (*Program, error) {
	if len(a.chunk.Code) > maxCodeLen {
		a.fail("code size %d exceeds %d", len(a.chunk.Code), maxCodeLen)
	}
	for _, f := range a.fixups {
		if int(f.label) >= len(a.labels) || a.labels[f.label] < 0 {
			a.fail("branch to unmarked label %d", f.label)
			break
		}
		target := a.labels[f.label]
		a.chunk.Code[f.at] = byte(target >> 8)
		a.chunk.Code[f.at+1] = byte(target)
	}
	if a.err != nil {
		return nil, a.err
	}
	return &Program{
		ID:        uuid.New(),
		Name:      a.name,
		Arity:     a.arity,
		FrameSize: a.frameSize,
		Chunk:     a.chunk,
	}, nil
}
