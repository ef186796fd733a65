package vm

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/object"
)

// ErrDeoptimize is returned when an argument fails its entry guard. No
// instruction with side effects has run at that point, so the caller may
// repeat the call on another representation.
var ErrDeoptimize = errors.New("deoptimize: argument guard failed")

// Program is an immutable compiled function. Runs share nothing but the
// program itself.
type Program struct {
	ID        uuid.UUID
	Name      string
	Arity     int
	FrameSize int
	Chunk     *Chunk
}

// Size is the bytecode length.
func (p *Program) Size() int { return len(p.Chunk.Code) }

// Run executes the program with boxed arguments.
func (p *Program) Run(args ...object.Object) (object.Object, error) {
	if len(args) != p.Arity {
		return nil, diagnostics.NewArityError(p.Name, p.Arity, len(args))
	}
	frame := make([]Value, p.FrameSize)
	for i := range frame {
		frame[i] = RefVal(object.NIL)
	}
	for i, arg := range args {
		frame[i] = RefVal(arg)
	}
	m := &machine{prog: p, frame: frame, stack: make([]Value, 0, 16)}
	return m.run()
}

type machine struct {
	prog  *Program
	frame []Value
	stack []Value
}

func (m *machine) push(v Value) { m.stack = append(m.stack, v) }

func (m *machine) pop() Value {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *machine) popArgs(argc int) []object.Object {
	args := make([]object.Object, argc)
	base := len(m.stack) - argc
	for i := 0; i < argc; i++ {
		args[i] = m.stack[base+i].AsObject()
	}
	m.stack = m.stack[:base]
	return args
}

func (m *machine) run() (object.Object, error) {
	chunk := m.prog.Chunk
	code := chunk.Code
	ip := 0

	for ip < len(code) {
		op := Opcode(code[ip])
		ip++

		switch op {
		case OP_ICONST_0, OP_ICONST_1, OP_ICONST_2, OP_ICONST_3, OP_ICONST_4, OP_ICONST_5:
			m.push(IntVal(int64(op - OP_ICONST_0)))

		case OP_BIPUSH:
			m.push(IntVal(int64(int8(code[ip]))))
			ip++

		case OP_SIPUSH:
			m.push(IntVal(int64(int16(uint16(chunk.readU16(ip))))))
			ip += 2

		case OP_ILDC:
			m.push(IntVal(chunk.Constants[chunk.readU16(ip)].(*object.Integer).Value))
			ip += 2

		case OP_ALDC:
			m.push(RefVal(chunk.Constants[chunk.readU16(ip)]))
			ip += 2

		case OP_ILOAD, OP_ALOAD:
			m.push(m.frame[code[ip]])
			ip++

		case OP_ISTORE, OP_ASTORE:
			m.frame[code[ip]] = m.pop()
			ip++

		case OP_GUARD_INT:
			slot := code[ip]
			ip++
			n, ok := m.frame[slot].Obj.(*object.Integer)
			if !ok {
				return nil, ErrDeoptimize
			}
			m.frame[slot] = IntVal(n.Value)

		case OP_IADD:
			b, a := m.pop(), m.pop()
			m.push(IntVal(a.Data + b.Data))
		case OP_ISUB:
			b, a := m.pop(), m.pop()
			m.push(IntVal(a.Data - b.Data))
		case OP_IMUL:
			b, a := m.pop(), m.pop()
			m.push(IntVal(a.Data * b.Data))
		case OP_INEG:
			m.push(IntVal(-m.pop().Data))
		case OP_ICMPLT:
			b, a := m.pop(), m.pop()
			m.push(BoolVal(a.Data < b.Data))
		case OP_ICMPEQ, OP_BCMPEQ:
			b, a := m.pop(), m.pop()
			m.push(BoolVal(a.Data == b.Data))
		case OP_BNOT:
			m.push(BoolVal(!m.pop().AsBool()))

		case OP_BOX_INT, OP_BOX_BOOL:
			at := len(m.stack) - 1 - int(code[ip])
			ip++
			m.stack[at] = RefVal(m.stack[at].AsObject())

		case OP_UNBOX_INT:
			at := len(m.stack) - 1 - int(code[ip])
			name := chunk.Names[chunk.readU16(ip+1)]
			ip += 3
			n, ok := m.stack[at].Obj.(*object.Integer)
			if !ok {
				return nil, diagnostics.NewRuntimeTypeError(name, "integer", object.TypeName(m.stack[at].Obj))
			}
			m.stack[at] = IntVal(n.Value)

		case OP_UNBOX_BOOL:
			at := len(m.stack) - 1 - int(code[ip])
			name := chunk.Names[chunk.readU16(ip+1)]
			ip += 3
			b, ok := m.stack[at].Obj.(*object.Boolean)
			if !ok {
				return nil, diagnostics.NewRuntimeTypeError(name, "boolean", object.TypeName(m.stack[at].Obj))
			}
			m.stack[at] = BoolVal(b.Value)

		case OP_INVOKE_HELPER:
			h := chunk.Helpers[chunk.readU16(ip)]
			argc := int(code[ip+2])
			ip += 3
			result, err := h.Apply(m.popArgs(argc)...)
			if err != nil {
				return nil, err
			}
			m.push(RefVal(result))

		case OP_CALL:
			callee := chunk.Callees[chunk.readU16(ip)]
			argc := int(code[ip+2])
			ip += 3
			result, err := callee.Invoke(m.popArgs(argc)...)
			if err != nil {
				return nil, err
			}
			m.push(RefVal(result))

		case OP_GETFIELD:
			site := chunk.Sites[chunk.readU16(ip)]
			ip += 2
			v, err := site.Get(m.pop().Obj)
			if err != nil {
				return nil, err
			}
			m.push(RefVal(v))

		case OP_PUTFIELD:
			site := chunk.Sites[chunk.readU16(ip)]
			ip += 2
			val, obj := m.pop(), m.pop()
			if err := site.Set(obj.Obj, val.Obj); err != nil {
				return nil, err
			}
			m.push(val)

		case OP_GOTO:
			ip = chunk.readU16(ip)

		case OP_IFEQ:
			target := chunk.readU16(ip)
			ip += 2
			if !m.pop().AsBool() {
				ip = target
			}

		case OP_POP:
			m.pop()
		case OP_DUP:
			m.push(m.stack[len(m.stack)-1])

		case OP_IRETURN:
			return object.NewInteger(m.pop().Data), nil
		case OP_ARETURN:
			return m.pop().AsObject(), nil

		default:
			return nil, fmt.Errorf("vm: %s: unknown opcode %d at %d", m.prog.Name, op, ip-1)
		}
	}
	return nil, fmt.Errorf("vm: %s: ran past the end of the code", m.prog.Name)
}
