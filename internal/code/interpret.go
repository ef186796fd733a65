package code

import (
	"fmt"

	"github.com/funvibe/tiervm/internal/diagnostics"
	"github.com/funvibe/tiervm/internal/object"
)

// Interpret runs c against frame from instruction 0 until a Return. Every
// variable read and every Store is recorded in the variable's profile.
func Interpret(c *Code, frame []object.Object) (object.Object, error) {
	if len(frame) < c.FrameSize {
		return nil, fmt.Errorf("%s: frame has %d slots, need %d", c.Name, len(frame), c.FrameSize)
	}

	var acc object.Object = object.NIL
	ip := 0
	for ip < len(c.Instructions) {
		switch in := c.Instructions[ip].(type) {
		case Load:
			v, err := eval(in.Value, frame)
			if err != nil {
				return nil, err
			}
			acc = v

		case Store:
			in.Var.Profile.Record(acc)
			frame[in.Var.Index] = acc

		case Jump:
			ip = in.Target
			continue

		case JumpIfFalse:
			v, err := eval(in.Cond, frame)
			if err != nil {
				return nil, err
			}
			b, ok := v.(*object.Boolean)
			if !ok {
				return nil, diagnostics.NewRuntimeTypeError("if", "boolean", object.TypeName(v))
			}
			if !b.Value {
				ip = in.Target
				continue
			}

		case Call:
			args, err := evalAll(in.Args, frame)
			if err != nil {
				return nil, err
			}
			v, err := in.Callee.Invoke(args...)
			if err != nil {
				return nil, err
			}
			acc = v

		case Return:
			return eval(in.Value, frame)

		default:
			return nil, fmt.Errorf("%s: unknown instruction %T at %d", c.Name, in, ip)
		}
		ip++
	}
	return nil, fmt.Errorf("%s: fell off the end of the code", c.Name)
}

func eval(op Operand, frame []object.Object) (object.Object, error) {
	switch o := op.(type) {
	case ConstOperand:
		return o.Value, nil
	case VarOperand:
		v := frame[o.Var.Index]
		o.Var.Profile.Record(v)
		return v, nil
	case PrimOperand:
		args, err := evalAll(o.Args, frame)
		if err != nil {
			return nil, err
		}
		return o.Prim.Apply(args...)
	default:
		return nil, fmt.Errorf("unknown operand %T", op)
	}
}

func evalAll(ops []Operand, frame []object.Object) ([]object.Object, error) {
	args := make([]object.Object, len(ops))
	for i, op := range ops {
		v, err := eval(op, frame)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}
