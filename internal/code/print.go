package code

import (
	"fmt"
	"strings"
)

// Print returns a listing of c, one instruction per line.
func Print(c *Code) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("== %s (frame %d) ==\n", c.Name, c.FrameSize))
	for i, in := range c.Instructions {
		sb.WriteString(fmt.Sprintf("%04d %s\n", i, formatInstruction(in)))
	}
	return sb.String()
}

func formatInstruction(in Instruction) string {
	switch in := in.(type) {
	case Load:
		return "LOAD " + in.Value.String()
	case Store:
		return "STORE " + in.Var.String()
	case Jump:
		return fmt.Sprintf("JUMP %04d", in.Target)
	case JumpIfFalse:
		return fmt.Sprintf("JUMP_IF_FALSE %s %04d", in.Cond.String(), in.Target)
	case Call:
		if len(in.Args) == 0 {
			return "CALL " + in.Callee.Name()
		}
		return "CALL " + in.Callee.Name() + " " + joinOperands(in.Args)
	case Return:
		return "RETURN " + in.Value.String()
	default:
		return fmt.Sprintf("?%T", in)
	}
}
