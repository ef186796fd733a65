package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable representation of the bytecode
func Disassemble(p *Program) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s (arity %d, frame %d) ==\n", p.Name, p.Arity, p.FrameSize))

	offset := 0
	for offset < len(p.Chunk.Code) {
		offset = disassembleInstruction(&sb, p.Chunk, offset)
	}

	return sb.String()
}

// disassembleInstruction disassembles a single instruction
func disassembleInstruction(sb *strings.Builder, chunk *Chunk, offset int) int {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	op := Opcode(chunk.Code[offset])
	name := op.String()

	switch op {
	case OP_BIPUSH:
		sb.WriteString(fmt.Sprintf("%-16s %4d\n", name, int8(chunk.Code[offset+1])))
		return offset + 2
	case OP_SIPUSH:
		sb.WriteString(fmt.Sprintf("%-16s %4d\n", name, int16(uint16(chunk.readU16(offset+1)))))
		return offset + 3

	case OP_ILDC, OP_ALDC:
		return constantInstruction(sb, name, chunk, offset)

	case OP_ILOAD, OP_ALOAD, OP_ISTORE, OP_ASTORE, OP_GUARD_INT, OP_BOX_INT, OP_BOX_BOOL:
		return byteInstruction(sb, name, chunk, offset)

	case OP_UNBOX_INT, OP_UNBOX_BOOL:
		depth := chunk.Code[offset+1]
		sb.WriteString(fmt.Sprintf("%-16s %4d (%s)\n", name, depth, chunk.Names[chunk.readU16(offset+2)]))
		return offset + 4

	case OP_INVOKE_HELPER:
		idx := chunk.readU16(offset + 1)
		sb.WriteString(fmt.Sprintf("%-16s %4d '%s' argc=%d\n", name, idx, chunk.Helpers[idx].Name(), chunk.Code[offset+3]))
		return offset + 4
	case OP_CALL:
		idx := chunk.readU16(offset + 1)
		sb.WriteString(fmt.Sprintf("%-16s %4d '%s' argc=%d\n", name, idx, chunk.Callees[idx].Name(), chunk.Code[offset+3]))
		return offset + 4

	case OP_GETFIELD, OP_PUTFIELD:
		idx := chunk.readU16(offset + 1)
		sb.WriteString(fmt.Sprintf("%-16s %4d '.%s'\n", name, idx, chunk.Sites[idx].Field()))
		return offset + 3

	case OP_GOTO, OP_IFEQ:
		return jumpInstruction(sb, name, chunk, offset)

	default:
		if _, ok := OpcodeNames[op]; ok {
			return simpleInstruction(sb, name, offset)
		}
		sb.WriteString(fmt.Sprintf("Unknown opcode %d\n", op))
		return offset + 1
	}
}

func simpleInstruction(sb *strings.Builder, name string, offset int) int {
	sb.WriteString(fmt.Sprintf("%s\n", name))
	return offset + 1
}

func constantInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	idx := chunk.readU16(offset + 1)

	if idx < len(chunk.Constants) {
		sb.WriteString(fmt.Sprintf("%-16s %4d '%s'\n", name, idx, chunk.Constants[idx].Inspect()))
	} else {
		sb.WriteString(fmt.Sprintf("%-16s %4d (invalid)\n", name, idx))
	}

	return offset + 3
}

func byteInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	sb.WriteString(fmt.Sprintf("%-16s %4d\n", name, slot))
	return offset + 2
}

func jumpInstruction(sb *strings.Builder, name string, chunk *Chunk, offset int) int {
	target := chunk.readU16(offset + 1)
	sb.WriteString(fmt.Sprintf("%-16s -> %04d\n", name, target))
	return offset + 3
}
