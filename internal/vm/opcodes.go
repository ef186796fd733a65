// Package vm is the native machine compiled functions run on: an assembler
// implementing emit.Emitter, the bytecode it produces, and the executing
// loop over typed stack values.
package vm

// Opcode represents a single VM instruction
type Opcode byte

const (
	// Constants
	OP_ICONST_0 Opcode = iota // Push int 0 (through OP_ICONST_5)
	OP_ICONST_1
	OP_ICONST_2
	OP_ICONST_3
	OP_ICONST_4
	OP_ICONST_5
	OP_BIPUSH // Push int from a signed byte operand
	OP_SIPUSH // Push int from a signed 16-bit operand
	OP_ILDC   // Push int constant from pool [idx:u16]
	OP_ALDC   // Push reference constant from pool [idx:u16]

	// Frame slots [slot:u8]
	OP_ILOAD
	OP_ALOAD
	OP_ISTORE
	OP_ASTORE
	OP_GUARD_INT // Unbox an argument slot in place or deoptimize

	// Raw operations on unboxed operands
	OP_IADD
	OP_ISUB
	OP_IMUL
	OP_INEG
	OP_ICMPLT
	OP_ICMPEQ
	OP_BCMPEQ
	OP_BNOT

	// Representation changes [depth:u8], unboxing also [name:u16]
	OP_BOX_INT
	OP_UNBOX_INT
	OP_BOX_BOOL
	OP_UNBOX_BOOL

	// Calls [idx:u16 argc:u8]
	OP_INVOKE_HELPER
	OP_CALL

	// Fixed-shape object fields [site:u16]
	OP_GETFIELD
	OP_PUTFIELD

	// Control flow [target:u16], absolute offsets
	OP_GOTO
	OP_IFEQ // Pop a bool, jump when false

	OP_POP
	OP_DUP
	OP_IRETURN
	OP_ARETURN
)

// OpcodeNames maps opcodes to their string names (for debugging)
var OpcodeNames = map[Opcode]string{
	OP_ICONST_0:      "ICONST_0",
	OP_ICONST_1:      "ICONST_1",
	OP_ICONST_2:      "ICONST_2",
	OP_ICONST_3:      "ICONST_3",
	OP_ICONST_4:      "ICONST_4",
	OP_ICONST_5:      "ICONST_5",
	OP_BIPUSH:        "BIPUSH",
	OP_SIPUSH:        "SIPUSH",
	OP_ILDC:          "ILDC",
	OP_ALDC:          "ALDC",
	OP_ILOAD:         "ILOAD",
	OP_ALOAD:         "ALOAD",
	OP_ISTORE:        "ISTORE",
	OP_ASTORE:        "ASTORE",
	OP_GUARD_INT:     "GUARD_INT",
	OP_IADD:          "IADD",
	OP_ISUB:          "ISUB",
	OP_IMUL:          "IMUL",
	OP_INEG:          "INEG",
	OP_ICMPLT:        "ICMPLT",
	OP_ICMPEQ:        "ICMPEQ",
	OP_BCMPEQ:        "BCMPEQ",
	OP_BNOT:          "BNOT",
	OP_BOX_INT:       "BOX_INT",
	OP_UNBOX_INT:     "UNBOX_INT",
	OP_BOX_BOOL:      "BOX_BOOL",
	OP_UNBOX_BOOL:    "UNBOX_BOOL",
	OP_INVOKE_HELPER: "INVOKE_HELPER",
	OP_CALL:          "CALL",
	OP_GETFIELD:      "GETFIELD",
	OP_PUTFIELD:      "PUTFIELD",
	OP_GOTO:          "GOTO",
	OP_IFEQ:          "IFEQ",
	OP_POP:           "POP",
	OP_DUP:           "DUP",
	OP_IRETURN:       "IRETURN",
	OP_ARETURN:       "ARETURN",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}
