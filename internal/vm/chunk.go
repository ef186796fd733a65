package vm

import (
	"github.com/funvibe/tiervm/internal/emit"
	"github.com/funvibe/tiervm/internal/layout"
	"github.com/funvibe/tiervm/internal/object"
)

// Chunk represents a sequence of bytecode instructions and the tables its
// operands index.
type Chunk struct {
	// Code is the bytecode instructions
	Code []byte

	// Constants pool: large integers and reference literals
	Constants []object.Object

	Callees []object.Callable
	Helpers []emit.Helper
	Sites   []*layout.Site

	// Names used when an unboxing check fails
	Names []string
}

// NewChunk creates a new empty chunk
func NewChunk() *Chunk {
	return &Chunk{
		Code:      make([]byte, 0, 64),
		Constants: make([]object.Object, 0, 8),
	}
}

// Write adds a byte to the chunk
func (c *Chunk) Write(b byte) {
	c.Code = append(c.Code, b)
}

// WriteOp writes an opcode to the chunk
func (c *Chunk) WriteOp(op Opcode) {
	c.Write(byte(op))
}

// WriteU16 writes a big-endian 16-bit operand
func (c *Chunk) WriteU16(v int) {
	c.Code = append(c.Code, byte(v>>8), byte(v))
}

// AddConstant adds a constant to the pool and returns its index
func (c *Chunk) AddConstant(value object.Object) int {
	c.Constants = append(c.Constants, value)
	return len(c.Constants) - 1
}

func (c *Chunk) addCallee(callee object.Callable) int {
	c.Callees = append(c.Callees, callee)
	return len(c.Callees) - 1
}

func (c *Chunk) addHelper(h emit.Helper) int {
	c.Helpers = append(c.Helpers, h)
	return len(c.Helpers) - 1
}

func (c *Chunk) addSite(s *layout.Site) int {
	c.Sites = append(c.Sites, s)
	return len(c.Sites) - 1
}

func (c *Chunk) addName(name string) int {
	for i, existing := range c.Names {
		if existing == name {
			return i
		}
	}
	c.Names = append(c.Names, name)
	return len(c.Names) - 1
}

func (c *Chunk) readU16(offset int) int {
	return int(c.Code[offset])<<8 | int(c.Code[offset+1])
}
