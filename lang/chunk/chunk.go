// Package chunk is the compiler's output format: a flat byte array of
// opcodes and operands, a parallel line table for runtime error reporting,
// and a constant pool, matching clox's "dumb" (no index structures beyond
// what's needed) chunk design.
package chunk

import (
	"fmt"

	"github.com/mna/ploxvm/lang/value"
)

// MaxConstants is the number of distinct constants a single chunk can hold:
// constants are addressed by a 1-byte operand, so the pool cannot exceed
// 256 entries.
const MaxConstants = 256

// Chunk is one compiled unit of bytecode, one per top-level program or
// REPL line.
type Chunk struct {
	Code      []byte
	Lines     []int // Lines[i] is the source line that produced Code[i]
	Constants []value.Value
}

// New returns an empty Chunk.
func New() *Chunk {
	return &Chunk{}
}

// Write appends a single byte of code, recording line as the source line it
// came from.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends val to the constant pool and returns its index. It
// panics if the pool is already full; the compiler must check
// len(Constants) against MaxConstants before calling this in a context
// where it can report a compile error instead.
func (c *Chunk) AddConstant(val value.Value) int {
	if len(c.Constants) >= MaxConstants {
		panic(fmt.Sprintf("chunk: constant pool exceeds %d entries", MaxConstants))
	}
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1
}

// LineAt returns the source line that produced the instruction at offset,
// used to format runtime errors from the machine's ip.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return -1
	}
	return c.Lines[offset]
}
