// Package machine implements a stack-based bytecode interpreter: a
// fetch-decode-execute loop over a fixed-size evaluation stack, a globals
// table, and the runtime semantics of each opcode. Its shape — an explicit
// VM struct driving a dispatch loop, rather than a tree-walking Eval — is
// scaled down to this language's closed opcode set.
package machine

import (
	"fmt"

	"github.com/mna/ploxvm/internal/diagnostics"
	"github.com/mna/ploxvm/lang/chunk"
	"github.com/mna/ploxvm/lang/hashtable"
	"github.com/mna/ploxvm/lang/intern"
	"github.com/mna/ploxvm/lang/value"
)

// DefaultStackMax is the default evaluation stack capacity, overridable
// through internal/config for embedders that need deeper recursion of
// nested expressions than the reference interpreter allowed.
const DefaultStackMax = 256

// RuntimeError reports a failure raised while executing bytecode, carrying
// the source line the offending instruction was compiled from.
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Line, e.Message)
}

// Machine executes compiled chunks. A single Machine's globals and intern
// table persist across calls to Run, which is what lets a REPL build up
// state one line at a time.
type Machine struct {
	stack    []value.Value
	stackMax int
	globals  *hashtable.Table[value.Value]
	interns  *intern.Table

	chunk *chunk.Chunk
	ip    int

	// Stdout receives `print` output; defaults to nil, meaning fmt.Print's
	// destination, but cmd/ploxvm wires this to the process's real stdout.
	Stdout Writer

	Trace bool
}

// Writer is the minimal sink `print` writes to.
type Writer interface {
	WriteString(string) (int, error)
}

// New returns a Machine with an empty globals table, ready to run chunks.
// interns must be the same table the compiler used, so that OP_GET_GLOBAL's
// string constants resolve to the same *value.Str keys globals were
// defined under.
func New(interns *intern.Table, stackMax int) *Machine {
	if stackMax <= 0 {
		stackMax = DefaultStackMax
	}
	return &Machine{
		globals:  hashtable.New[value.Value](),
		interns:  interns,
		stackMax: stackMax,
	}
}

// Run executes c to completion, returning a *RuntimeError if execution
// aborted partway through.
func (m *Machine) Run(c *chunk.Chunk) error {
	m.chunk = c
	m.ip = 0
	m.stack = m.stack[:0]
	return m.run()
}

func (m *Machine) push(v value.Value) error {
	if len(m.stack) >= m.stackMax {
		return &RuntimeError{Line: m.currentLine(), Message: "Stack overflow."}
	}
	m.stack = append(m.stack, v)
	return nil
}

func (m *Machine) pop() value.Value {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *Machine) peek(distance int) value.Value {
	return m.stack[len(m.stack)-1-distance]
}

func (m *Machine) currentLine() int {
	return m.chunk.LineAt(m.ip - 1)
}

func (m *Machine) readByte() byte {
	b := m.chunk.Code[m.ip]
	m.ip++
	return b
}

func (m *Machine) readShort() int {
	hi := m.chunk.Code[m.ip]
	lo := m.chunk.Code[m.ip+1]
	m.ip += 2
	return int(hi)<<8 | int(lo)
}

func (m *Machine) readConstant() value.Value {
	return m.chunk.Constants[m.readByte()]
}

func (m *Machine) runtimeErrorf(format string, args ...any) error {
	return &RuntimeError{Line: m.currentLine(), Message: fmt.Sprintf(format, args...)}
}

func (m *Machine) run() error {
	for {
		if m.Trace {
			line, _ := m.chunk.DisassembleInstruction(m.ip)
			diagnostics.Logger.Debugf("stack=%v  %s", m.stack, line)
		}

		op := chunk.OpCode(m.readByte())
		switch op {
		case chunk.OpConstant:
			if err := m.push(m.readConstant()); err != nil {
				return err
			}

		case chunk.OpNil:
			if err := m.push(value.Nil); err != nil {
				return err
			}
		case chunk.OpTrue:
			if err := m.push(value.True); err != nil {
				return err
			}
		case chunk.OpFalse:
			if err := m.push(value.False); err != nil {
				return err
			}

		case chunk.OpPop:
			m.pop()

		case chunk.OpGetLocal:
			slot := m.readByte()
			if err := m.push(m.stack[slot]); err != nil {
				return err
			}
		case chunk.OpSetLocal:
			slot := m.readByte()
			m.stack[slot] = m.peek(0)

		case chunk.OpGetGlobal:
			name := m.readConstant().AsString()
			v, ok := m.globals.Get(name)
			if !ok {
				return m.runtimeErrorf("Undefined variable '%s'.", name.Bytes())
			}
			if err := m.push(v); err != nil {
				return err
			}
		case chunk.OpDefineGlobal:
			name := m.readConstant().AsString()
			m.globals.Set(name, m.peek(0))
			m.pop()
		case chunk.OpSetGlobal:
			name := m.readConstant().AsString()
			if m.globals.Set(name, m.peek(0)) {
				m.globals.Delete(name)
				return m.runtimeErrorf("Undefined variable '%s'.", name.Bytes())
			}

		case chunk.OpEqual:
			b := m.pop()
			a := m.pop()
			if err := m.push(value.Bool(value.Equal(a, b))); err != nil {
				return err
			}
		case chunk.OpGreater:
			if err := m.numberBinary(func(a, b float64) value.Value { return value.Bool(a > b) }); err != nil {
				return err
			}
		case chunk.OpLess:
			if err := m.numberBinary(func(a, b float64) value.Value { return value.Bool(a < b) }); err != nil {
				return err
			}

		case chunk.OpAdd:
			if err := m.add(); err != nil {
				return err
			}
		case chunk.OpSubtract:
			if err := m.numberBinary(func(a, b float64) value.Value { return value.Number(a - b) }); err != nil {
				return err
			}
		case chunk.OpMultiply:
			if err := m.numberBinary(func(a, b float64) value.Value { return value.Number(a * b) }); err != nil {
				return err
			}
		case chunk.OpDivide:
			if err := m.divide(); err != nil {
				return err
			}

		case chunk.OpNot:
			if err := m.push(value.Bool(m.pop().Falsey())); err != nil {
				return err
			}

		case chunk.OpNegate:
			if !m.peek(0).IsNumber() {
				return m.runtimeErrorf("Operand must be a number.")
			}
			v := m.pop()
			if err := m.push(value.Number(-v.AsNumber())); err != nil {
				return err
			}

		case chunk.OpPrint:
			m.writeLine(m.pop().String())

		case chunk.OpJump:
			offset := m.readShort()
			m.ip += offset
		case chunk.OpJumpIfFalse:
			offset := m.readShort()
			if m.peek(0).Falsey() {
				m.ip += offset
			}
		case chunk.OpLoop:
			offset := m.readShort()
			m.ip -= offset

		case chunk.OpReturn:
			return nil

		default:
			return m.runtimeErrorf("Unknown opcode %d.", op)
		}
	}
}

func (m *Machine) writeLine(s string) {
	if m.Stdout != nil {
		m.Stdout.WriteString(s + "\n")
		return
	}
	fmt.Println(s)
}

func (m *Machine) numberBinary(fn func(a, b float64) value.Value) error {
	if !m.peek(0).IsNumber() || !m.peek(1).IsNumber() {
		return m.runtimeErrorf("Operands must be numbers.")
	}
	b := m.pop()
	a := m.pop()
	return m.push(fn(a.AsNumber(), b.AsNumber()))
}

func (m *Machine) add() error {
	b := m.peek(0)
	a := m.peek(1)
	switch {
	case a.IsNumber() && b.IsNumber():
		m.pop()
		m.pop()
		return m.push(value.Number(a.AsNumber() + b.AsNumber()))
	case a.IsString() && b.IsString():
		m.pop()
		m.pop()
		concat := a.AsString().Bytes() + b.AsString().Bytes()
		return m.push(value.String(m.interns.Intern(concat)))
	default:
		return m.runtimeErrorf("Operands must be two numbers or two strings.")
	}
}

func (m *Machine) divide() error {
	if !m.peek(0).IsNumber() || !m.peek(1).IsNumber() {
		return m.runtimeErrorf("Operands must be numbers.")
	}
	b := m.pop()
	a := m.pop()
	// Division by zero follows plain float64 semantics (+/-Inf or NaN)
	// rather than raising a runtime error.
	return m.push(value.Number(a.AsNumber() / b.AsNumber()))
}
