package compiler

import "github.com/mna/ploxvm/lang/chunk"

// maxLocals matches the 1-byte OP_GET_LOCAL/OP_SET_LOCAL operand: a scope
// nesting of locals can never exceed 256 live slots.
const maxLocals = 256

// uninitialized marks a local whose declaration has been parsed but whose
// initializer has not finished compiling yet, so self-reference in its own
// initializer ("var a = a;") can be rejected.
const uninitialized = -1

type local struct {
	name  string
	depth int
}

// beginScope enters a new block scope.
func (c *Compiler) beginScope() { c.scopeDepth++ }

// endScope leaves the current block scope, popping every local declared in
// it off the runtime stack.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitOp(chunk.OpPop)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// declareLocal registers name as a new local in the current scope, after
// checking it does not collide with another local already declared at this
// same depth (shadowing an outer scope's variable is fine).
func (c *Compiler) declareLocal(name string) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != uninitialized && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.errorAtPrevious("Already variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.locals) >= maxLocals {
		c.errorAtPrevious("Too many local variables in function.")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: uninitialized})
}

// markInitialized finishes declaring the most recent local, making it
// visible to resolveLocal.
func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal returns the stack slot of the nearest local named name, or
// -1 if name must be resolved as a global instead.
func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == uninitialized {
				c.errorAtPrevious("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}
