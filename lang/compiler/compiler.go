// Package compiler implements a single-pass Pratt compiler: source goes
// straight to bytecode, with no intermediate AST. Expression parsing drives
// directly off the token stream, precedence-climbing through a prefix/infix
// rule table keyed by token kind.
package compiler

import (
	"math"
	"strconv"

	"github.com/mna/ploxvm/internal/diagnostics"
	"github.com/mna/ploxvm/lang/chunk"
	"github.com/mna/ploxvm/lang/intern"
	"github.com/mna/ploxvm/lang/scanner"
	"github.com/mna/ploxvm/lang/token"
	"github.com/mna/ploxvm/lang/value"
)

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// maxJump is the largest forward or backward jump a 2-byte big-endian
// operand can encode.
const maxJump = math.MaxUint16

// Compiler holds all state for compiling one source string into one Chunk:
// the token stream cursor, the chunk under construction, the active locals
// and scope depth, panic-mode recovery state, and the shared string
// interner so string constants dedupe the same way the VM's globals do.
type Compiler struct {
	scan *scanner.Scanner
	prev scanner.Lexeme
	cur  scanner.Lexeme

	chunk   *chunk.Chunk
	interns *intern.Table

	locals     []local
	scopeDepth int

	errs      diagnostics.List
	panicMode bool
}

// Compile compiles source into a new Chunk, interning any string constants
// through interns. It returns the chunk and a non-nil error (a
// *diagnostics.List) if any compile errors were reported; the returned
// chunk is still the best-effort result and is safe to discard.
func Compile(source string, interns *intern.Table) (*chunk.Chunk, error) {
	c := &Compiler{
		scan:    scanner.New(source),
		chunk:   chunk.New(),
		interns: interns,
	}
	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "Expect end of expression.")
	c.emitReturn()
	return c.chunk, c.errs.Err()
}

/* token stream */

func (c *Compiler) advance() {
	c.prev = c.cur
	for {
		c.cur = c.scan.Scan()
		if c.cur.Kind != token.ERROR {
			break
		}
		c.errorAtCurrent(c.cur.Text)
	}
}

func (c *Compiler) check(tok token.Token) bool { return c.cur.Kind == tok }

func (c *Compiler) match(tok token.Token) bool {
	if !c.check(tok) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(tok token.Token, message string) {
	if c.cur.Kind == tok {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

/* declarations and statements */

func (c *Compiler) declaration() {
	switch {
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.consume(token.SEMI, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		if c.cur.Kind.Unsupported() {
			c.advance()
			c.errorAtPrevious(c.prev.Kind.String() + " is not supported.")
			return
		}
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after value.")
	c.emitOp(chunk.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMI, "Expect ';' after expression.")
	c.emitOp(chunk.OpPop)
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()

	elseJump := c.emitJump(chunk.OpJump)
	c.patchJump(thenJump)
	c.emitOp(chunk.OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk.Code)
	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(chunk.OpPop)
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")
	switch {
	case c.match(token.SEMI):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk.Code)
	exitJump := -1
	if !c.match(token.SEMI) {
		c.expression()
		c.consume(token.SEMI, "Expect ';' after loop condition.")
		exitJump = c.emitJump(chunk.OpJumpIfFalse)
		c.emitOp(chunk.OpPop)
	}

	if !c.match(token.RPAREN) {
		bodyJump := c.emitJump(chunk.OpJump)
		incrStart := len(c.chunk.Code)
		c.expression()
		c.emitOp(chunk.OpPop)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(chunk.OpPop)
	}
	c.endScope()
}

/* variables */

func (c *Compiler) parseVariable(message string) int {
	c.consume(token.IDENTIFIER, message)
	c.declareLocal(c.prev.Text)
	if c.scopeDepth > 0 {
		return -1
	}
	return c.identifierConstant(c.prev.Text)
}

func (c *Compiler) defineVariable(global int) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(byte(chunk.OpDefineGlobal), byte(global))
}

func (c *Compiler) identifierConstant(name string) int {
	return c.makeConstant(value.String(c.interns.Intern(name)))
}

func (c *Compiler) variable(canAssign bool) { c.namedVariable(c.prev.Text, canAssign) }

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp chunk.OpCode
	slot := c.resolveLocal(name)
	if slot != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else {
		slot = c.identifierConstant(name)
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitBytes(byte(setOp), byte(slot))
	} else {
		c.emitBytes(byte(getOp), byte(slot))
	}
}

/* expressions */

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(p prec) {
	c.advance()
	prefix := getRule(c.prev.Kind).prefix
	if prefix == nil {
		c.errorAtPrevious("Expect expression.")
		return
	}

	canAssign := p <= precAssignment
	prefix(c, canAssign)

	for p <= getRule(c.cur.Kind).prec {
		c.advance()
		infix := getRule(c.prev.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.errorAtPrevious("Invalid assignment target.")
	}
}

func (c *Compiler) number(_ bool) {
	f, err := parseFloat(c.prev.Text)
	if err != nil {
		c.errorAtPrevious("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(f))
}

func (c *Compiler) string(_ bool) {
	raw := c.prev.Text[1 : len(c.prev.Text)-1]
	c.emitConstant(value.String(c.interns.Intern(raw)))
}

func (c *Compiler) literal(_ bool) {
	switch c.prev.Kind {
	case token.FALSE:
		c.emitOp(chunk.OpFalse)
	case token.TRUE:
		c.emitOp(chunk.OpTrue)
	case token.NIL:
		c.emitOp(chunk.OpNil)
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary(_ bool) {
	op := c.prev.Kind
	c.parsePrecedence(precUnary)
	switch op {
	case token.BANG:
		c.emitOp(chunk.OpNot)
	case token.MINUS:
		c.emitOp(chunk.OpNegate)
	}
}

func (c *Compiler) binary(_ bool) {
	op := c.prev.Kind
	r := getRule(op)
	c.parsePrecedence(r.prec + 1)

	switch op {
	case token.BANG_EQ:
		c.emitBytes(byte(chunk.OpEqual), byte(chunk.OpNot))
	case token.EQ_EQ:
		c.emitOp(chunk.OpEqual)
	case token.GT:
		c.emitOp(chunk.OpGreater)
	case token.GT_EQ:
		c.emitBytes(byte(chunk.OpLess), byte(chunk.OpNot))
	case token.LT:
		c.emitOp(chunk.OpLess)
	case token.LT_EQ:
		c.emitBytes(byte(chunk.OpGreater), byte(chunk.OpNot))
	case token.PLUS:
		c.emitOp(chunk.OpAdd)
	case token.MINUS:
		c.emitOp(chunk.OpSubtract)
	case token.STAR:
		c.emitOp(chunk.OpMultiply)
	case token.SLASH:
		c.emitOp(chunk.OpDivide)
	}
}

func (c *Compiler) and(_ bool) {
	endJump := c.emitJump(chunk.OpJumpIfFalse)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(_ bool) {
	elseJump := c.emitJump(chunk.OpJumpIfFalse)
	endJump := c.emitJump(chunk.OpJump)
	c.patchJump(elseJump)
	c.emitOp(chunk.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

/* bytecode emission */

func (c *Compiler) emitByte(b byte) { c.chunk.Write(b, c.prev.Line) }

func (c *Compiler) emitOp(op chunk.OpCode) { c.emitByte(byte(op)) }

func (c *Compiler) emitBytes(bs ...byte) {
	for _, b := range bs {
		c.emitByte(b)
	}
}

func (c *Compiler) emitReturn() { c.emitOp(chunk.OpReturn) }

func (c *Compiler) emitConstant(v value.Value) {
	c.emitBytes(byte(chunk.OpConstant), byte(c.makeConstant(v)))
}

func (c *Compiler) makeConstant(v value.Value) int {
	if len(c.chunk.Constants) >= chunk.MaxConstants {
		c.errorAtPrevious("Too many constants in one chunk.")
		return 0
	}
	return c.chunk.AddConstant(v)
}

// emitJump writes a jump opcode with a 2-byte placeholder operand and
// returns the operand's offset, to be filled in later by patchJump.
func (c *Compiler) emitJump(op chunk.OpCode) int {
	c.emitOp(op)
	c.emitBytes(0xff, 0xff)
	return len(c.chunk.Code) - 2
}

// patchJump backfills the jump operand at offset with the distance from
// just past the operand to the current end of the chunk.
func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk.Code) - offset - 2
	if jump > maxJump {
		c.errorAtPrevious("Too much code to jump over.")
		return
	}
	c.chunk.Code[offset] = byte(jump >> 8 & 0xff)
	c.chunk.Code[offset+1] = byte(jump & 0xff)
}

// emitLoop emits a backward jump to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(chunk.OpLoop)
	offset := len(c.chunk.Code) - loopStart + 2
	if offset > maxJump {
		c.errorAtPrevious("Loop body too large.")
		return
	}
	c.emitBytes(byte(offset>>8&0xff), byte(offset&0xff))
}

/* error handling and recovery */

func (c *Compiler) errorAtCurrent(message string) { c.errorAt(c.cur, message) }
func (c *Compiler) errorAtPrevious(message string) { c.errorAt(c.prev, message) }

func (c *Compiler) errorAt(lex scanner.Lexeme, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	where := ""
	switch lex.Kind {
	case token.EOF:
		where = " at end"
	case token.ERROR:
		where = ""
	default:
		where = " at '" + lex.Text + "'"
	}
	c.errs.Add(lex.Line, where, message)
}

// synchronize discards tokens until it reaches a likely statement boundary:
// after one error is reported, further cascading errors in the same broken
// statement are suppressed.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.cur.Kind != token.EOF {
		if c.prev.Kind == token.SEMI {
			return
		}
		switch c.cur.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}
