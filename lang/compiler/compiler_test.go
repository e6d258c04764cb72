package compiler_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/mna/ploxvm/lang/chunk"
	"github.com/mna/ploxvm/lang/compiler"
	"github.com/mna/ploxvm/lang/intern"
)

func TestCompileArithmeticPrecedence(t *testing.T) {
	c, err := compiler.Compile("1 + 2 * 3;", intern.New())
	require.NoError(t, err)
	want := []chunk.OpCode{
		chunk.OpConstant, chunk.OpConstant, chunk.OpConstant,
		chunk.OpMultiply, chunk.OpAdd, chunk.OpPop, chunk.OpReturn,
	}
	if diff := cmp.Diff(want, opsOf(c)); diff != "" {
		t.Errorf("emitted opcodes mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileComparisonDesugaring(t *testing.T) {
	c, err := compiler.Compile("1 >= 2;", intern.New())
	require.NoError(t, err)
	require.Equal(t, []chunk.OpCode{
		chunk.OpConstant, chunk.OpConstant, chunk.OpLess, chunk.OpNot,
		chunk.OpPop, chunk.OpReturn,
	}, opsOf(c))
}

func TestCompileVarDeclarationGlobal(t *testing.T) {
	c, err := compiler.Compile("var x = 1;", intern.New())
	require.NoError(t, err)
	require.Equal(t, []chunk.OpCode{
		chunk.OpConstant, chunk.OpDefineGlobal, chunk.OpReturn,
	}, opsOf(c))
}

func TestCompileLocalVarUsesSlotNotGlobal(t *testing.T) {
	c, err := compiler.Compile("{ var x = 1; print x; }", intern.New())
	require.NoError(t, err)
	require.Equal(t, []chunk.OpCode{
		chunk.OpConstant, chunk.OpGetLocal, chunk.OpPrint, chunk.OpPop, chunk.OpReturn,
	}, opsOf(c))
}

func TestCompileUnsupportedTokenReported(t *testing.T) {
	_, err := compiler.Compile("class Foo {}", intern.New())
	require.Error(t, err)
	require.Contains(t, err.Error(), "not supported")
}

func TestCompileSyntaxErrorReported(t *testing.T) {
	_, err := compiler.Compile("var = 1;", intern.New())
	require.Error(t, err)
	require.Contains(t, err.Error(), "Expect variable name.")
}

func TestCompileSelfReferencingInitializerIsError(t *testing.T) {
	_, err := compiler.Compile("{ var a = a; }", intern.New())
	require.Error(t, err)
	require.Contains(t, err.Error(), "own initializer")
}

func opsOf(c *chunk.Chunk) []chunk.OpCode {
	var ops []chunk.OpCode
	for offset := 0; offset < len(c.Code); {
		op := chunk.OpCode(c.Code[offset])
		ops = append(ops, op)
		switch op {
		case chunk.OpConstant, chunk.OpGetLocal, chunk.OpSetLocal,
			chunk.OpGetGlobal, chunk.OpDefineGlobal, chunk.OpSetGlobal:
			offset += 2
		case chunk.OpJump, chunk.OpJumpIfFalse, chunk.OpLoop:
			offset += 3
		default:
			offset++
		}
	}
	return ops
}
