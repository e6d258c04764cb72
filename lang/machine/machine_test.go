package machine_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/ploxvm/lang/compiler"
	"github.com/mna/ploxvm/lang/intern"
	"github.com/mna/ploxvm/lang/machine"
)

type buf struct{ strings.Builder }

func (b *buf) WriteString(s string) (int, error) { return b.Builder.WriteString(s) }

func run(t *testing.T, src string) string {
	t.Helper()
	interns := intern.New()
	c, err := compiler.Compile(src, interns)
	require.NoError(t, err)

	m := machine.New(interns, 0)
	var out buf
	m.Stdout = &out
	require.NoError(t, m.Run(c))
	return out.String()
}

func TestArithmetic(t *testing.T) {
	require.Equal(t, "7\n", run(t, "print 1 + 2 * 3;"))
	require.Equal(t, "-1\n", run(t, "print 1 - 2;"))
	require.Equal(t, "2.5\n", run(t, "print 5 / 2;"))
}

func TestStringConcatenation(t *testing.T) {
	require.Equal(t, "helloworld\n", run(t, `print "hello" + "world";`))
}

func TestComparisonAndEquality(t *testing.T) {
	require.Equal(t, "true\n", run(t, "print 1 < 2;"))
	require.Equal(t, "false\n", run(t, "print 1 == 2;"))
	require.Equal(t, "true\n", run(t, `print "a" == "a";`))
}

func TestGlobalsAndAssignment(t *testing.T) {
	require.Equal(t, "2\n", run(t, "var x = 1; x = x + 1; print x;"))
}

func TestLocalsAndScoping(t *testing.T) {
	out := run(t, `
		var x = "outer";
		{
			var x = "inner";
			print x;
		}
		print x;
	`)
	require.Equal(t, "inner\nouter\n", out)
}

func TestIfElse(t *testing.T) {
	require.Equal(t, "yes\n", run(t, `if (1 < 2) print "yes"; else print "no";`))
	require.Equal(t, "no\n", run(t, `if (1 > 2) print "yes"; else print "no";`))
}

func TestWhileLoop(t *testing.T) {
	out := run(t, `
		var i = 0;
		while (i < 3) {
			print i;
			i = i + 1;
		}
	`)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestForLoop(t *testing.T) {
	out := run(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestAndOrShortCircuit(t *testing.T) {
	// the right operand reads an undefined global, a runtime error if it
	// were ever evaluated.
	require.Equal(t, "false\n", run(t, "print false and undefined;"))
	require.Equal(t, "true\n", run(t, "print true or undefined;"))
}

func TestRuntimeErrorUndefinedGlobal(t *testing.T) {
	interns := intern.New()
	c, err := compiler.Compile("print x;", interns)
	require.NoError(t, err)
	m := machine.New(interns, 0)
	runErr := m.Run(c)
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "Undefined variable 'x'.")
}

func TestRuntimeErrorTypeMismatch(t *testing.T) {
	interns := intern.New()
	c, err := compiler.Compile(`print 1 + "a";`, interns)
	require.NoError(t, err)
	m := machine.New(interns, 0)
	runErr := m.Run(c)
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "Operands must be two numbers or two strings.")
}

func TestStackOverflow(t *testing.T) {
	interns := intern.New()
	c, err := compiler.Compile("1 + 2;", interns)
	require.NoError(t, err)

	// a stack that can only ever hold one value can't survive pushing both
	// operands of a binary expression before the operator pops them.
	m := machine.New(interns, 1)
	runErr := m.Run(c)
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "Stack overflow.")
}
