package maincmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/ploxvm/internal/config"
	"github.com/mna/ploxvm/internal/diagnostics"
	"github.com/mna/ploxvm/lang/compiler"
	"github.com/mna/ploxvm/lang/intern"
	"github.com/mna/ploxvm/lang/machine"
)

type stdioWriter struct{ w *bufio.Writer }

func (s stdioWriter) WriteString(str string) (int, error) {
	n, err := s.w.WriteString(str)
	s.w.Flush()
	return n, err
}

// runFile compiles and runs the script at path, returning the appropriate
// sysexits-style exit code.
func runFile(_ context.Context, stdio mainer.Stdio, path string) mainer.ExitCode {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return exitSoftware
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: invalid configuration: %s\n", binName, err)
		return exitSoftware
	}
	diagnostics.SetTrace(cfg.TraceExecution)

	interns := intern.New()
	c, compileErr := compiler.Compile(string(src), interns)
	if compileErr != nil {
		printDiagnostics(stdio, compileErr)
		return exitDataErr
	}
	if cfg.PrintCode {
		fmt.Fprint(stdio.Stdout, c.Disassemble(path))
	}

	m := machine.New(interns, cfg.StackMax)
	m.Stdout = stdioWriter{w: bufio.NewWriter(stdio.Stdout)}
	m.Trace = cfg.TraceExecution
	if runErr := m.Run(c); runErr != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", runErr)
		return exitSoftware
	}
	return mainer.Success
}

func printDiagnostics(stdio mainer.Stdio, err error) {
	if list, ok := err.(*diagnostics.List); ok {
		list.Each(func(e *diagnostics.Error) {
			fmt.Fprintf(stdio.Stderr, "%s\n", e)
		})
		return
	}
	fmt.Fprintf(stdio.Stderr, "%s\n", err)
}
