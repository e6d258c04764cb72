package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/ploxvm/internal/config"
	"github.com/mna/ploxvm/internal/diagnostics"
	"github.com/mna/ploxvm/lang/compiler"
	"github.com/mna/ploxvm/lang/intern"
	"github.com/mna/ploxvm/lang/machine"
)

// repl runs an interactive read-compile-run loop, one line at a time,
// sharing a single intern table and Machine across lines so variables
// defined on one line are visible on the next.
func repl(ctx context.Context, stdio mainer.Stdio) mainer.ExitCode {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: invalid configuration: %s\n", binName, err)
		return exitSoftware
	}
	diagnostics.SetTrace(cfg.TraceExecution)

	interns := intern.New()
	m := machine.New(interns, cfg.StackMax)
	m.Stdout = stdioWriter{w: bufio.NewWriter(stdio.Stdout)}
	m.Trace = cfg.TraceExecution

	scan := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		select {
		case <-ctx.Done():
			return mainer.Success
		default:
		}
		if !scan.Scan() {
			fmt.Fprintln(stdio.Stdout)
			return mainer.Success
		}
		line := scan.Text()
		if line == "" {
			continue
		}

		c, compileErr := compiler.Compile(line, interns)
		if compileErr != nil {
			printDiagnostics(stdio, compileErr)
			continue
		}
		if cfg.PrintCode {
			fmt.Fprint(stdio.Stdout, c.Disassemble("repl"))
		}
		if runErr := m.Run(c); runErr != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", runErr)
		}
	}
}
