// Package maincmd wires the command-line surface of ploxvm: a
// Cmd-struct-plus-mainer.Parser convention instead of the standard
// library's flag package.
package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "ploxvm"

var longUsage = fmt.Sprintf(`usage: %s [<option>...] [<script>]
       %[1]s -h|--help
       %[1]s -v|--version

With no <script>, %[1]s starts an interactive REPL. With a <script>, it
compiles and runs that file.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName)

// Exit codes follow the sysexits.h convention the reference interpreter
// uses: 65 for a compile-time (data) error, 70 for a runtime error.
const (
	exitDataErr  mainer.ExitCode = 65
	exitSoftware mainer.ExitCode = 70
)

// Cmd is the ploxvm command-line entry point, parsed and dispatched by
// mainer.Parser.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return fmt.Errorf("at most one script path may be given")
	}
	return nil
}

// Main parses args and dispatches to the REPL or file runner, returning the
// process exit code.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, longUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if len(c.args) == 0 {
		return repl(ctx, stdio)
	}
	return runFile(ctx, stdio, c.args[0])
}
