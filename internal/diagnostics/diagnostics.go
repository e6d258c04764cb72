// Package diagnostics formats and collects compile-time errors, and wraps
// logrus for the machine's debug-only execution tracing. None of the
// user-facing error text in this package goes through logrus: that is
// reserved for internal tracing aimed at maintainers, kept separate from
// the compile errors reported straight to the user.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/mna/ploxvm/lang/token"
	"github.com/sirupsen/logrus"
)

// Error is a single compile-time diagnostic, formatted the way the
// reference scanner/compiler reports them: "[line N] Error<where>:
// message".
type Error struct {
	Pos     token.Position
	Where   string // e.g. " at 'foo'", " at end", or "" when not applicable
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] Error%s: %s", e.Pos, e.Where, e.Message)
}

// List accumulates compile errors across an entire compilation and
// implements error so it can be returned and checked with errors.Is-style
// nil comparisons via Err.
type List struct {
	errs []*Error
}

// Add records a new diagnostic.
func (l *List) Add(line int, where, message string) {
	l.errs = append(l.errs, &Error{Pos: token.Position{Line: line}, Where: where, Message: message})
}

// Len reports how many diagnostics have been collected.
func (l *List) Len() int { return len(l.errs) }

// Err returns l as an error, or nil if no diagnostics were recorded. This
// is the form callers should propagate: a nil *List is not automatically a
// nil error, but Err always is when there is nothing to report.
func (l *List) Err() error {
	if l == nil || len(l.errs) == 0 {
		return nil
	}
	return l
}

func (l *List) Error() string {
	lines := make([]string, len(l.errs))
	for i, e := range l.errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// Each calls fn for every collected diagnostic, in the order recorded.
func (l *List) Each(fn func(*Error)) {
	for _, e := range l.errs {
		fn(e)
	}
}

// Logger is the package-level logger used for debug tracing: bytecode
// disassembly and the VM's instruction-by-instruction trace. It logs to
// stderr at Debug level so it stays silent unless a caller raises the
// level via internal/config.
var Logger = logrus.New()

func init() {
	Logger.SetLevel(logrus.WarnLevel)
	Logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

// SetTrace toggles debug-level tracing on or off.
func SetTrace(enabled bool) {
	if enabled {
		Logger.SetLevel(logrus.DebugLevel)
	} else {
		Logger.SetLevel(logrus.WarnLevel)
	}
}
