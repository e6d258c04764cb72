// Package intern deduplicates string objects so that value.Equal can
// compare strings by pointer identity instead of content.
package intern

import (
	"sync"

	"github.com/mna/ploxvm/lang/hashtable"
	"github.com/mna/ploxvm/lang/value"
)

// Table interns strings by content, backed by a lang/hashtable.Table keyed
// on the very strings it stores (a *value.Str hashes and compares itself).
type Table struct {
	mu      sync.Mutex
	entries *hashtable.Table[*value.Str]
}

// New returns an empty intern Table.
func New() *Table {
	return &Table{entries: hashtable.New[*value.Str]()}
}

// Intern returns the canonical *value.Str for s, creating and storing one
// if this is the first time s has been seen. Safe for concurrent use since
// a single machine's intern table may be shared by compiler and VM in the
// REPL's read-eval loop.
func (t *Table) Intern(s string) *value.Str {
	probe := value.NewStr(s)
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.entries.Get(probe); ok {
		return existing
	}
	t.entries.Set(probe, probe)
	return probe
}

// Len reports how many distinct strings are currently interned.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries.Len()
}
