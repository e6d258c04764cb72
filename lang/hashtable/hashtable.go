// Package hashtable implements an open-addressed hash table with the
// collision and growth strategy exposed as testable behavior of this
// package: FNV-1a hashing, linear probing, tombstone deletion, and
// power-of-two growth at a 0.75 load factor. Both string interning
// (Table[*value.Str]) and the globals table (Table[value.Value]) are
// instances of the same generic Table.
package hashtable

import "github.com/mna/ploxvm/lang/value"

const (
	initialCapacity = 8
	maxLoadFactor   = 0.75
)

type entryState uint8

const (
	stateEmpty entryState = iota
	stateOccupied
	stateTombstone
)

type entry[V any] struct {
	key   *value.Str
	val   V
	state entryState
}

// Table is a generic open-addressed hash table keyed by interned strings.
// The zero value is not ready for use; call New.
type Table[V any] struct {
	entries []entry[V]
	count   int // occupied, excludes tombstones
	live    int // occupied + tombstones, what load factor is measured against
}

// New returns an empty Table.
func New[V any]() *Table[V] {
	return &Table[V]{entries: make([]entry[V], initialCapacity)}
}

// Len reports the number of live key/value pairs in the table.
func (t *Table[V]) Len() int { return t.count }

// Get looks up key and reports whether it was found.
func (t *Table[V]) Get(key *value.Str) (V, bool) {
	var zero V
	if t.count == 0 {
		return zero, false
	}
	idx, found := t.find(key)
	if !found {
		return zero, false
	}
	return t.entries[idx].val, true
}

// Set stores val under key, growing the table first if the insert would
// push the load factor past 0.75. It reports whether key is new.
func (t *Table[V]) Set(key *value.Str, val V) bool {
	if float64(t.live+1) > float64(len(t.entries))*maxLoadFactor {
		t.grow(len(t.entries) * 2)
	}
	idx := t.findSlot(key)
	e := &t.entries[idx]
	isNew := e.state != stateOccupied
	if e.state == stateEmpty {
		t.live++
	}
	e.key = key
	e.val = val
	e.state = stateOccupied
	if isNew {
		t.count++
	}
	return isNew
}

// Delete removes key from the table, leaving a tombstone behind so later
// probe chains through this slot still terminate correctly. It reports
// whether key was present.
func (t *Table[V]) Delete(key *value.Str) bool {
	if t.count == 0 {
		return false
	}
	idx, found := t.find(key)
	if !found {
		return false
	}
	t.entries[idx] = entry[V]{state: stateTombstone}
	t.count--
	return true
}

// find locates key's slot among occupied entries only, skipping tombstones.
func (t *Table[V]) find(key *value.Str) (int, bool) {
	mask := uint32(len(t.entries) - 1)
	idx := key.Hash() & mask
	for {
		e := &t.entries[idx]
		switch e.state {
		case stateEmpty:
			return 0, false
		case stateOccupied:
			if e.key == key || e.key.Bytes() == key.Bytes() {
				return int(idx), true
			}
		}
		idx = (idx + 1) & mask
	}
}

// findSlot locates the slot key should occupy for insertion: the first
// tombstone or empty slot encountered, or the existing occupied slot if key
// is already present (so Set overwrites in place instead of duplicating).
func (t *Table[V]) findSlot(key *value.Str) uint32 {
	mask := uint32(len(t.entries) - 1)
	idx := key.Hash() & mask
	var tombstone int = -1
	for {
		e := &t.entries[idx]
		switch e.state {
		case stateEmpty:
			if tombstone != -1 {
				return uint32(tombstone)
			}
			return idx
		case stateTombstone:
			if tombstone == -1 {
				tombstone = int(idx)
			}
		case stateOccupied:
			if e.key == key || e.key.Bytes() == key.Bytes() {
				return idx
			}
		}
		idx = (idx + 1) & mask
	}
}

func (t *Table[V]) grow(newCap int) {
	old := t.entries
	t.entries = make([]entry[V], newCap)
	t.count = 0
	t.live = 0
	for _, e := range old {
		if e.state != stateOccupied {
			continue
		}
		idx := t.findSlot(e.key)
		t.entries[idx] = entry[V]{key: e.key, val: e.val, state: stateOccupied}
		t.count++
		t.live++
	}
}

// Each calls fn for every live key/value pair. Iteration order is
// unspecified and fn must not mutate the table.
func (t *Table[V]) Each(fn func(key *value.Str, val V)) {
	for _, e := range t.entries {
		if e.state == stateOccupied {
			fn(e.key, e.val)
		}
	}
}
