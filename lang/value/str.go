package value

import "unicode/utf8"

// Str is an interned string object. Two Str pointers holding equal content
// are always the same pointer when both come from the same lang/intern
// table, which is what lets Equal compare strings by pointer identity.
type Str struct {
	chars string
	hash  uint32
	runes int
}

// NewStr builds a Str from raw bytes, computing and caching its hash and
// code-point length up front. It does not intern s; callers that need
// interning go through the machine's intern table.
func NewStr(s string) *Str {
	return &Str{chars: s, hash: FNV1a(s), runes: utf8.RuneCountInString(s)}
}

// Bytes returns the string's raw UTF-8 content.
func (s *Str) Bytes() string { return s.chars }

// Hash returns the string's cached FNV-1a hash.
func (s *Str) Hash() uint32 { return s.hash }

// Len returns the number of Unicode code points in the string, not its byte
// length.
func (s *Str) Len() int { return s.runes }

func (s *Str) String() string { return s.chars }

// FNV1a computes the 32-bit FNV-1a hash of s, using the same offset basis
// and prime the intern table and globals table hash with: 2166136261 and
// 16777619, matching the reference interpreter's hashmap exactly so that
// ports of its fixtures produce identical bucket placement.
func FNV1a(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
