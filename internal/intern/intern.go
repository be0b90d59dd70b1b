// Package intern canonicalises alias names for go-args registries.
// Aliases are registered once and looked up for every token, so short-option
// lookups reuse preallocated single-character strings.
package intern

import (
	"sync"
)

// StringInterner maps each alias to one shared string. Safe for concurrent use.
type StringInterner struct {
	mu      sync.RWMutex
	strings map[string]string
}

// NewStringInterner creates an interner seeded with names.
func NewStringInterner(names ...string) *StringInterner {
	si := &StringInterner{strings: make(map[string]string, 64+len(names))}
	for _, name := range names {
		si.strings[name] = name
	}
	return si
}

// Intern returns the canonical copy of s.
func (si *StringInterner) Intern(s string) string {
	si.mu.RLock()
	interned, ok := si.strings[s]
	si.mu.RUnlock()
	if ok {
		return interned
	}

	si.mu.Lock()
	defer si.mu.Unlock()
	if interned, ok := si.strings[s]; ok {
		return interned
	}
	si.strings[s] = s
	return s
}

// InternRune returns the alias string for a single short-option character.
// ASCII letters and digits never allocate.
func (si *StringInterner) InternRune(r rune) string {
	switch {
	case r >= 'a' && r <= 'z':
		return singleChars[r-'a']
	case r >= 'A' && r <= 'Z':
		return singleChars[26+r-'A']
	case r >= '0' && r <= '9':
		return singleChars[52+r-'0']
	}
	return si.Intern(string(r))
}

func (si *StringInterner) size() int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return len(si.strings)
}

// a-z, A-Z, 0-9
var singleChars = [62]string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
}

// ImplicitNames are the names the engine recognises without registration.
var ImplicitNames = []string{"help", "version", "h", "v"}

var global = NewStringInterner(ImplicitNames...)

// Intern interns s in the process-wide interner shared by every parser.
func Intern(s string) string {
	return global.Intern(s)
}

// InternRune interns a short-option character in the process-wide interner.
func InternRune(r rune) string {
	return global.InternRune(r)
}
