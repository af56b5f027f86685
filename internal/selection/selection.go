// Package selection holds the one-shot primary-selection buffer.
package selection

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// Buffer is an optional text value guarded by a mutex.
//
// The text is either absent or a string whose trimmed form is non-empty.
// With the lock enabled, a value that has not been pasted yet cannot be
// overwritten by another capture.
type Buffer struct {
	mu     sync.Mutex
	text   string
	has    bool
	locked bool
}

// New returns an empty buffer with the given lock-until-consumed policy.
func New(lockUntilConsumed bool) *Buffer {
	return &Buffer{locked: lockUntilConsumed}
}

// Get returns the buffered text, if any.
func (b *Buffer) Get() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text, b.has
}

// Blocked reports whether a capture must be skipped: the lock is on and
// a value is waiting to be pasted.
func (b *Buffer) Blocked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked && b.has
}

// Store replaces the buffered value. Whitespace-only text is rejected and
// leaves the buffer unchanged; the return value reports whether s was stored.
func (b *Buffer) Store(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	b.mu.Lock()
	b.text, b.has = s, true
	b.mu.Unlock()
	return true
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.text, b.has = "", false
	b.mu.Unlock()
}

// Len returns the buffered text length in runes, 0 when empty.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return utf8.RuneCountInString(b.text)
}

// SetLocked changes the lock-until-consumed policy.
func (b *Buffer) SetLocked(v bool) {
	b.mu.Lock()
	b.locked = v
	b.mu.Unlock()
}

// Locked reports the lock-until-consumed policy.
func (b *Buffer) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked
}
