package recovery

import (
	"sync"

	"github.com/loadline/dispatch/internal/core/domain"
)

// DefaultLogSize bounds the rolling diagnostic log.
const DefaultLogSize = 50

// Log is a bounded, most-recent-first rolling log of classified errors. It
// is an injected component, not a package global, so tests get isolated
// instances.
type Log struct {
	mu      sync.Mutex
	max     int
	entries []*domain.DispatchError
}

// NewLog creates a rolling log keeping at most max entries.
func NewLog(max int) *Log {
	if max <= 0 {
		max = DefaultLogSize
	}
	return &Log{max: max}
}

// Append records a classified error, evicting the oldest entry when full.
func (l *Log) Append(e *domain.DispatchError) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(n int) []*domain.DispatchError {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]*domain.DispatchError, 0, n)
	for i := len(l.entries) - 1; i >= len(l.entries)-n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
