// ABOUTME: Play queue for sequential playback
// ABOUTME: Ordered list of file paths with a cursor and optional repeat
package app

import (
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Queue is an ordered list of files to play
type Queue struct {
	mu     sync.Mutex
	items  []string
	pos    int
	repeat bool
}

// NewQueue creates a queue positioned at the first item. Blank entries are dropped.
func NewQueue(items []string, repeat bool) *Queue {
	return &Queue{
		items: lo.Filter(items, func(s string, _ int) bool {
			return strings.TrimSpace(s) != ""
		}),
		repeat: repeat,
	}
}

// Len returns the number of items
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Current returns the item at the cursor
func (q *Queue) Current() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pos < 0 || q.pos >= len(q.items) {
		return "", false
	}
	return q.items[q.pos], true
}

// Advance moves to the next item. At the end it wraps when repeating and
// otherwise reports false, leaving the queue exhausted.
func (q *Queue) Advance() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return false
	}
	q.pos++
	if q.pos >= len(q.items) {
		if !q.repeat {
			q.pos = len(q.items)
			return false
		}
		q.pos = 0
	}
	return true
}

// Back moves to the previous item. It reports false at the first item unless
// repeating.
func (q *Queue) Back() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return false
	}
	if q.pos <= 0 {
		if !q.repeat {
			q.pos = 0
			return false
		}
		q.pos = len(q.items)
	}
	q.pos--
	return true
}

// Position returns the one-based index of the current item and the total
func (q *Queue) Position() (int, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return min(q.pos+1, len(q.items)), len(q.items)
}
