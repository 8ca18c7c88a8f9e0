package domain

import (
	"sync"
)

// History is a bounded, newest-first record of detected opportunities.
// Safe for concurrent use.
type History struct {
	mu       sync.RWMutex
	capacity int
	items    []*Opportunity
}

// NewHistory creates a history bounded at capacity entries.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{capacity: capacity}
}

// Add records an opportunity, evicting the oldest past capacity.
func (h *History) Add(opp *Opportunity) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items = append([]*Opportunity{opp}, h.items...)
	if len(h.items) > h.capacity {
		h.items = h.items[:h.capacity]
	}
}

// Recent returns up to n opportunities, newest first.
func (h *History) Recent(n int) []*Opportunity {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n > len(h.items) {
		n = len(h.items)
	}
	out := make([]*Opportunity, n)
	copy(out, h.items[:n])
	return out
}

// Len returns the number of stored opportunities.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}
