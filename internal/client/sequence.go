package client

import (
	"sync"
	"time"
)

// SearchDelay is the quiet period after the last keystroke before searching
const SearchDelay = 300 * time.Millisecond

// RecipePollInterval is how often the recipe pane refreshes
const RecipePollInterval = 5 * time.Second

// Debouncer lets only the most recent of a burst of keystrokes through. Each
// keystroke takes a ticket and schedules a check after Delay; a ticket is live
// until a newer one is taken.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	seq   uint64
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay is the configured quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Next takes a new ticket, invalidating every earlier one
func (d *Debouncer) Next() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	return d.seq
}

// Live reports whether ticket is still the latest
func (d *Debouncer) Live(ticket uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ticket == d.seq
}

// Latest discards responses that arrive after a newer one was applied.
// Requests are tagged with Issue and their responses pass through Apply.
type Latest struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

// Issue tags an outgoing request
func (l *Latest) Issue() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issued++
	return l.issued
}

// Apply reports whether the response to request seq should replace the
// current state, and records it if so.
func (l *Latest) Apply(seq uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq <= l.applied {
		return false
	}
	l.applied = seq
	return true
}
