// Package clockx provides a tiny time abstraction.
//
// Services depend on the Clocker interface instead of calling time.Now()
// directly, so expiry and cool-down logic can be driven by a fixed clock in
// tests.
package clockx

import (
	"sync"
	"time"
)

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
}

// SystemClock is the production clock backed by time.Now, normalized to UTC.
type SystemClock struct{}

// New returns a SystemClock reading the current system time.
func New() *SystemClock {
	return &SystemClock{}
}

// Now returns the current system time in UTC.
func (*SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a manually advanced clock for tests.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed returns a Fixed clock pinned to t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

// Now returns the clock's current instant.
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Set pins the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}
