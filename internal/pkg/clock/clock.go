// Package clock provides a tiny time abstraction.
//
// Business code should depend on the Clocker interface instead of calling
// time.Now() directly, so tests can substitute a deterministic time source.
package clock

import "time"

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
}

// TimeClocker is the production clock implementation backed by time.Now.
type TimeClocker struct{}

// New returns a TimeClocker that reads the current system time.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// Fixed is a Clocker pinned to a settable instant, for tests.
type Fixed struct {
	at time.Time
}

// NewFixed returns a Fixed clock starting at the given instant.
func NewFixed(at time.Time) *Fixed {
	return &Fixed{at: at}
}

// Now returns the pinned instant.
func (f *Fixed) Now() time.Time {
	return f.at
}

// Set moves the pinned instant.
func (f *Fixed) Set(at time.Time) {
	f.at = at
}

// Advance moves the pinned instant forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.at = f.at.Add(d)
}
