// Package clock abstracts wall-clock time so scheduling and reminder logic
// stays deterministic under test.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System reads the real clock in UTC.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant. Advance it explicitly in tests.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time {
	return f.T
}

func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}
