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

// StaticClocker is a deterministic clock for tests.
type StaticClocker struct {
	at time.Time
}

// NewStatic returns a clock pinned to the given time.
func NewStatic(at time.Time) *StaticClocker {
	return &StaticClocker{at: at}
}

// Now returns the pinned time.
func (s *StaticClocker) Now() time.Time {
	return s.at
}

// Advance moves the pinned time forward by d.
func (s *StaticClocker) Advance(d time.Duration) {
	s.at = s.at.Add(d)
}
