package entity

import (
	"crypto/subtle"
	"time"
)

// OTP is one issued passcode. It is owned by exactly one Account and is
// replaced wholesale whenever a new code is issued for that account.
type OTP struct {
	Code      string
	ServiceID string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Consumed  bool
}

// Expired reports whether the code's validity window has passed at now.
// Expiry is purely derived; nothing in the engine runs on a timer.
func (o OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// Matches compares a submitted code against the stored one without
// short-circuiting on the first differing byte.
func (o OTP) Matches(submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(o.Code), []byte(submitted)) == 1
}

// TTL returns the remaining lifetime at now, clamped at zero.
func (o OTP) TTL(now time.Time) time.Duration {
	if d := o.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// UsageStats are the per-account monotonic counters. Verified can never
// exceed Generated because verification consumes a previously issued code.
type UsageStats struct {
	Generated int64
	Verified  int64
}

// Account is the per-user record: registration time, at most one active OTP,
// and cumulative usage counters. Accounts are created on first contact, never
// looked up and refused.
type Account struct {
	UserID       string
	RegisteredAt time.Time
	Active       *OTP
	Stats        UsageStats
}

// Clone returns a deep copy, detaching the Active pointer so callers can
// hand copies across goroutines.
func (a Account) Clone() Account {
	out := a
	if a.Active != nil {
		active := *a.Active
		out.Active = &active
	}
	return out
}
