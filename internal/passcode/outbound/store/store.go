// Package store holds every user session in process memory and owns the
// active-OTP state machine. It is the single source of truth while the
// process runs; the snapshot package only mirrors it to disk.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vultbaby/otpvault/internal/passcode/entity"
	"github.com/vultbaby/otpvault/internal/pkg/goerror"
	"github.com/vultbaby/otpvault/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Store is the process-wide map of user accounts. One mutex guards the whole
// map: every operation is short and purely in-memory, so per-account locks
// would buy nothing. Flush I/O never runs under this lock (see Export).
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*entity.Account
	ins      instrument.Instrumentation
}

// New returns an empty Store.
func New(ins instrument.Instrumentation) *Store {
	return &Store{
		accounts: make(map[string]*entity.Account),
		ins:      ins,
	}
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("passcode.outbound.store").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// locked helpers; callers hold s.mu.

func (s *Store) getOrCreateLocked(userID string, now time.Time) (*entity.Account, bool) {
	if acc, ok := s.accounts[userID]; ok {
		return acc, false
	}

	acc := &entity.Account{UserID: userID, RegisteredAt: now}
	s.accounts[userID] = acc
	return acc, true
}

// GetOrCreate returns a copy of the account for userID, creating it with
// RegisteredAt = now when absent. The second return reports creation.
func (s *Store) GetOrCreate(ctx context.Context, userID string, now time.Time) (_ entity.Account, created bool, err error) {
	_, span := s.startSpan(ctx, "GetOrCreate")
	defer func() { s.endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, created := s.getOrCreateLocked(userID, now)
	return acc.Clone(), created, nil
}

// Issue installs otp as the account's active code, discarding any prior one
// regardless of its state, and increments the generated counter. The account
// is created on first contact.
func (s *Store) Issue(ctx context.Context, userID string, now time.Time, otp entity.OTP) (_ entity.Account, err error) {
	_, span := s.startSpan(ctx, "Issue")
	defer func() { s.endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, _ := s.getOrCreateLocked(userID, now)
	acc.Active = &otp
	acc.Stats.Generated++

	return acc.Clone(), nil
}

// Verify runs the verification state machine for one submitted code, entirely
// under the lock so concurrent verifies on the same user cannot both consume
// the code.
//
// Outcomes: no account or empty slot reports no active OTP; a consumed,
// expired, or mismatching code reports invalid-or-expired; a match consumes
// the code and increments the verified counter. An expired slot is cleared as
// a side effect. mutated reports whether any state changed and therefore
// whether the caller should flush.
func (s *Store) Verify(ctx context.Context, userID, code string, now time.Time) (_ entity.VerifyStatus, _ *entity.OTP, mutated bool, err error) {
	_, span := s.startSpan(ctx, "Verify")
	defer func() { s.endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok || acc.Active == nil {
		return entity.VerifyNoActiveOTP, nil, false, nil
	}

	active := acc.Active

	if active.Consumed {
		return entity.VerifyInvalidOrExpired, nil, false, nil
	}

	if active.Expired(now) {
		// Lazy cleanup: the stale record is dropped the moment it is observed.
		acc.Active = nil
		return entity.VerifyInvalidOrExpired, nil, true, nil
	}

	if !active.Matches(code) {
		return entity.VerifyInvalidOrExpired, nil, false, nil
	}

	active.Consumed = true
	acc.Stats.Verified++

	consumed := *active
	return entity.VerifySuccess, &consumed, true, nil
}

// Peek returns a copy of the account's active OTP without mutating anything.
// It reports goerror.ErrNotFound for unknown users and (nil, nil) for a known
// user with an empty slot. Expired records are returned as-is; the caller
// decides how to present them.
func (s *Store) Peek(ctx context.Context, userID string) (_ *entity.OTP, err error) {
	_, span := s.startSpan(ctx, "Peek")
	defer func() { s.endSpan(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	if acc.Active == nil {
		return nil, nil
	}

	active := *acc.Active
	return &active, nil
}

// Stats returns a copy of the full account record.
func (s *Store) Stats(ctx context.Context, userID string) (_ entity.Account, err error) {
	_, span := s.startSpan(ctx, "Stats")
	defer func() { s.endSpan(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return entity.Account{}, goerror.ErrNotFound
	}

	return acc.Clone(), nil
}

// Export deep-copies the whole map under the read lock so the caller can
// serialize it without blocking mutations.
func (s *Store) Export(ctx context.Context) map[string]entity.Account {
	_, span := s.startSpan(ctx, "Export")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]entity.Account, len(s.accounts))
	for id, acc := range s.accounts {
		out[id] = acc.Clone()
	}
	return out
}

// Restore seeds the store from a loaded snapshot. It replaces the current
// contents and is meant to run once at startup, before the store is shared.
func (s *Store) Restore(accounts map[string]entity.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[string]*entity.Account, len(accounts))
	for id, acc := range accounts {
		cloned := acc.Clone()
		cloned.UserID = id
		s.accounts[id] = &cloned
	}
}

// Len returns the number of known accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
