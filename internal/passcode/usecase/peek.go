package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/vultbaby/otpvault/internal/pkg/goerror"
)

type PeekActiveInput struct {
	UserID string `validate:"required,identifier"`
}

type PeekActiveOutput struct {
	UserID    string
	ServiceID string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ExpiresIn time.Duration
	Active    bool
}

// PeekActive reports whether the user holds a live code without touching it.
// The code value itself is never exposed on this path.
func (s *Usecase) PeekActive(ctx context.Context, in PeekActiveInput) (*PeekActiveOutput, error) {
	ctx, span := s.startSpan(ctx, "PeekActive")
	defer span.End()

	in.UserID = strings.TrimSpace(in.UserID)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	active, err := s.repoStore.Peek(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return &PeekActiveOutput{UserID: in.UserID}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to peek active code", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	if active == nil || active.Consumed || active.Expired(now) {
		return &PeekActiveOutput{UserID: in.UserID}, nil
	}

	return &PeekActiveOutput{
		UserID:    in.UserID,
		ServiceID: active.ServiceID,
		IssuedAt:  active.IssuedAt,
		ExpiresAt: active.ExpiresAt,
		ExpiresIn: active.TTL(now),
		Active:    true,
	}, nil
}
