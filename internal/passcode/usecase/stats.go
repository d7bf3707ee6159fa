package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/vultbaby/otpvault/internal/passcode/entity"
	"github.com/vultbaby/otpvault/internal/pkg/goerror"
)

type StatsInput struct {
	UserID string `validate:"required,identifier"`
}

type StatsOutput struct {
	UserID       string
	Registered   bool
	RegisteredAt time.Time
	Generated    int64
	Verified     int64
	HasActive    bool
}

// Stats returns the lifetime counters for a user. An unknown user gets zero
// counters rather than an error; read paths never fail on absence.
func (s *Usecase) Stats(ctx context.Context, in StatsInput) (*StatsOutput, error) {
	ctx, span := s.startSpan(ctx, "Stats")
	defer span.End()

	in.UserID = strings.TrimSpace(in.UserID)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	account, err := s.repoStore.Stats(ctx, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return &StatsOutput{UserID: in.UserID}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to load user stats", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	return &StatsOutput{
		UserID:       in.UserID,
		Registered:   true,
		RegisteredAt: account.RegisteredAt,
		Generated:    account.Stats.Generated,
		Verified:     account.Stats.Verified,
		HasActive:    hasLiveCode(account.Active, now),
	}, nil
}

func hasLiveCode(active *entity.OTP, now time.Time) bool {
	return active != nil && !active.Consumed && !active.Expired(now)
}
