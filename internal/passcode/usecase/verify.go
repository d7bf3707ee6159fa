package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/vultbaby/otpvault/internal/passcode/entity"
	"github.com/vultbaby/otpvault/internal/pkg/goerror"
)

type VerifyInput struct {
	UserID string `validate:"required,identifier"`
	Code   string `validate:"required,otpcode"`
}

type VerifyOutput struct {
	Status     entity.VerifyStatus
	ServiceID  string
	VerifiedAt time.Time
}

// Verify checks the submitted code against the user's active slot. A match
// consumes the code; an expired code is cleared from the slot. Outcomes are
// reported through Status, not through errors.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.UserID = strings.TrimSpace(in.UserID)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	status, consumed, mutated, err := s.repoStore.Verify(ctx, in.UserID, in.Code, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify code", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if mutated {
		s.scheduleFlush(ctx)
	}

	out := &VerifyOutput{Status: status}
	switch status {
	case entity.VerifySuccess:
		out.ServiceID = consumed.ServiceID
		out.VerifiedAt = now
		slog.InfoContext(ctx, "code verified", "user_id", in.UserID, "service_id", consumed.ServiceID)
	default:
		slog.WarnContext(ctx, "code verification rejected", "user_id", in.UserID, "status", status.String())
	}

	return out, nil
}
