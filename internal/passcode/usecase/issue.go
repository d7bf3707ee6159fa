package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/vultbaby/otpvault/internal/passcode/entity"
	"github.com/vultbaby/otpvault/internal/pkg/goerror"
)

type IssueInput struct {
	UserID    string `validate:"required,identifier"`
	ServiceID string `validate:"required,identifier"`
}

type IssueOutput struct {
	UserID      string
	ServiceID   string
	ServiceName string
	Code        string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	ExpiresIn   time.Duration
	Stats       entity.UsageStats
}

// Issue generates a fresh code for the user and service. Any previously
// active code for the user is replaced, whatever its state.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	in.UserID = strings.TrimSpace(in.UserID)
	in.ServiceID = strings.TrimSpace(in.ServiceID)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	svc, ok := s.catalog.Lookup(in.ServiceID)
	if !ok {
		slog.WarnContext(ctx, "issue requested for unknown service", "user_id", in.UserID, "service_id", in.ServiceID)
		return nil, goerror.NewBusiness("unknown service", goerror.CodeNotFound)
	}

	code, err := s.generator.Generate(s.codeLength)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate code", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	account, err := s.repoStore.Issue(ctx, in.UserID, now, entity.OTP{
		Code:      code,
		ServiceID: svc.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(svc.Validity),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to store issued code", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.scheduleFlush(ctx)

	slog.InfoContext(ctx, "code issued", "user_id", in.UserID, "service_id", svc.ID,
		"expires_at", account.Active.ExpiresAt)

	return &IssueOutput{
		UserID:      in.UserID,
		ServiceID:   svc.ID,
		ServiceName: svc.DisplayName,
		Code:        account.Active.Code,
		IssuedAt:    account.Active.IssuedAt,
		ExpiresAt:   account.Active.ExpiresAt,
		ExpiresIn:   svc.Validity,
		Stats:       account.Stats,
	}, nil
}
