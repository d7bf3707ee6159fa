package usecase

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/vultbaby/otpvault/internal/passcode/entity"
)

type ServiceRow struct {
	ID          string
	DisplayName string
	Validity    time.Duration
}

type ListServicesOutput struct {
	Services []ServiceRow
}

// ListServices returns the service catalog in its configured order.
func (s *Usecase) ListServices(ctx context.Context) (*ListServicesOutput, error) {
	_, span := s.startSpan(ctx, "ListServices")
	defer span.End()

	rows := lo.Map(s.catalog.List(), func(svc entity.ServiceDefinition, _ int) ServiceRow {
		return ServiceRow{ID: svc.ID, DisplayName: svc.DisplayName, Validity: svc.Validity}
	})

	return &ListServicesOutput{Services: rows}, nil
}
