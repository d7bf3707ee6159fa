package usecase

import (
	"context"
	"time"
)

type HealthOutput struct {
	Users       int
	LastSavedAt time.Time
}

// Health reports the in-memory population and the time of the last
// successful snapshot flush. A zero LastSavedAt means nothing has been
// persisted since startup.
func (s *Usecase) Health(ctx context.Context) (*HealthOutput, error) {
	_, span := s.startSpan(ctx, "Health")
	defer span.End()

	return &HealthOutput{
		Users:       s.repoStore.Len(),
		LastSavedAt: s.repoSnapshot.LastSavedAt(),
	}, nil
}
