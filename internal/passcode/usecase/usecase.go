package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/vultbaby/otpvault/internal/passcode/entity"
	"github.com/vultbaby/otpvault/internal/pkg/clock"
	"github.com/vultbaby/otpvault/internal/pkg/goroutine"
	"github.com/vultbaby/otpvault/internal/pkg/instrument"
	"github.com/vultbaby/otpvault/internal/pkg/otp"
	"github.com/vultbaby/otpvault/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoStore interface {
	Issue(ctx context.Context, userID string, now time.Time, code entity.OTP) (entity.Account, error)
	Verify(ctx context.Context, userID, code string, now time.Time) (entity.VerifyStatus, *entity.OTP, bool, error)
	Peek(ctx context.Context, userID string) (*entity.OTP, error)
	Stats(ctx context.Context, userID string) (entity.Account, error)
	Export(ctx context.Context) map[string]entity.Account
	Len() int
}

type repoSnapshot interface {
	Flush(ctx context.Context, accounts map[string]entity.Account) error
	LastSavedAt() time.Time
}

// Usecase implements the OTP lifecycle operations on top of the session
// store, the code generator, and the snapshot persister.
type Usecase struct {
	repoStore    repoStore
	repoSnapshot repoSnapshot
	catalog      *entity.Catalog
	generator    otp.Generator
	codeLength   int
	clock        clock.Clocker
	validator    validator.Validator
	ins          instrument.Instrumentation
	goroutine    *goroutine.Manager
}

// Dependency lists what Usecase needs; wiring validates it upstream.
type Dependency struct {
	RepoStore    repoStore
	RepoSnapshot repoSnapshot
	Catalog      *entity.Catalog
	Generator    otp.Generator
	CodeLength   int
	Clock        clock.Clocker
	Validator    validator.Validator
	Instrument   instrument.Instrumentation
	Goroutine    *goroutine.Manager
}

// New constructs a Usecase.
func New(dep Dependency) *Usecase {
	return &Usecase{
		repoStore:    dep.RepoStore,
		repoSnapshot: dep.RepoSnapshot,
		catalog:      dep.Catalog,
		generator:    dep.Generator,
		codeLength:   dep.CodeLength,
		clock:        dep.Clock,
		validator:    dep.Validator,
		ins:          dep.Instrument,
		goroutine:    dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("passcode.usecase").Start(ctx, name)
}

// scheduleFlush snapshots the store on the goroutine manager so the request
// never waits on disk I/O. The context is detached from request cancellation
// but keeps its values (correlation ID). A failed flush is logged and left
// alone: memory stays the source of truth until the next successful flush.
func (s *Usecase) scheduleFlush(ctx context.Context) {
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoSnapshot.Flush(ctx, s.repoStore.Export(ctx)); err != nil {
			slog.ErrorContext(ctx, "failed to flush snapshot", "error", err)
			return err
		}
		return nil
	})
}

// FlushNow flushes synchronously. The app calls it once during graceful
// shutdown so a clean stop persists the final state.
func (s *Usecase) FlushNow(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "FlushNow")
	defer span.End()

	return s.repoSnapshot.Flush(ctx, s.repoStore.Export(ctx))
}
