package inbound

import (
	"context"

	"github.com/vultbaby/otpvault/internal/passcode/usecase"
	"github.com/vultbaby/otpvault/internal/pkg/router"
)

type uc interface {
	ListServices(ctx context.Context) (*usecase.ListServicesOutput, error)
	Issue(ctx context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	PeekActive(ctx context.Context, in usecase.PeekActiveInput) (*usecase.PeekActiveOutput, error)
	Stats(ctx context.Context, in usecase.StatsInput) (*usecase.StatsOutput, error)
	Health(ctx context.Context) (*usecase.HealthOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Catalog
	r.GET("/api/v1/passcode/services", end.ListServices)

	// Lifecycle
	r.POST("/api/v1/passcode/issue", end.Issue)
	r.POST("/api/v1/passcode/verify", end.Verify)

	// Per-user reads
	r.GET("/api/v1/passcode/users/:id/active", end.PeekActive)
	r.GET("/api/v1/passcode/users/:id/stats", end.Stats)

	// Liveness plus snapshot freshness
	r.GET("/health", end.Health)
}
