package inbound

import (
	"github.com/samber/lo"
	"github.com/vultbaby/otpvault/internal/passcode/usecase"
	"github.com/vultbaby/otpvault/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the OTP lifecycle.
type HTTPEndpoint struct {
	uc uc
}

// ListServices returns the configured service catalog.
// @Summary List services
// @Description Returns every service codes can be issued for, with its validity window.
// @Tags Passcode
// @Produce json
// @Success 200 {object} router.successResponse{data=ListServicesResponse} "Service catalog"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/passcode/services [get]
func (h *HTTPEndpoint) ListServices(r *router.Request) (any, error) {
	resp, err := h.uc.ListServices(r.Context())
	if err != nil {
		return nil, err
	}

	return ListServicesResponse{
		Services: lo.Map(resp.Services, func(svc usecase.ServiceRow, _ int) ServiceResponse {
			return ServiceResponse{
				ID:              svc.ID,
				Name:            svc.DisplayName,
				ValiditySeconds: int64(svc.Validity.Seconds()),
			}
		}),
	}, nil
}

// Issue generates a new code for a user and service.
// @Summary Issue a code
// @Description Generates a fresh code, replacing any previously active code for the user.
// @Tags Passcode
// @Accept json
// @Produce json
// @Param request body IssueRequest true "Issue payload"
// @Success 200 {object} router.successResponse{data=IssueResponse} "Issued code"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "Unknown service"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/passcode/issue [post]
func (h *HTTPEndpoint) Issue(r *router.Request) (any, error) {
	var req IssueRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		UserID:    req.UserID,
		ServiceID: req.ServiceID,
	})
	if err != nil {
		return nil, err
	}

	return IssueResponse{
		UserID:           resp.UserID,
		ServiceID:        resp.ServiceID,
		ServiceName:      resp.ServiceName,
		Code:             resp.Code,
		IssuedAt:         resp.IssuedAt,
		ExpiresAt:        resp.ExpiresAt,
		ExpiresInSeconds: int64(resp.ExpiresIn.Seconds()),
		GeneratedCount:   resp.Stats.Generated,
	}, nil
}

// Verify checks a submitted code against the user's active one.
// @Summary Verify a code
// @Description Consumes the active code on a match. Rejections are reported in the status field, not as errors.
// @Tags Passcode
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "Verification outcome"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/passcode/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		UserID: req.UserID,
		Code:   req.Code,
	})
	if err != nil {
		return nil, err
	}

	out := VerifyResponse{Status: resp.Status.String(), ServiceID: resp.ServiceID}
	if !resp.VerifiedAt.IsZero() {
		out.VerifiedAt = &resp.VerifiedAt
	}

	return out, nil
}

// PeekActive reports whether a user holds a live code.
// @Summary Peek active code
// @Description Shows the active code's service and expiry without revealing or consuming the code.
// @Tags Passcode
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} router.successResponse{data=PeekActiveResponse} "Active code state"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/passcode/users/{id}/active [get]
func (h *HTTPEndpoint) PeekActive(r *router.Request) (any, error) {
	resp, err := h.uc.PeekActive(r.Context(), usecase.PeekActiveInput{UserID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	out := PeekActiveResponse{UserID: resp.UserID, Active: resp.Active}
	if resp.Active {
		out.ServiceID = resp.ServiceID
		out.IssuedAt = &resp.IssuedAt
		out.ExpiresAt = &resp.ExpiresAt
		out.ExpiresInSeconds = int64(resp.ExpiresIn.Seconds())
	}

	return out, nil
}

// Stats returns lifetime counters for a user.
// @Summary User stats
// @Description Returns how many codes the user generated and verified over their lifetime.
// @Tags Passcode
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} router.successResponse{data=StatsResponse} "Usage counters"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/passcode/users/{id}/stats [get]
func (h *HTTPEndpoint) Stats(r *router.Request) (any, error) {
	resp, err := h.uc.Stats(r.Context(), usecase.StatsInput{UserID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	out := StatsResponse{
		UserID:         resp.UserID,
		Registered:     resp.Registered,
		GeneratedCount: resp.Generated,
		VerifiedCount:  resp.Verified,
		HasActiveCode:  resp.HasActive,
	}
	if resp.Registered {
		out.RegisteredAt = &resp.RegisteredAt
	}

	return out, nil
}

// Health reports process liveness and snapshot freshness.
// @Summary Health check
// @Description Returns the number of tracked users and the time of the last successful snapshot flush.
// @Tags Passcode
// @Produce json
// @Success 200 {object} router.successResponse{data=HealthResponse} "Health state"
// @Router /health [get]
func (h *HTTPEndpoint) Health(r *router.Request) (any, error) {
	resp, err := h.uc.Health(r.Context())
	if err != nil {
		return nil, err
	}

	out := HealthResponse{Status: "ok", Users: resp.Users}
	if !resp.LastSavedAt.IsZero() {
		out.LastSavedAt = &resp.LastSavedAt
	}

	return out, nil
}
