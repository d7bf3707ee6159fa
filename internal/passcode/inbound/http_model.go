package inbound

import "time"

type ServiceResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ValiditySeconds int64  `json:"validity_seconds"`
}

type ListServicesResponse struct {
	Services []ServiceResponse `json:"services"`
}

type IssueRequest struct {
	UserID    string `json:"user_id"`
	ServiceID string `json:"service_id"`
}

type IssueResponse struct {
	UserID           string    `json:"user_id"`
	ServiceID        string    `json:"service_id"`
	ServiceName      string    `json:"service_name"`
	Code             string    `json:"code"`
	IssuedAt         time.Time `json:"issued_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresInSeconds int64     `json:"expires_in_seconds"`
	GeneratedCount   int64     `json:"generated_count"`
}

func (IssueResponse) Message() string {
	return "Code issued. It replaces any previous code for this user."
}

type VerifyRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

type VerifyResponse struct {
	Status     string     `json:"status"`
	ServiceID  string     `json:"service_id,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

type PeekActiveResponse struct {
	UserID           string     `json:"user_id"`
	Active           bool       `json:"active"`
	ServiceID        string     `json:"service_id,omitempty"`
	IssuedAt         *time.Time `json:"issued_at,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	ExpiresInSeconds int64      `json:"expires_in_seconds,omitempty"`
}

type StatsResponse struct {
	UserID         string     `json:"user_id"`
	Registered     bool       `json:"registered"`
	RegisteredAt   *time.Time `json:"registered_at,omitempty"`
	GeneratedCount int64      `json:"generated_count"`
	VerifiedCount  int64      `json:"verified_count"`
	HasActiveCode  bool       `json:"has_active_code"`
}

type HealthResponse struct {
	Status      string     `json:"status"`
	Users       int        `json:"users"`
	LastSavedAt *time.Time `json:"last_saved_at,omitempty"`
}
