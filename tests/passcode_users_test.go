package tests

import (
	"net/http"
	"testing"
	"time"
)

type peekActiveResponse struct {
	UserID           string     `json:"user_id"`
	Active           bool       `json:"active"`
	ServiceID        string     `json:"service_id"`
	IssuedAt         *time.Time `json:"issued_at"`
	ExpiresAt        *time.Time `json:"expires_at"`
	ExpiresInSeconds int64      `json:"expires_in_seconds"`
}

type statsResponse struct {
	UserID         string     `json:"user_id"`
	Registered     bool       `json:"registered"`
	RegisteredAt   *time.Time `json:"registered_at"`
	GeneratedCount int64      `json:"generated_count"`
	VerifiedCount  int64      `json:"verified_count"`
	HasActiveCode  bool       `json:"has_active_code"`
}

func TestPeekActive(t *testing.T) {

	t.Run("WithActiveCode", func(t *testing.T) {
		// Arrange
		issueCode(t, "peek-user-1", "password_reset")

		// Act
		status, body := doJSON(t, http.MethodGet, "/api/v1/passcode/users/peek-user-1/active", nil)

		// Assert
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d (body: %s)", status, body)
		}
		var resp peekActiveResponse
		decodeSuccess(t, body, &resp)
		if !resp.Active {
			t.Fatalf("expected an active code")
		}
		if resp.ServiceID != "password_reset" {
			t.Fatalf("expected service password_reset, got %q", resp.ServiceID)
		}
		if resp.ExpiresInSeconds <= 0 || resp.ExpiresInSeconds > 600 {
			t.Fatalf("expected remaining ttl within (0, 600], got %d", resp.ExpiresInSeconds)
		}
	})

	t.Run("ConsumedCodeIsNotActive", func(t *testing.T) {
		// Arrange
		issued := issueCode(t, "peek-user-2", "login_2fa")
		if resp := verifyCode(t, "peek-user-2", issued.Code); resp.Status != "success" {
			t.Fatalf("expected verification to succeed, got %q", resp.Status)
		}

		// Act
		status, body := doJSON(t, http.MethodGet, "/api/v1/passcode/users/peek-user-2/active", nil)

		// Assert
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d (body: %s)", status, body)
		}
		var resp peekActiveResponse
		decodeSuccess(t, body, &resp)
		if resp.Active {
			t.Fatalf("consumed code must not appear active")
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		// Act
		status, body := doJSON(t, http.MethodGet, "/api/v1/passcode/users/peek-nobody/active", nil)

		// Assert
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d (body: %s)", status, body)
		}
		var resp peekActiveResponse
		decodeSuccess(t, body, &resp)
		if resp.Active {
			t.Fatalf("unknown user must not hold an active code")
		}
	})
}

func TestStats(t *testing.T) {

	t.Run("CountersAccumulate", func(t *testing.T) {
		// Arrange
		issued := issueCode(t, "stats-user-1", "login_2fa")
		if resp := verifyCode(t, "stats-user-1", issued.Code); resp.Status != "success" {
			t.Fatalf("expected verification to succeed, got %q", resp.Status)
		}
		issueCode(t, "stats-user-1", "email_verification")

		// Act
		status, body := doJSON(t, http.MethodGet, "/api/v1/passcode/users/stats-user-1/stats", nil)

		// Assert
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d (body: %s)", status, body)
		}
		var resp statsResponse
		decodeSuccess(t, body, &resp)
		if !resp.Registered {
			t.Fatalf("expected user to be registered")
		}
		if resp.GeneratedCount != 2 {
			t.Fatalf("expected generated_count 2, got %d", resp.GeneratedCount)
		}
		if resp.VerifiedCount != 1 {
			t.Fatalf("expected verified_count 1, got %d", resp.VerifiedCount)
		}
		if !resp.HasActiveCode {
			t.Fatalf("expected an active code after the second issue")
		}
		if resp.RegisteredAt == nil {
			t.Fatalf("expected registered_at to be set")
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		// Act
		status, body := doJSON(t, http.MethodGet, "/api/v1/passcode/users/stats-nobody/stats", nil)

		// Assert
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d (body: %s)", status, body)
		}
		var resp statsResponse
		decodeSuccess(t, body, &resp)
		if resp.Registered {
			t.Fatalf("expected unknown user to be unregistered")
		}
		if resp.GeneratedCount != 0 || resp.VerifiedCount != 0 {
			t.Fatalf("expected zero counters, got %d/%d", resp.GeneratedCount, resp.VerifiedCount)
		}
	})
}
