package tests

import (
	"net/http"
	"testing"
	"time"
)

type healthResponse struct {
	Status      string     `json:"status"`
	Users       int        `json:"users"`
	LastSavedAt *time.Time `json:"last_saved_at"`
}

func TestHealth(t *testing.T) {
	// Arrange
	issueCode(t, "health-user-1", "login_2fa")

	// Act
	status, body := doJSON(t, http.MethodGet, "/health", nil)

	// Assert
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", status, body)
	}

	var resp healthResponse
	decodeSuccess(t, body, &resp)
	if resp.Status != "ok" {
		t.Fatalf("expected status ok, got %q", resp.Status)
	}
	if resp.Users < 1 {
		t.Fatalf("expected at least one tracked user, got %d", resp.Users)
	}
}
