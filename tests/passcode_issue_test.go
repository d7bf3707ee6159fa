package tests

import (
	"net/http"
	"testing"
	"time"
)

type issueResponse struct {
	UserID           string    `json:"user_id"`
	ServiceID        string    `json:"service_id"`
	ServiceName      string    `json:"service_name"`
	Code             string    `json:"code"`
	IssuedAt         time.Time `json:"issued_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresInSeconds int64     `json:"expires_in_seconds"`
	GeneratedCount   int64     `json:"generated_count"`
}

func issueCode(t *testing.T, userID, serviceID string) issueResponse {
	t.Helper()

	status, body := doJSON(t, http.MethodPost, "/api/v1/passcode/issue", map[string]string{
		"user_id":    userID,
		"service_id": serviceID,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", status, body)
	}

	var resp issueResponse
	decodeSuccess(t, body, &resp)

	return resp
}

func TestIssue(t *testing.T) {

	t.Run("Success", func(t *testing.T) {
		// Act
		resp := issueCode(t, "issue-user-1", "login_2fa")

		// Assert
		if len(resp.Code) != 6 {
			t.Fatalf("expected 6-digit code, got %q", resp.Code)
		}
		for _, c := range resp.Code {
			if c < '0' || c > '9' {
				t.Fatalf("expected digits only, got %q", resp.Code)
			}
		}
		if resp.ExpiresInSeconds != 180 {
			t.Fatalf("expected validity 180s, got %d", resp.ExpiresInSeconds)
		}
		if !resp.ExpiresAt.Equal(resp.IssuedAt.Add(180 * time.Second)) {
			t.Fatalf("expected expires_at = issued_at + 180s")
		}
		if resp.GeneratedCount != 1 {
			t.Fatalf("expected generated_count 1, got %d", resp.GeneratedCount)
		}
	})

	t.Run("ReissueReplacesActive", func(t *testing.T) {
		// Arrange
		first := issueCode(t, "issue-user-2", "email_verification")

		// Act
		second := issueCode(t, "issue-user-2", "password_reset")

		// Assert
		if second.GeneratedCount != 2 {
			t.Fatalf("expected generated_count 2, got %d", second.GeneratedCount)
		}

		status, body := doJSON(t, http.MethodPost, "/api/v1/passcode/verify", map[string]string{
			"user_id": "issue-user-2",
			"code":    first.Code,
		})
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d (body: %s)", status, body)
		}
		var verify verifyResponse
		decodeSuccess(t, body, &verify)
		if verify.Status == "success" && first.Code != second.Code {
			t.Fatalf("replaced code must no longer verify")
		}
	})

	t.Run("UnknownService", func(t *testing.T) {
		// Act
		status, body := doJSON(t, http.MethodPost, "/api/v1/passcode/issue", map[string]string{
			"user_id":    "issue-user-3",
			"service_id": "no_such_service",
		})

		// Assert
		if status != http.StatusNotFound {
			t.Fatalf("expected 404, got %d (body: %s)", status, body)
		}
		if env := decodeError(t, body); env.Message == "" {
			t.Fatalf("expected error message")
		}
	})

	t.Run("MissingUserID", func(t *testing.T) {
		// Act
		status, body := doJSON(t, http.MethodPost, "/api/v1/passcode/issue", map[string]string{
			"service_id": "login_2fa",
		})

		// Assert
		if status != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d (body: %s)", status, body)
		}
	})

	t.Run("MalformedBody", func(t *testing.T) {
		// Act
		status, body := doJSON(t, http.MethodPost, "/api/v1/passcode/issue", map[string]any{
			"user_id":    "issue-user-4",
			"service_id": "login_2fa",
			"unexpected": true,
		})

		// Assert
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d (body: %s)", status, body)
		}
	})
}
