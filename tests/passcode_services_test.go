package tests

import (
	"net/http"
	"testing"
)

type serviceRow struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ValiditySeconds int64  `json:"validity_seconds"`
}

type listServicesResponse struct {
	Services []serviceRow `json:"services"`
}

func TestListServices(t *testing.T) {
	// Act
	status, body := doJSON(t, http.MethodGet, "/api/v1/passcode/services", nil)

	// Assert
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", status, body)
	}

	var resp listServicesResponse
	decodeSuccess(t, body, &resp)

	if len(resp.Services) != 5 {
		t.Fatalf("expected 5 services, got %d", len(resp.Services))
	}

	want := map[string]int64{
		"email_verification": 300,
		"login_2fa":          180,
		"password_reset":     600,
		"transaction_verify": 120,
		"account_security":   300,
	}
	for _, svc := range resp.Services {
		secs, ok := want[svc.ID]
		if !ok {
			t.Fatalf("unexpected service %q", svc.ID)
		}
		if svc.ValiditySeconds != secs {
			t.Fatalf("service %q: expected validity %d, got %d", svc.ID, secs, svc.ValiditySeconds)
		}
		if svc.Name == "" {
			t.Fatalf("service %q: expected non-empty name", svc.ID)
		}
	}
}
