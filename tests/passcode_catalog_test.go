package tests

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

// TestCatalogOverride boots a private application instance whose config sets
// modules.passcode.services. The configured catalog must fully replace the
// built-in one, in configured order, and issuance must honor the configured
// validity.
func TestCatalogOverride(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	snapshotPath := filepath.Join(dir, "otp_vault.json")
	cfg := configYAML(snapshotPath) + `    services: "signup=90,recovery=240"` + "\n"
	if err := os.WriteFile(configPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	url, stop, err := bootApp(configPath)
	if err != nil {
		t.Fatalf("boot instance: %v", err)
	}
	defer stop()

	// Act
	status, body := doJSONAt(t, url, http.MethodGet, "/api/v1/passcode/services", nil)

	// Assert
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", status, body)
	}

	var resp listServicesResponse
	decodeSuccess(t, body, &resp)

	if len(resp.Services) != 2 {
		t.Fatalf("expected 2 configured services, got %d", len(resp.Services))
	}
	expected := []serviceRow{
		{ID: "signup", Name: "signup", ValiditySeconds: 90},
		{ID: "recovery", Name: "recovery", ValiditySeconds: 240},
	}
	for i, want := range expected {
		if resp.Services[i] != want {
			t.Fatalf("service %d: expected %+v, got %+v", i, want, resp.Services[i])
		}
	}

	// Built-in services are gone; issuing against one is a 404.
	status, _ = doJSONAt(t, url, http.MethodPost, "/api/v1/passcode/issue", map[string]string{
		"user_id":    "override-user",
		"service_id": "login_2fa",
	})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for built-in service, got %d", status)
	}

	// Configured validity drives issuance.
	status, body = doJSONAt(t, url, http.MethodPost, "/api/v1/passcode/issue", map[string]string{
		"user_id":    "override-user",
		"service_id": "signup",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", status, body)
	}
	var issued issueResponse
	decodeSuccess(t, body, &issued)
	if issued.ExpiresInSeconds != 90 {
		t.Fatalf("expected configured validity 90s, got %d", issued.ExpiresInSeconds)
	}
}
