package tests

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

// TestRestartPersistence boots a private application instance, issues a code,
// stops the instance cleanly, then boots a second one against the same
// snapshot file. Counters and the active code must survive the restart.
func TestRestartPersistence(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	snapshotPath := filepath.Join(dir, "otp_vault.json")
	if err := os.WriteFile(configPath, []byte(configYAML(snapshotPath)), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	firstURL, stopFirst, err := bootApp(configPath)
	if err != nil {
		t.Fatalf("boot first instance: %v", err)
	}

	status, body := doJSONAt(t, firstURL, http.MethodPost, "/api/v1/passcode/issue", map[string]string{
		"user_id":    "restart-user",
		"service_id": "password_reset",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", status, body)
	}
	var issued issueResponse
	decodeSuccess(t, body, &issued)

	// Act: clean stop flushes, then a fresh instance restores from disk.
	stopFirst()

	if _, err := os.Stat(snapshotPath); err != nil {
		t.Fatalf("expected snapshot file after shutdown: %v", err)
	}

	secondURL, stopSecond, err := bootApp(configPath)
	if err != nil {
		t.Fatalf("boot second instance: %v", err)
	}
	defer stopSecond()

	// Assert: stats survived.
	status, body = doJSONAt(t, secondURL, http.MethodGet, "/api/v1/passcode/users/restart-user/stats", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", status, body)
	}
	var stats statsResponse
	decodeSuccess(t, body, &stats)
	if !stats.Registered || stats.GeneratedCount != 1 {
		t.Fatalf("expected restored stats, got registered=%v generated=%d", stats.Registered, stats.GeneratedCount)
	}

	// Assert: the active code survived and still verifies exactly once.
	status, body = doJSONAt(t, secondURL, http.MethodPost, "/api/v1/passcode/verify", map[string]string{
		"user_id": "restart-user",
		"code":    issued.Code,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", status, body)
	}
	var verify verifyResponse
	decodeSuccess(t, body, &verify)
	if verify.Status != "success" {
		t.Fatalf("expected restored code to verify, got %q", verify.Status)
	}
}
