package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vultbaby/otpvault/internal/app"
)

var realBaseURL string
var httpClient = &http.Client{Timeout: 5 * time.Second}

func baseURL() string {
	return realBaseURL
}

type successEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

type errorEnvelope struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error"`
}

func configYAML(snapshotPath string) string {
	return fmt.Sprintf(`app:
  tz: "UTC"
  server:
    max_goroutine: 50
    cors: "*"
    http:
      address: ":0"
      read_timeout_seconds: 5
      read_header_timeout_seconds: 5
      write_timeout_seconds: 5
      idle_timeout_seconds: 30

instrument:
  enabled: false
  service_name: "otpvault-tests"

modules:
  passcode:
    enabled: true
    code_length: 6
    snapshot:
      path: %q
      max_attempts: 3
`, snapshotPath)
}

// bootApp builds an application from the given config file and serves it on
// an ephemeral port. It returns the base URL and a stop function.
func bootApp(configPath string) (string, func(), error) {
	prev, hadPrev := os.LookupEnv("CONFIG_PATH")
	os.Setenv("CONFIG_PATH", configPath)
	application := app.New()
	if hadPrev {
		os.Setenv("CONFIG_PATH", prev)
	} else {
		os.Unsetenv("CONFIG_PATH")
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	application.Serve(l)

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		application.Stop(ctx)
	}

	return "http://" + l.Addr().String(), stop, nil
}

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "otpvault-tests-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}

	configPath := filepath.Join(dir, "config.yaml")
	snapshotPath := filepath.Join(dir, "otp_vault.json")
	if err := os.WriteFile(configPath, []byte(configYAML(snapshotPath)), 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "write config: %v\n", err)
		os.Exit(1)
	}

	url, stop, err := bootApp(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boot application: %v\n", err)
		os.Exit(1)
	}
	realBaseURL = url

	code := m.Run()

	stop()
	os.RemoveAll(dir)
	os.Exit(code)
}

func doJSON(t *testing.T, method, path string, payload any) (int, []byte) {
	t.Helper()
	return doJSONAt(t, baseURL(), method, path, payload)
}

func doJSONAt(t *testing.T, base, method, path string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			t.Fatalf("encode json: %v", err)
		}
		body = buf
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp.StatusCode, respBody
}

func decodeSuccess(t *testing.T, body []byte, out any) {
	t.Helper()

	var env successEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode success envelope: %v (body: %s)", err, body)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode success data: %v (data: %s)", err, env.Data)
		}
	}
}

func decodeError(t *testing.T, body []byte) errorEnvelope {
	t.Helper()

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode error envelope: %v (body: %s)", err, body)
	}

	return env
}
