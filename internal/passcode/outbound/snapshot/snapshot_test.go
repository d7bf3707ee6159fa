package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vultbaby/otpvault/internal/passcode/entity"
	"github.com/vultbaby/otpvault/internal/pkg/clock"
	"github.com/vultbaby/otpvault/internal/pkg/instrument"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newFile(t *testing.T) *File {
	t.Helper()

	return NewFile(Config{
		Path:        filepath.Join(t.TempDir(), "otpvault.json"),
		MaxAttempts: 3,
		Clock:       clock.NewStatic(t0),
		Instrument:  instrument.NewNoop(),
	})
}

func sampleAccounts() map[string]entity.Account {
	return map[string]entity.Account{
		"u1": {
			UserID:       "u1",
			RegisteredAt: t0.Add(-time.Hour),
			Stats:        entity.UsageStats{Generated: 4, Verified: 2},
			Active: &entity.OTP{
				Code:      "048392",
				ServiceID: "login_2fa",
				IssuedAt:  t0,
				ExpiresAt: t0.Add(180 * time.Second),
			},
		},
		"u2": {
			UserID:       "u2",
			RegisteredAt: t0.Add(-time.Minute),
			Stats:        entity.UsageStats{Generated: 1, Verified: 1},
		},
	}
}

func TestFile_RoundTrip(t *testing.T) {
	f := newFile(t)
	ctx := context.Background()

	want := sampleAccounts()
	require.NoError(t, f.Flush(ctx, want))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, t0, f.LastSavedAt())
}

func TestFile_RoundTripEmpty(t *testing.T) {
	f := newFile(t)
	ctx := context.Background()

	require.NoError(t, f.Flush(ctx, map[string]entity.Account{}))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFile_LoadMissing(t *testing.T) {
	f := newFile(t)

	got, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFile_LoadCorrupt(t *testing.T) {
	f := newFile(t)
	require.NoError(t, os.WriteFile(f.Path(), []byte("{not json"), 0o600))

	got, err := f.Load(context.Background())
	require.NoError(t, err, "a corrupt snapshot is recoverable")
	assert.Empty(t, got)
}

func TestFile_LoadToleratesUnknownFields(t *testing.T) {
	f := newFile(t)

	payload := `{
		"version": 1,
		"saved_at": "2025-06-01T12:00:00Z",
		"future_field": {"ignored": true},
		"users": {
			"u1": {
				"registered_at": "2025-06-01T11:00:00Z",
				"generated_count": 2,
				"verified_count": 1,
				"unknown": "ignored"
			}
		}
	}`
	require.NoError(t, os.WriteFile(f.Path(), []byte(payload), 0o600))

	got, err := f.Load(context.Background())
	require.NoError(t, err)
	require.Contains(t, got, "u1")
	assert.Equal(t, int64(2), got["u1"].Stats.Generated)
	assert.Equal(t, int64(1), got["u1"].Stats.Verified)
	assert.Nil(t, got["u1"].Active)
}

func TestFile_FlushOverwritesPrevious(t *testing.T) {
	f := newFile(t)
	ctx := context.Background()

	require.NoError(t, f.Flush(ctx, sampleAccounts()))
	require.NoError(t, f.Flush(ctx, map[string]entity.Account{
		"u3": {UserID: "u3", RegisteredAt: t0},
	}))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "u3")
}

func TestFile_FlushLeavesNoTempFiles(t *testing.T) {
	f := newFile(t)
	ctx := context.Background()

	require.NoError(t, f.Flush(ctx, sampleAccounts()))

	entries, err := os.ReadDir(filepath.Dir(f.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(f.Path()), entries[0].Name())
}

func TestFile_DocumentShape(t *testing.T) {
	f := newFile(t)
	require.NoError(t, f.Flush(context.Background(), sampleAccounts()))

	raw, err := os.ReadFile(f.Path())
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "version")
	assert.Contains(t, doc, "saved_at")
	assert.Contains(t, doc, "users")
}

func TestFile_FlushFailsOnMissingDirectory(t *testing.T) {
	f := NewFile(Config{
		Path:        filepath.Join(t.TempDir(), "does", "not", "exist", "otpvault.json"),
		MaxAttempts: 2,
		Clock:       clock.NewStatic(t0),
		Instrument:  instrument.NewNoop(),
	})

	err := f.Flush(context.Background(), sampleAccounts())
	assert.Error(t, err)
	assert.True(t, f.LastSavedAt().IsZero())
}
