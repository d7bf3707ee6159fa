// Package snapshot persists the session store to a single local JSON file.
//
// The file is the whole persistence story: it is rewritten wholesale on every
// flush and read back once at startup. Writes go to a temp file in the same
// directory followed by an atomic rename, so a crash mid-flush leaves the
// previous snapshot intact rather than a truncated artifact.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/vultbaby/otpvault/internal/passcode/entity"
	"github.com/vultbaby/otpvault/internal/pkg/clock"
	"github.com/vultbaby/otpvault/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

// formatVersion is bumped when the document layout changes. Load tolerates
// unknown fields, so older binaries can read newer files within a version.
const formatVersion = 1

type document struct {
	Version int                   `json:"version"`
	SavedAt time.Time             `json:"saved_at"`
	Users   map[string]userRecord `json:"users"`
}

type userRecord struct {
	RegisteredAt time.Time  `json:"registered_at"`
	Generated    int64      `json:"generated_count"`
	Verified     int64      `json:"verified_count"`
	Active       *otpRecord `json:"active_otp,omitempty"`
}

type otpRecord struct {
	Code      string    `json:"code"`
	ServiceID string    `json:"service_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
}

// File reads and writes store snapshots at a fixed path.
type File struct {
	path        string
	maxAttempts uint64
	clock       clock.Clocker
	ins         instrument.Instrumentation
	lastSavedAt atomic.Time
}

// Config holds the persister's construction parameters.
type Config struct {
	// Path is the snapshot file location. Its directory must exist.
	Path string
	// MaxAttempts bounds flush retries; values < 1 mean a single attempt.
	MaxAttempts uint64
	// Clock stamps the saved_at field.
	Clock clock.Clocker
	// Instrument provides tracing.
	Instrument instrument.Instrumentation
}

// NewFile constructs a File persister.
func NewFile(cfg Config) *File {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	return &File{
		path:        cfg.Path,
		maxAttempts: cfg.MaxAttempts,
		clock:       cfg.Clock,
		ins:         cfg.Instrument,
	}
}

func (f *File) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return f.ins.Tracer("passcode.outbound.snapshot").Start(ctx, name)
}

// Load reads the snapshot. A missing or unparseable file is a recoverable
// condition: it logs and returns an empty map, never an error the caller
// would treat as fatal. Real I/O failures (permissions, bad media) do error.
func (f *File) Load(ctx context.Context) (map[string]entity.Account, error) {
	ctx, span := f.startSpan(ctx, "Load")
	defer span.End()

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.InfoContext(ctx, "no snapshot file, starting empty", "path", f.path)
		return map[string]entity.Account{}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("snapshot: read %s: %w", f.path, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.WarnContext(ctx, "snapshot file is corrupt, starting empty", "path", f.path, "error", err)
		return map[string]entity.Account{}, nil
	}

	accounts := make(map[string]entity.Account, len(doc.Users))
	for userID, rec := range doc.Users {
		acc := entity.Account{
			UserID:       userID,
			RegisteredAt: rec.RegisteredAt,
			Stats: entity.UsageStats{
				Generated: rec.Generated,
				Verified:  rec.Verified,
			},
		}
		if rec.Active != nil {
			acc.Active = &entity.OTP{
				Code:      rec.Active.Code,
				ServiceID: rec.Active.ServiceID,
				IssuedAt:  rec.Active.IssuedAt,
				ExpiresAt: rec.Active.ExpiresAt,
				Consumed:  rec.Active.Consumed,
			}
		}
		accounts[userID] = acc
	}

	slog.InfoContext(ctx, "snapshot loaded", "path", f.path, "users", len(accounts), "saved_at", doc.SavedAt)
	return accounts, nil
}

// Flush serializes accounts and atomically replaces the snapshot file,
// retrying transient failures with fibonacci backoff. The in-memory store is
// never rolled back on failure; the caller just logs and moves on.
func (f *File) Flush(ctx context.Context, accounts map[string]entity.Account) (err error) {
	ctx, span := f.startSpan(ctx, "Flush")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	doc := document{
		Version: formatVersion,
		SavedAt: f.clock.Now(),
		Users:   make(map[string]userRecord, len(accounts)),
	}

	for userID, acc := range accounts {
		rec := userRecord{
			RegisteredAt: acc.RegisteredAt,
			Generated:    acc.Stats.Generated,
			Verified:     acc.Stats.Verified,
		}
		if acc.Active != nil {
			rec.Active = &otpRecord{
				Code:      acc.Active.Code,
				ServiceID: acc.Active.ServiceID,
				IssuedAt:  acc.Active.IssuedAt,
				ExpiresAt: acc.Active.ExpiresAt,
				Consumed:  acc.Active.Consumed,
			}
		}
		doc.Users[userID] = rec
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}

	backoff := retry.WithMaxRetries(f.maxAttempts-1, retry.NewFibonacci(50*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if writeErr := f.writeAtomic(raw); writeErr != nil {
			slog.WarnContext(ctx, "snapshot flush attempt failed", "path", f.path, "error", writeErr)
			return retry.RetryableError(writeErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("snapshot: flush %s: %w", f.path, err)
	}

	f.lastSavedAt.Store(doc.SavedAt)
	return nil
}

// writeAtomic writes raw to a temp file in the target directory, syncs it,
// and renames it over the snapshot path.
func (f *File) writeAtomic(raw []byte) error {
	dir := filepath.Dir(f.path)

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		// Best effort cleanup when any step below failed.
		//nolint:errcheck // the rename already succeeded or tmp is garbage
		os.Remove(tmpName)
	}()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, f.path)
}

// LastSavedAt returns the saved_at stamp of the most recent successful flush,
// or the zero time when nothing was flushed yet.
func (f *File) LastSavedAt() time.Time {
	return f.lastSavedAt.Load()
}

// Path returns the snapshot file location.
func (f *File) Path() string {
	return f.path
}
