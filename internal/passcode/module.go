package passcode

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vultbaby/otpvault/internal/passcode/entity"
	"github.com/vultbaby/otpvault/internal/passcode/inbound"
	"github.com/vultbaby/otpvault/internal/passcode/outbound/snapshot"
	"github.com/vultbaby/otpvault/internal/passcode/outbound/store"
	"github.com/vultbaby/otpvault/internal/passcode/usecase"
	"github.com/vultbaby/otpvault/internal/pkg/clock"
	"github.com/vultbaby/otpvault/internal/pkg/config"
	"github.com/vultbaby/otpvault/internal/pkg/goroutine"
	"github.com/vultbaby/otpvault/internal/pkg/instrument"
	"github.com/vultbaby/otpvault/internal/pkg/otp"
	"github.com/vultbaby/otpvault/internal/pkg/router"
	"github.com/vultbaby/otpvault/internal/pkg/validator"
)

const defaultCodeLength = 6

type Dependency struct {
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// Module exposes the pieces the application needs after wiring: the usecase
// drives the final flush on shutdown.
type Module struct {
	Usecase *usecase.Usecase
}

func New(ctx context.Context, dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	catalog, err := buildCatalog(dep.Config.GetArray("modules.passcode.services"))
	if err != nil {
		return nil, fmt.Errorf("passcode: build service catalog: %w", err)
	}

	codeLength := dep.Config.GetInt("modules.passcode.code_length")
	if codeLength == 0 {
		codeLength = defaultCodeLength
	}
	if codeLength < 4 || codeLength > 10 {
		return nil, fmt.Errorf("passcode: code_length %d out of range 4..10", codeLength)
	}

	st := store.New(dep.Instrument)

	snapshotPath := dep.Config.GetString("modules.passcode.snapshot.path")
	if err := os.MkdirAll(filepath.Dir(snapshotPath), 0o750); err != nil {
		return nil, fmt.Errorf("passcode: create snapshot directory: %w", err)
	}

	snap := snapshot.NewFile(snapshot.Config{
		Path:        snapshotPath,
		MaxAttempts: dep.Config.GetUint64("modules.passcode.snapshot.max_attempts"),
		Clock:       dep.Clock,
		Instrument:  dep.Instrument,
	})

	accounts, err := snap.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("passcode: load snapshot: %w", err)
	}
	st.Restore(accounts)
	slog.InfoContext(ctx, "passcode state restored", "users", st.Len(), "path", snap.Path())

	uc := usecase.New(usecase.Dependency{
		RepoStore:    st,
		RepoSnapshot: snap,
		Catalog:      catalog,
		Generator:    otp.NewDigitGenerator(),
		CodeLength:   codeLength,
		Clock:        dep.Clock,
		Validator:    dep.Validator,
		Instrument:   dep.Instrument,
		Goroutine:    dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return &Module{Usecase: uc}, nil
}

// buildCatalog parses modules.passcode.services entries of the form
// id=validity_seconds, in configured order. Blank entries are skipped; any
// other malformed entry is a startup error. An empty key falls back to the
// built-in catalog. Configured services use their ID as display name.
func buildCatalog(entries []string) (*entity.Catalog, error) {
	defs := make([]entity.ServiceDefinition, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		id, val, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("service override %q: want id=validity_seconds", entry)
		}

		id = strings.TrimSpace(id)
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("service %q validity %q: %w", id, val, err)
		}

		defs = append(defs, entity.ServiceDefinition{
			ID:          id,
			DisplayName: id,
			Validity:    time.Duration(n) * time.Second,
		})
	}

	if len(defs) == 0 {
		return entity.NewCatalog(entity.DefaultServices())
	}

	return entity.NewCatalog(defs)
}
