package app

import (
	"log/slog"
	"os"

	"github.com/vultbaby/otpvault/internal/passcode"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.passcode.enabled") {
		mod, err := passcode.New(a.ctx, passcode.Dependency{
			Config:     a.config,
			Instrument: a.ins,
			Clock:      a.clock,
			Validator:  a.validator,
			Router:     a.router,
			Goroutine:  a.goroutine,
		})
		if err != nil {
			slog.Error("failed to init module passcode", "error", err)
			os.Exit(1)
		}
		a.passcode = mod
	}
}
