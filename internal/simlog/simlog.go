// Package simlog builds the per-module named loggers the simulator's
// components are constructed with. It plays the role the original
// SystemC program gave spdlog: one named sub-logger per module (alu,
// memory, mux, cu, register), a configurable sink, and a configurable
// level — re-expressed with log/slog instead of a package-level logger
// registry, so callers own their module graph directly rather than
// looking loggers up by name.
package simlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Module names a simulator component for the purpose of tagging its
// logger, mirroring the original's LogName constants.
type Module string

const (
	ModuleALU      Module = "alu"
	ModuleMemory   Module = "memory"
	ModuleMux      Module = "mux"
	ModuleRegister Module = "register"
	ModuleCU       Module = "cu"
	ModuleMain     Module = "sim"
)

// New builds the root logger for the given sink and level. Named module
// loggers are then derived from it via For.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard is the default logger: a root logger writing nowhere, used by
// tests and any construction path that does not ask for observability.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// For derives a module-tagged child logger, the equivalent of
// spdlog::get(LogName::x) against a process-wide registry, but passed
// explicitly rather than looked up globally.
func For(root *slog.Logger, m Module) *slog.Logger {
	if root == nil {
		root = Discard()
	}
	return root.With(slog.String("module", string(m)))
}

// Binary renders a byte the way the original simulator's trace lines did
// ("0b00000110"), for use in log attributes where a plain decimal value
// would be harder to eyeball against the opcode encoding tables.
func Binary(v uint8) string {
	return fmt.Sprintf("0b%08b", v)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
