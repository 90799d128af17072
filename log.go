package canopy

import (
	"log/slog"
	"os"
)

// Logger receives geometry faults, per-token paint faults, I/O failures and,
// in debug mode, frame statistics. Replace it with SetLogger.
var Logger = newDefaultLogger()

func newDefaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil)).With("lib", "canopy")
}

// SetLogger replaces the package logger. A nil logger discards everything.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	Logger = l
}
