package testutil

import (
	"io"
	"log/slog"
)

// NopLogger satisfies the controllers' logger dependency in tests
// without producing output.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
