package testutil

import (
	"io"
	"log/slog"
)

// DiscardLogger returns a logger that drops every record. Scenario runs and
// tests hand it to the engine to keep output clean.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
