// Package logging configures the application logger. The TUI owns the
// terminal, so log output goes to a file (or nowhere).
package logging

import (
	"fmt"
	"log/slog"
	"os"
)

// Setup returns a logger writing to the given path, plus a close function.
// An empty path returns a logger that discards everything.
func Setup(path string, debug bool) (*slog.Logger, func() error, error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return log, f.Close, nil
}
