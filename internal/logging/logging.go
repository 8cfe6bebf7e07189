// Package logging configures the process-wide slog logger. A full-screen
// terminal program cannot log to stdout, so records go to a file under the
// user's state directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultLogPath returns the default log file location,
// ~/.local/state/taskflow/taskflow.log.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "taskflow.log")
	}
	return filepath.Join(home, ".local", "state", "taskflow", "taskflow.log")
}

// Setup installs a JSON slog handler writing to the given path and returns
// a closer for the underlying file. If the file cannot be opened, logging
// is discarded rather than failing startup.
func Setup(path string, level slog.Level) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.SetDefault(discardLogger(level))
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.SetDefault(discardLogger(level))
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return f, nil
}

func discardLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: level}))
}
