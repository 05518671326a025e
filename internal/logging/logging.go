package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New returns a logger writing JSON lines to stdout and, when logFile
// is non-empty, to the file as well. The file handle stays open for
// the process lifetime.
func New(logFile string) (*slog.Logger, error) {
	var w io.Writer = os.Stdout
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w = io.MultiWriter(os.Stdout, f)
	}
	return slog.New(slog.NewJSONHandler(w, nil)), nil
}

// Discard is a logger for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
