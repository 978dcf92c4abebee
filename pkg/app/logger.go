package app

import (
	"io"
	"os"

	clog "github.com/charmbracelet/log"
)

// newLogger builds the session logger. The full-screen UI owns the
// terminal, so log output goes to a file; an empty path discards it.
func newLogger(path string) (*clog.Logger, *os.File) {
	if path == "" {
		return clog.NewWithOptions(io.Discard, clog.Options{}), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return clog.NewWithOptions(io.Discard, clog.Options{}), nil
	}
	logger := clog.NewWithOptions(f, clog.Options{
		ReportTimestamp: true,
	})
	return logger, f
}
