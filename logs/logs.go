// Package logs sets up the file-backed logger. The TUI owns the terminal,
// so nothing may log to stdout or stderr once the call screen is up; all
// structured output goes to a log file under the user config directory.
package logs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Init opens (or creates) the log file and returns the root logger, the log
// path and a closer. When the file cannot be opened the returned logger
// discards everything and the error tells the caller why; the program keeps
// running either way.
func Init(verbose bool) (zerolog.Logger, string, func() error, error) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	dir = filepath.Join(dir, "gomeet")
	path := filepath.Join(dir, "gomeet.log")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return discardLogger(level), path, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return discardLogger(level), path, nil, err
	}
	logger := zerolog.New(f).With().Timestamp().Logger().Level(level)
	return logger, path, f.Close, nil
}

func discardLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(io.Discard).Level(level)
}
