package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

var logFile *os.File

// Flush syncs the log file to disk. Safe to call at any time.
func Flush() {
	if logFile != nil {
		logFile.Sync()
	}
}

// Close flushes and closes the log file.
func Close() error {
	if logFile != nil {
		logFile.Sync()
		return logFile.Close()
	}
	return nil
}

// NewLogger creates a slog logger writing to a timestamped file under logDir
// and to stdout. With debug=true the level is lowered to Debug.
func NewLogger(debug bool, logDir string) (*slog.Logger, error) {
	if logDir == "" {
		logDir = "logs"
	}

	if _, err := os.Stat(logDir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("error creating log directory: %w", err)
		}
	}

	name := "sniper-" + time.Now().Format("2006-01-02-15-04-05") + ".log"
	f, err := os.Create(filepath.Join(logDir, name))
	if err != nil {
		return nil, err
	}
	logFile = f

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.TimeKey {
				return a
			}
			a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly))
			return a
		},
	}

	handler := slog.NewTextHandler(io.MultiWriter(logFile, os.Stdout), opts)
	return slog.New(handler), nil
}
